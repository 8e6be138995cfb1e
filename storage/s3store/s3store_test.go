package s3store_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/video-screening-api/storage"
	"github.com/linesmerrill/video-screening-api/storage/s3store"
)

type fakeS3 struct {
	mu          sync.Mutex
	objects     map[string][]byte
	contentType map[string]string
	getErr      error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentType: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = b
	f.contentType[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func TestStore_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := s3store.NewWithClient(fake, "videos")

	data := []byte("webm bytes")
	require.NoError(t, s.PutObject(context.Background(), "invite-1/abc-clip.webm", data, "video/webm"))
	assert.Equal(t, "video/webm", fake.contentType["videos/invite-1/abc-clip.webm"])

	rc, err := s.GetStream(context.Background(), "invite-1/abc-clip.webm")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStore_GetMissingKey(t *testing.T) {
	s := s3store.NewWithClient(newFakeS3(), "videos")

	_, err := s.GetStream(context.Background(), "invite-1/none.webm")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestStore_GetGenericNotFoundAPIError(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = &smithy.GenericAPIError{Code: "NotFound", Message: "not found"}
	s := s3store.NewWithClient(fake, "videos")

	_, err := s.GetStream(context.Background(), "invite-1/none.webm")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestStore_GetPropagatesOtherErrors(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("mocked-error")
	s := s3store.NewWithClient(fake, "videos")

	_, err := s.GetStream(context.Background(), "invite-1/none.webm")
	assert.EqualError(t, err, "get object invite-1/none.webm: mocked-error")
}

func TestStore_RejectsInvalidKey(t *testing.T) {
	s := s3store.NewWithClient(newFakeS3(), "videos")
	assert.ErrorIs(t, s.PutObject(context.Background(), "../x", []byte("x"), ""), storage.ErrInvalidKey)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := s3store.New(context.Background(), "", "us-east-1")
	assert.Error(t, err)
}
