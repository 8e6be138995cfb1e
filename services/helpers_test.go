package services_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/linesmerrill/video-screening-api/databases"
	"github.com/linesmerrill/video-screening-api/models"
	"github.com/linesmerrill/video-screening-api/storage"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingStore is an in-memory storage.ArtifactStore that counts writes
type recordingStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	puts    int
	putErr  error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *recordingStore) PutObject(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = append([]byte(nil), data...)
	s.types[key] = contentType
	return nil
}

func (s *recordingStore) GetStream(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *recordingStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// failingVideos fails every write and delegates reads
type failingVideos struct {
	databases.VideoDatabase
	err error
}

func (f failingVideos) Create(context.Context, models.Video) (models.Video, error) {
	return models.Video{}, f.err
}

// collidingInvites reports a duplicate token for the first n creates
type collidingInvites struct {
	databases.InviteDatabase
	mu        sync.Mutex
	remaining int
	tokens    []string
}

func (c *collidingInvites) Create(ctx context.Context, invite models.Invite) (models.Invite, error) {
	c.mu.Lock()
	c.tokens = append(c.tokens, invite.Token)
	if c.remaining > 0 {
		c.remaining--
		c.mu.Unlock()
		return models.Invite{}, databases.ErrDuplicateToken
	}
	c.mu.Unlock()
	return c.InviteDatabase.Create(ctx, invite)
}
