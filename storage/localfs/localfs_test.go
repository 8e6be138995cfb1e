package localfs_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/video-screening-api/storage"
	"github.com/linesmerrill/video-screening-api/storage/localfs"
)

func readAll(t *testing.T, s *localfs.Store, key string) []byte {
	t.Helper()
	rc, err := s.GetStream(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return b
}

func TestStore_PutThenGetRoundTrip(t *testing.T) {
	s, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0x1a, 0x45, 0xdf, 0xa3}, 4096)
	require.NoError(t, s.PutObject(context.Background(), "invite-1/abc-clip.webm", data, "video/webm"))

	assert.Equal(t, data, readAll(t, s, "invite-1/abc-clip.webm"))
}

func TestStore_PutLeavesNoStagingFiles(t *testing.T) {
	root := t.TempDir()
	s, err := localfs.New(root)
	require.NoError(t, err)

	require.NoError(t, s.PutObject(context.Background(), "invite-1/abc-clip.webm", []byte("video"), "video/webm"))

	entries, err := os.ReadDir(filepath.Join(root, "invite-1"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc-clip.webm", entries[0].Name())
}

func TestStore_GetMissingKey(t *testing.T) {
	s, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	_, err = s.GetStream(context.Background(), "invite-1/nothing.webm")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	s, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	err = s.PutObject(context.Background(), "../escape.webm", []byte("x"), "video/webm")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)

	err = s.PutObject(context.Background(), "invite/.clip.webm.123.part", []byte("x"), "video/webm")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
}

func TestStore_PutHonoursCancelledContext(t *testing.T) {
	root := t.TempDir()
	s, err := localfs.New(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.PutObject(ctx, "invite/clip.webm", []byte("x"), "video/webm"), context.Canceled)

	_, err = s.GetStream(context.Background(), "invite/clip.webm")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestStore_ConcurrentReadersNeverSeePartialObject(t *testing.T) {
	s, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	key := "invite-1/abc-big.webm"
	data := bytes.Repeat([]byte("0123456789"), 512*1024)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			rc, err := s.GetStream(context.Background(), key)
			if err != nil {
				assert.ErrorIs(t, err, storage.ErrObjectNotFound)
				continue
			}
			b, err := io.ReadAll(rc)
			rc.Close()
			assert.NoError(t, err)
			assert.Equal(t, len(data), len(b))
		}
	}()

	require.NoError(t, s.PutObject(context.Background(), key, data, "video/webm"))
	time.Sleep(20 * time.Millisecond)
	close(stop)
	wg.Wait()
}

func TestStore_SweepStaging(t *testing.T) {
	root := t.TempDir()
	s, err := localfs.New(root)
	require.NoError(t, err)

	require.NoError(t, s.PutObject(context.Background(), "invite-1/abc-clip.webm", []byte("keep"), "video/webm"))

	dir := filepath.Join(root, "invite-1")
	stale := filepath.Join(dir, ".abc-other.webm.111"+localfs.StagingSuffix)
	fresh := filepath.Join(dir, ".abc-other.webm.222"+localfs.StagingSuffix)
	require.NoError(t, os.WriteFile(stale, []byte("half"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("half"), 0o644))

	now := time.Now()
	old := now.Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed, err := s.SweepStaging(now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	assert.Equal(t, "keep", strings.TrimSpace(string(readAll(t, s, "invite-1/abc-clip.webm"))))
}
