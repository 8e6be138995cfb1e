// Package localfs stores artifacts as files under a root directory.
//
// Objects are written to a staging file next to their final path and renamed
// into place once fully flushed, so a reader opening the final path only ever
// sees complete content.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/video-screening-api/storage"
)

// StagingSuffix marks files that are still being written
const StagingSuffix = ".part"

// Store is a filesystem storage.ArtifactStore
type Store struct {
	root string
}

// New creates the root directory if needed and returns a store rooted there
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root is the directory objects are stored under
func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(key string) (string, error) {
	cleaned, err := storage.CleanKey(key)
	if err != nil {
		return "", err
	}
	if isStaging(pathBase(cleaned)) {
		return "", storage.ErrInvalidKey
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func isStaging(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, StagingSuffix)
}

func pathBase(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// PutObject writes data under key. contentType is not persisted; it is
// inferred from the key when the object is read back.
func (s *Store) PutObject(ctx context.Context, key string, data []byte, _ string) error {
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*"+StagingSuffix)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write staging file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod staging file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("commit object: %w", err)
	}
	committed = true

	zap.S().Debugw("stored object", "key", key, "bytes", len(data))
	return nil
}

// GetStream opens the committed object stored under key
func (s *Store) GetStream(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

// SweepStaging removes staging files last modified before now-maxAge. They are
// left behind only when the process dies mid write.
func (s *Store) SweepStaging(now time.Time, maxAge time.Duration) (int, error) {
	cutoff := now.Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isStaging(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("sweep staging files: %w", err)
	}
	return removed, nil
}
