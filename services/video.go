package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/video-screening-api/databases"
	"github.com/linesmerrill/video-screening-api/models"
	"github.com/linesmerrill/video-screening-api/storage"
)

var (
	// DefaultAllowedMimes are accepted regardless of the filename
	DefaultAllowedMimes = []string{"video/webm", "video/mp4", "video/quicktime"}
	// DefaultAllowedExtensions are accepted regardless of the declared type
	DefaultAllowedExtensions = []string{".webm", ".mp4", ".mov", ".m4v"}
)

// UploadPolicy decides which payloads are accepted
type UploadPolicy struct {
	MaxBytes          int64
	AllowedMimes      []string
	AllowedExtensions []string
}

// DefaultUploadPolicy accepts the default video types up to maxBytes
func DefaultUploadPolicy(maxBytes int64) UploadPolicy {
	return UploadPolicy{
		MaxBytes:          maxBytes,
		AllowedMimes:      DefaultAllowedMimes,
		AllowedExtensions: DefaultAllowedExtensions,
	}
}

// Accepts reports whether the declared type or the filename looks like a video.
// Any video/* type passes even when it is not listed.
func (p UploadPolicy) Accepts(filename, contentType string) bool {
	base := baseMediaType(contentType)
	if contains(p.AllowedMimes, base) || strings.HasPrefix(base, "video/") {
		return true
	}
	ext := strings.ToLower(path.Ext(normalizeName(filename)))
	return ext != "" && contains(p.AllowedExtensions, ext)
}

// checkSize rejects empty payloads and payloads above MaxBytes
func (p UploadPolicy) checkSize(n int) error {
	if n == 0 {
		return ErrEmptyVideo
	}
	if int64(n) > p.MaxBytes {
		return ErrVideoTooLarge
	}
	return nil
}

func baseMediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// normalizeName drops any client supplied directories from filename
func normalizeName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	switch name {
	case ".", "..", "/":
		return ""
	}
	return name
}

// storageKey places the object under its invite with a random component so
// repeated uploads of the same filename never collide
func storageKey(inviteID, filename string) string {
	name := normalizeName(filename)
	if name == "" {
		name = "video"
	}
	return inviteID + "/" + strings.ReplaceAll(uuid.NewString(), "-", "") + "-" + name
}

// VideoService runs the upload workflow and the tagging operation
type VideoService struct {
	Invites databases.InviteDatabase
	Videos  databases.VideoDatabase
	Store   storage.ArtifactStore
	Policy  UploadPolicy
	Now     func() time.Time
}

// NewVideoService returns a VideoService using the wall clock
func NewVideoService(invites databases.InviteDatabase, videos databases.VideoDatabase, store storage.ArtifactStore, policy UploadPolicy) *VideoService {
	return &VideoService{
		Invites: invites,
		Videos:  videos,
		Store:   store,
		Policy:  policy,
		Now:     time.Now,
	}
}

func (s *VideoService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// UploadForToken validates token and payload, stores the bytes and records
// the video. Every rejection happens before anything is written. Once the
// artifact is stored the invite is marked UPLOADED; if recording fails after
// that point the artifact is left in place.
func (s *VideoService) UploadForToken(ctx context.Context, token, filename, contentType string, data []byte) (models.Video, error) {
	invite, err := s.Invites.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			return models.Video{}, ErrInviteNotFound
		}
		return models.Video{}, fmt.Errorf("find invite: %w", err)
	}

	now := s.now()
	if invite.Expired(now) {
		return models.Video{}, ErrInviteExpired
	}
	if !s.Policy.Accepts(filename, contentType) {
		return models.Video{}, ErrInvalidMime
	}
	if err := s.Policy.checkSize(len(data)); err != nil {
		return models.Video{}, err
	}

	video := models.Video{
		ID:           uuid.NewString(),
		InviteID:     invite.ID,
		StorageKey:   storageKey(invite.ID, filename),
		OriginalName: filename,
		CreatedAt:    now,
	}

	if err := s.Store.PutObject(ctx, video.StorageKey, data, baseMediaType(contentType)); err != nil {
		return models.Video{}, fmt.Errorf("store video: %w", err)
	}

	invite.Status = models.InviteStatusUploaded
	if _, err := s.Videos.Create(ctx, video); err != nil {
		zap.S().Errorw("video stored but not recorded", "storageKey", video.StorageKey, "error", err)
		return models.Video{}, fmt.Errorf("record video: %w", err)
	}
	if err := s.Invites.Update(ctx, invite); err != nil {
		zap.S().Errorw("video recorded but invite not updated", "inviteId", invite.ID, "videoId", video.ID, "error", err)
		return models.Video{}, fmt.Errorf("update invite: %w", err)
	}

	zap.S().Infow("video uploaded",
		"inviteId", invite.ID,
		"videoId", video.ID,
		"bytes", len(data),
	)
	return video, nil
}

// TagVideo sets the review tag of a video. The caller validates tag.
func (s *VideoService) TagVideo(ctx context.Context, videoID string, tag models.Tag) (models.Video, error) {
	video, err := s.GetVideo(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	video.Tag = tag
	if err := s.Videos.Update(ctx, video); err != nil {
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}
	return video, nil
}

// GetVideo returns a single video
func (s *VideoService) GetVideo(ctx context.Context, videoID string) (models.Video, error) {
	video, err := s.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			return models.Video{}, ErrVideoNotFound
		}
		return models.Video{}, fmt.Errorf("find video: %w", err)
	}
	return video, nil
}

// ListVideosByInvite returns the videos uploaded against an invite, oldest first
func (s *VideoService) ListVideosByInvite(ctx context.Context, inviteID string) ([]models.Video, error) {
	videos, err := s.Videos.ListByInvite(ctx, inviteID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

// OpenVideo returns a reader over the stored bytes of a video. The caller closes it.
func (s *VideoService) OpenVideo(ctx context.Context, videoID string) (io.ReadCloser, models.Video, error) {
	video, err := s.GetVideo(ctx, videoID)
	if err != nil {
		return nil, models.Video{}, err
	}
	rc, err := s.Store.GetStream(ctx, video.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			zap.S().Warnw("video record without artifact", "videoId", video.ID, "storageKey", video.StorageKey)
			return nil, models.Video{}, ErrVideoNotFound
		}
		return nil, models.Video{}, fmt.Errorf("open video: %w", err)
	}
	return rc, video, nil
}
