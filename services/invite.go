package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/video-screening-api/databases"
	"github.com/linesmerrill/video-screening-api/models"
)

// tokenAttempts bounds how often CreateInvite regenerates a token the
// repository rejected as a duplicate.
const tokenAttempts = 3

// InviteService creates invites and owns the token/expiry contract
type InviteService struct {
	DB  databases.InviteDatabase
	TTL time.Duration
	Now func() time.Time
}

// NewInviteService returns an InviteService using the wall clock
func NewInviteService(db databases.InviteDatabase, ttl time.Duration) *InviteService {
	return &InviteService{DB: db, TTL: ttl, Now: time.Now}
}

func (s *InviteService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// newToken returns 128 bits of randomness as 32 hex characters
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateInvite issues an OPEN invite for email valid for the configured TTL
func (s *InviteService) CreateInvite(ctx context.Context, email string) (models.Invite, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.Invite{}, ErrEmailRequired
	}

	now := s.now()
	invite := models.Invite{
		ID:        uuid.NewString(),
		Email:     email,
		Status:    models.InviteStatusOpen,
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	if !invite.ExpiresAt.After(invite.CreatedAt) {
		return models.Invite{}, fmt.Errorf("invite ttl must be positive, got %s", s.TTL)
	}

	var err error
	for attempt := 1; attempt <= tokenAttempts; attempt++ {
		invite.Token = newToken()
		var created models.Invite
		created, err = s.DB.Create(ctx, invite)
		if err == nil {
			zap.S().Infow("invite created", "inviteId", created.ID, "expiresAt", created.ExpiresAt)
			return created, nil
		}
		if !errors.Is(err, databases.ErrDuplicateToken) {
			break
		}
		zap.S().Warnw("invite token collision, regenerating", "attempt", attempt)
	}
	return models.Invite{}, fmt.Errorf("create invite: %w", err)
}

// ListInvites returns every invite in creation order
func (s *InviteService) ListInvites(ctx context.Context) ([]models.Invite, error) {
	invites, err := s.DB.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// ValidateToken reports which invite a token belongs to. It checks existence
// only; expiry is enforced when uploading.
func (s *InviteService) ValidateToken(ctx context.Context, token string) (models.Invite, error) {
	invite, err := s.DB.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			return models.Invite{}, ErrInviteNotFound
		}
		return models.Invite{}, fmt.Errorf("find invite: %w", err)
	}
	return invite, nil
}
