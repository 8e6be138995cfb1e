// Package memory keeps invites and videos in process memory. It is the default
// backend for local development and the fixture for service tests; state is
// lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/linesmerrill/video-screening-api/databases"
	"github.com/linesmerrill/video-screening-api/models"
)

// InviteDatabase is an in-memory databases.InviteDatabase
type InviteDatabase struct {
	mu      sync.RWMutex
	byID    map[string]models.Invite
	byToken map[string]string
}

// NewInviteDatabase returns an empty invite store
func NewInviteDatabase() *InviteDatabase {
	return &InviteDatabase{
		byID:    make(map[string]models.Invite),
		byToken: make(map[string]string),
	}
}

// Create stores a new invite, rejecting tokens that are already taken
func (d *InviteDatabase) Create(_ context.Context, invite models.Invite) (models.Invite, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byToken[invite.Token]; ok {
		return models.Invite{}, databases.ErrDuplicateToken
	}
	d.byID[invite.ID] = invite
	d.byToken[invite.Token] = invite.ID
	return invite, nil
}

// FindByToken returns the invite holding token
func (d *InviteDatabase) FindByToken(_ context.Context, token string) (models.Invite, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byToken[token]
	if !ok {
		return models.Invite{}, databases.ErrNotFound
	}
	return d.byID[id], nil
}

// List returns every invite ordered by creation time
func (d *InviteDatabase) List(_ context.Context) ([]models.Invite, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	invites := make([]models.Invite, 0, len(d.byID))
	for _, inv := range d.byID {
		invites = append(invites, inv)
	}
	sort.SliceStable(invites, func(i, j int) bool {
		if invites[i].CreatedAt.Equal(invites[j].CreatedAt) {
			return invites[i].ID < invites[j].ID
		}
		return invites[i].CreatedAt.Before(invites[j].CreatedAt)
	})
	return invites, nil
}

// Update upserts the invite by id
func (d *InviteDatabase) Update(_ context.Context, invite models.Invite) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.byID[invite.ID]; ok && prev.Token != invite.Token {
		delete(d.byToken, prev.Token)
	}
	if owner, ok := d.byToken[invite.Token]; ok && owner != invite.ID {
		return databases.ErrDuplicateToken
	}
	d.byID[invite.ID] = invite
	d.byToken[invite.Token] = invite.ID
	return nil
}

// VideoDatabase is an in-memory databases.VideoDatabase
type VideoDatabase struct {
	mu       sync.RWMutex
	byID     map[string]models.Video
	byInvite map[string][]string
}

// NewVideoDatabase returns an empty video store
func NewVideoDatabase() *VideoDatabase {
	return &VideoDatabase{
		byID:     make(map[string]models.Video),
		byInvite: make(map[string][]string),
	}
}

// Create stores a new video
func (d *VideoDatabase) Create(_ context.Context, video models.Video) (models.Video, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.put(video)
	return video, nil
}

// FindByID returns the video with the given id
func (d *VideoDatabase) FindByID(_ context.Context, id string) (models.Video, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.byID[id]
	if !ok {
		return models.Video{}, databases.ErrNotFound
	}
	return v, nil
}

// ListByInvite returns the videos of an invite in insertion order
func (d *VideoDatabase) ListByInvite(_ context.Context, inviteID string) ([]models.Video, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := d.byInvite[inviteID]
	videos := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		videos = append(videos, d.byID[id])
	}
	return videos, nil
}

// Update upserts the video by id
func (d *VideoDatabase) Update(_ context.Context, video models.Video) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.put(video)
	return nil
}

// put must be called with mu held
func (d *VideoDatabase) put(video models.Video) {
	prev, ok := d.byID[video.ID]
	switch {
	case !ok:
		d.byInvite[video.InviteID] = append(d.byInvite[video.InviteID], video.ID)
	case prev.InviteID != video.InviteID:
		d.byInvite[prev.InviteID] = without(d.byInvite[prev.InviteID], video.ID)
		d.byInvite[video.InviteID] = append(d.byInvite[video.InviteID], video.ID)
	}
	d.byID[video.ID] = video
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
