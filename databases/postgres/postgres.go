// Package postgres stores invites and videos in PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linesmerrill/video-screening-api/databases"
	"github.com/linesmerrill/video-screening-api/models"
)

// inviteRow is the invites table. The unique index on token is the
// authority for token uniqueness.
type inviteRow struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Email     string    `gorm:"size:255;not null"`
	Token     string    `gorm:"uniqueIndex;size:64;not null"`
	Status    string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

func (inviteRow) TableName() string { return "invites" }

type videoRow struct {
	ID           string    `gorm:"primaryKey;size:64"`
	InviteID     string    `gorm:"index:idx_videos_invite_created,priority:1;size:64;not null"`
	StorageKey   string    `gorm:"uniqueIndex;size:1024;not null"`
	OriginalName string    `gorm:"size:512;not null"`
	CreatedAt    time.Time `gorm:"index:idx_videos_invite_created,priority:2;not null"`
	Tag          *string   `gorm:"size:16"`
}

func (videoRow) TableName() string { return "videos" }

// Open connects to PostgreSQL and migrates the schema
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the invites and videos tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&inviteRow{}, &videoRow{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// InviteDatabase is a databases.InviteDatabase backed by gorm
type InviteDatabase struct {
	DB *gorm.DB
}

// NewInviteDatabase wraps an open gorm connection
func NewInviteDatabase(db *gorm.DB) *InviteDatabase {
	return &InviteDatabase{DB: db}
}

func (r *InviteDatabase) Create(ctx context.Context, invite models.Invite) (models.Invite, error) {
	row := inviteToRow(invite)
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Invite{}, databases.ErrDuplicateToken
		}
		return models.Invite{}, fmt.Errorf("insert invite: %w", err)
	}
	return invite, nil
}

func (r *InviteDatabase) FindByToken(ctx context.Context, token string) (models.Invite, error) {
	var row inviteRow
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Invite{}, databases.ErrNotFound
		}
		return models.Invite{}, fmt.Errorf("find invite by token: %w", err)
	}
	return rowToInvite(row), nil
}

func (r *InviteDatabase) List(ctx context.Context) ([]models.Invite, error) {
	var rows []inviteRow
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	invites := make([]models.Invite, 0, len(rows))
	for _, row := range rows {
		invites = append(invites, rowToInvite(row))
	}
	return invites, nil
}

func (r *InviteDatabase) Update(ctx context.Context, invite models.Invite) error {
	row := inviteToRow(invite)
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return databases.ErrDuplicateToken
		}
		return fmt.Errorf("upsert invite: %w", err)
	}
	return nil
}

// VideoDatabase is a databases.VideoDatabase backed by gorm
type VideoDatabase struct {
	DB *gorm.DB
}

// NewVideoDatabase wraps an open gorm connection
func NewVideoDatabase(db *gorm.DB) *VideoDatabase {
	return &VideoDatabase{DB: db}
}

func (r *VideoDatabase) Create(ctx context.Context, video models.Video) (models.Video, error) {
	row := videoToRow(video)
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Video{}, fmt.Errorf("insert video: %w", err)
	}
	return video, nil
}

func (r *VideoDatabase) FindByID(ctx context.Context, id string) (models.Video, error) {
	var row videoRow
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Video{}, databases.ErrNotFound
		}
		return models.Video{}, fmt.Errorf("find video: %w", err)
	}
	return rowToVideo(row), nil
}

func (r *VideoDatabase) ListByInvite(ctx context.Context, inviteID string) ([]models.Video, error) {
	var rows []videoRow
	err := r.DB.WithContext(ctx).
		Where("invite_id = ?", inviteID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	videos := make([]models.Video, 0, len(rows))
	for _, row := range rows {
		videos = append(videos, rowToVideo(row))
	}
	return videos, nil
}

func (r *VideoDatabase) Update(ctx context.Context, video models.Video) error {
	row := videoToRow(video)
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert video: %w", err)
	}
	return nil
}

func inviteToRow(i models.Invite) inviteRow {
	return inviteRow{
		ID:        i.ID,
		Email:     i.Email,
		Token:     i.Token,
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt.UTC(),
		ExpiresAt: i.ExpiresAt.UTC(),
	}
}

func rowToInvite(r inviteRow) models.Invite {
	return models.Invite{
		ID:        r.ID,
		Email:     r.Email,
		Token:     r.Token,
		Status:    models.InviteStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
		ExpiresAt: r.ExpiresAt.UTC(),
	}
}

func videoToRow(v models.Video) videoRow {
	row := videoRow{
		ID:           v.ID,
		InviteID:     v.InviteID,
		StorageKey:   v.StorageKey,
		OriginalName: v.OriginalName,
		CreatedAt:    v.CreatedAt.UTC(),
	}
	if v.Tag != "" {
		tag := string(v.Tag)
		row.Tag = &tag
	}
	return row
}

func rowToVideo(r videoRow) models.Video {
	v := models.Video{
		ID:           r.ID,
		InviteID:     r.InviteID,
		StorageKey:   r.StorageKey,
		OriginalName: r.OriginalName,
		CreatedAt:    r.CreatedAt.UTC(),
	}
	if r.Tag != nil {
		v.Tag = models.Tag(*r.Tag)
	}
	return v
}
