package databases

// go generate: mockery --name InviteDatabase

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/video-screening-api/models"
)

const inviteName = "invites"

// InviteDatabase contains the methods to use with the invite database.
// Implementations must reject a second invite carrying an existing token
// with ErrDuplicateToken.
type InviteDatabase interface {
	Create(ctx context.Context, invite models.Invite) (models.Invite, error)
	FindByToken(ctx context.Context, token string) (models.Invite, error)
	// List returns every invite ordered by creation time
	List(ctx context.Context) ([]models.Invite, error)
	// Update upserts the invite by id
	Update(ctx context.Context, invite models.Invite) error
}

type inviteDatabase struct {
	db DatabaseHelper
}

// NewInviteDatabase initializes a new instance of invite database with the provided db connection
func NewInviteDatabase(db DatabaseHelper) InviteDatabase {
	return &inviteDatabase{
		db: db,
	}
}

func (i *inviteDatabase) Create(ctx context.Context, invite models.Invite) (models.Invite, error) {
	_, err := i.db.Collection(inviteName).InsertOne(ctx, invite)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Invite{}, ErrDuplicateToken
		}
		return models.Invite{}, fmt.Errorf("insert invite: %w", err)
	}
	return invite, nil
}

func (i *inviteDatabase) FindByToken(ctx context.Context, token string) (models.Invite, error) {
	invite := models.Invite{}
	err := i.db.Collection(inviteName).FindOne(ctx, bson.M{"token": token}).Decode(&invite)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Invite{}, ErrNotFound
		}
		return models.Invite{}, fmt.Errorf("find invite by token: %w", err)
	}
	return invite, nil
}

func (i *inviteDatabase) List(ctx context.Context) ([]models.Invite, error) {
	invites := []models.Invite{}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := i.db.Collection(inviteName).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find invites: %w", err)
	}
	if err = cur.Decode(&invites); err != nil {
		return nil, fmt.Errorf("decode invites: %w", err)
	}
	return invites, nil
}

func (i *inviteDatabase) Update(ctx context.Context, invite models.Invite) error {
	opts := options.Replace().SetUpsert(true)
	if err := i.db.Collection(inviteName).ReplaceOne(ctx, bson.M{"_id": invite.ID}, invite, opts); err != nil {
		return fmt.Errorf("replace invite: %w", err)
	}
	return nil
}
