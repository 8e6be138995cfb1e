package databases

// go generate: mockery --name VideoDatabase

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/video-screening-api/models"
)

const videoName = "videos"

// VideoDatabase contains the methods to use with the video database
type VideoDatabase interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	FindByID(ctx context.Context, id string) (models.Video, error)
	// ListByInvite returns the videos referencing the invite ordered by creation time
	ListByInvite(ctx context.Context, inviteID string) ([]models.Video, error)
	// Update upserts the video by id
	Update(ctx context.Context, video models.Video) error
}

type videoDatabase struct {
	db DatabaseHelper
}

// NewVideoDatabase initializes a new instance of video database with the provided db connection
func NewVideoDatabase(db DatabaseHelper) VideoDatabase {
	return &videoDatabase{
		db: db,
	}
}

func (v *videoDatabase) Create(ctx context.Context, video models.Video) (models.Video, error) {
	if _, err := v.db.Collection(videoName).InsertOne(ctx, video); err != nil {
		return models.Video{}, fmt.Errorf("insert video: %w", err)
	}
	return video, nil
}

func (v *videoDatabase) FindByID(ctx context.Context, id string) (models.Video, error) {
	video := models.Video{}
	err := v.db.Collection(videoName).FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("find video: %w", err)
	}
	return video, nil
}

func (v *videoDatabase) ListByInvite(ctx context.Context, inviteID string) ([]models.Video, error) {
	videos := []models.Video{}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := v.db.Collection(videoName).Find(ctx, bson.M{"inviteId": inviteID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find videos: %w", err)
	}
	if err = cur.Decode(&videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return videos, nil
}

func (v *videoDatabase) Update(ctx context.Context, video models.Video) error {
	opts := options.Replace().SetUpsert(true)
	if err := v.db.Collection(videoName).ReplaceOne(ctx, bson.M{"_id": video.ID}, video, opts); err != nil {
		return fmt.Errorf("replace video: %w", err)
	}
	return nil
}
