package models

import "time"

// Tag is the review classification an organizer assigns to a video
type Tag string

const (
	TagAdvance Tag = "advance"
	TagPass    Tag = "pass"
	TagReview  Tag = "review"
	TagPending Tag = "pending"
)

// Tags lists every assignable tag
var Tags = []Tag{TagAdvance, TagPass, TagReview, TagPending}

// Valid reports whether t is one of the assignable tags
func (t Tag) Valid() bool {
	for _, v := range Tags {
		if t == v {
			return true
		}
	}
	return false
}

// Video holds the structure for the videos collection in mongo.
// An empty Tag means the video has not been reviewed yet.
type Video struct {
	ID           string    `json:"id" bson:"_id"`
	InviteID     string    `json:"inviteId" bson:"inviteId"`
	StorageKey   string    `json:"storageKey" bson:"storageKey"`
	OriginalName string    `json:"originalName" bson:"originalName"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	Tag          Tag       `json:"tag,omitempty" bson:"tag,omitempty"`
}
