package models

import "time"

// InviteStatus is the lifecycle state of an invite
type InviteStatus string

const (
	// InviteStatusOpen is the state of a freshly created invite
	InviteStatusOpen InviteStatus = "OPEN"
	// InviteStatusUploaded is set once a video was uploaded against the invite token
	InviteStatusUploaded InviteStatus = "UPLOADED"
)

// Invite holds the structure for the invites collection in mongo
type Invite struct {
	ID        string       `json:"id" bson:"_id"`
	Email     string       `json:"email" bson:"email"`
	Token     string       `json:"token" bson:"token"`
	Status    InviteStatus `json:"status" bson:"status"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time    `json:"expiresAt" bson:"expiresAt"`
}

// Expired reports whether the invite can no longer be used at the given time.
// An invite expires at the exact instant of ExpiresAt.
func (i Invite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
