package models

import "time"

// HealthCheckResponse is the body of the health endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// CreateInviteRequest is the body accepted when creating an invite
type CreateInviteRequest struct {
	Email string `json:"email"`
}

// InviteResponse is the public shape of an invite
type InviteResponse struct {
	InviteID  string       `json:"inviteId"`
	Email     string       `json:"email"`
	Token     string       `json:"token"`
	Status    InviteStatus `json:"status"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// NewInviteResponse maps an invite to its public shape
func NewInviteResponse(i Invite) InviteResponse {
	return InviteResponse{
		InviteID:  i.ID,
		Email:     i.Email,
		Token:     i.Token,
		Status:    i.Status,
		ExpiresAt: i.ExpiresAt,
	}
}

// ValidateTokenResponse is returned when a token resolves to an invite
type ValidateTokenResponse struct {
	OK       bool   `json:"ok"`
	InviteID string `json:"inviteId"`
}

// UploadResponse is returned after a successful upload
type UploadResponse struct {
	VideoID string `json:"videoId"`
}

// TagRequest is the body accepted when tagging a video
type TagRequest struct {
	Tag Tag `json:"tag"`
}

// VideoResponse is the public shape of a video. Tag is null until the video is reviewed.
type VideoResponse struct {
	ID           string `json:"id"`
	InviteID     string `json:"inviteId"`
	StorageKey   string `json:"storageKey"`
	OriginalName string `json:"originalName"`
	Tag          *Tag   `json:"tag"`
}

// NewVideoResponse maps a video to its public shape
func NewVideoResponse(v Video) VideoResponse {
	resp := VideoResponse{
		ID:           v.ID,
		InviteID:     v.InviteID,
		StorageKey:   v.StorageKey,
		OriginalName: v.OriginalName,
	}
	if v.Tag != "" {
		tag := v.Tag
		resp.Tag = &tag
	}
	return resp
}
