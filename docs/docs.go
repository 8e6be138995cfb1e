// Package docs Video Screening API.
//
// Documentation of the Video Screening API. Organizers issue invites, candidates
// upload a single short video through the tokenized link, organizers review and tag it.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//     - multipart/form-data
//
//     Produces:
//     - application/json
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/video-screening-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/invites invites createInvite
// Issues a new invite for an email address.
// responses:
//   201: inviteResponse
//   400: errorResponse

// swagger:parameters createInvite
type createInviteParamsWrapper struct {
	// in:body
	Body models.CreateInviteRequest
}

// A single invite, including the token candidates upload with
// swagger:response inviteResponse
type inviteResponseWrapper struct {
	// in:body
	Body models.InviteResponse
}

// swagger:route GET /api/v1/invites invites listInvites
// Lists every invite, oldest first.
// responses:
//   200: invitesResponse

// swagger:response invitesResponse
type invitesResponseWrapper struct {
	// in:body
	Body []models.InviteResponse
}

// swagger:route GET /api/v1/invites/{token} invites validateToken
// Checks that a token belongs to an invite. Expiry is only enforced on upload.
// responses:
//   200: validateTokenResponse
//   404: errorResponse

// swagger:parameters validateToken uploadVideo
type tokenParamWrapper struct {
	// in:path
	Token string `json:"token"`
}

// swagger:response validateTokenResponse
type validateTokenResponseWrapper struct {
	// in:body
	Body models.ValidateTokenResponse
}

// swagger:route POST /api/v1/upload/{token} videos uploadVideo
// Uploads the candidate video as the multipart field "file".
// responses:
//   201: uploadResponse
//   400: errorResponse
//   404: errorResponse
//   410: errorResponse
//   413: errorResponse
//   415: errorResponse

// swagger:response uploadResponse
type uploadResponseWrapper struct {
	// in:body
	Body models.UploadResponse
}

// swagger:route GET /api/v1/invites/{invite_id}/videos videos videosByInviteID
// Lists the videos uploaded for an invite.
// responses:
//   200: videosResponse

// swagger:parameters videosByInviteID
type inviteIDParamWrapper struct {
	// in:path
	InviteID string `json:"invite_id"`
}

// swagger:response videosResponse
type videosResponseWrapper struct {
	// in:body
	Body []models.VideoResponse
}

// swagger:route GET /api/v1/videos/{video_id} videos videoByID
// Gets a single video by ID.
// responses:
//   200: videoResponse
//   404: errorResponse

// swagger:route GET /api/v1/videos/{video_id}/stream videos streamVideo
// Streams the stored video bytes. Range requests are honored by the filesystem store.
// produces:
// - video/webm
// - video/mp4
// - video/quicktime
// responses:
//   200: description: video bytes
//   404: errorResponse

// swagger:route POST /api/v1/videos/{video_id}/tag videos tagVideo
// Sets the review tag, one of advance, pass, review or pending.
// responses:
//   200: videoResponse
//   400: errorResponse
//   404: errorResponse

// swagger:parameters videoByID streamVideo tagVideo
type videoIDParamWrapper struct {
	// in:path
	VideoID string `json:"video_id"`
}

// swagger:parameters tagVideo
type tagParamsWrapper struct {
	// in:body
	Body models.TagRequest
}

// A single video. tag is null until the video is reviewed.
// swagger:response videoResponse
type videoResponseWrapper struct {
	// in:body
	Body models.VideoResponse
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
