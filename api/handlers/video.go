package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/video-screening-api/config"
	"github.com/linesmerrill/video-screening-api/models"
	"github.com/linesmerrill/video-screening-api/services"
	"github.com/linesmerrill/video-screening-api/storage"
)

// uploadFormField is the multipart field carrying the video
const uploadFormField = "file"

// multipartOverhead is the room left for multipart headers and boundaries on top of the payload limit
const multipartOverhead = 1 << 20

// Video exported for testing purposes
type Video struct {
	Service        *services.VideoService
	MaxUploadBytes int64
}

// UploadHandler accepts a multipart upload for the invite identified by the token
func (v Video) UploadHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	r.Body = http.MaxBytesReader(w, r.Body, v.MaxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			serviceError(w, services.ErrVideoTooLarge)
			return
		}
		config.ErrorStatus("failed to read uploaded file", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	// read one byte past the limit so oversize files still reach the size check
	data, err := io.ReadAll(io.LimitReader(file, v.MaxUploadBytes+1))
	if err != nil {
		config.ErrorStatus("failed to read uploaded file", http.StatusBadRequest, w, err)
		return
	}

	video, err := v.Service.UploadForToken(r.Context(), token, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.UploadResponse{VideoID: video.ID})
}

// VideoByIDHandler returns a single video
func (v Video) VideoByIDHandler(w http.ResponseWriter, r *http.Request) {
	video, err := v.Service.GetVideo(r.Context(), mux.Vars(r)["video_id"])
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewVideoResponse(video))
}

// VideosByInviteIDHandler lists the videos uploaded for an invite
func (v Video) VideosByInviteIDHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := v.Service.ListVideosByInvite(r.Context(), mux.Vars(r)["invite_id"])
	if err != nil {
		serviceError(w, err)
		return
	}
	resp := make([]models.VideoResponse, 0, len(videos))
	for _, video := range videos {
		resp = append(resp, models.NewVideoResponse(video))
	}
	writeJSON(w, http.StatusOK, resp)
}

// TagHandler sets the review tag of a video
func (v Video) TagHandler(w http.ResponseWriter, r *http.Request) {
	var req models.TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if !req.Tag.Valid() {
		config.ErrorStatus("invalid tag", http.StatusBadRequest, w, fmt.Errorf("tag must be one of %v", models.Tags))
		return
	}

	video, err := v.Service.TagVideo(r.Context(), mux.Vars(r)["video_id"], req.Tag)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewVideoResponse(video))
}

// StreamHandler writes the stored video bytes. Seekable objects support range requests.
func (v Video) StreamHandler(w http.ResponseWriter, r *http.Request) {
	rc, video, err := v.Service.OpenVideo(r.Context(), mux.Vars(r)["video_id"])
	if err != nil {
		serviceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", storage.ContentTypeForKey(video.StorageKey))
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, path.Base(video.StorageKey), video.CreatedAt, rs)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		zap.S().Warnw("video stream interrupted", "videoId", video.ID, "error", err)
	}
}
