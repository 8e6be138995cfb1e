package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/video-screening-api/api/handlers"
	"github.com/linesmerrill/video-screening-api/databases/memory"
	"github.com/linesmerrill/video-screening-api/models"
	"github.com/linesmerrill/video-screening-api/services"
	"github.com/linesmerrill/video-screening-api/storage/localfs"
)

const testMaxBytes = 64

type videoFixture struct {
	invites *services.InviteService
	handler handlers.Video
}

func newVideoFixture(t *testing.T) videoFixture {
	t.Helper()
	store, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	inviteDB := memory.NewInviteDatabase()
	videoDB := memory.NewVideoDatabase()
	return videoFixture{
		invites: services.NewInviteService(inviteDB, time.Hour),
		handler: handlers.Video{
			Service:        services.NewVideoService(inviteDB, videoDB, store, services.DefaultUploadPolicy(testMaxBytes)),
			MaxUploadBytes: testMaxBytes,
		},
	}
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func (f videoFixture) upload(t *testing.T, token, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, "file", filename, contentType, data)
	req, err := http.NewRequest("POST", "/api/v1/upload/"+token, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)
	req = mux.SetURLVars(req, map[string]string{"token": token})

	rr := httptest.NewRecorder()
	http.HandlerFunc(f.handler.UploadHandler).ServeHTTP(rr, req)
	return rr
}

func (f videoFixture) uploaded(t *testing.T) (models.Invite, string) {
	t.Helper()
	inv, err := f.invites.CreateInvite(context.Background(), "a@b.com")
	require.NoError(t, err)

	rr := f.upload(t, inv.Token, "clip.webm", "video/webm", []byte("webm-bytes"))
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return inv, resp.VideoID
}

func TestVideo_UploadHandler(t *testing.T) {
	f := newVideoFixture(t)
	inv, videoID := f.uploaded(t)

	assert.NotEmpty(t, videoID)
	got, err := f.invites.ValidateToken(context.Background(), inv.Token)
	require.NoError(t, err)
	assert.Equal(t, models.InviteStatusUploaded, got.Status)
}

func TestVideo_UploadHandlerUnknownToken(t *testing.T) {
	f := newVideoFixture(t)

	rr := f.upload(t, "nope", "clip.webm", "video/webm", []byte("x"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestVideo_UploadHandlerExpired(t *testing.T) {
	f := newVideoFixture(t)
	f.invites.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	inv, err := f.invites.CreateInvite(context.Background(), "a@b.com")
	require.NoError(t, err)

	rr := f.upload(t, inv.Token, "clip.webm", "video/webm", []byte("x"))
	assert.Equal(t, http.StatusGone, rr.Code)
}

func TestVideo_UploadHandlerRejectedPayloads(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		want        int
		message     string
	}{
		{"not a video", "notes.txt", "text/plain", []byte("hello"), http.StatusUnsupportedMediaType, "invalid mime type"},
		{"empty", "clip.webm", "video/webm", nil, http.StatusRequestEntityTooLarge, "file is empty"},
		{"over limit", "clip.webm", "video/webm", bytes.Repeat([]byte("a"), testMaxBytes+1), http.StatusRequestEntityTooLarge, "file too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVideoFixture(t)
			inv, err := f.invites.CreateInvite(context.Background(), "a@b.com")
			require.NoError(t, err)

			rr := f.upload(t, inv.Token, tt.filename, tt.contentType, tt.data)
			assert.Equal(t, tt.want, rr.Code)

			var resp models.ErrorMessageResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Response.Message)

			got, err := f.invites.ValidateToken(context.Background(), inv.Token)
			require.NoError(t, err)
			assert.Equal(t, models.InviteStatusOpen, got.Status)
		})
	}
}

func TestVideo_UploadHandlerExtensionFallback(t *testing.T) {
	f := newVideoFixture(t)
	inv, err := f.invites.CreateInvite(context.Background(), "a@b.com")
	require.NoError(t, err)

	rr := f.upload(t, inv.Token, "clip.MOV", "application/octet-stream", []byte("mov"))
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestVideo_UploadHandlerBodyTooLarge(t *testing.T) {
	f := newVideoFixture(t)
	inv, err := f.invites.CreateInvite(context.Background(), "a@b.com")
	require.NoError(t, err)

	rr := f.upload(t, inv.Token, "clip.webm", "video/webm", bytes.Repeat([]byte("a"), 2<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestVideo_UploadHandlerMissingFile(t *testing.T) {
	f := newVideoFixture(t)
	inv, err := f.invites.CreateInvite(context.Background(), "a@b.com")
	require.NoError(t, err)

	body, ct := multipartBody(t, "other", "clip.webm", "video/webm", []byte("x"))
	req, err := http.NewRequest("POST", "/api/v1/upload/"+inv.Token, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)
	req = mux.SetURLVars(req, map[string]string{"token": inv.Token})

	rr := httptest.NewRecorder()
	http.HandlerFunc(f.handler.UploadHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVideo_VideoByIDHandler(t *testing.T) {
	f := newVideoFixture(t)
	inv, videoID := f.uploaded(t)

	req, err := http.NewRequest("GET", "/api/v1/videos/"+videoID, nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"video_id": videoID})
	rr := httptest.NewRecorder()
	http.HandlerFunc(f.handler.VideoByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp models.VideoResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, videoID, resp.ID)
	assert.Equal(t, inv.ID, resp.InviteID)
	assert.Equal(t, "clip.webm", resp.OriginalName)
	assert.True(t, strings.HasPrefix(resp.StorageKey, inv.ID+"/"))
	assert.Nil(t, resp.Tag)
	assert.Contains(t, rr.Body.String(), `"tag":null`)
}

func TestVideo_VideoByIDHandlerNotFound(t *testing.T) {
	f := newVideoFixture(t)

	req, err := http.NewRequest("GET", "/api/v1/videos/missing", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"video_id": "missing"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(f.handler.VideoByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestVideo_VideosByInviteIDHandler(t *testing.T) {
	f := newVideoFixture(t)
	inv, videoID := f.uploaded(t)

	req, err := http.NewRequest("GET", "/api/v1/invites/"+inv.ID+"/videos", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"invite_id": inv.ID})
	rr := httptest.NewRecorder()
	http.HandlerFunc(f.handler.VideosByInviteIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []models.VideoResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, videoID, resp[0].ID)
}

func tagRequest(t *testing.T, f videoFixture, videoID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("POST", "/api/v1/videos/"+videoID+"/tag", strings.NewReader(body))
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"video_id": videoID})
	rr := httptest.NewRecorder()
	http.HandlerFunc(f.handler.TagHandler).ServeHTTP(rr, req)
	return rr
}

func TestVideo_TagHandler(t *testing.T) {
	f := newVideoFixture(t)
	_, videoID := f.uploaded(t)

	rr := tagRequest(t, f, videoID, `{"tag":"advance"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.VideoResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Tag)
	assert.Equal(t, models.TagAdvance, *resp.Tag)

	// retagging overwrites
	rr = tagRequest(t, f, videoID, `{"tag":"pass"}`)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Tag)
	assert.Equal(t, models.TagPass, *resp.Tag)
}

func TestVideo_TagHandlerErrors(t *testing.T) {
	f := newVideoFixture(t)
	_, videoID := f.uploaded(t)

	assert.Equal(t, http.StatusBadRequest, tagRequest(t, f, videoID, `{"tag":"great"}`).Code)
	assert.Equal(t, http.StatusBadRequest, tagRequest(t, f, videoID, `{`).Code)
	assert.Equal(t, http.StatusNotFound, tagRequest(t, f, "missing", `{"tag":"review"}`).Code)
}

func TestVideo_StreamHandler(t *testing.T) {
	f := newVideoFixture(t)
	_, videoID := f.uploaded(t)

	req, err := http.NewRequest("GET", "/api/v1/videos/"+videoID+"/stream", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"video_id": videoID})
	rr := httptest.NewRecorder()
	http.HandlerFunc(f.handler.StreamHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "video/webm", rr.Header().Get("Content-Type"))
	assert.Equal(t, "webm-bytes", rr.Body.String())
}

func TestVideo_StreamHandlerRange(t *testing.T) {
	f := newVideoFixture(t)
	_, videoID := f.uploaded(t)

	req, err := http.NewRequest("GET", "/api/v1/videos/"+videoID+"/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=0-3")
	req = mux.SetURLVars(req, map[string]string{"video_id": videoID})
	rr := httptest.NewRecorder()
	http.HandlerFunc(f.handler.StreamHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusPartialContent, rr.Code)
	assert.Equal(t, "webm", rr.Body.String())
}

func TestVideo_StreamHandlerNotFound(t *testing.T) {
	f := newVideoFixture(t)

	req, err := http.NewRequest("GET", "/api/v1/videos/missing/stream", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"video_id": "missing"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(f.handler.StreamHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
