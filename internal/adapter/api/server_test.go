package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/adapter/api/handler"
	"userhub/internal/domain/entity"
	"userhub/internal/domain/service"
	"userhub/internal/infrastructure/memory"
	"userhub/internal/usecase"
	"userhub/pkg/response"
)

type testServer struct {
	echo  *echo.Echo
	users *memory.UserRepository
	blobs *memory.BlobStore
}

type failingHealthChecker struct{}

func (failingHealthChecker) Ping(context.Context) error { return stderrors.New("connection refused") }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithHealth(t, memory.HealthChecker{})
}

func newTestServerWithHealth(t *testing.T, health service.HealthChecker) *testServer {
	t.Helper()
	users := memory.NewUserRepository()
	blobs := memory.NewBlobStore("memory://images")
	uc := usecase.NewUserUseCase(
		users,
		memory.NewCategoryRepository(&entity.Category{ID: "default", Name: "Default"}),
		memory.NewSearchIndex(),
		blobs,
	)

	e := NewServer(&handler.Handlers{
		User:   handler.NewUserHandler(uc, 1024),
		Health: handler.NewHealthHandler(health),
	})
	return &testServer{echo: e, users: users, blobs: blobs}
}

func (s *testServer) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, userID string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("userfile", "me.jpg")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/user/new_user_image/user_id="+userID, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createAnn(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/user/create", map[string]string{
		"first_name":   "Ann",
		"last_name":    "Lee",
		"email":        "ann@x.com",
		"phone_number": "5551234",
		"password":     "longenough",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["user_id"]
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Message
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/user/create", map[string]string{
		"first_name":   "Ann",
		"last_name":    "Lee",
		"email":        "ann@x.com",
		"phone_number": "5551234",
		"password":     "longenough",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["user_id"])
	assert.Equal(t, body["date_created"], body["date_last_modified"])

	_, err := time.Parse(response.TimestampLayout, body["date_created"])
	assert.NoError(t, err)
	assert.Equal(t, 1, s.users.Len())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.createAnn(t)

	rec := s.do(t, http.MethodPost, "/user/create", map[string]string{
		"first_name": "Other",
		"last_name":  "Person",
		"email":      "ann@x.com",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Email address is already registered."}`, rec.Body.String())
	assert.Equal(t, 1, s.users.Len())
}

func TestCreateUser_ShortPassword(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/user/create", map[string]string{
		"first_name": "Ann",
		"last_name":  "Lee",
		"password":   "short",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.MsgPasswordTooShort, decodeMessage(t, rec))
	assert.Equal(t, 0, s.users.Len())
}

func TestCreateUser_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/user/create", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, s.users.Len())
}

func TestGetUser(t *testing.T) {
	s := newTestServer(t)
	id := s.createAnn(t)

	rec := s.do(t, http.MethodGet, "/user/get/user_id="+id, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"user_id": "`+id+`",
		"first_name": "Ann",
		"last_name": "Lee",
		"phone_number": "5551234",
		"email": "ann@x.com",
		"image_path": null,
		"image_media_link": null
	}`, rec.Body.String())
}

func TestGetUser_Unknown(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/user/get/user_id=nobody", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.MsgUserNotFound, decodeMessage(t, rec))
}

func TestUpdateUser(t *testing.T) {
	s := newTestServer(t)
	id := s.createAnn(t)

	rec := s.do(t, http.MethodPost, "/user/update/user_id="+id, map[string]string{
		"first_name":   "Ann",
		"last_name":    "Lee",
		"email":        "ann.lee@x.com",
		"phone_number": "5551234",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ann.lee@x.com", body["email"])
	assert.Equal(t, false, body["is_email_verified"])
	assert.Equal(t, "5551234", body["phone_number"])
	assert.NotEmpty(t, body["date_last_modified"])
}

func TestUpdateUser_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{
			name:    "first name",
			body:    map[string]string{"last_name": "Lee", "email": "a@x.com", "phone_number": "1"},
			message: "First name cannot be left empty.",
		},
		{
			name:    "last name",
			body:    map[string]string{"first_name": "Ann", "email": "a@x.com", "phone_number": "1"},
			message: "Last name cannot be left empty.",
		},
		{
			name:    "email",
			body:    map[string]string{"first_name": "Ann", "last_name": "Lee", "phone_number": "1"},
			message: "Email cannot be left empty.",
		},
		{
			name:    "phone number",
			body:    map[string]string{"first_name": "Ann", "last_name": "Lee", "email": "a@x.com"},
			message: "Phone number cannot be left empty.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			id := s.createAnn(t)

			rec := s.do(t, http.MethodPost, "/user/update/user_id="+id, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decodeMessage(t, rec))
		})
	}
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	id := s.createAnn(t)

	rec := s.do(t, http.MethodDelete, "/user/delete/user_id="+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, id, body["user_id"])
	assert.NotEmpty(t, body["date_deleted"])

	rec = s.do(t, http.MethodGet, "/user/get/user_id="+id, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileImage_UploadGetDelete(t *testing.T) {
	s := newTestServer(t)
	id := s.createAnn(t)

	rec := s.upload(t, id, []byte("jpeg-bytes"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var uploaded map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.Equal(t, id+"/profile_picture.jpg", uploaded["image_path"])
	assert.NotEmpty(t, uploaded["image_media_link"])

	rec = s.do(t, http.MethodGet, "/user/get/user_id="+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile usecase.UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.NotNil(t, profile.ImageMediaLink)
	assert.Equal(t, uploaded["image_media_link"], *profile.ImageMediaLink)

	rec = s.do(t, http.MethodDelete, "/user/delete_user_image/path="+uploaded["image_path"], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var deleted map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, uploaded["image_path"], deleted["deleted_path"])

	_, ok := s.blobs.Object(uploaded["image_path"])
	assert.False(t, ok)
}

func TestDeleteProfileImage_PercentEncodedPath(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for _, path := range []string{"a%41", "aA", "u1/pic.jpg"} {
		_, err := s.blobs.Upload(ctx, path, bytes.NewReader([]byte("x")), "image/jpeg", 1)
		require.NoError(t, err)
	}

	rec := s.do(t, http.MethodDelete, "/user/delete_user_image/path=a%2541", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a%41", body["deleted_path"])

	_, ok := s.blobs.Object("a%41")
	assert.False(t, ok)
	_, ok = s.blobs.Object("aA")
	assert.True(t, ok, "only the named blob is deleted")

	rec = s.do(t, http.MethodDelete, "/user/delete_user_image/path=u1%2Fpic.jpg", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, ok = s.blobs.Object("u1/pic.jpg")
	assert.False(t, ok)
}

func TestProfileImage_UnknownUser(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload(t, "nobody", []byte("jpeg-bytes"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.MsgImageUserNotFound, decodeMessage(t, rec))
	_, ok := s.blobs.Object("nobody/profile_picture.jpg")
	assert.False(t, ok)
}

func TestProfileImage_TooLarge(t *testing.T) {
	s := newTestServer(t)
	id := s.createAnn(t)

	rec := s.upload(t, id, bytes.Repeat([]byte("x"), 2048))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, ok := s.blobs.Object(entity.ProfileImagePath(id))
	assert.False(t, ok)
}

func TestProfileImage_MissingFile(t *testing.T) {
	s := newTestServer(t)
	id := s.createAnn(t)

	rec := s.do(t, http.MethodPost, "/user/new_user_image/user_id="+id, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchUsers(t *testing.T) {
	s := newTestServer(t)
	id := s.createAnn(t)

	rec := s.do(t, http.MethodGet, "/user/search?q=lee", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []entity.UserSearchDocument `json:"items"`
		Total int64                       `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, id, page.Items[0].ID)

	rec = s.do(t, http.MethodGet, "/user/search?q=nomatch", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	rec = s.do(t, http.MethodGet, "/user/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchUsers_HugePage(t *testing.T) {
	s := newTestServer(t)
	s.createAnn(t)

	rec := s.do(t, http.MethodGet, "/user/search?q=lee&page=461168601842738792", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page struct {
		Items []entity.UserSearchDocument `json:"items"`
		Total int64                       `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(1), page.Total)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/nowhere", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, NotFoundMessage, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain))
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server is running")

	rec = s.do(t, http.MethodGet, "/health/stores", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthCheck_StoreDown(t *testing.T) {
	s := newTestServerWithHealth(t, failingHealthChecker{})

	rec := s.do(t, http.MethodGet, "/health/stores", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)

	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}
