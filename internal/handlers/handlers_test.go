package handlers

import (
	"bytes"
	"encoding/json"
	"io"
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
	"github.com/studyfindr/studyfindr-api/internal/config"
	"github.com/studyfindr/studyfindr-api/internal/services"
	"github.com/studyfindr/studyfindr-api/internal/store"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	st := store.NewMemory()
	cfg := &config.Config{
		JWTSecret:      "test-secret",
		TokenExpiry:    time.Hour,
		RequestTimeout: 5 * time.Second,
		MaxUploadMB:    1,
	}
	users := services.NewUserService(st.Users, st.Files)
	return NewRouter(cfg, Services{
		Users:     users,
		Bookmarks: services.NewBookmarkService(st.Bookmarks, users),
		Reviews:   services.NewReviewService(st.Reviews, st.Users),
		Locations: services.NewLocationService(st.Locations),
	})
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, header map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func register(t *testing.T, h http.Handler, username, email string) {
	t.Helper()
	rec, _ := do(t, h, http.MethodPost, "/api/register", map[string]string{
		"username":         username,
		"email":            email,
		"password":         "Passw0rd!",
		"confirm_password": "Passw0rd!",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "ann", "ann@example.com")

	rec, body := do(t, h, http.MethodPost, "/api/register", map[string]string{
		"username":         "ann",
		"email":            "ann@example.com",
		"password":         "Passw0rd!",
		"confirm_password": "Passw0rd!",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := body["errors"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Email already exists"}, errs["email"])

	rec, body = do(t, h, http.MethodPost, "/api/register", map[string]string{
		"username":         "bob",
		"email":            "bob@example.com",
		"password":         "Passw0rd!",
		"confirm_password": "different",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["errors"], "confirm_password")

	rec, body = do(t, h, http.MethodPost, "/api/login", map[string]string{
		"email":    "ann@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", body["errors"].(map[string]interface{})["general"])

	rec, body = do(t, h, http.MethodPost, "/api/login", map[string]string{
		"email":    "ann@example.com",
		"password": "Passw0rd!",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]interface{})
	assert.NotContains(t, user, "password")
	assert.Equal(t, float64(8), user["weekly_goal_hours"])

	rec, _ = do(t, h, http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/api/me", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann@example.com", body["user"].(map[string]interface{})["email"])
}

func TestRegister_EmptyBody(t *testing.T) {
	h := newTestRouter(t)

	rec, body := do(t, h, http.MethodPost, "/api/register", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No data received", body["errors"].(map[string]interface{})["general"])
}

func TestBookmarkFlow(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "ann", "ann@example.com")

	bookmark := map[string]interface{}{
		"name":      "Cafe",
		"latitude":  29.65,
		"longitude": -82.35,
		"place_id":  "abc",
		"email":     "ann@example.com",
	}
	rec, body := do(t, h, http.MethodPost, "/api/add_bookmark", bookmark, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body["bookmark_id"].(string)

	bookmark["place_id"] = "place-abc"
	rec, body = do(t, h, http.MethodPost, "/api/add_bookmark", bookmark, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, id, body["bookmark_id"])

	rec, body = do(t, h, http.MethodPost, "/api/add_bookmark", map[string]interface{}{"name": "No coords"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["errors"], "latitude")

	rec, body = do(t, h, http.MethodGet, "/api/get_user_bookmarks?email=ann@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["bookmarks"], 1)

	rec, body = do(t, h, http.MethodGet, "/api/get_study_spot_vectors", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{map[string]interface{}{"lat": 29.65, "lng": -82.35}}, body["vectors"])

	rec, body = do(t, h, http.MethodPost, "/api/remove_bookmark", map[string]string{"bookmark_id": "place-abc", "email": "ann@example.com"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["removed"])

	rec, body = do(t, h, http.MethodGet, "/api/get_user_bookmarks?email=ann@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["bookmarks"])

	rec, body = do(t, h, http.MethodPost, "/api/remove_bookmark", map[string]string{"bookmark_id": id}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["removed"])
}

func TestReviewFlow(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "ann", "ann@example.com")

	review := map[string]interface{}{
		"user_email":  "ann@example.com",
		"location_id": 123,
		"quietness":   4,
		"seating":     3,
		"vibes":       5,
		"crowdedness": 2,
		"internet":    4,
		"comment":     "good outlets",
	}
	rec, body := do(t, h, http.MethodPost, "/api/add_review", review, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reviewID := body["review_id"].(string)

	rec, body = do(t, h, http.MethodPost, "/api/rate_review", map[string]string{
		"review_id":  reviewID,
		"user_email": "bob@example.com",
		"action":     "like",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["likes_count"])
	assert.Equal(t, float64(0), body["dislikes_count"])

	review["location_id"] = "123"
	review["quietness"] = 1
	rec, body = do(t, h, http.MethodPost, "/api/add_review", review, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reviewID, body["review_id"])

	rec, body = do(t, h, http.MethodGet, "/api/get_location_reviews?location_id=123&page=0&limit=10&sort_by=likes&sort_order=-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total_count"])
	assert.Equal(t, false, body["has_more"])
	reviews := body["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	first := reviews[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["quietness"])
	assert.Equal(t, []interface{}{"bob@example.com"}, first["likes"])
	assert.Equal(t, "ann", first["user_name"])

	rec, body = do(t, h, http.MethodGet, "/api/get_location_reviews?location_id=123&page=100000000000000000&limit=100", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["reviews"])
	assert.Equal(t, false, body["has_more"])

	rec, _ = do(t, h, http.MethodPost, "/api/rate_review", map[string]string{
		"review_id":  reviewID,
		"user_email": "bob@example.com",
		"action":     "love",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	delete(review, "internet")
	rec, body = do(t, h, http.MethodPost, "/api/add_review", review, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["errors"], "internet")
}

func TestStudyHoursFlow(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "ann", "ann@example.com")

	rec, body := do(t, h, http.MethodPost, "/api/update_weekly_goal", map[string]interface{}{"email": "ann@example.com", "weekly_goal_hours": 10}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(10), body["weekly_goal_hours"])

	rec, body = do(t, h, http.MethodPost, "/api/update_current_hours", map[string]interface{}{"email": "ann@example.com", "hours": 1.5}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.5, body["current_weekly_hours"])

	rec, body = do(t, h, http.MethodPost, "/api/update_current_hours", map[string]interface{}{"email": "ann@example.com", "current_weekly_hours": 4}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), body["current_weekly_hours"])

	rec, _ = do(t, h, http.MethodPost, "/api/update_current_hours", map[string]interface{}{"email": "ann@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/api/get_current_hours?email=ann@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), body["current_weekly_hours"])

	rec, _ = do(t, h, http.MethodPost, "/api/reset_current_hours", map[string]string{"email": "ann@example.com"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/api/get_weekly_goal?email=ann@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(10), body["weekly_goal_hours"])

	rec, _ = do(t, h, http.MethodGet, "/api/get_weekly_goal?email=nobody@example.com", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfileAndServeUpload(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "ann", "ann@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("email", "ann@example.com"))
	require.NoError(t, mw.WriteField("username", "annie"))
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="profile_picture"; filename="me.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/update_profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		User struct {
			Username       string `json:"username"`
			ProfilePicture string `json:"profile_picture"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "annie", body.User.Username)
	require.True(t, strings.HasPrefix(body.User.ProfilePicture, "/uploads/"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, body.User.ProfilePicture, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "fake-png", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/000000000000000000000000", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocationsAndNotFound(t *testing.T) {
	h := newTestRouter(t)

	rec, body := do(t, h, http.MethodGet, "/api/locations", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["locations"])

	rec, _ = do(t, h, http.MethodGet, "/api/locations/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body, "errors")
}
