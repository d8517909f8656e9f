package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/apperror"
	"github.com/studyfindr/studyfindr-api/internal/config"
	"github.com/studyfindr/studyfindr-api/internal/services"
	"github.com/studyfindr/studyfindr-api/internal/validation"
	jwtutil "github.com/studyfindr/studyfindr-api/pkg/jwt"
	"github.com/studyfindr/studyfindr-api/pkg/middleware"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UserHandler handles HTTP requests related to accounts and profiles.
type UserHandler struct {
	Service   *services.UserService
	Config    *config.Config
	Validator *validation.Validator
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config, v *validation.Validator) *UserHandler {
	return &UserHandler{
		Service:   service,
		Config:    cfg,
		Validator: v,
	}
}

type registerRequest struct {
	Username        string `json:"username" validate:"required,min=2,max=20"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), strings.TrimSpace(req.Username), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Account created for " + user.Username + "!",
		"user":    user,
	})
}

// LoginUserHandler checks credentials and issues a token.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		writeError(w, r, apperror.Internal(err))
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// GetUserHandler returns the profile for ?email=.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), strings.TrimSpace(r.URL.Query().Get("email")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// MeHandler returns the profile of the token holder.
func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, r, apperror.Auth("Unauthorized"))
		return
	}
	user, err := h.Service.GetUser(r.Context(), claims.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateProfileHandler accepts multipart form data: email, optional username and
// optional profile_picture file.
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.Config.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, r, apperror.ValidationField("profile_picture", "File too big or invalid format"))
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	var username *string
	if _, ok := r.Form["username"]; ok {
		v := r.FormValue("username")
		username = &v
	}

	var upload *services.Upload
	file, header, err := r.FormFile("profile_picture")
	switch {
	case err == nil:
		defer file.Close()
		contentType := header.Header.Get("Content-Type")
		if !allowedImageTypes[contentType] {
			writeError(w, r, apperror.ValidationField("profile_picture", "Only JPEG, PNG, GIF and WEBP images are allowed"))
			return
		}
		upload = &services.Upload{
			Name:        uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename)),
			ContentType: contentType,
			Content:     file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		writeError(w, r, apperror.ValidationField("profile_picture", "Invalid file upload"))
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), email, username, upload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ServeUploadHandler streams a stored upload with its content type.
func (h *UserHandler) ServeUploadHandler(w http.ResponseWriter, r *http.Request) {
	file, err := h.Service.OpenUpload(r.Context(), mux.Vars(r)["fileId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer file.Content.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if file.Length > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(file.Length, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file.Content); err != nil {
		log.WithError(err).WithField("fileID", file.ID).Warn("Failed to stream upload")
	}
}
