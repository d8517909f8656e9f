package handlers

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/services"
	"github.com/studyfindr/studyfindr-api/internal/validation"
)

// BookmarkHandler handles HTTP requests related to saved study spots.
type BookmarkHandler struct {
	Service   *services.BookmarkService
	Validator *validation.Validator
}

func NewBookmarkHandler(service *services.BookmarkService, v *validation.Validator) *BookmarkHandler {
	return &BookmarkHandler{Service: service, Validator: v}
}

type addBookmarkRequest struct {
	Name        string   `json:"name" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"required"`
	Longitude   *float64 `json:"longitude" validate:"required"`
	PlaceID     string   `json:"place_id"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Rating      *float64 `json:"rating"`
	Email       string   `json:"email" validate:"omitempty,email"`
}

type removeBookmarkRequest struct {
	BookmarkID string `json:"bookmark_id" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// AddBookmarkHandler answers 201 for a new bookmark and 409 with the existing
// bookmark_id when the place is already saved.
func (h *BookmarkHandler) AddBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	var req addBookmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	bookmark, created, err := h.Service.AddBookmark(r.Context(), services.AddBookmarkInput{
		OwnerEmail:  strings.TrimSpace(req.Email),
		Name:        req.Name,
		Lat:         req.Latitude,
		Lng:         req.Longitude,
		PlaceID:     req.PlaceID,
		Description: req.Description,
		Address:     req.Address,
		Rating:      req.Rating,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !created {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"message":     "Bookmark already exists",
			"bookmark_id": bookmark.ID,
			"bookmark":    bookmark,
		})
		return
	}

	log.WithField("bookmarkID", bookmark.ID).Info("Bookmark created")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Bookmark (study spot) added successfully!",
		"bookmark_id": bookmark.ID,
		"bookmark":    bookmark,
	})
}

// RemoveBookmarkHandler deletes a bookmark; with an email it also clears the
// user's references to it.
func (h *BookmarkHandler) RemoveBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	var req removeBookmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	var (
		removed bool
		err     error
	)
	if email := strings.TrimSpace(req.Email); email != "" {
		removed, err = h.Service.RemoveUserBookmark(r.Context(), email, req.BookmarkID)
	} else {
		removed, err = h.Service.RemoveBookmark(r.Context(), req.BookmarkID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := "Bookmark removed"
	if !removed {
		msg = "No matching bookmark"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": msg,
		"removed": removed,
	})
}

// GetBookmarksHandler lists all bookmarks, or those created by ?email=.
func (h *BookmarkHandler) GetBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.Service.ListBookmarks(r.Context(), strings.TrimSpace(r.URL.Query().Get("email")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookmarks": bookmarks})
}

// GetUserBookmarksHandler resolves the user's saved references into bookmarks.
func (h *BookmarkHandler) GetUserBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.Service.ResolveUserBookmarks(r.Context(), strings.TrimSpace(r.URL.Query().Get("email")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookmarks": bookmarks})
}

func (h *BookmarkHandler) GetStudySpotVectorsHandler(w http.ResponseWriter, r *http.Request) {
	vectors, err := h.Service.StudySpotVectors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vectors": vectors})
}
