package handlers

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/services"
	"github.com/studyfindr/studyfindr-api/internal/validation"
)

// ReviewHandler handles HTTP requests related to study spot reviews.
type ReviewHandler struct {
	Service   *services.ReviewService
	Validator *validation.Validator
}

func NewReviewHandler(service *services.ReviewService, v *validation.Validator) *ReviewHandler {
	return &ReviewHandler{Service: service, Validator: v}
}

// location_id arrives as a JSON number or string; the service normalizes it.
type addReviewRequest struct {
	UserEmail   string      `json:"user_email"`
	LocationID  interface{} `json:"location_id"`
	Quietness   *int        `json:"quietness"`
	Seating     *int        `json:"seating"`
	Vibes       *int        `json:"vibes"`
	Crowdedness *int        `json:"crowdedness"`
	Internet    *int        `json:"internet"`
	Comment     string      `json:"comment"`
}

type rateReviewRequest struct {
	ReviewID  string `json:"review_id" validate:"required"`
	UserEmail string `json:"user_email" validate:"required,email"`
	Action    string `json:"action" validate:"required,oneof=like dislike remove"`
}

// AddReviewHandler creates (201) or overwrites (200) the caller's review of a location.
func (h *ReviewHandler) AddReviewHandler(w http.ResponseWriter, r *http.Request) {
	var req addReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	review, created, err := h.Service.UpsertReview(r.Context(), services.ReviewInput{
		UserEmail:   req.UserEmail,
		LocationID:  req.LocationID,
		Quietness:   req.Quietness,
		Seating:     req.Seating,
		Vibes:       req.Vibes,
		Crowdedness: req.Crowdedness,
		Internet:    req.Internet,
		Comment:     req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	status, msg := http.StatusOK, "Review updated successfully"
	if created {
		status, msg = http.StatusCreated, "Review added successfully"
	}
	writeJSON(w, status, map[string]interface{}{
		"message":   msg,
		"review_id": review.ID.Hex(),
		"review":    review,
	})
}

// RateReviewHandler applies a like, dislike or remove and returns the new counts.
func (h *ReviewHandler) RateReviewHandler(w http.ResponseWriter, r *http.Request) {
	var req rateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	review, err := h.Service.RateReview(r.Context(), req.ReviewID, req.UserEmail, req.Action)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.WithFields(log.Fields{
		"reviewID": req.ReviewID,
		"action":   req.Action,
	}).Info("Review rated")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Review rated successfully",
		"likes_count":    len(review.Likes),
		"dislikes_count": len(review.Dislikes),
	})
}

// GetLocationReviewsHandler pages through a location's reviews.
// Query: location_id, page, limit, sort_by, sort_order ("-1" or "1").
func (h *ReviewHandler) GetLocationReviewsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Service.ListByLocation(r.Context(), q.Get("location_id"), models.ReviewQuery{
		Page:      queryInt(r, "page", 0),
		Limit:     queryInt(r, "limit", services.DefaultReviewLimit),
		SortBy:    q.Get("sort_by"),
		SortOrder: int(queryInt(r, "sort_order", -1)),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ReviewHandler) GetUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Service.ListByUser(r.Context(), strings.TrimSpace(r.URL.Query().Get("email")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}
