package handlers

import (
	"net/http"
	"strings"

	"github.com/studyfindr/studyfindr-api/internal/apperror"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/services"
	"github.com/studyfindr/studyfindr-api/internal/validation"
)

// StudyHandler serves the weekly study goal and hour counter.
type StudyHandler struct {
	Service   *services.UserService
	Validator *validation.Validator
}

func NewStudyHandler(service *services.UserService, v *validation.Validator) *StudyHandler {
	return &StudyHandler{Service: service, Validator: v}
}

type weeklyGoalRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	WeeklyGoalHours *float64 `json:"weekly_goal_hours" validate:"required,gte=0"`
}

// Either current_weekly_hours (absolute) or hours (delta) must be present.
type currentHoursRequest struct {
	Email              string   `json:"email" validate:"required,email"`
	CurrentWeeklyHours *float64 `json:"current_weekly_hours" validate:"required_without=Hours"`
	Hours              *float64 `json:"hours" validate:"required_without=CurrentWeeklyHours"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *StudyHandler) UpdateWeeklyGoalHandler(w http.ResponseWriter, r *http.Request) {
	var req weeklyGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.SetWeeklyGoal(r.Context(), req.Email, *req.WeeklyGoalHours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":           "Weekly goal updated",
		"weekly_goal_hours": user.WeeklyGoalHours,
	})
}

// UpdateCurrentHoursHandler sets the week's total when current_weekly_hours is
// given and otherwise adds hours to it.
func (h *StudyHandler) UpdateCurrentHoursHandler(w http.ResponseWriter, r *http.Request) {
	var req currentHoursRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	var (
		user *models.User
		err  error
	)
	if req.CurrentWeeklyHours != nil {
		user, err = h.Service.SetProgress(r.Context(), req.Email, *req.CurrentWeeklyHours)
	} else {
		user, err = h.Service.AddProgress(r.Context(), req.Email, *req.Hours)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":              "Current hours updated",
		"current_weekly_hours": user.CurrentWeeklyHours,
	})
}

func (h *StudyHandler) ResetCurrentHoursHandler(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.ResetProgress(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":              "Current hours reset",
		"current_weekly_hours": user.CurrentWeeklyHours,
	})
}

func (h *StudyHandler) GetWeeklyGoalHandler(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	user, err := h.Service.GetUser(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"weekly_goal_hours": user.WeeklyGoalHours})
}

func (h *StudyHandler) GetCurrentHoursHandler(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, r, apperror.ValidationField("email", "Email is required"))
		return
	}
	user, err := h.Service.GetUser(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"current_weekly_hours": user.CurrentWeeklyHours})
}
