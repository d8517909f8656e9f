package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/studyfindr/studyfindr-api/internal/apperror"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError renders err as {"errors": {...}} with the status its kind maps to.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	status := appErr.StatusCode()

	entry := logger.Log.WithError(err).WithField("path", r.URL.Path)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	writeJSON(w, status, map[string]interface{}{"errors": appErr.Fields})
}

// decodeJSON reads the body into dst; an empty or malformed body is a validation error.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return apperror.ValidationField(apperror.General, "No data received")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationField(apperror.General, "Invalid request payload")
	}
	return nil
}

// queryInt parses an integer query parameter, returning def when absent or malformed.
func queryInt(r *http.Request, key string, def int64) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return def
	}
	return v
}
