package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	jwtutil "github.com/studyfindr/studyfindr-api/pkg/jwt"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
)

const claimsKey ctxKey = "claims"

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": map[string]string{"general": msg},
	})
}

// AuthMiddleware requires a valid "Bearer" token and stores its claims in the context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "Missing bearer token")
				return
			}

			claims, err := jwtutil.ParseToken(token, secret)
			if err != nil {
				logger.Log.WithError(err).Warn("Rejected token")
				unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// GetUserFromContext returns the claims set by AuthMiddleware, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(claimsKey).(*jwtutil.Claims)
	return claims
}
