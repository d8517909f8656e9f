package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/studyfindr/studyfindr-api/internal/config"
	"github.com/studyfindr/studyfindr-api/internal/services"
	"github.com/studyfindr/studyfindr-api/internal/validation"
	"github.com/studyfindr/studyfindr-api/pkg/metrics"
	"github.com/studyfindr/studyfindr-api/pkg/middleware"
)

// Services groups the dependencies the routes need.
type Services struct {
	Users     *services.UserService
	Bookmarks *services.BookmarkService
	Reviews   *services.ReviewService
	Locations *services.LocationService
}

// NewRouter registers every API route on a gorilla/mux router.
func NewRouter(cfg *config.Config, svc Services) *mux.Router {
	v := validation.New()

	userHandler := NewUserHandler(svc.Users, cfg, v)
	studyHandler := NewStudyHandler(svc.Users, v)
	bookmarkHandler := NewBookmarkHandler(svc.Bookmarks, v)
	reviewHandler := NewReviewHandler(svc.Reviews, v)
	locationHandler := NewLocationHandler(svc.Locations)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.MetricsMiddleware)
	router.Use(middleware.TimeoutMiddleware(cfg.RequestTimeout))

	api := router.PathPrefix("/api").Subrouter()

	// Accounts
	api.HandleFunc("/register", userHandler.RegisterUserHandler).Methods("POST")
	api.HandleFunc("/login", userHandler.LoginUserHandler).Methods("POST")
	api.HandleFunc("/get_user", userHandler.GetUserHandler).Methods("GET")
	api.HandleFunc("/update_profile", userHandler.UpdateProfileHandler).Methods("POST")

	me := api.PathPrefix("/me").Subrouter()
	me.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	me.HandleFunc("", userHandler.MeHandler).Methods("GET")

	// Bookmarks
	api.HandleFunc("/add_bookmark", bookmarkHandler.AddBookmarkHandler).Methods("POST")
	api.HandleFunc("/remove_bookmark", bookmarkHandler.RemoveBookmarkHandler).Methods("POST")
	api.HandleFunc("/get_bookmarks", bookmarkHandler.GetBookmarksHandler).Methods("GET")
	api.HandleFunc("/get_user_bookmarks", bookmarkHandler.GetUserBookmarksHandler).Methods("GET")
	api.HandleFunc("/get_study_spot_vectors", bookmarkHandler.GetStudySpotVectorsHandler).Methods("GET")

	// Reviews
	api.HandleFunc("/add_review", reviewHandler.AddReviewHandler).Methods("POST")
	api.HandleFunc("/rate_review", reviewHandler.RateReviewHandler).Methods("POST")
	api.HandleFunc("/get_location_reviews", reviewHandler.GetLocationReviewsHandler).Methods("GET")
	api.HandleFunc("/get_user_reviews", reviewHandler.GetUserReviewsHandler).Methods("GET")

	// Study hours
	api.HandleFunc("/update_weekly_goal", studyHandler.UpdateWeeklyGoalHandler).Methods("POST")
	api.HandleFunc("/update_current_hours", studyHandler.UpdateCurrentHoursHandler).Methods("POST")
	api.HandleFunc("/reset_current_hours", studyHandler.ResetCurrentHoursHandler).Methods("POST")
	api.HandleFunc("/get_weekly_goal", studyHandler.GetWeeklyGoalHandler).Methods("GET")
	api.HandleFunc("/get_current_hours", studyHandler.GetCurrentHoursHandler).Methods("GET")

	// Places
	api.HandleFunc("/locations", locationHandler.ListLocationsHandler).Methods("GET")
	api.HandleFunc("/locations/{placeId}", locationHandler.GetLocationHandler).Methods("GET")

	router.HandleFunc("/uploads/{fileId}", userHandler.ServeUploadHandler).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"errors": map[string]string{"general": "Not found"}})
	})
	return router
}
