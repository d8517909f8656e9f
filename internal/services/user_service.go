package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/apperror"
	"github.com/studyfindr/studyfindr-api/internal/identity"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/repository"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// UploadPrefix is where stored files are served from.
const UploadPrefix = "/uploads/"

// Upload is a file received with a request.
type Upload struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo     UserRepository
	files    FileRepository
	hashCost int
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserRepository, files FileRepository) *UserService {
	return &UserService{
		repo:     repo,
		files:    files,
		hashCost: bcrypt.DefaultCost,
	}
}

// userError turns a repository failure on email into the request-facing error.
func userError(err error, email string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("email", fmt.Sprintf("No user found with email %s", email))
	}
	return apperror.Internal(err)
}

// RegisterUser creates an account with the default study goal.
func (s *UserService) RegisterUser(ctx context.Context, username, email, password string) (*models.User, error) {
	logger.Log.WithField("email", email).Info("Registering new user")

	if username == "" || email == "" || password == "" {
		return nil, apperror.ValidationField(apperror.General, "Missing required fields")
	}
	if PasswordTooLong(password) {
		return nil, apperror.ValidationField("password", []string{"Password must be at most 72 bytes"})
	}
	if problems := PasswordProblems(password); len(problems) > 0 {
		return nil, apperror.ValidationField("password", []string{PasswordMessage(problems)})
	}

	emailTaken := apperror.Conflict("email", []string{"Email already exists"}).WithStatus(http.StatusBadRequest)
	if existing, err := s.repo.GetUserByEmail(ctx, email); err == nil && existing != nil {
		logger.Log.WithField("email", email).Warn("Email already in use")
		return nil, emailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		logger.Log.WithError(err).Error("Password hashing failed")
		return nil, apperror.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Username:           username,
		Email:              email,
		HashedPassword:     string(hashedPwd),
		Role:               "user",
		WeeklyGoalHours:    models.DefaultWeeklyGoalHours,
		CurrentWeeklyHours: 0,
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, emailTaken
		}
		logger.Log.WithError(err).Error("User registration failed")
		return nil, apperror.Internal(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"userID": created.ID.Hex(),
		"role":   created.Role,
	}).Info("User registered successfully")
	return created, nil
}

// AuthenticateUser verifies the email and password and returns the user if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	invalid := apperror.Auth("Invalid email or password")

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Log.WithField("email", email).Warn("Login for unknown email")
			return nil, invalid
		}
		return nil, apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logger.Log.WithField("email", email).Warn("Invalid credentials")
		return nil, invalid
	}

	logger.Log.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by email.
func (s *UserService) GetUser(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, apperror.ValidationField("email", "Email is required")
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, userError(err, email)
	}
	return user, nil
}

// UpdateProfile changes the username and/or stores a new profile picture.
func (s *UserService) UpdateProfile(ctx context.Context, email string, username *string, picture *Upload) (*models.User, error) {
	if email == "" {
		return nil, apperror.ValidationField("email", "Email is required")
	}
	if username != nil {
		trimmed := strings.TrimSpace(*username)
		if len(trimmed) < 2 || len(trimmed) > 20 {
			return nil, apperror.ValidationField("username", "Username must be between 2 and 20 characters")
		}
		username = &trimmed
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err != nil {
		return nil, userError(err, email)
	}

	update := models.ProfileUpdate{Username: username}
	if picture != nil {
		id, err := s.files.SaveFile(ctx, picture.Name, picture.ContentType, picture.Content)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		url := UploadPrefix + id
		update.ProfilePicture = &url
	}

	user, err := s.repo.UpdateProfile(ctx, email, update)
	if err != nil {
		return nil, userError(err, email)
	}

	logger.Log.WithField("userID", user.ID.Hex()).Info("Profile updated")
	return user, nil
}

// OpenUpload returns a stored upload by id.
func (s *UserService) OpenUpload(ctx context.Context, id string) (*models.StoredFile, error) {
	file, err := s.files.OpenFile(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("file", "File not found")
		}
		return nil, apperror.Internal(err)
	}
	return file, nil
}

// SetWeeklyGoal stores the weekly goal in hours.
func (s *UserService) SetWeeklyGoal(ctx context.Context, email string, hours float64) (*models.User, error) {
	if hours < 0 {
		return nil, apperror.ValidationField("weekly_goal_hours", "Weekly goal cannot be negative")
	}
	user, err := s.repo.SetWeeklyGoal(ctx, email, hours)
	if err != nil {
		return nil, userError(err, email)
	}
	return user, nil
}

// AddProgress adds delta hours to this week's total. Not idempotent: a retried
// request counts twice.
func (s *UserService) AddProgress(ctx context.Context, email string, delta float64) (*models.User, error) {
	user, err := s.repo.IncCurrentHours(ctx, email, delta)
	if err != nil {
		return nil, userError(err, email)
	}
	logger.Log.WithFields(logrus.Fields{
		"email": email,
		"delta": delta,
	}).Info("Study progress added")
	return user, nil
}

// SetProgress overwrites this week's total.
func (s *UserService) SetProgress(ctx context.Context, email string, hours float64) (*models.User, error) {
	if hours < 0 {
		return nil, apperror.ValidationField("current_weekly_hours", "Current hours cannot be negative")
	}
	user, err := s.repo.SetCurrentHours(ctx, email, hours)
	if err != nil {
		return nil, userError(err, email)
	}
	return user, nil
}

// ResetProgress sets this week's total back to zero.
func (s *UserService) ResetProgress(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.SetCurrentHours(ctx, email, 0)
	if err != nil {
		return nil, userError(err, email)
	}
	return user, nil
}

// AddBookmarkRef adds ref to the user's bookmark set.
func (s *UserService) AddBookmarkRef(ctx context.Context, email, ref string) error {
	if err := s.repo.AddBookmarkRef(ctx, email, ref); err != nil {
		return userError(err, email)
	}
	return nil
}

// RemoveBookmarkRef removes every stored entry equivalent to any of refs, so
// "place-123" and "123" remove each other.
func (s *UserService) RemoveBookmarkRef(ctx context.Context, email string, refs ...string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return userError(err, email)
	}

	var matches []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		for _, m := range identity.Matching(user.Bookmarks, ref) {
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}
	if err := s.repo.PullBookmarkRefs(ctx, email, matches); err != nil {
		return userError(err, email)
	}

	logger.Log.WithFields(logrus.Fields{
		"email":   email,
		"removed": matches,
	}).Info("Bookmark references removed")
	return nil
}
