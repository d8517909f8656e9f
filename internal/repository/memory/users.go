// Package memory keeps every store in process maps. It backs STORE_DRIVER=memory
// for local runs without MongoDB and the service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is the in-memory user store keyed by email.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]models.User)}
}

func cloneUser(u models.User) *models.User {
	u.Bookmarks = append([]string{}, u.Bookmarks...)
	u.Reviews = append([]primitive.ObjectID{}, u.Reviews...)
	return &u
}

func (r *UserRepository) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return nil, repository.ErrDuplicateKey
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Bookmarks == nil {
		user.Bookmarks = []string{}
	}
	if user.Reviews == nil {
		user.Reviews = []primitive.ObjectID{}
	}
	r.users[user.Email] = *cloneUser(*user)
	return user, nil
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetUsersByEmails(_ context.Context, emails []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.User
	seen := make(map[string]bool)
	for _, email := range emails {
		if u, ok := r.users[email]; ok && !seen[email] {
			seen[email] = true
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

// mutate applies fn to the stored user under the write lock.
func (r *UserRepository) mutate(email string, fn func(u *models.User)) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.users[email] = u
	return cloneUser(u), nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, email string, update models.ProfileUpdate) (*models.User, error) {
	return r.mutate(email, func(u *models.User) {
		if update.Username != nil {
			u.Username = *update.Username
		}
		if update.ProfilePicture != nil {
			u.ProfilePicture = *update.ProfilePicture
		}
	})
}

func (r *UserRepository) SetWeeklyGoal(_ context.Context, email string, hours float64) (*models.User, error) {
	return r.mutate(email, func(u *models.User) { u.WeeklyGoalHours = hours })
}

func (r *UserRepository) IncCurrentHours(_ context.Context, email string, delta float64) (*models.User, error) {
	return r.mutate(email, func(u *models.User) { u.CurrentWeeklyHours += delta })
}

func (r *UserRepository) SetCurrentHours(_ context.Context, email string, hours float64) (*models.User, error) {
	return r.mutate(email, func(u *models.User) { u.CurrentWeeklyHours = hours })
}

func (r *UserRepository) AddBookmarkRef(_ context.Context, email, ref string) error {
	_, err := r.mutate(email, func(u *models.User) {
		for _, existing := range u.Bookmarks {
			if existing == ref {
				return
			}
		}
		u.Bookmarks = append(u.Bookmarks, ref)
	})
	return err
}

func (r *UserRepository) PullBookmarkRefs(_ context.Context, email string, refs []string) error {
	drop := make(map[string]bool, len(refs))
	for _, ref := range refs {
		drop[ref] = true
	}
	_, err := r.mutate(email, func(u *models.User) {
		kept := u.Bookmarks[:0:0]
		for _, existing := range u.Bookmarks {
			if !drop[existing] {
				kept = append(kept, existing)
			}
		}
		u.Bookmarks = kept
	})
	return err
}

func (r *UserRepository) AddReviewRef(_ context.Context, email string, reviewID primitive.ObjectID) error {
	_, err := r.mutate(email, func(u *models.User) {
		for _, existing := range u.Reviews {
			if existing == reviewID {
				return
			}
		}
		u.Reviews = append(u.Reviews, reviewID)
	})
	return err
}
