package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/repository/memory"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	users        *memory.UserRepository
	bookmarkRepo *memory.BookmarkRepository
	userSvc      *UserService
	bookmarkSvc  *BookmarkService
	reviewSvc    *ReviewService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := memory.NewUserRepository()
	bookmarks := memory.NewBookmarkRepository()

	userSvc := NewUserService(users, memory.NewFileRepository())
	userSvc.hashCost = bcrypt.MinCost

	return &testEnv{
		users:        users,
		bookmarkRepo: bookmarks,
		userSvc:      userSvc,
		bookmarkSvc:  NewBookmarkService(bookmarks, userSvc),
		reviewSvc:    NewReviewService(memory.NewReviewRepository(), users),
	}
}

func (e *testEnv) register(t *testing.T, username, email string) *models.User {
	t.Helper()
	u, err := e.userSvc.RegisterUser(context.Background(), username, email, "Passw0rd!")
	require.NoError(t, err)
	return u
}

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }
