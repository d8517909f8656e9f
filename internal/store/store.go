// Package store builds the repository set for the configured driver.
package store

import (
	"context"
	"fmt"

	"github.com/studyfindr/studyfindr-api/internal/config"
	"github.com/studyfindr/studyfindr-api/internal/database"
	"github.com/studyfindr/studyfindr-api/internal/repository"
	"github.com/studyfindr/studyfindr-api/internal/repository/memory"
	"github.com/studyfindr/studyfindr-api/internal/services"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Store holds one implementation of every repository contract.
type Store struct {
	Users     services.UserRepository
	Bookmarks services.BookmarkRepository
	Reviews   services.ReviewRepository
	Locations services.LocationRepository
	Files     services.FileRepository

	close func(context.Context) error
}

// Close releases the underlying connection, if any.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// NewMemory returns an empty in-process store.
func NewMemory() *Store {
	return &Store{
		Users:     memory.NewUserRepository(),
		Bookmarks: memory.NewBookmarkRepository(),
		Reviews:   memory.NewReviewRepository(),
		Locations: memory.NewLocationRepository(),
		Files:     memory.NewFileRepository(),
	}
}

// Open connects the driver named by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case DriverMemory:
		logger.Log.Warn("Using in-memory store; data is lost on restart")
		return NewMemory(), nil
	case DriverMongo, "":
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = db.Client().Disconnect(context.Background())
		return nil, err
	}

	files, err := repository.NewFileRepository(db)
	if err != nil {
		_ = db.Client().Disconnect(context.Background())
		return nil, err
	}

	return &Store{
		Users:     repository.NewUserRepository(db),
		Bookmarks: repository.NewBookmarkRepository(db),
		Reviews:   repository.NewReviewRepository(db),
		Locations: repository.NewLocationRepository(db),
		Files:     files,
		close:     db.Client().Disconnect,
	}, nil
}
