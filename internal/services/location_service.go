package services

import (
	"context"
	"errors"
	"strings"

	"github.com/studyfindr/studyfindr-api/internal/apperror"
	"github.com/studyfindr/studyfindr-api/internal/identity"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/repository"
)

const (
	DefaultLocationLimit = 50
	MaxLocationLimit     = 500
)

// LocationService exposes the ingested places read-only.
type LocationService struct {
	repo LocationRepository
}

func NewLocationService(repo LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

func (s *LocationService) ListLocations(ctx context.Context, limit int64) ([]models.Location, error) {
	if limit <= 0 {
		limit = DefaultLocationLimit
	}
	if limit > MaxLocationLimit {
		limit = MaxLocationLimit
	}
	locations, err := s.repo.ListLocations(ctx, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return locations, nil
}

// GetLocation accepts a raw or "place-" prefixed place id.
func (s *LocationService) GetLocation(ctx context.Context, placeID string) (*models.Location, error) {
	ref := identity.Parse(placeID)
	if strings.TrimSpace(ref.Value) == "" {
		return nil, apperror.ValidationField("place_id", "Place id is required")
	}
	loc, err := s.repo.GetLocationByPlaceID(ctx, ref.Value)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("place_id", "Location not found")
		}
		return nil, apperror.Internal(err)
	}
	return loc, nil
}
