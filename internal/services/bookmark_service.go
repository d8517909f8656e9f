package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/apperror"
	"github.com/studyfindr/studyfindr-api/internal/identity"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/repository"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddBookmarkInput is a bookmark submission. Lat and Lng are pointers so that a
// zero coordinate is distinguishable from a missing one.
type AddBookmarkInput struct {
	OwnerEmail  string
	Name        string
	Lat         *float64
	Lng         *float64
	PlaceID     string
	Description string
	Address     string
	Rating      *float64
}

// BookmarkService encapsulates bookmark dedup and reference resolution.
// User reference sets are changed through UserService.
type BookmarkService struct {
	repo  BookmarkRepository
	users *UserService
}

// NewBookmarkService creates a new instance of BookmarkService.
func NewBookmarkService(repo BookmarkRepository, users *UserService) *BookmarkService {
	return &BookmarkService{
		repo:  repo,
		users: users,
	}
}

// findExisting looks a bookmark up by place id first, then by exact name and position.
func (s *BookmarkService) findExisting(ctx context.Context, in AddBookmarkInput) (*models.Bookmark, error) {
	if in.PlaceID != "" {
		b, err := s.repo.FindByPlaceID(ctx, in.PlaceID)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	b, err := s.repo.FindByNameAndCoordinates(ctx, in.Name, *in.Lat, *in.Lng)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return b, err
}

// AddBookmark stores a bookmark once per place. When an equivalent bookmark exists it
// is returned with created=false, after backfilling a newly supplied place id.
func (s *BookmarkService) AddBookmark(ctx context.Context, in AddBookmarkInput) (*models.Bookmark, bool, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.PlaceID = strings.TrimSpace(in.PlaceID)
	if in.Name == "" || in.Lat == nil || in.Lng == nil {
		return nil, false, apperror.ValidationField(apperror.General, "Missing required fields")
	}
	if in.PlaceID != "" {
		// Clients sometimes send the prefixed form.
		in.PlaceID = identity.Parse(in.PlaceID).Value
	}

	if in.OwnerEmail != "" {
		if _, err := s.users.GetUser(ctx, in.OwnerEmail); err != nil {
			return nil, false, err
		}
	}

	existing, err := s.findExisting(ctx, in)
	if err != nil {
		return nil, false, apperror.Internal(err)
	}

	if existing != nil {
		if in.PlaceID != "" && existing.PlaceID == "" {
			if err := s.repo.BackfillPlaceID(ctx, existing.ID, in.PlaceID); err != nil {
				return nil, false, apperror.Internal(err)
			}
			existing.PlaceID = in.PlaceID
		}
		if err := s.associate(ctx, in.OwnerEmail, existing.ID); err != nil {
			return nil, false, err
		}
		logger.Log.WithField("bookmark_id", existing.ID).Info("Bookmark already exists")
		return existing, false, nil
	}

	bookmark := &models.Bookmark{
		Name:        in.Name,
		Coordinates: models.Coordinates{Lat: *in.Lat, Lng: *in.Lng},
		PlaceID:     in.PlaceID,
		Description: in.Description,
		Address:     in.Address,
		Rating:      in.Rating,
		UserEmail:   in.OwnerEmail,
	}
	created, err := s.repo.CreateBookmark(ctx, bookmark)
	if err != nil {
		return nil, false, apperror.Internal(err)
	}
	if err := s.associate(ctx, in.OwnerEmail, created.ID); err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *BookmarkService) associate(ctx context.Context, email, bookmarkID string) error {
	if email == "" {
		return nil
	}
	return s.users.AddBookmarkRef(ctx, email, bookmarkID)
}

// RemoveBookmark deletes by store id, falling back to place id. A reference that
// matches nothing is not an error; removed reports whether anything was deleted.
func (s *BookmarkService) RemoveBookmark(ctx context.Context, ref string) (bool, error) {
	if strings.TrimSpace(ref) == "" {
		return false, apperror.ValidationField("bookmark_id", "Bookmark id is required")
	}
	r := identity.Parse(ref)

	if r.Kind == identity.StoreID {
		removed, err := s.repo.DeleteByID(ctx, r.Value)
		if err != nil {
			return false, apperror.Internal(err)
		}
		if removed {
			logger.Log.WithField("bookmark_id", r.Value).Info("Bookmark removed by id")
			return true, nil
		}
	}

	removed, err := s.repo.DeleteByPlaceID(ctx, r.Value)
	if err != nil {
		return false, apperror.Internal(err)
	}
	if !removed && r.Kind == identity.ExternalID {
		// Legacy documents stored a string _id.
		if removed, err = s.repo.DeleteByID(ctx, r.Value); err != nil {
			return false, apperror.Internal(err)
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"ref":     r.String(),
		"removed": removed,
	}).Info("Bookmark removal processed")
	return removed, nil
}

// RemoveUserBookmark detaches ref from the user and deletes the bookmark record.
// The user may hold the bookmark under its store id or under its place id, so
// entries equivalent to either are pulled.
func (s *BookmarkService) RemoveUserBookmark(ctx context.Context, email, ref string) (bool, error) {
	if strings.TrimSpace(ref) == "" {
		return false, apperror.ValidationField("bookmark_id", "Bookmark id is required")
	}
	matches, err := s.lookup(ctx, ref)
	if err != nil {
		return false, apperror.Internal(err)
	}

	aliases := []string{ref}
	for _, b := range matches {
		aliases = append(aliases, b.ID)
		if b.PlaceID != "" {
			aliases = append(aliases, b.PlaceID)
		}
	}
	if err := s.users.RemoveBookmarkRef(ctx, email, aliases...); err != nil {
		return false, err
	}
	return s.RemoveBookmark(ctx, ref)
}

// lookup finds the bookmarks a single reference points at.
func (s *BookmarkService) lookup(ctx context.Context, ref string) ([]models.Bookmark, error) {
	r := identity.Parse(ref)
	if oid, ok := r.ObjectID(); ok {
		return s.repo.FindByReferences(ctx, []primitive.ObjectID{oid}, []string{r.Value}, nil)
	}
	return s.repo.FindByReferences(ctx, nil, []string{r.Value}, []string{r.Value})
}

// ListBookmarks returns all bookmarks, or only those tagged with ownerEmail.
func (s *BookmarkService) ListBookmarks(ctx context.Context, ownerEmail string) ([]models.Bookmark, error) {
	bookmarks, err := s.repo.ListBookmarks(ctx, ownerEmail)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return bookmarks, nil
}

// ResolveUserBookmarks loads every bookmark the user's reference set points at.
// A reference may match through its store id, a place id or a legacy string id;
// the result holds each bookmark once.
func (s *BookmarkService) ResolveUserBookmarks(ctx context.Context, email string) ([]models.Bookmark, error) {
	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var ids []primitive.ObjectID
	var placeIDs, legacyIDs []string
	for _, raw := range user.Bookmarks {
		r := identity.Parse(raw)
		if oid, ok := r.ObjectID(); ok {
			ids = append(ids, oid)
		}
		placeIDs = append(placeIDs, r.Value)
		legacyIDs = append(legacyIDs, raw)
		if r.Value != raw {
			legacyIDs = append(legacyIDs, r.Value)
		}
	}

	found, err := s.repo.FindByReferences(ctx, ids, placeIDs, legacyIDs)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	seen := make(map[string]bool, len(found))
	bookmarks := []models.Bookmark{}
	for _, b := range found {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// StudySpotVectors returns the coordinates of every bookmark.
func (s *BookmarkService) StudySpotVectors(ctx context.Context) ([]models.Coordinates, error) {
	bookmarks, err := s.repo.ListBookmarks(ctx, "")
	if err != nil {
		return nil, apperror.Internal(err)
	}
	vectors := make([]models.Coordinates, 0, len(bookmarks))
	for _, b := range bookmarks {
		vectors = append(vectors, b.Coordinates)
	}
	return vectors, nil
}
