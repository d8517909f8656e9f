package memory

import (
	"context"
	"sync"
	"time"

	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookmarkRepository is the in-memory bookmark store. Insertion order is kept.
type BookmarkRepository struct {
	mu        sync.RWMutex
	bookmarks []models.Bookmark
}

func NewBookmarkRepository() *BookmarkRepository {
	return &BookmarkRepository{}
}

// Seed stores b as-is, including a caller-chosen (possibly legacy) id.
func (r *BookmarkRepository) Seed(b models.Bookmark) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookmarks = append(r.bookmarks, b)
}

func (r *BookmarkRepository) CreateBookmark(_ context.Context, bookmark *models.Bookmark) (*models.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookmark.ID = primitive.NewObjectID().Hex()
	bookmark.CreatedAt = time.Now()
	r.bookmarks = append(r.bookmarks, *bookmark)
	return bookmark, nil
}

func (r *BookmarkRepository) findFirst(match func(b models.Bookmark) bool) (*models.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookmarks {
		if match(b) {
			found := b
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *BookmarkRepository) FindByPlaceID(_ context.Context, placeID string) (*models.Bookmark, error) {
	return r.findFirst(func(b models.Bookmark) bool { return b.PlaceID == placeID })
}

func (r *BookmarkRepository) FindByNameAndCoordinates(_ context.Context, name string, lat, lng float64) (*models.Bookmark, error) {
	return r.findFirst(func(b models.Bookmark) bool {
		return b.Name == name && b.Coordinates.Lat == lat && b.Coordinates.Lng == lng
	})
}

func (r *BookmarkRepository) BackfillPlaceID(_ context.Context, id, placeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.bookmarks {
		if sameID(r.bookmarks[i].ID, id) && r.bookmarks[i].PlaceID == "" {
			r.bookmarks[i].PlaceID = placeID
		}
	}
	return nil
}

func (r *BookmarkRepository) deleteWhere(match func(b models.Bookmark) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.bookmarks[:0:0]
	for _, b := range r.bookmarks {
		if !match(b) {
			kept = append(kept, b)
		}
	}
	deleted := len(kept) != len(r.bookmarks)
	r.bookmarks = kept
	return deleted
}

func (r *BookmarkRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	return r.deleteWhere(func(b models.Bookmark) bool { return sameID(b.ID, id) }), nil
}

func (r *BookmarkRepository) DeleteByPlaceID(_ context.Context, placeID string) (bool, error) {
	return r.deleteWhere(func(b models.Bookmark) bool { return b.PlaceID == placeID }), nil
}

func (r *BookmarkRepository) ListBookmarks(_ context.Context, ownerEmail string) ([]models.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Bookmark{}
	for _, b := range r.bookmarks {
		if ownerEmail == "" || b.UserEmail == ownerEmail {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BookmarkRepository) FindByReferences(_ context.Context, ids []primitive.ObjectID, placeIDs, legacyIDs []string) ([]models.Bookmark, error) {
	want := make(map[string]bool)
	for _, id := range ids {
		want[id.Hex()] = true
	}
	for _, id := range legacyIDs {
		want[id] = true
	}
	places := make(map[string]bool)
	for _, p := range placeIDs {
		places[p] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Bookmark
	for _, b := range r.bookmarks {
		if want[b.ID] || (b.PlaceID != "" && places[b.PlaceID]) {
			out = append(out, b)
		}
	}
	return out, nil
}

// sameID compares ids the way Mongo would: ObjectIDs case-insensitively, strings exactly.
func sameID(stored, id string) bool {
	if isObjectIDHex(stored) && isObjectIDHex(id) {
		a, _ := primitive.ObjectIDFromHex(stored)
		b, _ := primitive.ObjectIDFromHex(id)
		return a == b
	}
	return stored == id
}

func isObjectIDHex(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
