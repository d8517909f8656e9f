package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationRepository is the in-memory location store.
type LocationRepository struct {
	mu        sync.RWMutex
	locations []models.Location
}

func NewLocationRepository() *LocationRepository {
	return &LocationRepository{}
}

func sameLocation(a, b *models.Location) bool {
	if b.PlaceID != "" {
		return a.PlaceID == b.PlaceID
	}
	return a.Name == b.Name && a.Geometry.Location == b.Geometry.Location
}

func (r *LocationRepository) UpsertLocation(_ context.Context, loc *models.Location) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc.UpdatedAt = time.Now()
	for i := range r.locations {
		if sameLocation(&r.locations[i], loc) {
			id := r.locations[i].ID
			r.locations[i] = *loc
			r.locations[i].ID = id
			return false, nil
		}
	}
	stored := *loc
	stored.ID = primitive.NewObjectID()
	r.locations = append(r.locations, stored)
	return true, nil
}

func (r *LocationRepository) ListLocations(_ context.Context, limit int64) ([]models.Location, error) {
	r.mu.RLock()
	out := append([]models.Location{}, r.locations...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *LocationRepository) GetLocationByPlaceID(_ context.Context, placeID string) (*models.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, loc := range r.locations {
		if loc.PlaceID == placeID {
			found := loc
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

type storedFile struct {
	name        string
	contentType string
	data        []byte
}

// FileRepository is the in-memory upload store.
type FileRepository struct {
	mu    sync.RWMutex
	files map[string]storedFile
}

func NewFileRepository() *FileRepository {
	return &FileRepository{files: make(map[string]storedFile)}
}

func (r *FileRepository) SaveFile(_ context.Context, name, contentType string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}

	id := primitive.NewObjectID().Hex()
	r.mu.Lock()
	r.files[id] = storedFile{name: name, contentType: contentType, data: data}
	r.mu.Unlock()
	return id, nil
}

func (r *FileRepository) OpenFile(_ context.Context, id string) (*models.StoredFile, error) {
	r.mu.RLock()
	f, ok := r.files[id]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.StoredFile{
		ID:          id,
		Name:        f.name,
		ContentType: f.contentType,
		Length:      int64(len(f.data)),
		Content:     io.NopCloser(bytes.NewReader(f.data)),
	}, nil
}
