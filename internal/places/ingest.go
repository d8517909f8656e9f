package places

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
)

// Searcher is implemented by Client.
type Searcher interface {
	NearbyCafes(ctx context.Context, location string, radius int) ([]models.Location, error)
}

// Store persists fetched places; the location repositories satisfy it.
type Store interface {
	UpsertLocation(ctx context.Context, loc *models.Location) (bool, error)
}

// Result summarizes one ingestion run.
type Result struct {
	Found    int `json:"found"`
	Unique   int `json:"unique"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// Ingestor searches a fixed set of centers and upserts what it finds.
type Ingestor struct {
	searcher  Searcher
	store     Store
	locations []string
	radius    int
}

func NewIngestor(searcher Searcher, store Store, locations []string, radius int) *Ingestor {
	return &Ingestor{
		searcher:  searcher,
		store:     store,
		locations: locations,
		radius:    radius,
	}
}

// Run fetches every configured center, drops duplicates and upserts the rest.
// A failed center is logged and skipped; Run fails only if every center failed.
func (i *Ingestor) Run(ctx context.Context) (Result, error) {
	var (
		res     Result
		found   []models.Location
		errs    []error
		centers int
	)

	for _, center := range i.locations {
		places, err := i.searcher.NearbyCafes(ctx, center, i.radius)
		if err != nil {
			logger.Log.WithError(err).WithField("location", center).Warn("Nearby search failed")
			errs = append(errs, fmt.Errorf("%s: %w", center, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		centers++
		found = append(found, places...)
	}
	if centers == 0 && len(errs) > 0 {
		return res, errors.Join(errs...)
	}

	res.Found = len(found)
	unique := dedupe(found)
	res.Unique = len(unique)

	for idx := range unique {
		created, err := i.store.UpsertLocation(ctx, &unique[idx])
		if err != nil {
			return res, fmt.Errorf("failed to store %q: %w", unique[idx].Name, err)
		}
		if created {
			res.Inserted++
		} else {
			res.Updated++
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"centers":  len(i.locations),
		"found":    res.Found,
		"unique":   res.Unique,
		"inserted": res.Inserted,
		"updated":  res.Updated,
	}).Info("Places ingestion finished")
	return res, nil
}

// dedupe keeps the first place per place id, or per exact name and position
// when the provider sent no id.
func dedupe(in []models.Location) []models.Location {
	type nameKey struct {
		name string
		pos  models.Coordinates
	}
	seenIDs := make(map[string]bool)
	seenNames := make(map[nameKey]bool)

	out := make([]models.Location, 0, len(in))
	for _, loc := range in {
		if loc.PlaceID != "" {
			if seenIDs[loc.PlaceID] {
				continue
			}
			seenIDs[loc.PlaceID] = true
		} else {
			k := nameKey{loc.Name, loc.Geometry.Location}
			if seenNames[k] {
				continue
			}
			seenNames[k] = true
		}
		out = append(out, loc)
	}
	return out
}
