// Package places fetches study-friendly venues from the Google Places nearby search
// and stores them in the locations collection.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	// A next_page_token is rejected until the provider has had time to activate it.
	defaultPageDelay = 2 * time.Second
	placeType        = "cafe"
)

var ErrMissingAPIKey = errors.New("places: api key is not configured")

// Client calls the nearby search endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	pageLimiter *rate.Limiter
}

type Option func(*Client)

// WithBaseURL points the client at another endpoint, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithPageDelay sets the pause between page fetches.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) { c.pageLimiter = rate.NewLimiter(rate.Every(d), 1) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		pageLimiter: rate.NewLimiter(rate.Every(defaultPageDelay), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Status        string         `json:"status"`
	ErrorMessage  string         `json:"error_message"`
	NextPageToken string         `json:"next_page_token"`
	Results       []searchResult `json:"results"`
}

type searchResult struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	OpeningHours map[string]interface{} `json:"opening_hours"`
	Types        []string               `json:"types"`
	Vicinity     string                 `json:"vicinity"`
	Rating       float64                `json:"rating"`
	Photos       []struct {
		PhotoReference string `json:"photo_reference"`
		Height         int    `json:"height"`
		Width          int    `json:"width"`
	} `json:"photos"`
}

func (r searchResult) toLocation() models.Location {
	loc := models.Location{
		PlaceID:      r.PlaceID,
		Name:         r.Name,
		OpeningHours: r.OpeningHours,
		Types:        r.Types,
		Vicinity:     r.Vicinity,
		Rating:       r.Rating,
	}
	loc.Geometry.Location = models.Coordinates{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}
	for _, p := range r.Photos {
		loc.Photos = append(loc.Photos, models.Photo{PhotoReference: p.PhotoReference, Height: p.Height, Width: p.Width})
	}
	return loc
}

// NearbyCafes returns every cafe within radius meters of location ("lat,lng"),
// following next_page_token until the provider stops returning one.
func (c *Client) NearbyCafes(ctx context.Context, location string, radius int) ([]models.Location, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var (
		all   []models.Location
		token string
		pages int
	)
	for {
		if err := c.pageLimiter.Wait(ctx); err != nil {
			return all, fmt.Errorf("rate limit: %w", err)
		}

		resp, err := c.search(ctx, location, radius, token)
		if err != nil {
			return all, err
		}
		pages++
		for _, r := range resp.Results {
			all = append(all, r.toLocation())
		}

		if resp.NextPageToken == "" {
			break
		}
		token = resp.NextPageToken
	}

	logger.Log.WithFields(logrus.Fields{
		"location": location,
		"radius":   radius,
		"pages":    pages,
		"count":    len(all),
	}).Info("Nearby search finished")
	return all, nil
}

func (c *Client) search(ctx context.Context, location string, radius int, pageToken string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	} else {
		params.Set("location", location)
		params.Set("radius", strconv.Itoa(radius))
		params.Set("type", placeType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	switch out.Status {
	case "OK", "ZERO_RESULTS", "":
		return &out, nil
	default:
		return nil, fmt.Errorf("search failed: %s %s", out.Status, out.ErrorMessage)
	}
}
