// Package places finds emergency services near a location.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"crisis-assist/internal/config"
	"crisis-assist/internal/fault"
	"crisis-assist/internal/location"
)

// Category is a place type the finder accepts.
type Category string

const (
	Hospital    Category = "hospital"
	Police      Category = "police"
	School      Category = "school"
	FireStation Category = "fire_station"
)

// Categories lists the accepted categories in display order.
var Categories = []Category{Hospital, Police, School, FireStation}

// Title is the human label, e.g. "Fire station".
func (c Category) Title() string {
	s := strings.ReplaceAll(string(c), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

const (
	// RadiusMeters bounds every nearby search.
	RadiusMeters = 10000
	// MaxResults is how many places a lookup returns.
	MaxResults = 3
)

// ErrInvalidCategory is returned for any category outside Categories.
var ErrInvalidCategory = errors.New("invalid place category")

// ParseCategory matches s case-insensitively against Categories.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Categories {
		if c == valid {
			return c, nil
		}
	}
	names := make([]string, len(Categories))
	for i, v := range Categories {
		names[i] = string(v)
	}
	return "", fmt.Errorf("%w: %w", ErrInvalidCategory,
		fault.Validation("places", fmt.Sprintf("%q is not one of %s", s, strings.Join(names, ", "))))
}

// Place is one nearby-search match.
type Place struct {
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Category Category `json:"category"`
}

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
	} `json:"results"`
}

// Finder queries the nearby-search endpoint.
type Finder struct {
	httpClient *http.Client
	nearbyURL  string
	apiKey     string
	logger     *zap.Logger
}

func NewFinder(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) *Finder {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	return &Finder{
		httpClient: httpClient,
		nearbyURL:  cfg.Google.NearbyURL,
		apiKey:     cfg.GoogleKey,
		logger:     logger.Named("places"),
	}
}

// FindPlaces returns up to MaxResults places of category around loc, in the
// order the provider ranked them. Invalid categories and an unresolved
// location are errors; provider failures are logged and yield no places.
func (f *Finder) FindPlaces(ctx context.Context, category string, loc *location.Location) ([]Place, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, location.ErrUnresolved
	}

	places, err := f.nearby(ctx, c, *loc)
	if err != nil {
		f.logger.Warn("unable to fetch places", zap.String("category", string(c)), zap.Error(err))
		return []Place{}, nil
	}
	return places, nil
}

func (f *Finder) nearby(ctx context.Context, c Category, loc location.Location) ([]Place, error) {
	const op = "nearby search"

	u, err := url.Parse(f.nearbyURL)
	if err != nil {
		return nil, fault.Network(op, err)
	}
	q := u.Query()
	q.Set("location", loc.String())
	q.Set("radius", strconv.Itoa(RadiusMeters))
	q.Set("type", string(c))
	q.Set("key", f.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fault.Network(op, err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fault.Network(op, err)
	}
	defer resp.Body.Close()
	if err := fault.Status(op, resp); err != nil {
		return nil, err
	}

	var out nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fault.Format(op, err)
	}

	n := min(len(out.Results), MaxResults)
	places := make([]Place, 0, n)
	for _, r := range out.Results[:n] {
		places = append(places, Place{Name: r.Name, Vicinity: r.Vicinity, Category: c})
	}
	return places, nil
}
