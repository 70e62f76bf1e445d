package location

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"crisis-assist/internal/config"
	"crisis-assist/internal/fault"
)

// Location is an approximate position in decimal degrees.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// String formats the location as "lat,lng", the form nearby search expects.
func (l Location) String() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

type geolocateResponse struct {
	Location *Location `json:"location"`
	Accuracy float64   `json:"accuracy"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location Location `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Client talks to the IP geolocation and geocoding endpoints.
type Client struct {
	httpClient     *http.Client
	geolocationURL string
	geocodeURL     string
	apiKey         string
}

func NewClient(cfg *config.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	return &Client{
		httpClient:     httpClient,
		geolocationURL: cfg.Google.GeolocationURL,
		geocodeURL:     cfg.Google.GeocodeURL,
		apiKey:         cfg.GoogleKey,
	}
}

// Geolocate asks the provider to place the caller by its public IP.
func (c *Client) Geolocate(ctx context.Context) (Location, error) {
	const op = "geolocate"

	u, err := withKey(c.geolocationURL, "key", c.apiKey)
	if err != nil {
		return Location{}, fault.Network(op, err)
	}
	body, _ := json.Marshal(map[string]bool{"considerIp": true})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return Location{}, fault.Network(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fault.Network(op, err)
	}
	defer resp.Body.Close()
	if err := fault.Status(op, resp); err != nil {
		return Location{}, err
	}

	var out geolocateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Location{}, fault.Format(op, err)
	}
	if out.Location == nil {
		return Location{}, fault.Format(op, errors.New("'location' not found in response"))
	}
	return *out.Location, nil
}

// Geocode converts a free-text address to the coordinates of its first match.
func (c *Client) Geocode(ctx context.Context, address string) (Location, error) {
	const op = "geocode"

	u, err := url.Parse(c.geocodeURL)
	if err != nil {
		return Location{}, fault.Network(op, err)
	}
	q := u.Query()
	q.Set("address", address)
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Location{}, fault.Network(op, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fault.Network(op, err)
	}
	defer resp.Body.Close()
	if err := fault.Status(op, resp); err != nil {
		return Location{}, err
	}

	var out geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Location{}, fault.Format(op, err)
	}
	if out.Status != "OK" {
		return Location{}, fault.Format(op, fmt.Errorf("status %q for address %q: %s", out.Status, address, out.ErrorMessage))
	}
	if len(out.Results) == 0 {
		return Location{}, fault.Format(op, fmt.Errorf("no results for address %q", address))
	}
	return out.Results[0].Geometry.Location, nil
}

func withKey(raw, name, key string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(name, key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
