package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"crisis-assist/internal/location"
	"crisis-assist/internal/places"
)

func postNearby(env *testEnv, category string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/nearby", form("category="+category))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return env.do(req, nil)
}

func TestNearbySearch(t *testing.T) {
	loc := &location.Location{Latitude: 40.44, Longitude: -79.95}
	env := newTestEnv(t, &fakeGenerator{}, loc)
	env.finder.results = []places.Place{
		{Name: "City Hospital", Vicinity: "1 Main St", Category: places.Hospital},
		{Name: "St. Mary", Vicinity: "2 Oak Ave", Category: places.Hospital},
	}

	w := postNearby(env, "hospital")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Top Hospitals Nearby", "City Hospital", "2 Oak Ave"} {
		if !contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestNearbySearch_NoResults(t *testing.T) {
	tests := []struct {
		name     string
		loc      *location.Location
		category string
	}{
		{name: "invalid category", loc: &location.Location{Latitude: 1, Longitude: 1}, category: "airport"},
		{name: "unresolved location", loc: nil, category: "police"},
		{name: "provider returned nothing", loc: &location.Location{Latitude: 1, Longitude: 1}, category: "school"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeGenerator{}, tt.loc)
			w := postNearby(env, tt.category)
			if !contains(w.Body.String(), "No results found.") {
				t.Errorf("expected no results notice, got: %s", w.Body.String())
			}
			if contains(w.Body.String(), "Nearby:") {
				t.Errorf("did not expect a results heading")
			}
		})
	}
}

func TestPlacesAPIHandler(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, &location.Location{Latitude: 1, Longitude: 1})
	env.finder.results = []places.Place{{Name: "Station 9", Vicinity: "9 Elm", Category: places.FireStation}}

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/places?category=FIRE_STATION", nil), nil)
	if w.Code != http.StatusOK || !contains(w.Body.String(), "Station 9") {
		t.Errorf("expected places, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/places?category=airport", nil), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid category, got %d", w.Code)
	}

	unresolved := newTestEnv(t, &fakeGenerator{}, nil)
	w = unresolved.do(httptest.NewRequest(http.MethodGet, "/api/places?category=hospital", nil), nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a location, got %d", w.Code)
	}
}
