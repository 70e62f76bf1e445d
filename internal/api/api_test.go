package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crisis-assist/internal/config"
	"crisis-assist/internal/location"
	"crisis-assist/internal/news"
	"crisis-assist/internal/places"
	"crisis-assist/internal/session"
)

type fakeFinder struct {
	results []places.Place
}

func (f *fakeFinder) FindPlaces(_ context.Context, category string, loc *location.Location) ([]places.Place, error) {
	if _, err := places.ParseCategory(category); err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, location.ErrUnresolved
	}
	return f.results, nil
}

type fakeNews struct {
	articles []news.Article
	calls    int
}

func (f *fakeNews) FetchHeadlines(context.Context) []news.Article {
	f.calls++
	return f.articles
}

// fakeGenerator answers every query with reply, after release is closed if set.
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	release chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, query string, _ *location.Location) (string, error) {
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reply, nil
}

type testEnv struct {
	router *gin.Engine
	store  *session.Store
	finder *fakeFinder
	news   *fakeNews
	cfg    *config.Config
}

func newTestEnv(t *testing.T, gen session.Generator, loc *location.Location) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	store := session.NewStore(gen, loc, zap.NewNop())
	env := &testEnv{
		store:  store,
		finder: &fakeFinder{},
		news:   &fakeNews{},
		cfg:    cfg,
	}
	env.router = SetupRouter(Deps{
		Config:         cfg,
		Sessions:       store,
		Places:         env.finder,
		News:           env.news,
		Location:       loc,
		LocationSource: location.SourceIP,
		Logger:         zap.NewNop(),
	})
	t.Cleanup(func() { _ = store.CancelAll(context.Background()) })
	return env
}

// do sends req through the router, carrying the session cookie when sess is set.
func (e *testEnv) do(req *http.Request, sess *session.Session) *httptest.ResponseRecorder {
	if sess != nil {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sess.ID})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func form(values string) *strings.Reader {
	return strings.NewReader(values)
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
