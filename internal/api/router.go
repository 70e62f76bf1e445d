package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crisis-assist/internal/config"
	"crisis-assist/internal/location"
	"crisis-assist/internal/news"
	"crisis-assist/internal/places"
	"crisis-assist/internal/session"
	"crisis-assist/internal/tools"
)

//go:embed templates/*.html
var templateFS embed.FS

// PlaceFinder looks up places of one category around loc.
type PlaceFinder interface {
	FindPlaces(ctx context.Context, category string, loc *location.Location) ([]places.Place, error)
}

// HeadlineFetcher returns the current top headlines, empty on failure.
type HeadlineFetcher interface {
	FetchHeadlines(ctx context.Context) []news.Article
}

// Deps is everything the handlers need. Location is nil when it could not be
// resolved at startup.
type Deps struct {
	Config         *config.Config
	Sessions       *session.Store
	Places         PlaceFinder
	News           HeadlineFetcher
	Tools          *tools.Registry
	Location       *location.Location
	LocationSource location.Source
	Logger         *zap.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	d.Logger = d.Logger.Named("api")

	r := gin.New()
	r.Use(requestLogger(d.Logger), gin.Recovery())
	subpath := d.Config.Server.Subpath // "" or e.g. "/crisis", always starts with '/'

	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	home := subpath
	if home == "" {
		home = "/"
	}
	r.GET(home, func(c *gin.Context) {
		c.Redirect(http.StatusFound, path.Join(home, "chat"))
	})

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(d))

		// --- Screens ---
		group.GET("/chat", chatPageHandler(d))
		group.POST("/chat", chatSubmitHandler(d))
		group.POST("/chat/cancel", chatCancelHandler(d))
		group.GET("/ws/chat", WSChatHandler(d))
		group.GET("/nearby", nearbyPageHandler(d))
		group.POST("/nearby", nearbySearchHandler(d))
		group.GET("/news", newsPageHandler(d))

		// --- JSON API ---
		group.GET("/api/location", locationHandler(d))
		group.GET("/api/places", placesAPIHandler(d))
		group.GET("/api/news", newsAPIHandler(d))
		group.GET("/api/chat/messages", listMessagesHandler(d))
		group.POST("/api/chat", sendMessageHandler(d))
	}
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
