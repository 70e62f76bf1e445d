package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(d Deps) gin.HandlerFunc {
	cfg := d.Config
	return func(c *gin.Context) {
		toolList := map[string]string{}
		if d.Tools != nil {
			toolList = d.Tools.List()
		}
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"llm": gin.H{
				"model":       cfg.LLM.Model,
				"top_p":       cfg.LLM.TopP,
				"max_tokens":  cfg.LLM.MaxTokens,
				"tool_rounds": cfg.LLM.ToolRounds,
			},
			"news": gin.H{
				"country": cfg.News.Country,
			},
			"tools":        toolList,
			"missing_keys": cfg.MissingKeys(),
		})
	}
}

// GET /api/location
func locationHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Location == nil {
			c.JSON(http.StatusOK, gin.H{"resolved": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"resolved": true,
			"lat":      d.Location.Latitude,
			"lng":      d.Location.Longitude,
			"source":   d.LocationSource,
		})
	}
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.1f", d.Seconds())
}

// page is the data every screen template receives.
func page(d Deps, active string, extra gin.H) gin.H {
	h := gin.H{
		"subpath":  d.Config.Server.Subpath,
		"active":   active,
		"location": d.Location,
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}
