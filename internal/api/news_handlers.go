package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"crisis-assist/internal/news"
)

// GET /news?q=
// Headlines are fetched on every render; nothing is cached. The term is
// matched as typed, surrounding spaces included.
func newsPageHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := c.Query("q")
		articles := d.News.FetchHeadlines(c.Request.Context())

		var notice string
		filtered := news.Filter(articles, term)
		switch {
		case len(articles) == 0:
			notice = "No news available."
		case len(filtered) == 0:
			notice = fmt.Sprintf("No articles found containing the term: '%s'.", term)
		}
		c.HTML(http.StatusOK, "news.html", page(d, "news", gin.H{
			"term":     term,
			"articles": filtered,
			"notice":   notice,
		}))
	}
}

// GET /api/news?q=
func newsAPIHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		articles := news.Filter(d.News.FetchHeadlines(c.Request.Context()), c.Query("q"))
		c.JSON(http.StatusOK, gin.H{"articles": articles})
	}
}
