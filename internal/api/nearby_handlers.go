package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crisis-assist/internal/location"
	"crisis-assist/internal/places"
)

type nearbyView struct {
	Heading string
	Places  []places.Place
}

func renderNearby(c *gin.Context, d Deps, selected string, result *nearbyView, notice string) {
	c.HTML(http.StatusOK, "nearby.html", page(d, "nearby", gin.H{
		"categories": places.Categories,
		"selected":   selected,
		"result":     result,
		"notice":     notice,
	}))
}

// GET /nearby
func nearbyPageHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderNearby(c, d, string(places.Hospital), nil, "")
	}
}

// POST /nearby
func nearbySearchHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.PostForm("category")
		found, err := d.Places.FindPlaces(c.Request.Context(), raw, d.Location)
		if err != nil {
			d.Logger.Info("nearby lookup rejected", zap.String("category", raw), zap.Error(err))
		}
		if len(found) == 0 {
			renderNearby(c, d, strings.ToLower(strings.TrimSpace(raw)), nil, "No results found.")
			return
		}
		category, _ := places.ParseCategory(raw)
		renderNearby(c, d, string(category), &nearbyView{
			Heading: "Top " + category.Title() + "s Nearby",
			Places:  found,
		}, "")
	}
}

// GET /api/places?category=
func placesAPIHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := d.Places.FindPlaces(c.Request.Context(), c.Query("category"), d.Location)
		switch {
		case errors.Is(err, places.ErrInvalidCategory):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, location.ErrUnresolved):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "location unresolved"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"places": found})
	}
}
