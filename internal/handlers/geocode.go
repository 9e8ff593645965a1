package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nyumba-backend/internal/geocode"
	"nyumba-backend/internal/models"
)

type GeocodeHandler struct {
	geocoder *geocode.Geocoder
}

func NewGeocodeHandler(geocoder *geocode.Geocoder) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// Geocode godoc
// @Summary     Resolve a location to coordinates
// @Description Resolves a free-text Tanzanian location via a static lookup
// @Description table, falling back to a remote geocoding service.
// @Tags        geocode
// @Produce     json
// @Security    Bearer
// @Param       location query string true "Free-text location"
// @Success     200 {object} models.GeocodeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /geocode [get]
func (h *GeocodeHandler) Geocode(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "location query parameter is required"})
		return
	}

	coords, err := h.geocoder.Resolve(c.Request.Context(), location)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "location not found"})
			return
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "geocoding unavailable"})
		return
	}

	c.JSON(http.StatusOK, models.GeocodeResponse{
		Location:  location,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Source:    coords.Source,
	})
}
