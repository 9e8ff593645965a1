package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nyumba-backend/internal/models"
	"nyumba-backend/internal/supabase"
)

type FavoritesHandler struct {
	dbClient *supabase.DatabaseClient
	logger   *zap.Logger
}

func NewFavoritesHandler(dbClient *supabase.DatabaseClient, logger *zap.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		dbClient: dbClient,
		logger:   logger,
	}
}

// ListFavorites godoc
// @Summary     List favorite listings
// @Tags        favorites
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.FavoriteListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /favorites [get]
func (h *FavoritesHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	listings, err := h.dbClient.ListFavorites(userID)
	if err != nil {
		h.logger.Error("failed to list favorites", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list favorites"})
		return
	}

	resp := models.FavoriteListResponse{Favorites: make([]models.ListingResponse, 0, len(listings))}
	for i := range listings {
		resp.Favorites = append(resp.Favorites, toListingResponse(&listings[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// AddFavorite godoc
// @Summary     Favorite a listing
// @Tags        favorites
// @Produce     json
// @Security    Bearer
// @Param       listing_id path string true "Listing ID (UUID)"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /favorites/{listing_id} [post]
func (h *FavoritesHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, ok := listingParam(c)
	if !ok {
		return
	}

	if _, err := h.dbClient.GetListing(listingID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "listing not found"})
		return
	}

	if err := h.dbClient.AddFavorite(userID, listingID); err != nil {
		h.logger.Error("failed to add favorite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to add favorite"})
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckFavorite godoc
// @Summary     Check whether a listing is favorited
// @Tags        favorites
// @Produce     json
// @Security    Bearer
// @Param       listing_id path string true "Listing ID (UUID)"
// @Success     200 {object} map[string]bool
// @Failure     400 {object} models.ErrorResponse
// @Router      /favorites/{listing_id} [get]
func (h *FavoritesHandler) CheckFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, ok := listingParam(c)
	if !ok {
		return
	}

	favorited, err := h.dbClient.IsFavorite(userID, listingID)
	if err != nil {
		h.logger.Error("failed to check favorite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to check favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// RemoveFavorite godoc
// @Summary     Unfavorite a listing
// @Tags        favorites
// @Produce     json
// @Security    Bearer
// @Param       listing_id path string true "Listing ID (UUID)"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Router      /favorites/{listing_id} [delete]
func (h *FavoritesHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, ok := listingParam(c)
	if !ok {
		return
	}

	if err := h.dbClient.RemoveFavorite(userID, listingID); err != nil {
		h.logger.Error("failed to remove favorite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to remove favorite"})
		return
	}

	c.Status(http.StatusNoContent)
}
