package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"nyumba-backend/internal/geocode"
	"nyumba-backend/internal/middleware"
	"nyumba-backend/internal/models"
	"nyumba-backend/internal/services"
	"nyumba-backend/internal/supabase"
)

type ListingsHandler struct {
	dbClient     *supabase.DatabaseClient
	imageService *services.ImageService
	geocoder     *geocode.Geocoder
	logger       *zap.Logger
}

func NewListingsHandler(dbClient *supabase.DatabaseClient, imageService *services.ImageService, geocoder *geocode.Geocoder, logger *zap.Logger) *ListingsHandler {
	return &ListingsHandler{
		dbClient:     dbClient,
		imageService: imageService,
		geocoder:     geocoder,
		logger:       logger,
	}
}

// currentUserID pulls the authenticated user out of the gin context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

func listingParam(c *gin.Context) (uuid.UUID, bool) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid listing id"})
		return uuid.Nil, false
	}
	return listingID, true
}

func toListingResponse(l *models.Listing) models.ListingResponse {
	resp := models.ListingResponse{
		ID:           l.ID.String(),
		UserID:       l.UserID.String(),
		Title:        l.Title,
		Location:     l.Location,
		PriceTZS:     l.PriceTZS,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		PropertyType: l.PropertyType,
		Images:       append([]string{}, l.Images...),
		Status:       l.Status,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.Description.Valid {
		resp.Description = l.Description.String
	}
	if l.ContactPhone.Valid {
		resp.ContactPhone = l.ContactPhone.String
	}
	if l.Latitude.Valid {
		lat := l.Latitude.Float64
		resp.Latitude = &lat
	}
	if l.Longitude.Valid {
		lng := l.Longitude.Float64
		resp.Longitude = &lng
	}
	return resp
}

// CreateListing godoc
// @Summary     Create a listing
// @Description Creates a property listing for the authenticated landlord. When coordinates are omitted the location string is geocoded.
// @Tags        listings
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       listing body models.CreateListingRequest true "Listing"
// @Success     201 {object} models.ListingResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /listings [post]
func (h *ListingsHandler) CreateListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	listing := &models.Listing{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        req.Title,
		Location:     req.Location,
		PriceTZS:     req.PriceTZS,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		PropertyType: req.PropertyType,
		Status:       "active",
	}
	if listing.PropertyType == "" {
		listing.PropertyType = "house"
	}
	if req.Description != "" {
		listing.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.ContactPhone != "" {
		listing.ContactPhone = sql.NullString{String: req.ContactPhone, Valid: true}
	}

	if req.Latitude != 0 || req.Longitude != 0 {
		listing.Latitude = sql.NullFloat64{Float64: req.Latitude, Valid: true}
		listing.Longitude = sql.NullFloat64{Float64: req.Longitude, Valid: true}
	} else if coords, err := h.geocoder.Resolve(c.Request.Context(), req.Location); err == nil {
		listing.Latitude = sql.NullFloat64{Float64: coords.Latitude, Valid: true}
		listing.Longitude = sql.NullFloat64{Float64: coords.Longitude, Valid: true}
	}

	created, err := h.dbClient.CreateListing(listing)
	if err != nil {
		h.logger.Error("failed to create listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create listing"})
		return
	}

	c.JSON(http.StatusCreated, toListingResponse(created))
}

// ListListings godoc
// @Summary     Browse listings
// @Description Returns active listings, filtered and sorted server-side.
// @Tags        listings
// @Produce     json
// @Security    Bearer
// @Param       location query string false "Location substring"
// @Param       min_price query int false "Minimum monthly price (TZS)"
// @Param       max_price query int false "Maximum monthly price (TZS)"
// @Param       bedrooms query int false "Minimum bedrooms"
// @Param       property_type query string false "Property type"
// @Param       sort query string false "newest | price_asc | price_desc"
// @Param       mine query bool false "Only the caller's own listings"
// @Success     200 {object} models.ListingListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /listings [get]
func (h *ListingsHandler) ListListings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var listings []models.Listing
	var err error

	if c.Query("mine") == "true" {
		listings, err = h.dbClient.ListUserListings(userID)
	} else {
		filters := models.ListingFilters{
			Location:     c.Query("location"),
			PropertyType: c.Query("property_type"),
			Sort:         c.Query("sort"),
		}
		filters.MinPrice, _ = strconv.ParseInt(c.Query("min_price"), 10, 64)
		filters.MaxPrice, _ = strconv.ParseInt(c.Query("max_price"), 10, 64)
		filters.MinBedrooms, _ = strconv.Atoi(c.Query("bedrooms"))
		filters.Limit, _ = strconv.Atoi(c.Query("limit"))
		filters.Offset, _ = strconv.Atoi(c.Query("offset"))
		listings, err = h.dbClient.ListListings(filters)
	}

	if err != nil {
		h.logger.Error("failed to list listings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list listings"})
		return
	}

	resp := models.ListingListResponse{Listings: make([]models.ListingResponse, 0, len(listings))}
	for i := range listings {
		resp.Listings = append(resp.Listings, toListingResponse(&listings[i]))
	}
	resp.Total = len(resp.Listings)

	c.JSON(http.StatusOK, resp)
}

// GetListing godoc
// @Summary     Get one listing
// @Tags        listings
// @Produce     json
// @Security    Bearer
// @Param       listing_id path string true "Listing ID (UUID)"
// @Success     200 {object} models.ListingResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /listings/{listing_id} [get]
func (h *ListingsHandler) GetListing(c *gin.Context) {
	listingID, ok := listingParam(c)
	if !ok {
		return
	}

	listing, err := h.dbClient.GetListing(listingID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "listing not found"})
		return
	}

	c.JSON(http.StatusOK, toListingResponse(listing))
}

// UpdateListing godoc
// @Summary     Update a listing
// @Description Applies a partial update. Only the owner may update a listing.
// @Tags        listings
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       listing_id path string true "Listing ID (UUID)"
// @Param       listing body models.UpdateListingRequest true "Fields to update"
// @Success     200 {object} models.ListingResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /listings/{listing_id} [put]
func (h *ListingsHandler) UpdateListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, ok := listingParam(c)
	if !ok {
		return
	}

	var req models.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	listing, err := h.dbClient.GetListingForUser(listingID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "listing not found"})
		return
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Location != nil {
		listing.Location = *req.Location
		// A new location invalidates stored coordinates unless the request
		// carries fresh ones.
		if req.Latitude == nil && req.Longitude == nil {
			if coords, err := h.geocoder.Resolve(c.Request.Context(), *req.Location); err == nil {
				listing.Latitude = sql.NullFloat64{Float64: coords.Latitude, Valid: true}
				listing.Longitude = sql.NullFloat64{Float64: coords.Longitude, Valid: true}
			} else {
				listing.Latitude = sql.NullFloat64{}
				listing.Longitude = sql.NullFloat64{}
			}
		}
	}
	if req.Latitude != nil {
		listing.Latitude = sql.NullFloat64{Float64: *req.Latitude, Valid: true}
	}
	if req.Longitude != nil {
		listing.Longitude = sql.NullFloat64{Float64: *req.Longitude, Valid: true}
	}
	if req.PriceTZS != nil {
		listing.PriceTZS = *req.PriceTZS
	}
	if req.Bedrooms != nil {
		listing.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		listing.Bathrooms = *req.Bathrooms
	}
	if req.PropertyType != nil {
		listing.PropertyType = *req.PropertyType
	}
	if req.ContactPhone != nil {
		listing.ContactPhone = sql.NullString{String: *req.ContactPhone, Valid: *req.ContactPhone != ""}
	}
	if req.Status != nil {
		listing.Status = *req.Status
	}

	updated, err := h.dbClient.UpdateListing(listing)
	if err != nil {
		h.logger.Error("failed to update listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update listing"})
		return
	}

	c.JSON(http.StatusOK, toListingResponse(updated))
}

// DeleteListing godoc
// @Summary     Delete a listing
// @Description Deletes a listing and its stored images. Only the owner may delete.
// @Tags        listings
// @Produce     json
// @Security    Bearer
// @Param       listing_id path string true "Listing ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /listings/{listing_id} [delete]
func (h *ListingsHandler) DeleteListing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, ok := listingParam(c)
	if !ok {
		return
	}

	listing, err := h.dbClient.GetListingForUser(listingID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "listing not found"})
		return
	}

	h.imageService.DeleteListingAssets(listing)

	if err := h.dbClient.DeleteListing(listingID, userID); err != nil {
		h.logger.Error("failed to delete listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete listing"})
		return
	}

	c.Status(http.StatusNoContent)
}
