package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nyumba-backend/internal/middleware"
	"nyumba-backend/internal/models"
	"nyumba-backend/internal/services"
	"nyumba-backend/internal/upload"
)

type ImagesHandler struct {
	imageService *services.ImageService
	logger       *zap.Logger
}

func NewImagesHandler(imageService *services.ImageService, logger *zap.Logger) *ImagesHandler {
	return &ImagesHandler{
		imageService: imageService,
		logger:       logger,
	}
}

// UploadImages godoc
// @Summary     Upload listing images
// @Description Runs each file through validation, compression and upload with
// @Description automatic direct-storage fallback. Successful URLs are
// @Description appended to the listing in the files' original order; partial
// @Description failure is reported per file.
// @Tags        images
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       listing_id path string true "Listing ID (UUID)"
// @Param       images formData file true "Image files (multiple allowed)"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /listings/{listing_id}/images [post]
func (h *ImagesHandler) UploadImages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, ok := listingParam(c)
	if !ok {
		return
	}

	token, _ := c.Get(middleware.TokenKey)
	tokenStr, _ := token.(string)

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	form := c.Request.MultipartForm
	if form == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "multipart form is empty"})
		return
	}

	var files []*multipart.FileHeader
	for _, fieldName := range []string{"images", "image", "files", "file", "photos", "photo"} {
		if f := form.File[fieldName]; len(f) > 0 {
			files = f
			break
		}
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no files uploaded"})
		return
	}

	candidates := make([]upload.Candidate, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to open file",
				Message: fmt.Sprintf("%s: %v", file.Filename, err),
			})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to read file",
				Message: fmt.Sprintf("%s: %v", file.Filename, err),
			})
			return
		}

		candidates = append(candidates, upload.Candidate{
			Filename: file.Filename,
			MIMEType: file.Header.Get("Content-Type"),
			Size:     file.Size,
			Data:     data,
		})
	}

	result, images, err := h.imageService.UploadListingImages(c.Request.Context(), listingID, userID, tokenStr, candidates)
	if err != nil {
		status := http.StatusInternalServerError
		var ve *upload.ValidationError
		var ble *upload.BatchLimitError
		switch {
		case errors.As(err, &ve), errors.As(err, &ble):
			status = http.StatusBadRequest
		case errors.Is(err, upload.ErrNotAuthenticated):
			status = http.StatusUnauthorized
		}
		if status == http.StatusInternalServerError {
			h.logger.Error("upload batch failed",
				zap.String("listing_id", listingID.String()),
				zap.Error(err),
			)
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "upload failed",
			Message: upload.PublicMessage(err),
		})
		return
	}

	response := models.UploadResponse{
		ListingID: listingID.String(),
		Images:    images,
		Status:    "uploaded",
	}
	for _, f := range result.Files {
		response.Files = append(response.Files, models.FileStatus{
			Filename: f.Filename,
			Size:     f.Size,
			State:    f.State,
			URL:      f.URL,
		})
		if f.Err != nil {
			response.Errors = append(response.Errors, models.UploadError{
				Filename: f.Filename,
				Error:    upload.PublicMessage(f.Err),
				Stage:    f.Stage,
			})
		}
	}
	if len(response.Errors) > 0 {
		response.Status = "partial"
	}

	c.JSON(http.StatusOK, response)
}

// RemoveImage godoc
// @Summary     Remove a listing image
// @Description Unlinks the URL from the listing and deletes the stored object
// @Description when it lives in our bucket.
// @Tags        images
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       listing_id path string true "Listing ID (UUID)"
// @Param       image body models.RemoveImageRequest true "Image URL"
// @Success     200 {object} models.ListingResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /listings/{listing_id}/images [delete]
func (h *ImagesHandler) RemoveImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listingID, ok := listingParam(c)
	if !ok {
		return
	}

	var req models.RemoveImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	images, err := h.imageService.RemoveListingImage(c.Request.Context(), listingID, userID, req.URL)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "image not found", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing_id": listingID.String(),
		"images":     images,
	})
}
