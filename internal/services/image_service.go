package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nyumba-backend/internal/models"
	"nyumba-backend/internal/supabase"
	"nyumba-backend/internal/upload"
)

// ImageService runs the upload pipeline against a listing: it enforces the
// image cap against current database state, merges resulting URLs into the
// listing's ordered image list, and publishes progress events.
type ImageService struct {
	orchestrator   *upload.Orchestrator
	dbClient       *supabase.DatabaseClient
	storageClient  *supabase.StorageClient
	realtimeClient *supabase.RealtimeClient
	logger         *zap.Logger
}

func NewImageService(
	orchestrator *upload.Orchestrator,
	dbClient *supabase.DatabaseClient,
	storageClient *supabase.StorageClient,
	realtimeClient *supabase.RealtimeClient,
	logger *zap.Logger,
) *ImageService {
	return &ImageService{
		orchestrator:   orchestrator,
		dbClient:       dbClient,
		storageClient:  storageClient,
		realtimeClient: realtimeClient,
		logger:         logger,
	}
}

// UploadListingImages returns the pipeline result and the listing's merged
// image list after successful uploads are appended.
func (s *ImageService) UploadListingImages(ctx context.Context, listingID, userID uuid.UUID, token string, candidates []upload.Candidate) (*upload.Result, []string, error) {
	listing, err := s.dbClient.GetListingForUser(listingID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing not found: %w", err)
	}

	s.realtimeClient.PublishListingEvent(listingID, "upload_started",
		supabase.UploadStartedPayload(listingID, len(candidates)))

	batch := upload.Batch{
		Candidates:     candidates,
		UserID:         userID.String(),
		SessionToken:   token,
		ExistingImages: len(listing.Images),
		OnProgress: func(ev upload.ProgressEvent) {
			s.realtimeClient.PublishListingEvent(listingID, "upload_progress",
				supabase.UploadProgressPayload(listingID, ev.Filename, ev.State, ev.Index))
		},
	}

	result, err := s.orchestrator.Run(ctx, batch)
	if err != nil {
		return nil, nil, err
	}

	images := append([]string{}, listing.Images...)
	images = append(images, result.URLs...)

	if len(result.URLs) > 0 {
		if err := s.dbClient.UpdateListingImages(listingID, userID, images); err != nil {
			// The objects are uploaded but the listing row was not updated;
			// surface this as a hard failure so the client can retry.
			return nil, nil, fmt.Errorf("uploads succeeded but listing update failed: %w", err)
		}
	}

	failed := len(result.Files) - len(result.URLs)
	s.realtimeClient.PublishListingEvent(listingID, "upload_completed",
		supabase.UploadCompletedPayload(listingID, result.URLs, failed))

	return result, images, nil
}

// RemoveListingImage drops one URL from the listing and deletes the backing
// object when it lives in our bucket. Remote-compressed images stored
// elsewhere are only unlinked.
func (s *ImageService) RemoveListingImage(ctx context.Context, listingID, userID uuid.UUID, url string) ([]string, error) {
	listing, err := s.dbClient.GetListingForUser(listingID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing not found: %w", err)
	}

	images := make([]string, 0, len(listing.Images))
	found := false
	for _, img := range listing.Images {
		if img == url {
			found = true
			continue
		}
		images = append(images, img)
	}
	if !found {
		return nil, fmt.Errorf("image not found on listing")
	}

	if err := s.dbClient.UpdateListingImages(listingID, userID, images); err != nil {
		return nil, err
	}

	if key, ok := s.storageClient.KeyFromPublicURL(url); ok {
		if err := s.storageClient.DeleteObject(key); err != nil {
			s.logger.Warn("failed to delete storage object",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	return images, nil
}

// DeleteListingAssets removes every stored object referenced by a listing.
// Called before the listing row is deleted.
func (s *ImageService) DeleteListingAssets(listing *models.Listing) {
	for _, url := range listing.Images {
		key, ok := s.storageClient.KeyFromPublicURL(url)
		if !ok {
			continue
		}
		if err := s.storageClient.DeleteObject(key); err != nil {
			s.logger.Warn("failed to delete storage object",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}
