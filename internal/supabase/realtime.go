package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Go client has no direct Realtime publish; listing row updates
	// trigger Realtime on the subscribed channels automatically. This hook
	// exists so explicit event publishing can be added without touching
	// callers.
	return nil
}

func (r *RealtimeClient) PublishListingEvent(listingID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("listing:%s", listingID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads

func UploadStartedPayload(listingID uuid.UUID, fileCount int) map[string]interface{} {
	return map[string]interface{}{
		"listing_id": listingID.String(),
		"status":     "uploading",
		"file_count": fileCount,
	}
}

func UploadProgressPayload(listingID uuid.UUID, filename, state string, index int) map[string]interface{} {
	return map[string]interface{}{
		"listing_id": listingID.String(),
		"status":     "uploading",
		"filename":   filename,
		"state":      state,
		"index":      index,
	}
}

func UploadCompletedPayload(listingID uuid.UUID, urls []string, failed int) map[string]interface{} {
	return map[string]interface{}{
		"listing_id": listingID.String(),
		"status":     "uploaded",
		"urls":       urls,
		"failed":     failed,
	}
}
