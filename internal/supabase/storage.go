package supabase

import (
	"bytes"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

const publicURLFormat = "%s/storage/v1/object/public/%s/%s"

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// UploadObject writes bytes under the given key and returns the bucket's
// public URL for it. This is the direct-storage fallback used when the
// compress-image function is down.
func (s *StorageClient) UploadObject(key string, data []byte, contentType string) (string, error) {
	upsert := false
	cacheControl := "3600"
	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.GetPublicURL(key), nil
}

func (s *StorageClient) GetPublicURL(key string) string {
	return fmt.Sprintf(publicURLFormat, s.baseURL, s.bucket, key)
}

// KeyFromPublicURL reverses GetPublicURL. It returns false for URLs that do
// not point into this bucket, e.g. images stored by the serverless function
// under another prefix.
func (s *StorageClient) KeyFromPublicURL(url string) (string, bool) {
	prefix := fmt.Sprintf(publicURLFormat, s.baseURL, s.bucket, "")
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

func (s *StorageClient) DeleteObject(key string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{key})
	return err
}

// DeleteUserObjects removes every object stored under a user's prefix.
func (s *StorageClient) DeleteUserObjects(userID string) error {
	prefix := userID + "/"

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list objects: %w", err)
	}

	if len(files) > 0 {
		keys := make([]string, len(files))
		for i, file := range files {
			keys[i] = file.Name
		}
		if _, err := s.client.RemoveFile(s.bucket, keys); err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}
	}

	return nil
}
