package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RemoteInvoker is the serverless compression path.
type RemoteInvoker interface {
	Compress(ctx context.Context, asset *Asset, userID, token string) (*RemoteOutcome, error)
}

// ObjectStore is the direct-storage fallback path.
type ObjectStore interface {
	UploadObject(key string, data []byte, contentType string) (string, error)
}

// RemoteOutcome is the URL and optional metadata returned by the serverless
// compression endpoint.
type RemoteOutcome struct {
	URL      string
	Metadata *CompressionMetadata
}

type CompressionMetadata struct {
	OriginalSize   int64   `json:"original_size"`
	CompressedSize int64   `json:"compressed_size"`
	Ratio          float64 `json:"ratio"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

type remoteResponse struct {
	Success  bool                 `json:"success"`
	URL      string               `json:"url"`
	Error    string               `json:"error"`
	Metadata *CompressionMetadata `json:"metadata"`
}

// RemoteCompressor posts compressed bytes to the managed compress-image
// function. The client carries an explicit 30s timeout so a dead endpoint
// cannot leave a batch pending forever.
type RemoteCompressor struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewRemoteCompressor(endpoint string, logger *zap.Logger) *RemoteCompressor {
	return &RemoteCompressor{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (r *RemoteCompressor) Compress(ctx context.Context, asset *Asset, userID, token string) (*RemoteOutcome, error) {
	if r.endpoint == "" {
		return nil, &RemoteError{StatusCode: 0, Message: "no compression endpoint configured"}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", asset.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(asset.Data); err != nil {
		return nil, fmt.Errorf("failed to write image part: %w", err)
	}
	if err := writer.WriteField("userId", userID); err != nil {
		return nil, fmt.Errorf("failed to write userId field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: "failed to read response body"}
	}

	var result remoteResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("invalid response body: %s", truncate(respBody, 200))}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !result.Success {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result.URL == "" {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: "response is missing the public url"}
	}

	return &RemoteOutcome{URL: result.URL, Metadata: result.Metadata}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
