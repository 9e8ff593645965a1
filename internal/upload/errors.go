package upload

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated aborts a whole batch before any file is touched.
var ErrNotAuthenticated = errors.New("no session token available")

// ValidationError rejects a file before any network use.
type ValidationError struct {
	Filename string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("file %q rejected: %s", e.Filename, e.Reason)
}

// CompressionError marks a file whose client-side compression failed.
type CompressionError struct {
	Filename string
	Err      error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("compress %q: %v", e.Filename, e.Err)
}

func (e *CompressionError) Unwrap() error { return e.Err }

// RemoteError is raised when the serverless compression endpoint returns a
// non-2xx status or a body without a success flag. It triggers the
// direct-storage fallback.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote compression failed (status %d): %s", e.StatusCode, e.Message)
}

// FallbackError is terminal for a file: both upload paths failed.
type FallbackError struct {
	Filename string
	Err      error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("fallback upload of %q: %v", e.Filename, e.Err)
}

func (e *FallbackError) Unwrap() error { return e.Err }

// BatchLimitError rejects a batch that would push the listing over its
// image cap, before any file is processed.
type BatchLimitError struct {
	Max       int
	Existing  int
	Requested int
}

func (e *BatchLimitError) Error() string {
	return fmt.Sprintf("batch of %d would exceed the %d image limit (%d already uploaded)", e.Requested, e.Max, e.Existing)
}

// PublicMessage maps pipeline errors to messages safe to show to API
// clients. Storage-provider and serverless internals are masked; validation
// reasons are user-actionable and pass through.
func PublicMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	var ble *BatchLimitError
	if errors.As(err, &ble) {
		return ble.Error()
	}
	if errors.Is(err, ErrNotAuthenticated) {
		return "you must be signed in to upload images"
	}
	var ce *CompressionError
	if errors.As(err, &ce) {
		return "this image could not be processed, try a different file"
	}
	var fe *FallbackError
	if errors.As(err, &fe) {
		return "image upload failed, please try again"
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return "image upload failed, please try again"
	}
	return "something went wrong"
}
