package upload_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nyumba-backend/internal/upload"
)

type fakeRemote struct {
	mu       sync.Mutex
	failAll  bool
	failFor  map[string]bool
	calls    int
	lastUser string
}

func (f *fakeRemote) Compress(ctx context.Context, asset *upload.Asset, userID, token string) (*upload.RemoteOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastUser = userID
	if f.failAll || f.failFor[asset.Filename] {
		return nil, &upload.RemoteError{StatusCode: 500, Message: "function unavailable"}
	}
	return &upload.RemoteOutcome{URL: "https://remote.example.com/" + asset.Filename}, nil
}

type fakeStore struct {
	mu        sync.Mutex
	calls     int
	failCalls map[int]bool // 1-based call number → fail
	keys      []string
}

func (f *fakeStore) UploadObject(key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failCalls[f.calls] {
		return "", errors.New("storage unavailable")
	}
	f.keys = append(f.keys, key)
	return fmt.Sprintf("https://storage.example.com/call-%d", f.calls), nil
}

func validCandidate(t *testing.T, name string) upload.Candidate {
	t.Helper()
	data := makeTestImage(t, 60, 60, encodeJPEG)
	return upload.Candidate{
		Filename: name,
		MIMEType: "image/jpeg",
		Size:     int64(len(data)),
		Data:     data,
	}
}

func newOrchestrator(remote upload.RemoteInvoker, store upload.ObjectStore, opts upload.Options) *upload.Orchestrator {
	validator := upload.NewValidator(5 << 20)
	compressor := upload.NewCompressor(upload.CompressOptions{}, zap.NewNop())
	return upload.NewOrchestrator(validator, compressor, remote, store, opts, zap.NewNop())
}

func TestOrchestrator_RemotePath(t *testing.T) {
	remote := &fakeRemote{}
	store := &fakeStore{}
	o := newOrchestrator(remote, store, upload.Options{MaxImages: 5, RejectBatchOnInvalid: true})

	result, err := o.Run(context.Background(), upload.Batch{
		Candidates:   []upload.Candidate{validCandidate(t, "a.jpg"), validCandidate(t, "b.jpg")},
		UserID:       "user-1",
		SessionToken: "token",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://remote.example.com/a.jpg",
		"https://remote.example.com/b.jpg",
	}, result.URLs)
	assert.Equal(t, "user-1", remote.lastUser)
	assert.Zero(t, store.calls)
}

func TestOrchestrator_AllFilesRecoveredViaFallback(t *testing.T) {
	remote := &fakeRemote{failAll: true}
	store := &fakeStore{}
	o := newOrchestrator(remote, store, upload.Options{MaxImages: 5, RejectBatchOnInvalid: true})

	result, err := o.Run(context.Background(), upload.Batch{
		Candidates: []upload.Candidate{
			validCandidate(t, "a.jpg"),
			validCandidate(t, "b.jpg"),
			validCandidate(t, "c.jpg"),
		},
		UserID:       "user-1",
		SessionToken: "token",
	})
	require.NoError(t, err)

	// Dead endpoint must cause zero data loss: every file lands via fallback.
	assert.Equal(t, []string{
		"https://storage.example.com/call-1",
		"https://storage.example.com/call-2",
		"https://storage.example.com/call-3",
	}, result.URLs)
	for _, f := range result.Files {
		assert.Equal(t, upload.StateUploaded, f.State)
	}
	for _, key := range store.keys {
		assert.Contains(t, key, "user-1/")
	}
}

func TestOrchestrator_PartialFailurePreservesOrder(t *testing.T) {
	remote := &fakeRemote{failAll: true}
	store := &fakeStore{failCalls: map[int]bool{2: true}}
	o := newOrchestrator(remote, store, upload.Options{MaxImages: 5, RejectBatchOnInvalid: true})

	result, err := o.Run(context.Background(), upload.Batch{
		Candidates: []upload.Candidate{
			validCandidate(t, "a.jpg"),
			validCandidate(t, "b.jpg"),
			validCandidate(t, "c.jpg"),
		},
		UserID:       "user-1",
		SessionToken: "token",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://storage.example.com/call-1",
		"https://storage.example.com/call-3",
	}, result.URLs)

	assert.Equal(t, upload.StateUploaded, result.Files[0].State)
	assert.Equal(t, upload.StateUploadFailed, result.Files[1].State)
	assert.Equal(t, upload.StateUploaded, result.Files[2].State)

	var fe *upload.FallbackError
	assert.ErrorAs(t, result.Files[1].Err, &fe)
}

func TestOrchestrator_BatchCapRejectedBeforeProcessing(t *testing.T) {
	remote := &fakeRemote{}
	store := &fakeStore{}
	o := newOrchestrator(remote, store, upload.Options{MaxImages: 5, RejectBatchOnInvalid: true})

	_, err := o.Run(context.Background(), upload.Batch{
		Candidates: []upload.Candidate{
			{Filename: "a.jpg", MIMEType: "image/jpeg", Size: 1024},
			{Filename: "b.jpg", MIMEType: "image/jpeg", Size: 1024},
			{Filename: "c.jpg", MIMEType: "image/jpeg", Size: 1024},
		},
		UserID:         "user-1",
		SessionToken:   "token",
		ExistingImages: 3,
	})
	require.Error(t, err)

	var ble *upload.BatchLimitError
	require.ErrorAs(t, err, &ble)
	assert.Zero(t, remote.calls)
	assert.Zero(t, store.calls)
}

func TestOrchestrator_MissingToken(t *testing.T) {
	o := newOrchestrator(&fakeRemote{}, &fakeStore{}, upload.Options{MaxImages: 5})

	_, err := o.Run(context.Background(), upload.Batch{
		Candidates: []upload.Candidate{validCandidate(t, "a.jpg")},
		UserID:     "user-1",
	})
	assert.ErrorIs(t, err, upload.ErrNotAuthenticated)
}

func TestOrchestrator_InvalidFileAbortsBatch(t *testing.T) {
	remote := &fakeRemote{}
	o := newOrchestrator(remote, &fakeStore{}, upload.Options{MaxImages: 5, RejectBatchOnInvalid: true})

	_, err := o.Run(context.Background(), upload.Batch{
		Candidates: []upload.Candidate{
			validCandidate(t, "good.jpg"),
			{Filename: "malware.exe.jpg", MIMEType: "image/jpeg", Size: 1024},
		},
		UserID:       "user-1",
		SessionToken: "token",
	})
	require.Error(t, err)

	var ve *upload.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "malware.exe.jpg", ve.Filename)
	assert.Zero(t, remote.calls)
}

func TestOrchestrator_InvalidFileSkipped(t *testing.T) {
	remote := &fakeRemote{}
	o := newOrchestrator(remote, &fakeStore{}, upload.Options{MaxImages: 5, RejectBatchOnInvalid: false})

	result, err := o.Run(context.Background(), upload.Batch{
		Candidates: []upload.Candidate{
			{Filename: "bad.gif", MIMEType: "image/gif", Size: 1024},
			validCandidate(t, "good.jpg"),
		},
		UserID:       "user-1",
		SessionToken: "token",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://remote.example.com/good.jpg"}, result.URLs)
	assert.Equal(t, upload.StateRejected, result.Files[0].State)
	assert.Equal(t, upload.StateUploaded, result.Files[1].State)
}

func TestOrchestrator_ConcurrentRunKeepsInputOrder(t *testing.T) {
	remote := &fakeRemote{}
	o := newOrchestrator(remote, &fakeStore{}, upload.Options{
		MaxImages:            5,
		Concurrency:          3,
		RejectBatchOnInvalid: true,
	})

	result, err := o.Run(context.Background(), upload.Batch{
		Candidates: []upload.Candidate{
			validCandidate(t, "1.jpg"),
			validCandidate(t, "2.jpg"),
			validCandidate(t, "3.jpg"),
			validCandidate(t, "4.jpg"),
		},
		UserID:       "user-1",
		SessionToken: "token",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://remote.example.com/1.jpg",
		"https://remote.example.com/2.jpg",
		"https://remote.example.com/3.jpg",
		"https://remote.example.com/4.jpg",
	}, result.URLs)
}

func TestOrchestrator_CanceledContext(t *testing.T) {
	o := newOrchestrator(&fakeRemote{}, &fakeStore{}, upload.Options{MaxImages: 5, RejectBatchOnInvalid: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, upload.Batch{
		Candidates:   []upload.Candidate{validCandidate(t, "a.jpg")},
		UserID:       "user-1",
		SessionToken: "token",
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrchestrator_ProgressEvents(t *testing.T) {
	remote := &fakeRemote{failAll: true}
	o := newOrchestrator(remote, &fakeStore{}, upload.Options{MaxImages: 5, RejectBatchOnInvalid: true})

	var mu sync.Mutex
	var states []string
	_, err := o.Run(context.Background(), upload.Batch{
		Candidates:   []upload.Candidate{validCandidate(t, "a.jpg")},
		UserID:       "user-1",
		SessionToken: "token",
		OnProgress: func(ev upload.ProgressEvent) {
			mu.Lock()
			states = append(states, ev.State)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		upload.StateValidating,
		upload.StateCompressing,
		upload.StateUploading,
		upload.StateFallbackUploading,
		upload.StateUploaded,
	}, states)
}
