package upload_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nyumba-backend/internal/upload"
)

func testAsset() *upload.Asset {
	return &upload.Asset{
		Filename:    "photo.jpg",
		Data:        []byte("compressed-bytes"),
		ContentType: "image/jpeg",
	}
}

func TestRemoteCompressor_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))

		if assert.NoError(t, r.ParseMultipartForm(10<<20)) {
			assert.Equal(t, "user-123", r.FormValue("userId"))
			file, header, err := r.FormFile("image")
			if assert.NoError(t, err) {
				file.Close()
				assert.Equal(t, "photo.jpg", header.Filename)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"url":"https://cdn.example.com/a.jpg","metadata":{"original_size":100,"compressed_size":50,"ratio":0.5}}`))
	}))
	defer server.Close()

	rc := upload.NewRemoteCompressor(server.URL, zap.NewNop())
	out, err := rc.Compress(context.Background(), testAsset(), "user-123", "session-token")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/a.jpg", out.URL)
	require.NotNil(t, out.Metadata)
	assert.Equal(t, int64(50), out.Metadata.CompressedSize)
}

func TestRemoteCompressor_ServerReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error":"bucket quota exceeded"}`))
	}))
	defer server.Close()

	rc := upload.NewRemoteCompressor(server.URL, zap.NewNop())
	_, err := rc.Compress(context.Background(), testAsset(), "user-123", "token")
	require.Error(t, err)

	var re *upload.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "bucket quota exceeded", re.Message)
}

func TestRemoteCompressor_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"error":"upstream down"}`))
	}))
	defer server.Close()

	rc := upload.NewRemoteCompressor(server.URL, zap.NewNop())
	_, err := rc.Compress(context.Background(), testAsset(), "user-123", "token")

	var re *upload.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadGateway, re.StatusCode)
}

func TestRemoteCompressor_MissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	rc := upload.NewRemoteCompressor(server.URL, zap.NewNop())
	_, err := rc.Compress(context.Background(), testAsset(), "user-123", "token")

	var re *upload.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Message, "missing the public url")
}

func TestRemoteCompressor_NoEndpointConfigured(t *testing.T) {
	rc := upload.NewRemoteCompressor("", zap.NewNop())
	_, err := rc.Compress(context.Background(), testAsset(), "user-123", "token")

	var re *upload.RemoteError
	require.ErrorAs(t, err, &re)
}
