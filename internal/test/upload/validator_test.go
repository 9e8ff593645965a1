package upload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nyumba-backend/internal/upload"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0}

func TestValidator_AcceptsAllowedTypes(t *testing.T) {
	v := upload.NewValidator(5 << 20)

	tests := []struct {
		name     string
		filename string
		mime     string
	}{
		{"jpeg", "photo.jpg", "image/jpeg"},
		{"jpeg alt extension", "photo.jpeg", "image/jpeg"},
		{"png", "house.png", "image/png"},
		{"webp", "room.webp", "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(upload.Candidate{
				Filename: tt.filename,
				MIMEType: tt.mime,
				Size:     1024,
			})
			assert.True(t, res.Accepted, res.Reason)
		})
	}
}

func TestValidator_RejectsUnsupportedMIME(t *testing.T) {
	v := upload.NewValidator(5 << 20)

	res := v.Validate(upload.Candidate{
		Filename: "clip.gif",
		MIMEType: "image/gif",
		Size:     1024,
	})
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "unsupported image type")
}

func TestValidator_RejectsMismatchedExtension(t *testing.T) {
	v := upload.NewValidator(5 << 20)

	res := v.Validate(upload.Candidate{
		Filename: "photo.png",
		MIMEType: "image/jpeg",
		Size:     1024,
	})
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "does not match")
}

func TestValidator_SizeBounds(t *testing.T) {
	v := upload.NewValidator(5 << 20)

	res := v.Validate(upload.Candidate{Filename: "a.jpg", MIMEType: "image/jpeg", Size: 10})
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "too small")

	res = v.Validate(upload.Candidate{Filename: "a.jpg", MIMEType: "image/jpeg", Size: 6 << 20})
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "maximum size")
}

func TestValidator_RejectsPathTraversal(t *testing.T) {
	v := upload.NewValidator(5 << 20)

	for _, filename := range []string{"../../etc/passwd.jpg", "a/b.jpg", "a\\b.jpg", "..secret.jpg"} {
		res := v.Validate(upload.Candidate{
			Filename: filename,
			MIMEType: "image/jpeg",
			Size:     1024,
		})
		assert.False(t, res.Accepted, "filename %q should be rejected", filename)
	}
}

func TestValidator_RejectsDisguisedExtension(t *testing.T) {
	v := upload.NewValidator(5 << 20)

	res := v.Validate(upload.Candidate{
		Filename: "malware.exe.jpg",
		MIMEType: "image/jpeg",
		Size:     1024,
	})
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "blocked extension")
}

func TestValidator_SignatureMismatch(t *testing.T) {
	v := upload.NewValidator(5 << 20)

	// Declared as JPEG but carries a PNG magic number.
	res := v.Validate(upload.Candidate{
		Filename: "photo.jpg",
		MIMEType: "image/jpeg",
		Size:     1024,
		Data:     []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00},
	})
	assert.False(t, res.Accepted)

	res = v.Validate(upload.Candidate{
		Filename: "photo.jpg",
		MIMEType: "image/jpeg",
		Size:     1024,
		Data:     jpegHeader,
	})
	assert.True(t, res.Accepted, res.Reason)
}
