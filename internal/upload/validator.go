package upload

import (
	"bytes"
	"fmt"
	"path"
	"strings"
)

const (
	DefaultMinBytes = 100
	DefaultMaxBytes = 5 << 20
)

var allowedMIMETypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/png":  "png",
	"image/webp": "webp",
}

var allowedExtensions = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".webp": "webp",
}

// Suffixes that must never appear anywhere in a filename, defeating
// disguised-extension uploads like "malware.exe.jpg".
var dangerousSegments = map[string]bool{
	"exe": true, "dll": true, "msi": true, "scr": true, "com": true,
	"bat": true, "cmd": true, "sh": true, "bash": true, "ps1": true,
	"js": true, "vbs": true, "php": true, "py": true, "pl": true,
	"jar": true, "apk": true, "html": true, "htm": true, "svg": true,
}

var imageSignatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
}

// ValidationResult tags a candidate as accepted or rejected with a
// human-readable reason. A rejected candidate must never reach compression
// or upload.
type ValidationResult struct {
	Accepted bool
	Reason   string
}

// Validator performs ordered, short-circuiting checks over file metadata
// and a few header bytes. It is pure: no I/O, no side effects.
type Validator struct {
	MinBytes int64
	MaxBytes int64
}

func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{
		MinBytes: DefaultMinBytes,
		MaxBytes: maxBytes,
	}
}

func reject(format string, args ...interface{}) ValidationResult {
	return ValidationResult{Accepted: false, Reason: fmt.Sprintf(format, args...)}
}

func (v *Validator) Validate(c Candidate) ValidationResult {
	mimeCategory, ok := allowedMIMETypes[strings.ToLower(c.MIMEType)]
	if !ok {
		return reject("unsupported image type %q, only JPEG, PNG and WebP are allowed", c.MIMEType)
	}

	ext := strings.ToLower(path.Ext(c.Filename))
	extCategory, ok := allowedExtensions[ext]
	if !ok {
		return reject("unsupported file extension %q", ext)
	}
	if extCategory != mimeCategory {
		return reject("file extension %q does not match declared type %q", ext, c.MIMEType)
	}

	if c.Size < v.MinBytes {
		return reject("file is too small (%d bytes), it may be empty or corrupt", c.Size)
	}
	if c.Size > v.MaxBytes {
		return reject("file exceeds the maximum size of %d MB", v.MaxBytes>>20)
	}

	if strings.Contains(c.Filename, "..") || strings.ContainsAny(c.Filename, "/\\") {
		return reject("filename contains path separators")
	}

	for _, segment := range strings.Split(strings.ToLower(c.Filename), ".") {
		if dangerousSegments[segment] {
			return reject("filename contains a blocked extension %q", segment)
		}
	}

	// Header bytes are optional at this layer; when present, the magic
	// number must agree with the declared type.
	if len(c.Data) > 0 {
		if !signatureMatches(c.Data, mimeCategory) {
			return reject("file content does not look like a %s image", mimeCategory)
		}
	}

	return ValidationResult{Accepted: true}
}

func signatureMatches(data []byte, category string) bool {
	if category == "webp" {
		// RIFF....WEBP
		return len(data) >= 12 &&
			bytes.Equal(data[0:4], []byte("RIFF")) &&
			bytes.Equal(data[8:12], []byte("WEBP"))
	}
	sig, ok := imageSignatures[category]
	if !ok {
		return true
	}
	return len(data) >= len(sig) && bytes.Equal(data[:len(sig)], sig)
}
