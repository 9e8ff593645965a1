package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	DefaultMaxCompressedBytes = 2 << 20
	DefaultMaxDimensionPx     = 1200
)

// jpegQualityLadder is walked top to bottom until the encoded image fits the
// size budget. The last rung is used even when it still does not fit.
var jpegQualityLadder = []int{85, 75, 65, 55, 45, 35}

type CompressOptions struct {
	MaxSizeBytes   int64
	MaxDimensionPx int
}

// Compressor shrinks a validated candidate to the target size and dimension
// envelope. Single attempt, no retry; a failure aborts that file only.
type Compressor struct {
	opts   CompressOptions
	logger *zap.Logger
}

func NewCompressor(opts CompressOptions, logger *zap.Logger) *Compressor {
	if opts.MaxSizeBytes <= 0 {
		opts.MaxSizeBytes = DefaultMaxCompressedBytes
	}
	if opts.MaxDimensionPx <= 0 {
		opts.MaxDimensionPx = DefaultMaxDimensionPx
	}
	return &Compressor{opts: opts, logger: logger}
}

func (c *Compressor) Compress(ctx context.Context, cand Candidate) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, format, err := image.Decode(bytes.NewReader(cand.Data))
	if err != nil {
		return nil, &CompressionError{Filename: cand.Filename, Err: fmt.Errorf("decode: %w", err)}
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if w, h := fitWithin(width, height, c.opts.MaxDimensionPx); w != width || h != height {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
		width, height = w, h
	}

	data, contentType, err := c.encode(src, format)
	if err != nil {
		return nil, &CompressionError{Filename: cand.Filename, Err: err}
	}

	// Compression must never inflate. If the re-encode came out larger than
	// the original bytes, keep the original.
	if int64(len(data)) >= cand.Size && len(cand.Data) > 0 {
		data = cand.Data
		contentType = cand.MIMEType
	}

	if c.logger != nil {
		c.logger.Debug("compressed image",
			zap.String("filename", cand.Filename),
			zap.Int64("original_size", cand.Size),
			zap.Int("compressed_size", len(data)),
			zap.Int("width", width),
			zap.Int("height", height),
		)
	}

	return &Asset{
		Filename:     cand.Filename,
		Data:         data,
		ContentType:  contentType,
		OriginalSize: cand.Size,
		Width:        width,
		Height:       height,
	}, nil
}

// encode picks an output format. PNG sources stay PNG when that fits the
// budget; everything else, including webp which Go cannot encode, becomes
// JPEG with descending quality.
func (c *Compressor) encode(img image.Image, sourceFormat string) ([]byte, string, error) {
	if sourceFormat == "png" {
		var buf bytes.Buffer
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		if int64(buf.Len()) <= c.opts.MaxSizeBytes {
			return buf.Bytes(), "image/png", nil
		}
	}

	var out []byte
	for _, quality := range jpegQualityLadder {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		out = buf.Bytes()
		if int64(len(out)) <= c.opts.MaxSizeBytes {
			break
		}
	}
	return out, "image/jpeg", nil
}

func fitWithin(width, height, maxDim int) (int, int) {
	if width <= maxDim && height <= maxDim {
		return width, height
	}
	if width >= height {
		return maxDim, max(height*maxDim/width, 1)
	}
	return max(width*maxDim/height, 1), maxDim
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
