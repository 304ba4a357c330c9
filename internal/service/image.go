package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/timmy/epigraph/internal/domain"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImageBytes caps uploads when no limit is configured.
const DefaultMaxImageBytes int64 = 10 << 20

var rasterTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageInfo describes an accepted upload.
type ImageInfo struct {
	MIMEType string
	Width    int
	Height   int
}

// ValidateImage checks that data is a decodable raster image no larger than maxBytes.
// Parameters:
//   - data: raw uploaded bytes.
//   - maxBytes: size limit; values <= 0 use DefaultMaxImageBytes.
//
// Returns:
//   - ImageInfo: sniffed MIME type and dimensions.
//   - error: *domain.ValidationError when the upload is rejected.
func ValidateImage(data []byte, maxBytes int64) (ImageInfo, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if len(data) == 0 {
		return ImageInfo{}, &domain.ValidationError{Field: "file", Reason: "image is empty"}
	}
	if int64(len(data)) > maxBytes {
		return ImageInfo{}, &domain.ValidationError{
			Field:  "file",
			Reason: fmt.Sprintf("image exceeds %d bytes", maxBytes),
		}
	}

	mimeType := http.DetectContentType(data)
	if !rasterTypes[mimeType] {
		return ImageInfo{}, &domain.ValidationError{
			Field:  "file",
			Reason: fmt.Sprintf("unsupported content type %s", mimeType),
		}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, &domain.ValidationError{Field: "file", Reason: "image could not be decoded"}
	}

	return ImageInfo{MIMEType: mimeType, Width: cfg.Width, Height: cfg.Height}, nil
}

// DataURI encodes data as a data:<mime>;base64 URI.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
