package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/timmy/epigraph/internal/logger"
)

const archivePrefix = "inscriptions"

// ImageArchive keeps a content-addressed copy of analyzed images.
type ImageArchive struct {
	store ObjectStorage
}

// NewImageArchive wraps an ObjectStorage as an image archive.
func NewImageArchive(store ObjectStorage) *ImageArchive {
	return &ImageArchive{store: store}
}

// Put stores data under a key derived from its MD5 and returns the public URL.
// Identical images share one object.
func (a *ImageArchive) Put(ctx context.Context, data []byte, mimeType string) (string, error) {
	key := ArchiveKey(data, mimeType)

	exists, err := a.store.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if exists {
		logger.With(logger.Fields{"storage_key": key}).Debug(ctx, "Image already archived")
		return a.store.GetURL(key), nil
	}

	if err := a.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return "", err
	}
	logger.With(logger.Fields{
		"storage_key":    key,
		logger.FieldSize: len(data),
	}).Info(ctx, "Image archived")
	return a.store.GetURL(key), nil
}

// ArchiveKey builds inscriptions/<md5[:2]>/<md5>.<ext> for an image.
func ArchiveKey(data []byte, mimeType string) string {
	sum := md5.Sum(data)
	hash := hex.EncodeToString(sum[:])
	return fmt.Sprintf("%s/%s/%s.%s", archivePrefix, hash[:2], hash, extensionFor(mimeType))
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "bin"
	}
}
