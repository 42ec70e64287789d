// Package storage keeps recipe images in a local directory or an S3 bucket.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/foodgram/internal/errs"
)

// ImageStore saves and removes image objects addressed by key.
type ImageStore interface {
	// Save stores data under key.
	Save(ctx context.Context, key string, data []byte, contentType string) error
	// Delete removes key; a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

// MaxImageSize bounds a decoded upload.
const MaxImageSize = 10 << 20

// extensions lists accepted content types.
var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>".
func DecodeDataURI(s string) (Image, error) {
	meta, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return Image{}, errs.Invalid("image", "expected a base64 data URI")
	}
	ct := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	ext, ok := extensions[ct]
	if !ok {
		return Image{}, errs.Invalid("image", fmt.Sprintf("unsupported image type %q", ct))
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize {
		return Image{}, errs.Invalid("image", "image is too large")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, errs.Invalid("image", "image is not valid base64")
	}
	if len(data) == 0 {
		return Image{}, errs.Invalid("image", "image is empty")
	}
	return Image{Data: data, ContentType: ct, Ext: ext}, nil
}

// NewKey returns a fresh object key under prefix, e.g. recipes/<uuid>.png.
func NewKey(prefix, ext string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return prefix + "/" + id.String() + "." + ext, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
