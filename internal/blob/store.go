// Package blob stores uploaded media files. The database keeps only the
// public ID and serving URL; the bytes live behind a Store.
package blob

import (
	"context"
	"errors"
)

// Errors callers translate into field-level validation messages.
var (
	ErrTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNotImage        = errors.New("file is not a decodable image")
	ErrEmptyFile       = errors.New("uploaded file is empty")
)

// Upload is one incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Stored describes a persisted blob. PublicID is the handle for later
// deletion; URL and ThumbnailURL are what clients fetch.
type Stored struct {
	PublicID     string
	URL          string
	ThumbnailURL string
}

// Store persists and removes media blobs.
type Store interface {
	// Save validates, persists, and returns the stored blob. Image uploads
	// get a webp thumbnail alongside the original.
	Save(ctx context.Context, up Upload) (*Stored, error)
	// Delete removes the blob and any derived files. Deleting an unknown
	// public ID is not an error.
	Delete(ctx context.Context, publicID string) error
}
