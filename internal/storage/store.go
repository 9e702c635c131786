// Package storage persists message media attachments. Two drivers exist:
// LocalStore writes to disk for development, S3Store writes to an S3
// bucket. Both satisfy MediaStore and return a public URL for the object.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	folio_errors "folio-chat/pkg/errors"

	"github.com/google/uuid"
)

type MediaStore interface {
	// Save stores the object under key and returns its public URL.
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// allowedMediaTypes lists the content types accepted for chat attachments.
var allowedMediaTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"audio/mpeg":      ".mp3",
	"audio/ogg":       ".ogg",
	"application/pdf": ".pdf",
}

// ValidateMedia checks the attachment's content type and size before any
// bytes are written.
func ValidateMedia(contentType string, size, maxBytes int64) error {
	if _, ok := allowedMediaTypes[contentType]; !ok {
		return fmt.Errorf("%w: unsupported media type %q", folio_errors.ErrInvalidInput, contentType)
	}
	if size <= 0 {
		return fmt.Errorf("%w: empty attachment", folio_errors.ErrInvalidInput)
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: attachment exceeds %d bytes", folio_errors.ErrTooLarge, maxBytes)
	}
	return nil
}

// MediaKey builds the object key for a chat attachment, partitioned by
// chat and date so buckets stay browsable.
func MediaKey(chatID uuid.UUID, contentType string) string {
	ext := allowedMediaTypes[contentType]
	return path.Join(
		"chats",
		chatID.String(),
		time.Now().UTC().Format("2006/01/02"),
		uuid.New().String()+ext,
	)
}
