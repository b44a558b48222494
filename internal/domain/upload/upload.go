package upload

import (
	"time"

	"github.com/google/uuid"
)

// Upload is the metadata row for an object stored in S3. The object key is
// derived from the id so a leaked original filename never becomes a key.
type Upload struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ObjectKey    string
	OriginalName string
	ContentType  string
	Size         int64
	CreatedAt    time.Time
}

type CreateUploadInput struct {
	UserID       uuid.UUID
	ObjectKey    string
	OriginalName string
	ContentType  string
	Size         int64
}
