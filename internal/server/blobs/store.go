// Package blobs decides where image bytes live: inside the account record or
// in S3-compatible object storage, with only a key kept in the record.
package blobs

import (
	"context"

	"github.com/dmitrijs2005/graphpass/internal/server/models"
)

type Store interface {
	// Offload moves image content out of the records, returning images that
	// reference it by StorageKey. Order is preserved.
	Offload(ctx context.Context, images []models.Image) ([]models.Image, error)
	// Resolve returns images with Data filled back in.
	Resolve(ctx context.Context, images []models.Image) ([]models.Image, error)
	// Discard removes content stored by Offload, best effort.
	Discard(ctx context.Context, images []models.Image) error
}

// InlineStore keeps image bytes in the account record, as serialized base64.
type InlineStore struct{}

func (InlineStore) Offload(_ context.Context, images []models.Image) ([]models.Image, error) {
	return images, nil
}

func (InlineStore) Resolve(_ context.Context, images []models.Image) ([]models.Image, error) {
	return images, nil
}

func (InlineStore) Discard(context.Context, []models.Image) error {
	return nil
}
