package ports

import (
	"context"
	"waste-collection-service/internal/domain"
)

// Contract for persisting the single named model snapshot.
type ModelStore interface {
	// Load returns the stored snapshot, or domain.ErrNotFound if none exists.
	Load(ctx context.Context) (*domain.ModelSnapshot, error)
	// Save replaces the stored snapshot atomically.
	Save(ctx context.Context, snap *domain.ModelSnapshot) error
}
