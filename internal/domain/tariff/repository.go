package tariff

import (
	"context"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository is the persistence port for tariff versions
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tariff, error)

	// ResolveForDate returns the tariff version for the category whose
	// effective date is at or before asOf and which has not been superseded
	// by asOf. Returns shared.ErrNotFound-style NO_TARIFF_FOUND when no
	// version matches; callers must not silently default.
	ResolveForDate(ctx context.Context, category Category, asOf time.Time) (*Tariff, error)

	// FindOpenByCategory returns the currently open version for the category,
	// or nil when the category has no open version yet.
	FindOpenByCategory(ctx context.Context, category Category) (*Tariff, error)

	// CreateVersion persists a new version and closes out the prior open
	// version of the same category in the same transaction, preserving the
	// at-most-one-open-version invariant.
	CreateVersion(ctx context.Context, t *Tariff) error

	FindAll(ctx context.Context, filter shared.Filter) ([]Tariff, error)
	FindByCategory(ctx context.Context, category Category, filter shared.Filter) ([]Tariff, error)
}
