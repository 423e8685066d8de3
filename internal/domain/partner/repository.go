package partner

import (
	"context"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository is the persistence port for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Customer, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, customer *Customer) error
}
