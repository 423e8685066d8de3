package worktracking

import (
	"context"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ComplaintRepository is the persistence port for complaints
type ComplaintRepository interface {
	Save(ctx context.Context, complaint *Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error)
	FindByWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*Complaint, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Complaint, int64, error)

	// FindQueue returns open complaints in SLA order: priority rank
	// ascending, then creation time ascending, matching QueueBefore.
	FindQueue(ctx context.Context, filter shared.Filter) ([]Complaint, int64, error)
}

// WorkOrderRepository is the persistence port for work orders
type WorkOrderRepository interface {
	Save(ctx context.Context, workOrder *WorkOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	FindByEmployee(ctx context.Context, employeeID uuid.UUID, filter shared.Filter) ([]WorkOrder, int64, error)

	// FindQueue returns unfinished work orders in the same SLA order as
	// the complaint queue.
	FindQueue(ctx context.Context, filter shared.Filter) ([]WorkOrder, int64, error)
}
