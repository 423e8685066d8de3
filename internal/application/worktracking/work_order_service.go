package worktracking

import (
	"context"
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/domain/notification"
	"github.com/powergrid/backend/internal/domain/partner"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/worktracking"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkOrderService owns the work order side of work tracking, including the
// reverse half of the status sync back onto linked complaints.
type WorkOrderService struct {
	workOrderRepo  worktracking.WorkOrderRepository
	complaintRepo  worktracking.ComplaintRepository
	customerRepo   partner.CustomerRepository
	notifier       notification.Sink
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewWorkOrderService creates a new WorkOrderService
func NewWorkOrderService(
	workOrderRepo worktracking.WorkOrderRepository,
	complaintRepo worktracking.ComplaintRepository,
	customerRepo partner.CustomerRepository,
	notifier notification.Sink,
	logger *zap.Logger,
) *WorkOrderService {
	return &WorkOrderService{
		workOrderRepo: workOrderRepo,
		complaintRepo: complaintRepo,
		customerRepo:  customerRepo,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *WorkOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the service clock, for tests
func (s *WorkOrderService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateWorkOrderRequest creates a standalone work order not backed by a
// complaint, such as scheduled maintenance
type CreateWorkOrderRequest struct {
	CustomerID  uuid.UUID             `json:"customer_id"`
	EmployeeID  uuid.UUID             `json:"employee_id"`
	WorkType    worktracking.WorkType `json:"work_type"`
	Priority    worktracking.Priority `json:"priority"`
	Description string                `json:"description"`
}

// UpdateWorkOrderRequest carries an employee update to a work order
type UpdateWorkOrderRequest struct {
	Status          *worktracking.WorkOrderStatus `json:"status,omitempty"`
	EmployeeID      *uuid.UUID                    `json:"employee_id,omitempty"`
	CompletionNotes string                        `json:"completion_notes,omitempty"`
}

// WorkOrderResponse is the API-facing view of a work order
type WorkOrderResponse struct {
	ID              uuid.UUID                    `json:"id"`
	CustomerID      uuid.UUID                    `json:"customer_id"`
	EmployeeID      *uuid.UUID                   `json:"employee_id,omitempty"`
	ComplaintID     *uuid.UUID                   `json:"complaint_id,omitempty"`
	WorkType        worktracking.WorkType        `json:"work_type"`
	Priority        worktracking.Priority        `json:"priority"`
	Status          worktracking.WorkOrderStatus `json:"status"`
	Description     string                       `json:"description"`
	DueDate         time.Time                    `json:"due_date"`
	CompletionDate  *time.Time                   `json:"completion_date,omitempty"`
	CompletionNotes string                       `json:"completion_notes,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
}

// ToWorkOrderResponse converts a work order aggregate to its response form
func ToWorkOrderResponse(w *worktracking.WorkOrder) WorkOrderResponse {
	return WorkOrderResponse{
		ID:              w.ID,
		CustomerID:      w.CustomerID,
		EmployeeID:      w.EmployeeID,
		ComplaintID:     w.ComplaintID,
		WorkType:        w.WorkType,
		Priority:        w.Priority,
		Status:          w.Status,
		Description:     w.Description,
		DueDate:         w.DueDate,
		CompletionDate:  w.CompletionDate,
		CompletionNotes: w.CompletionNotes,
		CreatedAt:       w.CreatedAt,
	}
}

// Create creates a standalone work order. Staff only.
func (s *WorkOrderService) Create(ctx context.Context, principal identity.Principal, req CreateWorkOrderRequest) (*WorkOrderResponse, error) {
	if !principal.IsStaff() {
		return nil, shared.ErrUnauthorized
	}

	workOrder, err := worktracking.NewWorkOrder(req.CustomerID, req.EmployeeID, nil, req.WorkType, req.Priority, req.Description, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.workOrderRepo.Save(ctx, workOrder); err != nil {
		return nil, fmt.Errorf("failed to save work order: %w", err)
	}

	s.publishEvents(ctx, workOrder)

	resp := ToWorkOrderResponse(workOrder)
	return &resp, nil
}

// Update applies an employee update to a work order. The work order write is
// authoritative; mirroring the transition onto a linked complaint is best
// effort and a sync failure never rolls the work order back.
func (s *WorkOrderService) Update(ctx context.Context, principal identity.Principal, workOrderID uuid.UUID, req UpdateWorkOrderRequest) (*WorkOrderResponse, error) {
	if !principal.IsStaff() {
		return nil, shared.ErrUnauthorized
	}

	workOrder, err := s.workOrderRepo.FindByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	if req.EmployeeID != nil {
		if err := workOrder.Reassign(*req.EmployeeID); err != nil {
			return nil, err
		}
	}

	completed := false
	if req.Status != nil {
		switch *req.Status {
		case worktracking.WorkOrderStatusInProgress:
			if err := workOrder.Start(); err != nil {
				return nil, err
			}
		case worktracking.WorkOrderStatusCompleted:
			if err := workOrder.Complete(req.CompletionNotes, s.now()); err != nil {
				return nil, err
			}
			completed = true
		default:
			return nil, shared.NewDomainError("INVALID_STATUS",
				fmt.Sprintf("Cannot set work order status to %q directly", *req.Status))
		}
	}

	if err := s.workOrderRepo.Save(ctx, workOrder); err != nil {
		return nil, fmt.Errorf("failed to save work order: %w", err)
	}

	if req.Status != nil && workOrder.IsLinked() {
		if mapped, ok := worktracking.MapWorkOrderStatus(*req.Status); ok {
			s.syncComplaint(ctx, workOrder, mapped, completed)
		}
	}

	s.publishEvents(ctx, workOrder)

	resp := ToWorkOrderResponse(workOrder)
	return &resp, nil
}

// Get returns one work order. Staff only; customers follow their complaint.
func (s *WorkOrderService) Get(ctx context.Context, principal identity.Principal, workOrderID uuid.UUID) (*WorkOrderResponse, error) {
	if !principal.IsStaff() {
		return nil, shared.ErrUnauthorized
	}
	workOrder, err := s.workOrderRepo.FindByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	resp := ToWorkOrderResponse(workOrder)
	return &resp, nil
}

// ListForEmployee returns an employee's work orders
func (s *WorkOrderService) ListForEmployee(ctx context.Context, principal identity.Principal, employeeID uuid.UUID, filter shared.Filter) (*shared.Paginated[WorkOrderResponse], error) {
	if !principal.IsStaff() {
		return nil, shared.ErrUnauthorized
	}
	workOrders, total, err := s.workOrderRepo.FindByEmployee(ctx, employeeID, filter)
	if err != nil {
		return nil, err
	}
	return s.paginate(workOrders, total, filter), nil
}

// Queue returns unfinished work orders in SLA order
func (s *WorkOrderService) Queue(ctx context.Context, principal identity.Principal, filter shared.Filter) (*shared.Paginated[WorkOrderResponse], error) {
	if !principal.IsStaff() {
		return nil, shared.ErrUnauthorized
	}
	workOrders, total, err := s.workOrderRepo.FindQueue(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.paginate(workOrders, total, filter), nil
}

func (s *WorkOrderService) paginate(workOrders []worktracking.WorkOrder, total int64, filter shared.Filter) *shared.Paginated[WorkOrderResponse] {
	responses := make([]WorkOrderResponse, len(workOrders))
	for i := range workOrders {
		responses[i] = ToWorkOrderResponse(&workOrders[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page
}

// syncComplaint pushes the mapped status back onto the linked complaint,
// forward only. Completion additionally emits exactly one customer and one
// admin notification.
func (s *WorkOrderService) syncComplaint(ctx context.Context, workOrder *worktracking.WorkOrder, target worktracking.ComplaintStatus, completed bool) {
	complaint, err := s.complaintRepo.FindByID(ctx, *workOrder.ComplaintID)
	if err != nil {
		s.logger.Error("failed to load linked complaint for sync",
			zap.String("work_order_id", workOrder.ID.String()),
			zap.Error(err))
		return
	}

	if complaint.SyncFromWorkOrder(target, workOrder.CompletionNotes, s.now()) {
		if err := s.complaintRepo.Save(ctx, complaint); err != nil {
			s.logger.Error("failed to save synced complaint",
				zap.String("complaint_id", complaint.ID.String()),
				zap.String("target_status", string(target)),
				zap.Error(err))
			return
		}
	}

	if completed {
		s.notifyResolved(ctx, complaint)
	}
}

// notifyResolved emits the completion pair: one notification to the
// customer, one to admin. Failures are logged and swallowed.
func (s *WorkOrderService) notifyResolved(ctx context.Context, complaint *worktracking.Complaint) {
	if s.notifier == nil {
		return
	}

	message := fmt.Sprintf("Complaint %q has been resolved", complaint.Subject)
	if complaint.ResolutionNotes != "" {
		message = fmt.Sprintf("Complaint %q has been resolved: %s", complaint.Subject, complaint.ResolutionNotes)
	}

	if customer, err := s.customerRepo.FindByID(ctx, complaint.CustomerID); err == nil && customer.UserID != uuid.Nil {
		if err := s.notifier.Notify(ctx, customer.UserID, notification.KindComplaintResolved,
			"Complaint resolved", message, complaint.ID.String()); err != nil {
			s.logger.Warn("notification delivery failed",
				zap.String("complaint_id", complaint.ID.String()),
				zap.Error(err))
		}
	}

	if err := s.notifier.NotifyAdmins(ctx, notification.KindComplaintResolved,
		"Complaint resolved", message, complaint.ID.String()); err != nil {
		s.logger.Warn("admin notification delivery failed",
			zap.String("complaint_id", complaint.ID.String()),
			zap.Error(err))
	}
}

func (s *WorkOrderService) publishEvents(ctx context.Context, workOrder *worktracking.WorkOrder) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range workOrder.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish work order event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	workOrder.ClearDomainEvents()
}
