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

// ComplaintService owns the complaint side of work tracking, including the
// forward half of the status sync onto linked work orders.
type ComplaintService struct {
	complaintRepo  worktracking.ComplaintRepository
	workOrderRepo  worktracking.WorkOrderRepository
	customerRepo   partner.CustomerRepository
	notifier       notification.Sink
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewComplaintService creates a new ComplaintService
func NewComplaintService(
	complaintRepo worktracking.ComplaintRepository,
	workOrderRepo worktracking.WorkOrderRepository,
	customerRepo partner.CustomerRepository,
	notifier notification.Sink,
	logger *zap.Logger,
) *ComplaintService {
	return &ComplaintService{
		complaintRepo: complaintRepo,
		workOrderRepo: workOrderRepo,
		customerRepo:  customerRepo,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ComplaintService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the service clock, for tests
func (s *ComplaintService) SetClock(now func() time.Time) {
	s.now = now
}

// SubmitComplaintRequest files a new complaint for a customer
type SubmitComplaintRequest struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
}

// UpdateComplaintRequest carries an admin/employee update. Fields are
// applied in a fixed order: priority first, then assignment, then status,
// so a priority change in the same request always lands before the linked
// work order's due date is computed.
type UpdateComplaintRequest struct {
	Priority        *worktracking.Priority        `json:"priority,omitempty"`
	EmployeeID      *uuid.UUID                    `json:"employee_id,omitempty"`
	Status          *worktracking.ComplaintStatus `json:"status,omitempty"`
	ResolutionNotes string                        `json:"resolution_notes,omitempty"`
}

// ComplaintResponse is the API-facing view of a complaint
type ComplaintResponse struct {
	ID              uuid.UUID                    `json:"id"`
	CustomerID      uuid.UUID                    `json:"customer_id"`
	EmployeeID      *uuid.UUID                   `json:"employee_id,omitempty"`
	WorkOrderID     *uuid.UUID                   `json:"work_order_id,omitempty"`
	Subject         string                       `json:"subject"`
	Description     string                       `json:"description"`
	Category        string                       `json:"category"`
	Priority        worktracking.Priority        `json:"priority"`
	Status          worktracking.ComplaintStatus `json:"status"`
	ResolutionNotes string                       `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time                   `json:"resolved_at,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
}

// ToComplaintResponse converts a complaint aggregate to its response form
func ToComplaintResponse(c *worktracking.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:              c.ID,
		CustomerID:      c.CustomerID,
		EmployeeID:      c.EmployeeID,
		WorkOrderID:     c.WorkOrderID,
		Subject:         c.Subject,
		Description:     c.Description,
		Category:        c.Category,
		Priority:        c.Priority,
		Status:          c.Status,
		ResolutionNotes: c.ResolutionNotes,
		ResolvedAt:      c.ResolvedAt,
		CreatedAt:       c.CreatedAt,
	}
}

// Submit files a new complaint. A customer files for themselves; staff may
// file on a customer's behalf.
func (s *ComplaintService) Submit(ctx context.Context, principal identity.Principal, req SubmitComplaintRequest) (*ComplaintResponse, error) {
	if !principal.CanActFor(req.CustomerID) {
		return nil, shared.ErrForbidden
	}

	complaint, err := worktracking.NewComplaint(req.CustomerID, req.Subject, req.Description, req.Category)
	if err != nil {
		return nil, err
	}
	if err := s.complaintRepo.Save(ctx, complaint); err != nil {
		return nil, fmt.Errorf("failed to save complaint: %w", err)
	}

	s.publishEvents(ctx, complaint)
	s.notifyAdmins(ctx, notification.KindComplaintUpdate, "New complaint",
		fmt.Sprintf("Complaint %q submitted", complaint.Subject), complaint.ID.String())

	resp := ToComplaintResponse(complaint)
	return &resp, nil
}

// Update applies a staff update to a complaint. The complaint write is the
// hard part of the operation; keeping the linked work order in step is best
// effort, logged on failure and healed by the next update, because losing a
// complaint update is worse than a temporarily unsynced work order.
func (s *ComplaintService) Update(ctx context.Context, principal identity.Principal, complaintID uuid.UUID, req UpdateComplaintRequest) (*ComplaintResponse, error) {
	if !principal.IsStaff() {
		return nil, shared.ErrUnauthorized
	}

	complaint, err := s.complaintRepo.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	// Priority must settle before any due-date computation below.
	if req.Priority != nil {
		if !principal.IsAdmin() {
			return nil, shared.ErrUnauthorized
		}
		if err := complaint.SetPriority(*req.Priority); err != nil {
			return nil, err
		}
	}

	if req.EmployeeID != nil {
		needsWorkOrder, err := complaint.Assign(*req.EmployeeID)
		if err != nil {
			return nil, err
		}
		if needsWorkOrder {
			s.createLinkedWorkOrder(ctx, complaint, *req.EmployeeID)
		} else if complaint.WorkOrderID != nil {
			s.reassignLinkedWorkOrder(ctx, *complaint.WorkOrderID, *req.EmployeeID)
		}
	}

	var syncTarget *worktracking.WorkOrderStatus
	if req.Status != nil {
		if err := s.applyStatus(complaint, *req.Status, req.ResolutionNotes); err != nil {
			return nil, err
		}
		if mapped, ok := worktracking.MapComplaintStatus(*req.Status); ok {
			syncTarget = &mapped
		}
	}

	if err := s.complaintRepo.Save(ctx, complaint); err != nil {
		return nil, fmt.Errorf("failed to save complaint: %w", err)
	}

	if syncTarget != nil && complaint.WorkOrderID != nil {
		s.syncWorkOrder(ctx, *complaint.WorkOrderID, *syncTarget, complaint.ResolutionNotes)
	}

	s.publishEvents(ctx, complaint)
	s.notifyCustomerUpdate(ctx, complaint)

	resp := ToComplaintResponse(complaint)
	return &resp, nil
}

// Get returns one complaint, customers only their own
func (s *ComplaintService) Get(ctx context.Context, principal identity.Principal, complaintID uuid.UUID) (*ComplaintResponse, error) {
	complaint, err := s.complaintRepo.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !principal.CanActFor(complaint.CustomerID) {
		return nil, shared.ErrForbidden
	}
	resp := ToComplaintResponse(complaint)
	return &resp, nil
}

// ListForCustomer returns a customer's complaints, customers only their own
func (s *ComplaintService) ListForCustomer(ctx context.Context, principal identity.Principal, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[ComplaintResponse], error) {
	if !principal.CanActFor(customerID) {
		return nil, shared.ErrForbidden
	}
	complaints, total, err := s.complaintRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}
	return s.paginate(complaints, total, filter), nil
}

// Queue returns open complaints in SLA order for the staff dashboard
func (s *ComplaintService) Queue(ctx context.Context, principal identity.Principal, filter shared.Filter) (*shared.Paginated[ComplaintResponse], error) {
	if !principal.IsStaff() {
		return nil, shared.ErrUnauthorized
	}
	complaints, total, err := s.complaintRepo.FindQueue(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.paginate(complaints, total, filter), nil
}

func (s *ComplaintService) paginate(complaints []worktracking.Complaint, total int64, filter shared.Filter) *shared.Paginated[ComplaintResponse] {
	responses := make([]ComplaintResponse, len(complaints))
	for i := range complaints {
		responses[i] = ToComplaintResponse(&complaints[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page
}

func (s *ComplaintService) applyStatus(complaint *worktracking.Complaint, status worktracking.ComplaintStatus, notes string) error {
	switch status {
	case worktracking.ComplaintStatusUnderReview:
		return complaint.StartReview()
	case worktracking.ComplaintStatusInProgress:
		return complaint.MarkInProgress()
	case worktracking.ComplaintStatusResolved:
		return complaint.Resolve(notes, s.now())
	case worktracking.ComplaintStatusClosed:
		return complaint.Close(s.now())
	default:
		return shared.NewDomainError("INVALID_STATUS",
			fmt.Sprintf("Cannot set complaint status to %q directly", status))
	}
}

// createLinkedWorkOrder creates the 1:1 work order on first assignment. The
// priority is frozen from the complaint's current value and the due date is
// computed from it. Failure is logged, not propagated.
func (s *ComplaintService) createLinkedWorkOrder(ctx context.Context, complaint *worktracking.Complaint, employeeID uuid.UUID) {
	complaintID := complaint.ID
	workOrder, err := worktracking.NewWorkOrder(
		complaint.CustomerID,
		employeeID,
		&complaintID,
		worktracking.WorkTypeComplaintResolution,
		complaint.Priority,
		complaint.Subject,
		s.now(),
	)
	if err == nil {
		err = s.workOrderRepo.Save(ctx, workOrder)
	}
	if err != nil {
		s.logger.Error("failed to create linked work order",
			zap.String("complaint_id", complaint.ID.String()),
			zap.Error(err))
		return
	}

	if err := complaint.LinkWorkOrder(workOrder.ID); err != nil {
		s.logger.Error("failed to link work order to complaint",
			zap.String("complaint_id", complaint.ID.String()),
			zap.String("work_order_id", workOrder.ID.String()),
			zap.Error(err))
	}
}

func (s *ComplaintService) reassignLinkedWorkOrder(ctx context.Context, workOrderID, employeeID uuid.UUID) {
	workOrder, err := s.workOrderRepo.FindByID(ctx, workOrderID)
	if err == nil {
		if err = workOrder.Reassign(employeeID); err == nil {
			err = s.workOrderRepo.Save(ctx, workOrder)
		}
	}
	if err != nil {
		s.logger.Error("failed to reassign linked work order",
			zap.String("work_order_id", workOrderID.String()),
			zap.Error(err))
	}
}

// syncWorkOrder pushes the mapped status onto the linked work order, forward
// only. A failure here never rolls back the complaint transition.
func (s *ComplaintService) syncWorkOrder(ctx context.Context, workOrderID uuid.UUID, target worktracking.WorkOrderStatus, notes string) {
	workOrder, err := s.workOrderRepo.FindByID(ctx, workOrderID)
	if err != nil {
		s.logger.Error("failed to load linked work order for sync",
			zap.String("work_order_id", workOrderID.String()),
			zap.Error(err))
		return
	}
	if !workOrder.SyncFromComplaint(target, notes, s.now()) {
		return
	}
	if err := s.workOrderRepo.Save(ctx, workOrder); err != nil {
		s.logger.Error("failed to save synced work order",
			zap.String("work_order_id", workOrderID.String()),
			zap.String("target_status", string(target)),
			zap.Error(err))
	}
}

func (s *ComplaintService) notifyCustomerUpdate(ctx context.Context, complaint *worktracking.Complaint) {
	if s.notifier == nil {
		return
	}
	customer, err := s.customerRepo.FindByID(ctx, complaint.CustomerID)
	if err != nil || customer.UserID == uuid.Nil {
		return
	}
	title := "Complaint updated"
	kind := notification.KindComplaintUpdate
	if complaint.Status == worktracking.ComplaintStatusResolved {
		title = "Complaint resolved"
		kind = notification.KindComplaintResolved
	}
	if err := s.notifier.Notify(ctx, customer.UserID, kind, title,
		fmt.Sprintf("Complaint %q is now %s", complaint.Subject, complaint.Status),
		complaint.ID.String()); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("complaint_id", complaint.ID.String()),
			zap.Error(err))
	}
}

func (s *ComplaintService) notifyAdmins(ctx context.Context, kind notification.Kind, title, message, actionRef string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyAdmins(ctx, kind, title, message, actionRef); err != nil {
		s.logger.Warn("admin notification delivery failed",
			zap.String("action_ref", actionRef),
			zap.Error(err))
	}
}

func (s *ComplaintService) publishEvents(ctx context.Context, complaint *worktracking.Complaint) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range complaint.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish complaint event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	complaint.ClearDomainEvents()
}
