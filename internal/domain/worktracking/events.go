package worktracking

import (
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ComplaintSubmittedEvent is raised when a customer submits a complaint
type ComplaintSubmittedEvent struct {
	shared.BaseDomainEvent
	ComplaintID uuid.UUID `json:"complaint_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Subject     string    `json:"subject"`
	Priority    Priority  `json:"priority"`
}

// EventType returns the event type name
func (e *ComplaintSubmittedEvent) EventType() string {
	return "ComplaintSubmitted"
}

// NewComplaintSubmittedEvent creates a new ComplaintSubmittedEvent
func NewComplaintSubmittedEvent(c *Complaint) *ComplaintSubmittedEvent {
	return &ComplaintSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ComplaintSubmitted", "Complaint", c.ID),
		ComplaintID:     c.ID,
		CustomerID:      c.CustomerID,
		Subject:         c.Subject,
		Priority:        c.Priority,
	}
}

// ComplaintAssignedEvent is raised when a complaint is handed to an employee
type ComplaintAssignedEvent struct {
	shared.BaseDomainEvent
	ComplaintID uuid.UUID `json:"complaint_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	EmployeeID  uuid.UUID `json:"employee_id"`
	Priority    Priority  `json:"priority"`
}

// EventType returns the event type name
func (e *ComplaintAssignedEvent) EventType() string {
	return "ComplaintAssigned"
}

// NewComplaintAssignedEvent creates a new ComplaintAssignedEvent
func NewComplaintAssignedEvent(c *Complaint, employeeID uuid.UUID) *ComplaintAssignedEvent {
	return &ComplaintAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ComplaintAssigned", "Complaint", c.ID),
		ComplaintID:     c.ID,
		CustomerID:      c.CustomerID,
		EmployeeID:      employeeID,
		Priority:        c.Priority,
	}
}

// ComplaintResolvedEvent is raised when a complaint reaches resolved
type ComplaintResolvedEvent struct {
	shared.BaseDomainEvent
	ComplaintID     uuid.UUID  `json:"complaint_id"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	ResolutionNotes string     `json:"resolution_notes"`
	ResolvedAt      *time.Time `json:"resolved_at"`
}

// EventType returns the event type name
func (e *ComplaintResolvedEvent) EventType() string {
	return "ComplaintResolved"
}

// NewComplaintResolvedEvent creates a new ComplaintResolvedEvent
func NewComplaintResolvedEvent(c *Complaint) *ComplaintResolvedEvent {
	return &ComplaintResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ComplaintResolved", "Complaint", c.ID),
		ComplaintID:     c.ID,
		CustomerID:      c.CustomerID,
		ResolutionNotes: c.ResolutionNotes,
		ResolvedAt:      c.ResolvedAt,
	}
}

// WorkOrderCreatedEvent is raised when a work order is created
type WorkOrderCreatedEvent struct {
	shared.BaseDomainEvent
	WorkOrderID uuid.UUID  `json:"work_order_id"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	ComplaintID *uuid.UUID `json:"complaint_id,omitempty"`
	WorkType    WorkType   `json:"work_type"`
	Priority    Priority   `json:"priority"`
	DueDate     time.Time  `json:"due_date"`
}

// EventType returns the event type name
func (e *WorkOrderCreatedEvent) EventType() string {
	return "WorkOrderCreated"
}

// NewWorkOrderCreatedEvent creates a new WorkOrderCreatedEvent
func NewWorkOrderCreatedEvent(w *WorkOrder) *WorkOrderCreatedEvent {
	return &WorkOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("WorkOrderCreated", "WorkOrder", w.ID),
		WorkOrderID:     w.ID,
		CustomerID:      w.CustomerID,
		ComplaintID:     w.ComplaintID,
		WorkType:        w.WorkType,
		Priority:        w.Priority,
		DueDate:         w.DueDate,
	}
}

// WorkOrderCompletedEvent is raised when a work order finishes
type WorkOrderCompletedEvent struct {
	shared.BaseDomainEvent
	WorkOrderID     uuid.UUID  `json:"work_order_id"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	ComplaintID     *uuid.UUID `json:"complaint_id,omitempty"`
	CompletionNotes string     `json:"completion_notes"`
	CompletionDate  *time.Time `json:"completion_date"`
}

// EventType returns the event type name
func (e *WorkOrderCompletedEvent) EventType() string {
	return "WorkOrderCompleted"
}

// NewWorkOrderCompletedEvent creates a new WorkOrderCompletedEvent
func NewWorkOrderCompletedEvent(w *WorkOrder) *WorkOrderCompletedEvent {
	return &WorkOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("WorkOrderCompleted", "WorkOrder", w.ID),
		WorkOrderID:     w.ID,
		CustomerID:      w.CustomerID,
		ComplaintID:     w.ComplaintID,
		CompletionNotes: w.CompletionNotes,
		CompletionDate:  w.CompletionDate,
	}
}
