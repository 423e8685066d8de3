package worktracking

import (
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkType categorises what a work order is for
type WorkType string

const (
	WorkTypeComplaintResolution WorkType = "complaint_resolution"
	WorkTypeMaintenance         WorkType = "maintenance"
	WorkTypeMeterReading        WorkType = "meter_reading"
	WorkTypeNewConnection       WorkType = "new_connection"
)

// IsValid checks if the work type is a valid WorkType
func (w WorkType) IsValid() bool {
	switch w {
	case WorkTypeComplaintResolution, WorkTypeMaintenance, WorkTypeMeterReading, WorkTypeNewConnection:
		return true
	}
	return false
}

// WorkOrderStatus represents where a work order stands
type WorkOrderStatus string

const (
	WorkOrderStatusAssigned   WorkOrderStatus = "assigned"
	WorkOrderStatusInProgress WorkOrderStatus = "in_progress"
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"
)

// IsValid checks if the status is a valid WorkOrderStatus
func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case WorkOrderStatusAssigned, WorkOrderStatusInProgress, WorkOrderStatusCompleted:
		return true
	}
	return false
}

var workOrderStatusRank = map[WorkOrderStatus]int{
	WorkOrderStatusAssigned:   0,
	WorkOrderStatusInProgress: 1,
	WorkOrderStatusCompleted:  2,
}

// WorkOrder is the employee-facing side of the work tracking link. Its
// priority is frozen at creation time from the complaint's priority at that
// moment; later complaint reprioritisation never rewrites an already
// computed due date.
type WorkOrder struct {
	shared.BaseAggregateRoot
	CustomerID      uuid.UUID
	EmployeeID      *uuid.UUID
	ComplaintID     *uuid.UUID
	WorkType        WorkType
	Priority        Priority
	Status          WorkOrderStatus
	Description     string
	DueDate         time.Time
	CompletionDate  *time.Time
	CompletionNotes string
}

// NewWorkOrder creates an assigned work order with its SLA due date computed
// from the priority's window
func NewWorkOrder(
	customerID uuid.UUID,
	employeeID uuid.UUID,
	complaintID *uuid.UUID,
	workType WorkType,
	priority Priority,
	description string,
	createdAt time.Time,
) (*WorkOrder, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE", "Employee ID cannot be empty")
	}
	if !workType.IsValid() {
		return nil, shared.NewDomainError("INVALID_WORK_TYPE", fmt.Sprintf("Unknown work type %q", workType))
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", fmt.Sprintf("Unknown priority %q", priority))
	}
	if createdAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Creation time is required")
	}

	w := &WorkOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		EmployeeID:        &employeeID,
		ComplaintID:       complaintID,
		WorkType:          workType,
		Priority:          priority,
		Status:            WorkOrderStatusAssigned,
		Description:       description,
		DueDate:           priority.DueDateFrom(createdAt),
	}
	w.AddDomainEvent(NewWorkOrderCreatedEvent(w))
	return w, nil
}

// IsLinked returns true when the work order mirrors a complaint
func (w *WorkOrder) IsLinked() bool {
	return w.ComplaintID != nil
}

// Reassign moves the work order to a different employee without touching
// its status or due date
func (w *WorkOrder) Reassign(employeeID uuid.UUID) error {
	if employeeID == uuid.Nil {
		return shared.NewDomainError("INVALID_EMPLOYEE", "Employee ID cannot be empty")
	}
	if w.Status == WorkOrderStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot reassign a completed work order")
	}
	w.EmployeeID = &employeeID
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// Start moves the work order into active work
func (w *WorkOrder) Start() error {
	if w.Status != WorkOrderStatusAssigned {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only assigned work orders can start, work order is %s", w.Status))
	}
	w.Status = WorkOrderStatusInProgress
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// Complete finishes the work order with completion notes
func (w *WorkOrder) Complete(notes string, at time.Time) error {
	if w.Status == WorkOrderStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Work order is already completed")
	}
	w.Status = WorkOrderStatusCompleted
	w.CompletionDate = &at
	if notes != "" {
		w.CompletionNotes = notes
	}
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	w.AddDomainEvent(NewWorkOrderCompletedEvent(w))
	return nil
}

// IsOverdue reports whether an unfinished work order has blown its SLA window
func (w *WorkOrder) IsOverdue(asOf time.Time) bool {
	return w.Status != WorkOrderStatusCompleted && asOf.After(w.DueDate)
}

// SyncFromComplaint applies the status mapped from a complaint transition,
// forward only, and reports whether the work order moved. Completion through
// sync copies the complaint's resolution notes when the work order has none.
func (w *WorkOrder) SyncFromComplaint(target WorkOrderStatus, notes string, at time.Time) bool {
	if workOrderStatusRank[target] <= workOrderStatusRank[w.Status] {
		return false
	}

	w.Status = target
	if target == WorkOrderStatusCompleted {
		w.CompletionDate = &at
		if notes != "" && w.CompletionNotes == "" {
			w.CompletionNotes = notes
		}
		w.AddDomainEvent(NewWorkOrderCompletedEvent(w))
	}
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return true
}
