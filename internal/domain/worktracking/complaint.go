package worktracking

import (
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ComplaintStatus represents where a complaint stands in its lifecycle
type ComplaintStatus string

const (
	ComplaintStatusSubmitted   ComplaintStatus = "submitted"
	ComplaintStatusUnderReview ComplaintStatus = "under_review"
	ComplaintStatusAssigned    ComplaintStatus = "assigned"
	ComplaintStatusInProgress  ComplaintStatus = "in_progress"
	ComplaintStatusResolved    ComplaintStatus = "resolved"
	ComplaintStatusClosed      ComplaintStatus = "closed"
)

// IsValid checks if the status is a valid ComplaintStatus
func (s ComplaintStatus) IsValid() bool {
	switch s {
	case ComplaintStatusSubmitted, ComplaintStatusUnderReview, ComplaintStatusAssigned,
		ComplaintStatusInProgress, ComplaintStatusResolved, ComplaintStatusClosed:
		return true
	}
	return false
}

// complaintStatusRank orders the lifecycle so sync never moves a complaint
// backward: a mapped status at or below the current one is a no-op.
var complaintStatusRank = map[ComplaintStatus]int{
	ComplaintStatusSubmitted:   0,
	ComplaintStatusUnderReview: 1,
	ComplaintStatusAssigned:    2,
	ComplaintStatusInProgress:  3,
	ComplaintStatusResolved:    4,
	ComplaintStatusClosed:      5,
}

// Complaint is the customer-facing side of the work tracking link. Once a
// complaint is first assigned to an employee it gains a 1:1 linked work
// order; from then on status changes on either side are mirrored to the
// other through the shared sync table.
type Complaint struct {
	shared.BaseAggregateRoot
	CustomerID      uuid.UUID
	EmployeeID      *uuid.UUID
	WorkOrderID     *uuid.UUID
	Subject         string
	Description     string
	Category        string
	Priority        Priority
	Status          ComplaintStatus
	ResolutionNotes string
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
}

// NewComplaint submits a new complaint with the default medium priority
func NewComplaint(customerID uuid.UUID, subject, description, category string) (*Complaint, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if subject == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Complaint subject cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Complaint description cannot be empty")
	}

	c := &Complaint{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Subject:           subject,
		Description:       description,
		Category:          category,
		Priority:          PriorityMedium,
		Status:            ComplaintStatusSubmitted,
	}
	c.AddDomainEvent(NewComplaintSubmittedEvent(c))
	return c, nil
}

// IsOpen returns true while the complaint still needs work
func (c *Complaint) IsOpen() bool {
	return c.Status != ComplaintStatusResolved && c.Status != ComplaintStatusClosed
}

// SetPriority changes the complaint's priority. Role enforcement happens at
// the service layer; a priority change in the same request as an assignment
// must be applied before the assignment so the due-date window is computed
// from the final priority.
func (c *Complaint) SetPriority(p Priority) error {
	if !p.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", fmt.Sprintf("Unknown priority %q", p))
	}
	if !c.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", "Cannot reprioritise a resolved or closed complaint")
	}
	c.Priority = p
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// StartReview moves a submitted complaint under review
func (c *Complaint) StartReview() error {
	if c.Status != ComplaintStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only submitted complaints enter review, complaint is %s", c.Status))
	}
	c.Status = ComplaintStatusUnderReview
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Assign hands the complaint to an employee and reports whether the linked
// work order still needs to be created. The first assignment moves the
// complaint to assigned; a re-assignment just swaps the employee. The
// needs-work-order result stays true until LinkWorkOrder succeeds, so a
// failed best-effort sync heals itself on the next assignment.
func (c *Complaint) Assign(employeeID uuid.UUID) (bool, error) {
	if employeeID == uuid.Nil {
		return false, shared.NewDomainError("INVALID_EMPLOYEE", "Employee ID cannot be empty")
	}
	if !c.IsOpen() {
		return false, shared.NewDomainError("INVALID_STATE", "Cannot assign a resolved or closed complaint")
	}

	c.EmployeeID = &employeeID
	if c.Status == ComplaintStatusSubmitted || c.Status == ComplaintStatusUnderReview {
		c.Status = ComplaintStatusAssigned
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewComplaintAssignedEvent(c, employeeID))
	return c.WorkOrderID == nil, nil
}

// LinkWorkOrder records the 1:1 link to the created work order
func (c *Complaint) LinkWorkOrder(workOrderID uuid.UUID) error {
	if workOrderID == uuid.Nil {
		return shared.NewDomainError("INVALID_WORK_ORDER", "Work order ID cannot be empty")
	}
	if c.WorkOrderID != nil && *c.WorkOrderID != workOrderID {
		return shared.NewDomainError("INVALID_STATE", "Complaint is already linked to a different work order")
	}
	c.WorkOrderID = &workOrderID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// MarkInProgress moves an assigned complaint into active work
func (c *Complaint) MarkInProgress() error {
	if c.Status != ComplaintStatusAssigned && c.Status != ComplaintStatusUnderReview {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot start work on a %s complaint", c.Status))
	}
	c.Status = ComplaintStatusInProgress
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Resolve settles the complaint with resolution notes
func (c *Complaint) Resolve(notes string, at time.Time) error {
	if !c.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", "Complaint is already resolved or closed")
	}
	c.Status = ComplaintStatusResolved
	if notes != "" {
		c.ResolutionNotes = notes
	}
	c.ResolvedAt = &at
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewComplaintResolvedEvent(c))
	return nil
}

// Close ends the complaint's lifecycle
func (c *Complaint) Close(at time.Time) error {
	if c.Status == ComplaintStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Complaint is already closed")
	}
	c.Status = ComplaintStatusClosed
	c.ClosedAt = &at
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SyncFromWorkOrder applies the status mapped from a work order transition,
// forward only. It reports whether the complaint actually moved; a mapped
// status at or below the current one leaves the complaint untouched, so sync
// can never regress a complaint that a human already advanced.
func (c *Complaint) SyncFromWorkOrder(target ComplaintStatus, notes string, at time.Time) bool {
	if complaintStatusRank[target] <= complaintStatusRank[c.Status] {
		return false
	}

	c.Status = target
	if target == ComplaintStatusResolved {
		c.ResolvedAt = &at
		if notes != "" && c.ResolutionNotes == "" {
			c.ResolutionNotes = notes
		}
		c.AddDomainEvent(NewComplaintResolvedEvent(c))
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return true
}
