package worktracking

import "time"

// Priority orders complaints and work orders for SLA purposes
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid checks if the priority is a valid Priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// priorityPolicy is the SLA table: queue rank and due-date window per tier.
// Rank 1 is served first; due days is the window a work order gets from the
// moment it is created. Both values are contracts an SLA dashboard depends
// on, so they live in one table rather than inline conditionals.
var priorityPolicy = map[Priority]struct {
	rank    int
	dueDays int
}{
	PriorityUrgent: {rank: 1, dueDays: 1},
	PriorityHigh:   {rank: 2, dueDays: 2},
	PriorityMedium: {rank: 3, dueDays: 5},
	PriorityLow:    {rank: 4, dueDays: 7},
}

// Rank returns the queue rank, urgent=1 through low=4
func (p Priority) Rank() int {
	return priorityPolicy[p].rank
}

// DueDays returns the SLA window in days for this priority
func (p Priority) DueDays() int {
	return priorityPolicy[p].dueDays
}

// DueDateFrom computes the work order due date for this priority
func (p Priority) DueDateFrom(start time.Time) time.Time {
	return start.AddDate(0, 0, p.DueDays())
}

// QueueBefore reports whether an item with priority p created at pCreated is
// served before one with priority q created at qCreated: priority rank
// ascending, then creation time ascending. This is a strict total order as
// long as creation timestamps differ; repositories apply the same order in
// SQL so paged queues and in-memory sorts agree.
func QueueBefore(p Priority, pCreated time.Time, q Priority, qCreated time.Time) bool {
	if p.Rank() != q.Rank() {
		return p.Rank() < q.Rank()
	}
	return pCreated.Before(qCreated)
}

// EntityKind names the two sides of the complaint / work order link
type EntityKind string

const (
	KindComplaint EntityKind = "complaint"
	KindWorkOrder EntityKind = "work_order"
)

// syncRule maps a status change on one side of the link to the status the
// other side must reach.
type syncRule struct {
	source       EntityKind
	sourceStatus string
	targetStatus string
}

// syncTable is the single source of truth for both sync directions. Forward
// and reverse mappings live in one table so they cannot drift apart when the
// state machine grows a status.
var syncTable = []syncRule{
	{KindComplaint, string(ComplaintStatusInProgress), string(WorkOrderStatusInProgress)},
	{KindComplaint, string(ComplaintStatusResolved), string(WorkOrderStatusCompleted)},
	{KindComplaint, string(ComplaintStatusClosed), string(WorkOrderStatusCompleted)},
	{KindWorkOrder, string(WorkOrderStatusInProgress), string(ComplaintStatusInProgress)},
	{KindWorkOrder, string(WorkOrderStatusCompleted), string(ComplaintStatusResolved)},
}

func mappedStatus(source EntityKind, sourceStatus string) (string, bool) {
	for _, r := range syncTable {
		if r.source == source && r.sourceStatus == sourceStatus {
			return r.targetStatus, true
		}
	}
	return "", false
}

// MapComplaintStatus returns the work order status a complaint transition
// requires on its linked work order, if any.
func MapComplaintStatus(status ComplaintStatus) (WorkOrderStatus, bool) {
	s, ok := mappedStatus(KindComplaint, string(status))
	return WorkOrderStatus(s), ok
}

// MapWorkOrderStatus returns the complaint status a work order transition
// requires on its linked complaint, if any.
func MapWorkOrderStatus(status WorkOrderStatus) (ComplaintStatus, bool) {
	s, ok := mappedStatus(KindWorkOrder, string(status))
	return ComplaintStatus(s), ok
}
