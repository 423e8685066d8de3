package notification

import (
	"context"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Kind categorises what a notification is about
type Kind string

const (
	KindBillIssued        Kind = "bill_issued"
	KindPaymentReceived   Kind = "payment_received"
	KindComplaintUpdate   Kind = "complaint_update"
	KindComplaintResolved Kind = "complaint_resolved"
	KindWorkOrderAssigned Kind = "work_order_assigned"
	KindSystem            Kind = "system"
)

// Notification is one message delivered to one user's inbox
type Notification struct {
	shared.BaseEntity
	UserID    uuid.UUID
	Kind      Kind
	Title     string
	Message   string
	ActionRef string
	Read      bool
	ReadAt    *time.Time
}

// NewNotification creates an unread notification
func NewNotification(userID uuid.UUID, kind Kind, title, message, actionRef string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}

	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Kind:       kind,
		Title:      title,
		Message:    message,
		ActionRef:  actionRef,
	}, nil
}

// MarkRead flags the notification as seen
func (n *Notification) MarkRead(at time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	n.ReadAt = &at
	n.UpdatedAt = time.Now()
}

// Sink delivers notifications to users. Delivery is fire-and-forget from the
// caller's point of view: services call it after their transaction commits
// and log the error themselves, a failed delivery never fails a financial
// or tracking operation.
type Sink interface {
	Notify(ctx context.Context, userID uuid.UUID, kind Kind, title, message, actionRef string) error

	// NotifyAdmins fans the message out to every admin user
	NotifyAdmins(ctx context.Context, kind Kind, title, message, actionRef string) error
}

// Repository is the persistence port for the notification inbox
type Repository interface {
	Save(ctx context.Context, n *Notification) error
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
