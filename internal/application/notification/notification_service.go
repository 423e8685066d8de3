package notification

import (
	"context"
	"time"

	"github.com/powergrid/backend/internal/domain/notification"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NotificationService serves the per-user notification inbox
type NotificationService struct {
	repo notification.Repository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// NotificationResponse is the API-facing view of a notification
type NotificationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Kind      notification.Kind `json:"kind"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	ActionRef string            `json:"action_ref,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

// List returns the caller's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[NotificationResponse], error) {
	notifications, total, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = NotificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			Title:     n.Title,
			Message:   n.Message,
			ActionRef: n.ActionRef,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UnreadCount returns how many notifications the caller has not seen
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAllRead flags the caller's whole inbox as seen
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
