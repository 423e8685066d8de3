// Package notify implements the notification delivery sink on top of the
// persisted inbox.
package notify

import (
	"context"

	"github.com/powergrid/backend/internal/domain/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminDirectory resolves the user IDs a broadcast should fan out to
type AdminDirectory interface {
	FindAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

// InboxSink delivers notifications by writing inbox rows. Delivery happens
// outside the caller's transaction; callers treat failures as non-fatal and
// this sink only reports them.
type InboxSink struct {
	repo   notification.Repository
	admins AdminDirectory
	logger *zap.Logger
}

// NewInboxSink creates a new InboxSink
func NewInboxSink(repo notification.Repository, admins AdminDirectory, logger *zap.Logger) *InboxSink {
	return &InboxSink{repo: repo, admins: admins, logger: logger}
}

// Notify writes one notification to one user's inbox
func (s *InboxSink) Notify(ctx context.Context, userID uuid.UUID, kind notification.Kind, title, message, actionRef string) error {
	n, err := notification.NewNotification(userID, kind, title, message, actionRef)
	if err != nil {
		return err
	}
	return s.repo.Save(ctx, n)
}

// NotifyAdmins fans the message out to every active admin. A failed write
// for one admin does not stop delivery to the rest; the first error is
// reported after the fan-out completes.
func (s *InboxSink) NotifyAdmins(ctx context.Context, kind notification.Kind, title, message, actionRef string) error {
	adminIDs, err := s.admins.FindAdminIDs(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for _, adminID := range adminIDs {
		if err := s.Notify(ctx, adminID, kind, title, message, actionRef); err != nil {
			s.logger.Warn("admin notification delivery failed",
				zap.String("admin_id", adminID.String()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Ensure InboxSink implements the domain sink port
var _ notification.Sink = (*InboxSink)(nil)
