package models

import (
	"time"

	"github.com/powergrid/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationModel is the GORM model for the notification inbox
type NotificationModel struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_user_read"`
	Kind      string    `gorm:"type:varchar(30);not null"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Message   string    `gorm:"type:text"`
	ActionRef string    `gorm:"type:varchar(100)"`
	Read      bool      `gorm:"not null;default:false;index:idx_notifications_user_read"`
	ReadAt    *time.Time
}

// TableName returns the table name for NotificationModel
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity: m.ToDomainBaseEntity(),
		UserID:     m.UserID,
		Kind:       notification.Kind(m.Kind),
		Title:      m.Title,
		Message:    m.Message,
		ActionRef:  m.ActionRef,
		Read:       m.Read,
		ReadAt:     m.ReadAt,
	}
}

// FromDomain fills the model from a domain Notification
func (m *NotificationModel) FromDomain(n *notification.Notification) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.UserID = n.UserID
	m.Kind = string(n.Kind)
	m.Title = n.Title
	m.Message = n.Message
	m.ActionRef = n.ActionRef
	m.Read = n.Read
	m.ReadAt = n.ReadAt
}

// NotificationModelFromDomain creates a NotificationModel from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{}
	m.FromDomain(n)
	return m
}
