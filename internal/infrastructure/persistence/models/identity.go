package models

import (
	"time"

	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// UserModel is the GORM model for users
type UserModel struct {
	AggregateModel
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	FullName     string     `gorm:"type:varchar(255);not null"`
	Role         string     `gorm:"type:varchar(20);not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active'"`
	CustomerID   *uuid.UUID `gorm:"type:uuid"`
	EmployeeID   *uuid.UUID `gorm:"type:uuid"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FullName:          m.FullName,
		Role:              identity.Role(m.Role),
		Status:            identity.UserStatus(m.Status),
		CustomerID:        m.CustomerID,
		EmployeeID:        m.EmployeeID,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain fills the model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FullName = u.FullName
	m.Role = string(u.Role)
	m.Status = string(u.Status)
	m.CustomerID = u.CustomerID
	m.EmployeeID = u.EmployeeID
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a UserModel from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
