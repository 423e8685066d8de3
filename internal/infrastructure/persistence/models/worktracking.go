package models

import (
	"time"

	"github.com/powergrid/backend/internal/domain/worktracking"
	"github.com/google/uuid"
)

// ComplaintModel is the GORM model for complaints. The priority_rank column
// duplicates the priority's numeric rank so the queue can sort in SQL.
type ComplaintModel struct {
	AggregateModel
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID      *uuid.UUID `gorm:"type:uuid;index"`
	WorkOrderID     *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Subject         string     `gorm:"type:varchar(255);not null"`
	Description     string     `gorm:"type:text;not null"`
	Category        string     `gorm:"type:varchar(50)"`
	Priority        string     `gorm:"type:varchar(20);not null"`
	PriorityRank    int        `gorm:"not null;index:idx_complaints_queue"`
	Status          string     `gorm:"type:varchar(20);not null;index:idx_complaints_queue"`
	ResolutionNotes string     `gorm:"type:text"`
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
}

// TableName returns the table name for ComplaintModel
func (ComplaintModel) TableName() string {
	return "complaints"
}

// ToDomain converts the model to a domain Complaint
func (m *ComplaintModel) ToDomain() *worktracking.Complaint {
	return &worktracking.Complaint{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		EmployeeID:        m.EmployeeID,
		WorkOrderID:       m.WorkOrderID,
		Subject:           m.Subject,
		Description:       m.Description,
		Category:          m.Category,
		Priority:          worktracking.Priority(m.Priority),
		Status:            worktracking.ComplaintStatus(m.Status),
		ResolutionNotes:   m.ResolutionNotes,
		ResolvedAt:        m.ResolvedAt,
		ClosedAt:          m.ClosedAt,
	}
}

// FromDomain fills the model from a domain Complaint
func (m *ComplaintModel) FromDomain(c *worktracking.Complaint) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerID = c.CustomerID
	m.EmployeeID = c.EmployeeID
	m.WorkOrderID = c.WorkOrderID
	m.Subject = c.Subject
	m.Description = c.Description
	m.Category = c.Category
	m.Priority = string(c.Priority)
	m.PriorityRank = c.Priority.Rank()
	m.Status = string(c.Status)
	m.ResolutionNotes = c.ResolutionNotes
	m.ResolvedAt = c.ResolvedAt
	m.ClosedAt = c.ClosedAt
}

// ComplaintModelFromDomain creates a ComplaintModel from a domain Complaint
func ComplaintModelFromDomain(c *worktracking.Complaint) *ComplaintModel {
	m := &ComplaintModel{}
	m.FromDomain(c)
	return m
}

// WorkOrderModel is the GORM model for work orders
type WorkOrderModel struct {
	AggregateModel
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID      *uuid.UUID `gorm:"type:uuid;index"`
	ComplaintID     *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	WorkType        string     `gorm:"type:varchar(30);not null"`
	Priority        string     `gorm:"type:varchar(20);not null"`
	PriorityRank    int        `gorm:"not null;index:idx_work_orders_queue"`
	Status          string     `gorm:"type:varchar(20);not null;index:idx_work_orders_queue"`
	Description     string     `gorm:"type:text;not null"`
	DueDate         time.Time  `gorm:"not null"`
	CompletionDate  *time.Time
	CompletionNotes string `gorm:"type:text"`
}

// TableName returns the table name for WorkOrderModel
func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// ToDomain converts the model to a domain WorkOrder
func (m *WorkOrderModel) ToDomain() *worktracking.WorkOrder {
	return &worktracking.WorkOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		EmployeeID:        m.EmployeeID,
		ComplaintID:       m.ComplaintID,
		WorkType:          worktracking.WorkType(m.WorkType),
		Priority:          worktracking.Priority(m.Priority),
		Status:            worktracking.WorkOrderStatus(m.Status),
		Description:       m.Description,
		DueDate:           m.DueDate,
		CompletionDate:    m.CompletionDate,
		CompletionNotes:   m.CompletionNotes,
	}
}

// FromDomain fills the model from a domain WorkOrder
func (m *WorkOrderModel) FromDomain(w *worktracking.WorkOrder) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.CustomerID = w.CustomerID
	m.EmployeeID = w.EmployeeID
	m.ComplaintID = w.ComplaintID
	m.WorkType = string(w.WorkType)
	m.Priority = string(w.Priority)
	m.PriorityRank = w.Priority.Rank()
	m.Status = string(w.Status)
	m.Description = w.Description
	m.DueDate = w.DueDate
	m.CompletionDate = w.CompletionDate
	m.CompletionNotes = w.CompletionNotes
}

// WorkOrderModelFromDomain creates a WorkOrderModel from a domain WorkOrder
func WorkOrderModelFromDomain(w *worktracking.WorkOrder) *WorkOrderModel {
	m := &WorkOrderModel{}
	m.FromDomain(w)
	return m
}
