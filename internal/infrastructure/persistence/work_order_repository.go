package persistence

import (
	"context"
	"errors"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/worktracking"
	"github.com/powergrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWorkOrderRepository implements worktracking.WorkOrderRepository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// Save inserts or updates a work order
func (r *GormWorkOrderRepository) Save(ctx context.Context, workOrder *worktracking.WorkOrder) error {
	model := models.WorkOrderModelFromDomain(workOrder)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a work order by its ID
func (r *GormWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*worktracking.WorkOrder, error) {
	var model models.WorkOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmployee returns the employee's work orders with the total count
func (r *GormWorkOrderRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID, filter shared.Filter) ([]worktracking.WorkOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WorkOrderModel{}).
		Where("employee_id = ?", employeeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.WorkOrderModel
	query = applySort(query, filter, CommonSortFields, "created_at")
	if err := applyPagination(query, filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return workOrdersToDomain(rows), total, nil
}

// FindQueue returns unfinished work orders in SLA order, the same order the
// complaint queue uses
func (r *GormWorkOrderRepository) FindQueue(ctx context.Context, filter shared.Filter) ([]worktracking.WorkOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WorkOrderModel{}).
		Where("status <> ?", string(worktracking.WorkOrderStatusCompleted))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.WorkOrderModel
	query = query.Order("priority_rank ASC, created_at ASC")
	if err := applyPagination(query, filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return workOrdersToDomain(rows), total, nil
}

func workOrdersToDomain(rows []models.WorkOrderModel) []worktracking.WorkOrder {
	result := make([]worktracking.WorkOrder, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result
}
