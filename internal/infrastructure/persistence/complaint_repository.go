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

// GormComplaintRepository implements worktracking.ComplaintRepository using GORM
type GormComplaintRepository struct {
	db *gorm.DB
}

// NewGormComplaintRepository creates a new GormComplaintRepository
func NewGormComplaintRepository(db *gorm.DB) *GormComplaintRepository {
	return &GormComplaintRepository{db: db}
}

// Save inserts or updates a complaint
func (r *GormComplaintRepository) Save(ctx context.Context, complaint *worktracking.Complaint) error {
	model := models.ComplaintModelFromDomain(complaint)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a complaint by its ID
func (r *GormComplaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*worktracking.Complaint, error) {
	var model models.ComplaintModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWorkOrder finds the complaint linked to a work order
func (r *GormComplaintRepository) FindByWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*worktracking.Complaint, error) {
	var model models.ComplaintModel
	if err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns the customer's complaints with the total count
func (r *GormComplaintRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]worktracking.Complaint, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ComplaintModel{}).
		Where("customer_id = ?", customerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ComplaintModel
	query = applySort(query, filter, CommonSortFields, "created_at")
	if err := applyPagination(query, filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return complaintsToDomain(rows), total, nil
}

// FindQueue returns open complaints in SLA order: priority rank ascending,
// then creation time ascending
func (r *GormComplaintRepository) FindQueue(ctx context.Context, filter shared.Filter) ([]worktracking.Complaint, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ComplaintModel{}).
		Where("status NOT IN ?", []string{
			string(worktracking.ComplaintStatusResolved),
			string(worktracking.ComplaintStatusClosed),
		})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ComplaintModel
	query = query.Order("priority_rank ASC, created_at ASC")
	if err := applyPagination(query, filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return complaintsToDomain(rows), total, nil
}

func complaintsToDomain(rows []models.ComplaintModel) []worktracking.Complaint {
	result := make([]worktracking.Complaint, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result
}
