package persistence

import (
	"context"
	"errors"

	"github.com/powergrid/backend/internal/domain/billing"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMeterReadingRepository implements billing.MeterReadingRepository using GORM
type GormMeterReadingRepository struct {
	db *gorm.DB
}

// NewGormMeterReadingRepository creates a new GormMeterReadingRepository
func NewGormMeterReadingRepository(db *gorm.DB) *GormMeterReadingRepository {
	return &GormMeterReadingRepository{db: db}
}

// Save inserts or updates a meter reading
func (r *GormMeterReadingRepository) Save(ctx context.Context, reading *billing.MeterReading) error {
	model := models.MeterReadingModelFromDomain(reading)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a meter reading by its ID
func (r *GormMeterReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.MeterReading, error) {
	var model models.MeterReadingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestByCustomer returns the customer's most recent reading by reading
// date, falling back to insertion order for same-day readings
func (r *GormMeterReadingRepository) FindLatestByCustomer(ctx context.Context, customerID uuid.UUID) (*billing.MeterReading, error) {
	var model models.MeterReadingModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("reading_date DESC, created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNoMeterReading,
				"No meter reading has been recorded for this customer")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns the customer's reading history, most recent first
func (r *GormMeterReadingRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.MeterReading, error) {
	var rows []models.MeterReadingModel
	query := r.db.WithContext(ctx).Model(&models.MeterReadingModel{}).
		Where("customer_id = ?", customerID).
		Order("reading_date DESC, created_at DESC")
	if err := applyPagination(query, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]billing.MeterReading, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result, nil
}
