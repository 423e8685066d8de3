package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/powergrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTariffRepository implements tariff.Repository using GORM
type GormTariffRepository struct {
	db *gorm.DB
}

// NewGormTariffRepository creates a new GormTariffRepository
func NewGormTariffRepository(db *gorm.DB) *GormTariffRepository {
	return &GormTariffRepository{db: db}
}

// FindByID finds a tariff version by its ID
func (r *GormTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*tariff.Tariff, error) {
	var model models.TariffModel
	if err := r.db.WithContext(ctx).
		Preload("Slabs", func(db *gorm.DB) *gorm.DB { return db.Order("slab_order ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ResolveForDate returns the tariff version in force for the category at asOf
func (r *GormTariffRepository) ResolveForDate(ctx context.Context, category tariff.Category, asOf time.Time) (*tariff.Tariff, error) {
	var model models.TariffModel
	err := r.db.WithContext(ctx).
		Preload("Slabs", func(db *gorm.DB) *gorm.DB { return db.Order("slab_order ASC") }).
		Where("category = ? AND effective_date <= ?", category, asOf).
		Where("valid_until IS NULL OR valid_until > ?", asOf).
		Order("effective_date DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNoTariffFound,
				"No tariff version covers the requested date for category "+string(category))
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByCategory returns the category's open version, or nil when the
// category has never been priced
func (r *GormTariffRepository) FindOpenByCategory(ctx context.Context, category tariff.Category) (*tariff.Tariff, error) {
	var model models.TariffModel
	err := r.db.WithContext(ctx).
		Preload("Slabs", func(db *gorm.DB) *gorm.DB { return db.Order("slab_order ASC") }).
		Where("category = ? AND valid_until IS NULL", category).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CreateVersion inserts a new version and closes the category's prior open
// version at the new version's effective date, in one transaction
func (r *GormTariffRepository) CreateVersion(ctx context.Context, t *tariff.Tariff) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TariffModel{}).
			Where("category = ? AND valid_until IS NULL AND id <> ?", t.Category, t.ID).
			Update("valid_until", t.EffectiveDate).Error; err != nil {
			return err
		}
		model := models.TariffModelFromDomain(t)
		return tx.Create(model).Error
	})
}

// FindAll returns tariff versions across all categories
func (r *GormTariffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]tariff.Tariff, error) {
	var rows []models.TariffModel
	query := r.db.WithContext(ctx).Model(&models.TariffModel{}).
		Preload("Slabs", func(db *gorm.DB) *gorm.DB { return db.Order("slab_order ASC") })
	query = applySort(query, filter, TariffSortFields, "effective_date")
	if err := applyPagination(query, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return tariffsToDomain(rows), nil
}

// FindByCategory returns the category's version history
func (r *GormTariffRepository) FindByCategory(ctx context.Context, category tariff.Category, filter shared.Filter) ([]tariff.Tariff, error) {
	var rows []models.TariffModel
	query := r.db.WithContext(ctx).Model(&models.TariffModel{}).
		Preload("Slabs", func(db *gorm.DB) *gorm.DB { return db.Order("slab_order ASC") }).
		Where("category = ?", category)
	query = applySort(query, filter, TariffSortFields, "effective_date")
	if err := applyPagination(query, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return tariffsToDomain(rows), nil
}

func tariffsToDomain(rows []models.TariffModel) []tariff.Tariff {
	result := make([]tariff.Tariff, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result
}
