package tariff

import (
	"context"
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cache is the read-through cache for tariff resolution. Lookups on the
// billing hot path hit it first; version creation invalidates the category.
type Cache interface {
	GetResolved(ctx context.Context, category tariff.Category, asOf time.Time) (*tariff.Tariff, bool)
	SetResolved(ctx context.Context, category tariff.Category, asOf time.Time, t *tariff.Tariff)
	InvalidateCategory(ctx context.Context, category tariff.Category)
}

// TariffService manages versioned tariff price sheets
type TariffService struct {
	repo           tariff.Repository
	cache          Cache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTariffService creates a new TariffService
func NewTariffService(repo tariff.Repository, cache Cache, logger *zap.Logger) *TariffService {
	return &TariffService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TariffService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SlabRequest is one slab row in a tariff creation request
type SlabRequest struct {
	StartUnits  decimal.Decimal  `json:"start_units"`
	EndUnits    *decimal.Decimal `json:"end_units,omitempty"`
	RatePerUnit decimal.Decimal  `json:"rate_per_unit"`
}

// CreateTariffRequest creates a new tariff version for a category
type CreateTariffRequest struct {
	Category               tariff.Category `json:"category"`
	FixedCharge            decimal.Decimal `json:"fixed_charge"`
	ElectricityDutyPercent decimal.Decimal `json:"electricity_duty_percent"`
	GSTPercent             decimal.Decimal `json:"gst_percent"`
	EffectiveDate          time.Time       `json:"effective_date"`
	Slabs                  []SlabRequest   `json:"slabs"`
}

// TariffResponse is the API-facing view of a tariff version
type TariffResponse struct {
	ID                     uuid.UUID       `json:"id"`
	Category               tariff.Category `json:"category"`
	FixedCharge            decimal.Decimal `json:"fixed_charge"`
	ElectricityDutyPercent decimal.Decimal `json:"electricity_duty_percent"`
	GSTPercent             decimal.Decimal `json:"gst_percent"`
	EffectiveDate          time.Time       `json:"effective_date"`
	ValidUntil             *time.Time      `json:"valid_until,omitempty"`
	Slabs                  []tariff.Slab   `json:"slabs"`
}

// ToTariffResponse converts a tariff aggregate to its response form
func ToTariffResponse(t *tariff.Tariff) TariffResponse {
	return TariffResponse{
		ID:                     t.ID,
		Category:               t.Category,
		FixedCharge:            t.FixedCharge,
		ElectricityDutyPercent: t.ElectricityDutyPercent,
		GSTPercent:             t.GSTPercent,
		EffectiveDate:          t.EffectiveDate,
		ValidUntil:             t.ValidUntil,
		Slabs:                  t.Slabs,
	}
}

// CreateVersion creates a new tariff version for a category. The prior open
// version is closed out in the same transaction, so bills already priced
// against it stay pointed at immutable terms. Admin only.
func (s *TariffService) CreateVersion(ctx context.Context, principal identity.Principal, req CreateTariffRequest) (*TariffResponse, error) {
	if !principal.IsAdmin() {
		return nil, shared.ErrUnauthorized
	}

	slabs := make([]tariff.Slab, len(req.Slabs))
	for i, sl := range req.Slabs {
		slabs[i] = tariff.Slab{
			Order:       i,
			StartUnits:  sl.StartUnits,
			EndUnits:    sl.EndUnits,
			RatePerUnit: sl.RatePerUnit,
		}
	}

	t, err := tariff.NewTariff(req.Category, req.FixedCharge, req.ElectricityDutyPercent, req.GSTPercent, req.EffectiveDate, slabs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateVersion(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tariff version: %w", err)
	}

	if s.cache != nil {
		s.cache.InvalidateCategory(ctx, req.Category)
	}
	s.publishEvents(ctx, t)

	resp := ToTariffResponse(t)
	return &resp, nil
}

// Resolve returns the tariff version in force for the category at the given
// date, read through the cache. A missing version is an error; billing never
// silently falls back to a default price sheet.
func (s *TariffService) Resolve(ctx context.Context, category tariff.Category, asOf time.Time) (*tariff.Tariff, error) {
	if s.cache != nil {
		if t, ok := s.cache.GetResolved(ctx, category, asOf); ok {
			return t, nil
		}
	}

	t, err := s.repo.ResolveForDate(ctx, category, asOf)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetResolved(ctx, category, asOf, t)
	}
	return t, nil
}

// Get returns a single tariff version by ID
func (s *TariffService) Get(ctx context.Context, id uuid.UUID) (*TariffResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTariffResponse(t)
	return &resp, nil
}

// List returns tariff versions, optionally narrowed to one category
func (s *TariffService) List(ctx context.Context, category *tariff.Category, filter shared.Filter) ([]TariffResponse, error) {
	var (
		tariffs []tariff.Tariff
		err     error
	)
	if category != nil {
		tariffs, err = s.repo.FindByCategory(ctx, *category, filter)
	} else {
		tariffs, err = s.repo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]TariffResponse, len(tariffs))
	for i := range tariffs {
		responses[i] = ToTariffResponse(&tariffs[i])
	}
	return responses, nil
}

func (s *TariffService) publishEvents(ctx context.Context, t *tariff.Tariff) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range t.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish tariff event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	t.ClearDomainEvents()
}
