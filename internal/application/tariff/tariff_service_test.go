package tariff

import (
	"context"
	"testing"
	"time"

	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*tariff.Tariff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariff.Tariff), args.Error(1)
}

func (m *MockTariffRepository) ResolveForDate(ctx context.Context, category tariff.Category, asOf time.Time) (*tariff.Tariff, error) {
	args := m.Called(ctx, category, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariff.Tariff), args.Error(1)
}

func (m *MockTariffRepository) FindOpenByCategory(ctx context.Context, category tariff.Category) (*tariff.Tariff, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariff.Tariff), args.Error(1)
}

func (m *MockTariffRepository) CreateVersion(ctx context.Context, t *tariff.Tariff) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTariffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]tariff.Tariff, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]tariff.Tariff), args.Error(1)
}

func (m *MockTariffRepository) FindByCategory(ctx context.Context, category tariff.Category, filter shared.Filter) ([]tariff.Tariff, error) {
	args := m.Called(ctx, category, filter)
	return args.Get(0).([]tariff.Tariff), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetResolved(ctx context.Context, category tariff.Category, asOf time.Time) (*tariff.Tariff, bool) {
	args := m.Called(ctx, category, asOf)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*tariff.Tariff), args.Bool(1)
}

func (m *MockCache) SetResolved(ctx context.Context, category tariff.Category, asOf time.Time, t *tariff.Tariff) {
	m.Called(ctx, category, asOf, t)
}

func (m *MockCache) InvalidateCategory(ctx context.Context, category tariff.Category) {
	m.Called(ctx, category)
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func dp(v string) *decimal.Decimal {
	x := decimal.RequireFromString(v)
	return &x
}

func residentialTariff(t *testing.T) *tariff.Tariff {
	t.Helper()
	tar, err := tariff.NewTariff(
		tariff.CategoryResidential,
		d("50"), d("16"), d("18"),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		[]tariff.Slab{
			{Order: 0, StartUnits: d("0"), EndUnits: dp("100"), RatePerUnit: d("5.0")},
			{Order: 1, StartUnits: d("100"), EndUnits: dp("300"), RatePerUnit: d("7.5")},
			{Order: 2, StartUnits: d("300"), EndUnits: nil, RatePerUnit: d("10.0")},
		},
	)
	require.NoError(t, err)
	return tar
}

func adminPrincipal() identity.Principal {
	return identity.Principal{UserID: uuid.New(), Role: identity.RoleAdmin}
}

func TestCreateVersion_AdminOnly(t *testing.T) {
	repo := new(MockTariffRepository)
	cache := new(MockCache)
	service := NewTariffService(repo, cache, zap.NewNop())

	employeeID := uuid.New()
	principal := identity.Principal{UserID: uuid.New(), Role: identity.RoleEmployee, EmployeeID: &employeeID}

	_, err := service.CreateVersion(context.Background(), principal, CreateTariffRequest{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	repo.AssertNotCalled(t, "CreateVersion", mock.Anything, mock.Anything)
}

func TestCreateVersion_InvalidatesCategoryCache(t *testing.T) {
	repo := new(MockTariffRepository)
	cache := new(MockCache)
	service := NewTariffService(repo, cache, zap.NewNop())

	repo.On("CreateVersion", mock.Anything, mock.Anything).Return(nil)
	cache.On("InvalidateCategory", mock.Anything, tariff.CategoryResidential).Return()

	resp, err := service.CreateVersion(context.Background(), adminPrincipal(), CreateTariffRequest{
		Category:               tariff.CategoryResidential,
		FixedCharge:            d("50"),
		ElectricityDutyPercent: d("16"),
		GSTPercent:             d("18"),
		EffectiveDate:          time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Slabs: []SlabRequest{
			{StartUnits: d("0"), EndUnits: dp("100"), RatePerUnit: d("5.5")},
			{StartUnits: d("100"), EndUnits: nil, RatePerUnit: d("8.0")},
		},
	})
	require.NoError(t, err)

	assert.Len(t, resp.Slabs, 2)
	assert.Equal(t, 1, resp.Slabs[1].Order, "slab order follows request position")
	cache.AssertExpectations(t)
}

func TestCreateVersion_SlabValidationRejected(t *testing.T) {
	repo := new(MockTariffRepository)
	service := NewTariffService(repo, nil, zap.NewNop())

	// Gap between 100 and 150.
	_, err := service.CreateVersion(context.Background(), adminPrincipal(), CreateTariffRequest{
		Category:               tariff.CategoryResidential,
		FixedCharge:            d("50"),
		ElectricityDutyPercent: d("16"),
		GSTPercent:             d("18"),
		EffectiveDate:          time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Slabs: []SlabRequest{
			{StartUnits: d("0"), EndUnits: dp("100"), RatePerUnit: d("5.5")},
			{StartUnits: d("150"), EndUnits: nil, RatePerUnit: d("8.0")},
		},
	})
	require.Error(t, err)
	repo.AssertNotCalled(t, "CreateVersion", mock.Anything, mock.Anything)
}

func TestResolve_CacheHitSkipsRepository(t *testing.T) {
	repo := new(MockTariffRepository)
	cache := new(MockCache)
	service := NewTariffService(repo, cache, zap.NewNop())
	tar := residentialTariff(t)
	asOf := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)

	cache.On("GetResolved", mock.Anything, tariff.CategoryResidential, asOf).Return(tar, true)

	got, err := service.Resolve(context.Background(), tariff.CategoryResidential, asOf)
	require.NoError(t, err)
	assert.Equal(t, tar.ID, got.ID)
	repo.AssertNotCalled(t, "ResolveForDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_CacheMissFillsCache(t *testing.T) {
	repo := new(MockTariffRepository)
	cache := new(MockCache)
	service := NewTariffService(repo, cache, zap.NewNop())
	tar := residentialTariff(t)
	asOf := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)

	cache.On("GetResolved", mock.Anything, tariff.CategoryResidential, asOf).Return(nil, false)
	repo.On("ResolveForDate", mock.Anything, tariff.CategoryResidential, asOf).Return(tar, nil)
	cache.On("SetResolved", mock.Anything, tariff.CategoryResidential, asOf, tar).Return()

	got, err := service.Resolve(context.Background(), tariff.CategoryResidential, asOf)
	require.NoError(t, err)
	assert.Equal(t, tar.ID, got.ID)
	cache.AssertExpectations(t)
}

func TestResolve_NoVersionIsAnError(t *testing.T) {
	repo := new(MockTariffRepository)
	service := NewTariffService(repo, nil, zap.NewNop())
	asOf := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	notFound := shared.NewDomainError(shared.CodeNoTariffFound, "No tariff version for residential at 2020-01-01")
	repo.On("ResolveForDate", mock.Anything, tariff.CategoryResidential, asOf).Return(nil, notFound)

	_, err := service.Resolve(context.Background(), tariff.CategoryResidential, asOf)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeNoTariffFound, domainErr.Code)
}
