package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/innkeep/pms_backend/internal/apperrors"
	"github.com/innkeep/pms_backend/internal/core/domain"
	portsrepo "github.com/innkeep/pms_backend/internal/core/ports/repositories"
	portssvc "github.com/innkeep/pms_backend/internal/core/ports/services"
	"github.com/innkeep/pms_backend/internal/core/services"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock InventoryRepository ---
type MockInventoryRepository struct {
	mock.Mock
}

// Ensure MockInventoryRepository implements portsrepo.InventoryRepositoryWithTx
var _ portsrepo.InventoryRepositoryWithTx = (*MockInventoryRepository)(nil)

func (m *MockInventoryRepository) FindCells(ctx context.Context, roomTypeID string, stay calendar.StayRange) ([]domain.InventoryCell, error) {
	args := m.Called(ctx, roomTypeID, stay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryCell), args.Error(1)
}

func (m *MockInventoryRepository) ReserveSpan(ctx context.Context, roomTypeID string, stay calendar.StayRange) error {
	args := m.Called(ctx, roomTypeID, stay)
	return args.Error(0)
}

func (m *MockInventoryRepository) ReleaseSpan(ctx context.Context, roomTypeID string, stay calendar.StayRange) error {
	args := m.Called(ctx, roomTypeID, stay)
	return args.Error(0)
}

func (m *MockInventoryRepository) ReleaseSpanInTx(ctx context.Context, tx pgx.Tx, roomTypeID string, stay calendar.StayRange) error {
	args := m.Called(ctx, tx, roomTypeID, stay)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpsertCell(ctx context.Context, roomTypeID string, date time.Time, totalCapacity, blockedCount int) error {
	args := m.Called(ctx, roomTypeID, date, totalCapacity, blockedCount)
	return args.Error(0)
}

func (m *MockInventoryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockInventoryRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockInventoryRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func mustDate(s string) time.Time {
	t, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func stay(from, to string) calendar.StayRange {
	return calendar.NewStayRange(mustDate(from), mustDate(to))
}

// --- Inventory Service Test Suite ---
type InventoryServiceTestSuite struct {
	suite.Suite
	mockRepo *MockInventoryRepository
	service  portssvc.InventorySvcFacade
}

func (suite *InventoryServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockInventoryRepository)
	suite.service = services.NewInventoryService(suite.mockRepo, 365)
}

func TestInventoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}

func (suite *InventoryServiceTestSuite) TestCheckAvailability_Success() {
	ctx := context.Background()
	rng := stay("2024-06-01", "2024-06-04")
	cells := []domain.InventoryCell{
		{RoomTypeID: "standard", Date: mustDate("2024-06-01"), TotalCapacity: 10, ReservedCount: 4, BlockedCount: 1},
		{RoomTypeID: "standard", Date: mustDate("2024-06-02"), TotalCapacity: 10, ReservedCount: 10, BlockedCount: 0},
		// 2024-06-03 intentionally unseeded.
	}
	suite.mockRepo.On("FindCells", ctx, "standard", rng).Return(cells, nil).Once()

	availability, err := suite.service.CheckAvailability(ctx, "standard", rng)

	suite.Require().NoError(err)
	suite.Require().Len(availability, 3)
	suite.Equal(5, availability[0].Available)
	suite.Equal(0, availability[1].Available)
	// An unseeded night sells nothing.
	suite.Equal(0, availability[2].Available)
	suite.Equal(mustDate("2024-06-03"), availability[2].Date)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *InventoryServiceTestSuite) TestCheckAvailability_InvalidRange() {
	ctx := context.Background()

	_, err := suite.service.CheckAvailability(ctx, "standard", stay("2024-06-04", "2024-06-01"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidRange)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindCells")
}

func (suite *InventoryServiceTestSuite) TestCheckAvailability_HorizonExceeded() {
	ctx := context.Background()
	suite.service = services.NewInventoryService(suite.mockRepo, 30)

	_, err := suite.service.CheckAvailability(ctx, "standard", stay("2024-06-01", "2024-08-01"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidRange)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindCells")
}

func (suite *InventoryServiceTestSuite) TestReserve_Success() {
	ctx := context.Background()
	rng := stay("2024-06-01", "2024-06-03")
	suite.mockRepo.On("ReserveSpan", ctx, "standard", rng).Return(nil).Once()

	err := suite.service.Reserve(ctx, "standard", rng)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *InventoryServiceTestSuite) TestReserve_CapacityExceeded() {
	ctx := context.Background()
	rng := stay("2024-06-01", "2024-06-03")
	capErr := fmt.Errorf("%w: room type standard is full on 2024-06-01", apperrors.ErrCapacityExceeded)
	suite.mockRepo.On("ReserveSpan", ctx, "standard", rng).Return(capErr).Once()

	err := suite.service.Reserve(ctx, "standard", rng)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCapacityExceeded)
	suite.Contains(err.Error(), "2024-06-01")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *InventoryServiceTestSuite) TestReserve_InvalidRangeNeverHitsRepo() {
	ctx := context.Background()

	err := suite.service.Reserve(ctx, "standard", stay("2024-06-03", "2024-06-03"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidRange)
	suite.mockRepo.AssertNotCalled(suite.T(), "ReserveSpan")
}

func (suite *InventoryServiceTestSuite) TestRelease_InvalidRangeNeverHitsRepo() {
	ctx := context.Background()

	err := suite.service.Release(ctx, "standard", stay("2024-06-03", "2024-06-01"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidRange)
	suite.mockRepo.AssertNotCalled(suite.T(), "ReleaseSpan")
}

func (suite *InventoryServiceTestSuite) TestRelease_BeyondHorizonStillAllowed() {
	// Releases skip the horizon cap; a span that got reserved before the cap
	// was tightened must still be returnable.
	ctx := context.Background()
	suite.service = services.NewInventoryService(suite.mockRepo, 30)
	rng := stay("2024-06-01", "2024-08-01")
	suite.mockRepo.On("ReleaseSpan", ctx, "standard", rng).Return(nil).Once()

	suite.Require().NoError(suite.service.Release(ctx, "standard", rng))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *InventoryServiceTestSuite) TestExtendAndShrink_SingleNightSpans() {
	ctx := context.Background()
	night := stay("2024-06-05", "2024-06-06")
	suite.mockRepo.On("ReserveSpan", ctx, "standard", night).Return(nil).Once()
	suite.mockRepo.On("ReleaseSpan", ctx, "standard", night).Return(nil).Once()

	suite.Require().NoError(suite.service.Extend(ctx, "standard", mustDate("2024-06-05")))
	suite.Require().NoError(suite.service.Shrink(ctx, "standard", mustDate("2024-06-05")))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *InventoryServiceTestSuite) TestSetCapacity_Validation() {
	ctx := context.Background()

	err := suite.service.SetCapacity(ctx, "standard", mustDate("2024-06-01"), -1, 0)
	suite.ErrorIs(err, apperrors.ErrValidation)

	err = suite.service.SetCapacity(ctx, "standard", mustDate("2024-06-01"), 2, 3)
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockRepo.AssertNotCalled(suite.T(), "UpsertCell")
}

func (suite *InventoryServiceTestSuite) TestSetCapacity_Success() {
	ctx := context.Background()
	date := mustDate("2024-06-01")
	suite.mockRepo.On("UpsertCell", ctx, "standard", date, 10, 2).Return(nil).Once()

	err := suite.service.SetCapacity(ctx, "standard", date, 10, 2)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- All-or-nothing semantics under concurrency ---

// fakeInventoryRepo is an in-memory stand-in with the same all-or-nothing
// contract the SQL repository provides; it lets the reserve path be hammered
// concurrently without a database.
type fakeInventoryRepo struct {
	mu    sync.Mutex
	cells map[string]map[time.Time]*domain.InventoryCell
}

var _ portsrepo.InventoryRepositoryWithTx = (*fakeInventoryRepo)(nil)

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{cells: make(map[string]map[time.Time]*domain.InventoryCell)}
}

func (f *fakeInventoryRepo) seed(roomTypeID string, date time.Time, total int) {
	if f.cells[roomTypeID] == nil {
		f.cells[roomTypeID] = make(map[time.Time]*domain.InventoryCell)
	}
	f.cells[roomTypeID][date] = &domain.InventoryCell{RoomTypeID: roomTypeID, Date: date, TotalCapacity: total}
}

func (f *fakeInventoryRepo) FindCells(_ context.Context, roomTypeID string, stay calendar.StayRange) ([]domain.InventoryCell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.InventoryCell
	for _, d := range stay.Dates() {
		if c, ok := f.cells[roomTypeID][d]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) ReserveSpan(_ context.Context, roomTypeID string, stay calendar.StayRange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range stay.Dates() {
		c, ok := f.cells[roomTypeID][d]
		if !ok || c.Available() < 1 {
			return fmt.Errorf("%w: room type %s is full on %s", apperrors.ErrCapacityExceeded, roomTypeID, d.Format(calendar.DateLayout))
		}
	}
	for _, d := range stay.Dates() {
		f.cells[roomTypeID][d].ReservedCount++
	}
	return nil
}

func (f *fakeInventoryRepo) ReleaseSpan(_ context.Context, roomTypeID string, stay calendar.StayRange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range stay.Dates() {
		c, ok := f.cells[roomTypeID][d]
		if !ok || c.ReservedCount < 1 {
			return fmt.Errorf("invariant violation: releasing unreserved night %s", d.Format(calendar.DateLayout))
		}
	}
	for _, d := range stay.Dates() {
		f.cells[roomTypeID][d].ReservedCount--
	}
	return nil
}

func (f *fakeInventoryRepo) UpsertCell(_ context.Context, roomTypeID string, date time.Time, totalCapacity, blockedCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seed(roomTypeID, date, totalCapacity)
	f.cells[roomTypeID][date].BlockedCount = blockedCount
	return nil
}

func (f *fakeInventoryRepo) ReleaseSpanInTx(ctx context.Context, _ pgx.Tx, roomTypeID string, stay calendar.StayRange) error {
	return f.ReleaseSpan(ctx, roomTypeID, stay)
}

func (f *fakeInventoryRepo) Begin(context.Context) (pgx.Tx, error)   { return nil, nil }
func (f *fakeInventoryRepo) Commit(context.Context, pgx.Tx) error    { return nil }
func (f *fakeInventoryRepo) Rollback(context.Context, pgx.Tx) error  { return nil }

func TestReserveConcurrentDemandNeverOversells(t *testing.T) {
	ctx := context.Background()
	repo := newFakeInventoryRepo()
	rng := stay("2024-06-01", "2024-06-04")
	for _, d := range rng.Dates() {
		repo.seed("standard", d, 1)
	}
	svc := services.NewInventoryService(repo, 365)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Reserve(ctx, "standard", rng)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, apperrors.ErrCapacityExceeded) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one winner for capacity 1, got %d", succeeded)
	}

	availability, err := svc.CheckAvailability(ctx, "standard", rng)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range availability {
		if a.Available != 0 {
			t.Fatalf("expected every night fully reserved, %s has %d free", a.Date.Format(calendar.DateLayout), a.Available)
		}
	}
}
