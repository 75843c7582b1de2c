package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/innkeep/pms_backend/internal/apperrors"
	"github.com/innkeep/pms_backend/internal/core/domain"
	portsrepo "github.com/innkeep/pms_backend/internal/core/ports/repositories"
	portssvc "github.com/innkeep/pms_backend/internal/core/ports/services"
	"github.com/innkeep/pms_backend/internal/middleware"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// inventoryService is the inventory ledger: per (room-type, date) capacity
// counters with all-or-nothing range holds. Atomicity of the multi-night
// reserve/release is the repository's contract; this layer owns validation
// and the availability arithmetic.
type inventoryService struct {
	inventoryRepo  portsrepo.InventoryRepositoryWithTx
	maxHorizonDays int
}

// NewInventoryService creates a new inventory ledger service.
func NewInventoryService(inventoryRepo portsrepo.InventoryRepositoryWithTx, maxHorizonDays int) portssvc.InventorySvcFacade {
	return &inventoryService{
		inventoryRepo:  inventoryRepo,
		maxHorizonDays: maxHorizonDays,
	}
}

// Ensure inventoryService implements the portssvc.InventorySvcFacade interface
var _ portssvc.InventorySvcFacade = (*inventoryService)(nil)

// orderedRange rejects a malformed range; arrival must precede departure.
func orderedRange(stay calendar.StayRange) error {
	if !stay.IsValid() {
		return fmt.Errorf("%w: arrival %s must be before departure %s",
			apperrors.ErrInvalidRange,
			stay.Arrival.Format(calendar.DateLayout),
			stay.Departure.Format(calendar.DateLayout))
	}
	return nil
}

// validateRange rejects malformed or oversized ranges before any mutation.
func (s *inventoryService) validateRange(stay calendar.StayRange) error {
	if err := orderedRange(stay); err != nil {
		return err
	}
	if s.maxHorizonDays > 0 && stay.Nights() > s.maxHorizonDays {
		return fmt.Errorf("%w: range spans %d nights, maximum horizon is %d",
			apperrors.ErrInvalidRange, stay.Nights(), s.maxHorizonDays)
	}
	return nil
}

// CheckAvailability returns total - reserved - blocked for every night of the
// range. Nights with no seeded cell report zero availability.
func (s *inventoryService) CheckAvailability(ctx context.Context, roomTypeID string, stay calendar.StayRange) ([]domain.DateAvailability, error) {
	if err := s.validateRange(stay); err != nil {
		return nil, err
	}

	cells, err := s.inventoryRepo.FindCells(ctx, roomTypeID, stay)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory cells for %s %s: %w", roomTypeID, stay, err)
	}

	byDate := make(map[time.Time]domain.InventoryCell, len(cells))
	for _, cell := range cells {
		byDate[cell.Date] = cell
	}

	availability := make([]domain.DateAvailability, 0, stay.Nights())
	for _, date := range stay.Dates() {
		available := 0
		if cell, ok := byDate[date]; ok {
			available = cell.Available()
		}
		availability = append(availability, domain.DateAvailability{Date: date, Available: available})
	}
	return availability, nil
}

// Reserve holds one unit for every night of the range, all-or-nothing.
func (s *inventoryService) Reserve(ctx context.Context, roomTypeID string, stay calendar.StayRange) error {
	if err := s.validateRange(stay); err != nil {
		return err
	}
	if err := s.inventoryRepo.ReserveSpan(ctx, roomTypeID, stay); err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Info("inventory reserved",
		slog.String("room_type_id", roomTypeID),
		slog.String("stay", stay.String()))
	return nil
}

// Release returns one unit for every night of the range. Unlike Reserve it
// skips the horizon cap; a span that was reservable must stay releasable.
func (s *inventoryService) Release(ctx context.Context, roomTypeID string, stay calendar.StayRange) error {
	if err := orderedRange(stay); err != nil {
		return err
	}
	if err := s.inventoryRepo.ReleaseSpan(ctx, roomTypeID, stay); err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Info("inventory released",
		slog.String("room_type_id", roomTypeID),
		slog.String("stay", stay.String()))
	return nil
}

// Extend holds one additional night on an existing stay.
func (s *inventoryService) Extend(ctx context.Context, roomTypeID string, date time.Time) error {
	night := calendar.NewStayRange(date, calendar.Date(date).AddDate(0, 0, 1))
	return s.Reserve(ctx, roomTypeID, night)
}

// Shrink returns one night of an existing stay.
func (s *inventoryService) Shrink(ctx context.Context, roomTypeID string, date time.Time) error {
	night := calendar.NewStayRange(date, calendar.Date(date).AddDate(0, 0, 1))
	return s.Release(ctx, roomTypeID, night)
}

// SetCapacity seeds or adjusts a cell's total capacity and blocked count.
func (s *inventoryService) SetCapacity(ctx context.Context, roomTypeID string, date time.Time, totalCapacity, blockedCount int) error {
	if totalCapacity < 0 || blockedCount < 0 {
		return fmt.Errorf("%w: capacity and blocked counts must be non-negative", apperrors.ErrValidation)
	}
	if blockedCount > totalCapacity {
		return fmt.Errorf("%w: blocked count %d exceeds total capacity %d", apperrors.ErrValidation, blockedCount, totalCapacity)
	}
	return s.inventoryRepo.UpsertCell(ctx, roomTypeID, calendar.Date(date), totalCapacity, blockedCount)
}
