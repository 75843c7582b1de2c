package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/innkeep/pms_backend/internal/apperrors"
	"github.com/innkeep/pms_backend/internal/core/domain"
	portsrepo "github.com/innkeep/pms_backend/internal/core/ports/repositories"
	"github.com/innkeep/pms_backend/internal/models"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
	"github.com/innkeep/pms_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxInventoryRepository struct {
	BaseRepository
}

// newPgxInventoryRepository creates a new repository for inventory cell data.
func newPgxInventoryRepository(pool *pgxpool.Pool) portsrepo.InventoryRepositoryWithTx {
	return &PgxInventoryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxInventoryRepository implements portsrepo.InventoryRepositoryWithTx
var _ portsrepo.InventoryRepositoryWithTx = (*PgxInventoryRepository)(nil)

// FindCells returns the seeded cells for every night of the range, ascending.
func (r *PgxInventoryRepository) FindCells(ctx context.Context, roomTypeID string, stay calendar.StayRange) ([]domain.InventoryCell, error) {
	query := `
		SELECT room_type_id, stay_date, total_capacity, reserved_count, blocked_count, created_at, last_updated_at
		FROM inventory_cells
		WHERE room_type_id = $1 AND stay_date >= $2 AND stay_date < $3
		ORDER BY stay_date;
	`
	rows, err := r.Pool.Query(ctx, query, roomTypeID, stay.Arrival, stay.Departure)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory cells: %w", err)
	}
	defer rows.Close()

	var cells []models.InventoryCell
	for rows.Next() {
		var m models.InventoryCell
		if err := rows.Scan(&m.RoomTypeID, &m.StayDate, &m.TotalCapacity, &m.ReservedCount, &m.BlockedCount, &m.CreatedAt, &m.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory cell: %w", err)
		}
		cells = append(cells, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading inventory cells: %w", err)
	}
	return mapping.ToDomainInventoryCellSlice(cells), nil
}

// ReserveSpan increments the reserved count for every night of the range, all
// or nothing. It locks the whole span FOR UPDATE so concurrent overlapping
// reservations serialize; the check and the increment commit together or not
// at all.
func (r *PgxInventoryRepository) ReserveSpan(ctx context.Context, roomTypeID string, stay calendar.StayRange) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if transaction is committed successfully
	defer r.Rollback(ctx, tx)

	lockQuery := `
		SELECT stay_date, total_capacity, reserved_count, blocked_count
		FROM inventory_cells
		WHERE room_type_id = $1 AND stay_date >= $2 AND stay_date < $3
		ORDER BY stay_date
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, lockQuery, roomTypeID, stay.Arrival, stay.Departure)
	if err != nil {
		return fmt.Errorf("failed to lock inventory span: %w", err)
	}

	locked := make(map[time.Time]models.InventoryCell, stay.Nights())
	for rows.Next() {
		var m models.InventoryCell
		if err := rows.Scan(&m.StayDate, &m.TotalCapacity, &m.ReservedCount, &m.BlockedCount); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan locked inventory cell: %w", err)
		}
		locked[calendar.Date(m.StayDate)] = m
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed reading locked inventory span: %w", err)
	}

	// Every night must have at least one unit free; an unseeded night has none.
	for _, date := range stay.Dates() {
		cell, ok := locked[date]
		if !ok {
			return fmt.Errorf("%w: no inventory for room type %s on %s",
				apperrors.ErrCapacityExceeded, roomTypeID, date.Format(calendar.DateLayout))
		}
		if cell.TotalCapacity-cell.ReservedCount-cell.BlockedCount < 1 {
			return fmt.Errorf("%w: room type %s is full on %s",
				apperrors.ErrCapacityExceeded, roomTypeID, date.Format(calendar.DateLayout))
		}
	}

	updateQuery := `
		UPDATE inventory_cells
		SET reserved_count = reserved_count + 1, last_updated_at = now()
		WHERE room_type_id = $1 AND stay_date >= $2 AND stay_date < $3;
	`
	tag, err := tx.Exec(ctx, updateQuery, roomTypeID, stay.Arrival, stay.Departure)
	if err != nil {
		return fmt.Errorf("failed to increment reserved counts: %w", err)
	}
	if int(tag.RowsAffected()) != stay.Nights() {
		return fmt.Errorf("reserved %d nights of %d for room type %s %s", tag.RowsAffected(), stay.Nights(), roomTypeID, stay)
	}

	return r.Commit(ctx, tx)
}

// ReleaseSpan decrements the reserved count for every night of the range.
// A night whose counter would go below zero aborts the whole span; that is a
// caller bug, not a recoverable outcome.
func (r *PgxInventoryRepository) ReleaseSpan(ctx context.Context, roomTypeID string, stay calendar.StayRange) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.releaseSpan(ctx, tx, roomTypeID, stay); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// ReleaseSpanInTx runs the span release on a caller-owned transaction. The
// caller commits or rolls back; nothing here is visible until it does.
func (r *PgxInventoryRepository) ReleaseSpanInTx(ctx context.Context, tx pgx.Tx, roomTypeID string, stay calendar.StayRange) error {
	return r.releaseSpan(ctx, tx, roomTypeID, stay)
}

// releaseSpan locks the span, checks every night still holds a reservation
// and decrements the counters, all on the given transaction.
func (r *PgxInventoryRepository) releaseSpan(ctx context.Context, tx pgx.Tx, roomTypeID string, stay calendar.StayRange) error {
	lockQuery := `
		SELECT stay_date, reserved_count
		FROM inventory_cells
		WHERE room_type_id = $1 AND stay_date >= $2 AND stay_date < $3
		ORDER BY stay_date
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, lockQuery, roomTypeID, stay.Arrival, stay.Departure)
	if err != nil {
		return fmt.Errorf("failed to lock inventory span: %w", err)
	}

	reserved := make(map[time.Time]int, stay.Nights())
	for rows.Next() {
		var date time.Time
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan locked inventory cell: %w", err)
		}
		reserved[calendar.Date(date)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed reading locked inventory span: %w", err)
	}

	for _, date := range stay.Dates() {
		count, ok := reserved[date]
		if !ok || count < 1 {
			return fmt.Errorf("invariant violation: releasing unreserved night %s for room type %s",
				date.Format(calendar.DateLayout), roomTypeID)
		}
	}

	updateQuery := `
		UPDATE inventory_cells
		SET reserved_count = reserved_count - 1, last_updated_at = now()
		WHERE room_type_id = $1 AND stay_date >= $2 AND stay_date < $3;
	`
	if _, err := tx.Exec(ctx, updateQuery, roomTypeID, stay.Arrival, stay.Departure); err != nil {
		return fmt.Errorf("failed to decrement reserved counts: %w", err)
	}

	return nil
}

// UpsertCell seeds or adjusts one cell's capacity and blocked count. Reserved
// counts are preserved; the CHECK constraint rejects an adjustment that would
// break reserved + blocked <= total.
func (r *PgxInventoryRepository) UpsertCell(ctx context.Context, roomTypeID string, date time.Time, totalCapacity, blockedCount int) error {
	query := `
		INSERT INTO inventory_cells (room_type_id, stay_date, total_capacity, reserved_count, blocked_count, created_at, last_updated_at)
		VALUES ($1, $2, $3, 0, $4, now(), now())
		ON CONFLICT (room_type_id, stay_date)
		DO UPDATE SET total_capacity = EXCLUDED.total_capacity, blocked_count = EXCLUDED.blocked_count, last_updated_at = now();
	`
	if _, err := r.Pool.Exec(ctx, query, roomTypeID, calendar.Date(date), totalCapacity, blockedCount); err != nil {
		return fmt.Errorf("failed to upsert inventory cell %s/%s: %w", roomTypeID, calendar.Date(date).Format(calendar.DateLayout), err)
	}
	return nil
}
