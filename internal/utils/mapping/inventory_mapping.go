package mapping

import (
	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/innkeep/pms_backend/internal/models"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// ToDomainInventoryCell converts a model InventoryCell to a domain InventoryCell.
func ToDomainInventoryCell(m models.InventoryCell) domain.InventoryCell {
	return domain.InventoryCell{
		RoomTypeID:    m.RoomTypeID,
		Date:          calendar.Date(m.StayDate),
		TotalCapacity: m.TotalCapacity,
		ReservedCount: m.ReservedCount,
		BlockedCount:  m.BlockedCount,
	}
}

// ToDomainInventoryCellSlice converts a slice of model cells to domain cells.
func ToDomainInventoryCellSlice(ms []models.InventoryCell) []domain.InventoryCell {
	ds := make([]domain.InventoryCell, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInventoryCell(m)
	}
	return ds
}
