package domain

import "time"

// InventoryCell tracks capacity for one (room-type, date) key. Counters are
// mutated only through the inventory ledger's reserve/release operations and
// must always satisfy reserved + blocked <= total.
type InventoryCell struct {
	RoomTypeID    string    `json:"roomTypeID"`
	Date          time.Time `json:"date"`
	TotalCapacity int       `json:"totalCapacity"`
	ReservedCount int       `json:"reservedCount"`
	BlockedCount  int       `json:"blockedCount"` // manual holds, e.g. maintenance
}

// Available returns the remaining sellable capacity for the cell's date.
func (c InventoryCell) Available() int {
	return c.TotalCapacity - c.ReservedCount - c.BlockedCount
}

// DateAvailability is a per-date availability answer for a room type.
type DateAvailability struct {
	Date      time.Time `json:"date"`
	Available int       `json:"available"`
}
