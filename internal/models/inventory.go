package models

import "time"

// InventoryCell is the DB row shape for the inventory_cells table.
// Primary key: (room_type_id, stay_date).
type InventoryCell struct {
	RoomTypeID    string    `json:"roomTypeID"`
	StayDate      time.Time `json:"stayDate"`
	TotalCapacity int       `json:"totalCapacity"`
	ReservedCount int       `json:"reservedCount"`
	BlockedCount  int       `json:"blockedCount"`
	AuditFields
}
