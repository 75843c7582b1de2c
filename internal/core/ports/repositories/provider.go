package repositories

// RepositoryProvider bundles every repository implementation handed to the
// service layer at wiring time.
type RepositoryProvider struct {
	BookingRepo   BookingRepositoryWithTx
	InventoryRepo InventoryRepositoryWithTx
	AuditRunRepo  AuditRunRepositoryWithTx
}
