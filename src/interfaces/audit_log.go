package interfaces

import "exchange-chat/src/models"

// -----------------------------------------------------------------------------
// IAuditLog is the append-only record of rate commands.
// -----------------------------------------------------------------------------

type IAuditLog interface {

	// -----------------------------------------------------------------------------

	// Initialize prepares the backing store (file, table).
	Initialize() error

	// -----------------------------------------------------------------------------

	// Append writes one entry.
	Append(entry models.MAuditEntry) error

	// -----------------------------------------------------------------------------

	// Close releases the backing store.
	Close() error
}
