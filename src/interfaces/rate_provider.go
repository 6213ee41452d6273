package interfaces

import (
	"context"
	"time"

	"exchange-chat/src/models"
)

// -----------------------------------------------------------------------------
// IRateProvider fetches one day of exchange rates from a remote service.
// -----------------------------------------------------------------------------

type IRateProvider interface {

	// Name returns the unique identifier of the provider
	Name() string

	// -----------------------------------------------------------------------------

	// Fetch returns the rates for date restricted to currencies. When the
	// service has no data for date it falls back to the previous day once;
	// the returned Date is the one actually resolved.
	Fetch(ctx context.Context, date time.Time, currencies []string) (models.MDayRates, error)
}

// -----------------------------------------------------------------------------
// IRateCollector gathers several days of rates, newest first.
// -----------------------------------------------------------------------------

type IRateCollector interface {
	Collect(ctx context.Context, days int, currencies []string) []models.MDayRates
}
