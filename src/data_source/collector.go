package datasource

import (
	"context"
	"sync"
	"time"

	"exchange-chat/src/interfaces"
	"exchange-chat/src/logger"
	"exchange-chat/src/models"
	"exchange-chat/src/utils"
)

// RateCollector fans one provider call out per requested day and gathers the
// answers newest first.
type RateCollector struct {
	Provider     interfaces.IRateProvider
	Logger       *logger.Logger
	MaxDays      int
	FetchTimeout time.Duration
	now          func() time.Time
}

// -----------------------------------------------------------------------------

func NewRateCollector(cfg *models.MConfig, provider interfaces.IRateProvider, log *logger.Logger) *RateCollector {
	return &RateCollector{
		Provider:     provider,
		Logger:       log,
		MaxDays:      cfg.Rates.MaxDays,
		FetchTimeout: time.Duration(cfg.Rates.FetchTimeoutSeconds) * time.Second,
		now:          time.Now,
	}
}

// -----------------------------------------------------------------------------

// ClampDays bounds days to [1, MaxDays]; truncated is true when days was too large.
func (c *RateCollector) ClampDays(days int) (int, bool) {
	return utils.ClampDays(days, c.MaxDays)
}

// -----------------------------------------------------------------------------

// Collect returns one entry per day for today, today-1, ... in that order.
// All fetches start before any is awaited. A failed or timed-out day is
// reported under its requested date with no rates.
func (c *RateCollector) Collect(ctx context.Context, days int, currencies []string) []models.MDayRates {
	days, _ = c.ClampDays(days)
	dates := utils.DaysBack(c.now(), days)

	results := make([]models.MDayRates, len(dates))
	var wg sync.WaitGroup

	for i, date := range dates {
		wg.Add(1)
		go func(slot int, date time.Time) {
			defer wg.Done()
			results[slot] = c.fetchOne(ctx, date, currencies)
		}(i, date)
	}

	wg.Wait()

	c.Logger.Debug("%s: collected %d day(s) for %v", c.Provider.Name(), len(results), currencies)
	return results
}

// -----------------------------------------------------------------------------

func (c *RateCollector) fetchOne(ctx context.Context, date time.Time, currencies []string) models.MDayRates {
	fetchCtx := ctx
	if c.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.FetchTimeout)
		defer cancel()
	}

	day, err := c.Provider.Fetch(fetchCtx, date, currencies)
	if err != nil {
		c.Logger.Warning("Fetching %s failed: %v", utils.FormatDate(date), err)
		if day.Date == "" {
			day.Date = utils.FormatDate(date)
		}
		day.Rates = nil
	}
	return day
}
