package datasource

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"exchange-chat/src/logger"
	"exchange-chat/src/models"
	"exchange-chat/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu       sync.Mutex
	requests []string
	fetch    func(ctx context.Context, date time.Time, currencies []string) (models.MDayRates, error)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(ctx context.Context, date time.Time, currencies []string) (models.MDayRates, error) {
	p.mu.Lock()
	p.requests = append(p.requests, utils.FormatDate(date))
	p.mu.Unlock()
	if p.fetch != nil {
		return p.fetch(ctx, date, currencies)
	}
	rates := make([]models.MCurrencyRate, 0, len(currencies))
	for _, c := range currencies {
		rates = append(rates, models.MCurrencyRate{Currency: c, Sale: "1.0", Purchase: "0.9"})
	}
	return models.MDayRates{Date: utils.FormatDate(date), Rates: rates}, nil
}

func newCollector(p *fakeProvider, today time.Time) *RateCollector {
	cfg := &models.MConfig{Rates: models.MRatesConfig{MaxDays: 10, FetchTimeoutSeconds: 5}}
	c := NewRateCollector(cfg, p, logger.NewLogger(nil, "CollectorTest"))
	c.now = func() time.Time { return today }
	return c
}

func dates(report []models.MDayRates) []string {
	out := make([]string, len(report))
	for i, d := range report {
		out[i] = d.Date
	}
	return out
}

func TestCollectReturnsDaysNewestFirst(t *testing.T) {
	today := time.Date(2024, time.March, 2, 15, 0, 0, 0, time.Local)
	c := newCollector(&fakeProvider{}, today)

	for d := 1; d <= 10; d++ {
		report := c.Collect(context.Background(), d, []string{"USD"})
		require.Len(t, report, d)
		for i, day := range report {
			assert.Equal(t, utils.FormatDate(today.AddDate(0, 0, -i)), day.Date)
		}
	}
}

func TestCollectCrossesMonthBoundary(t *testing.T) {
	today := time.Date(2024, time.March, 2, 8, 0, 0, 0, time.Local)
	report := newCollector(&fakeProvider{}, today).Collect(context.Background(), 4, []string{"EUR"})

	assert.Equal(t, []string{"02.03.2024", "01.03.2024", "29.02.2024", "28.02.2024"}, dates(report))
}

func TestCollectClampsToTenDays(t *testing.T) {
	today := time.Date(2024, time.January, 5, 8, 0, 0, 0, time.Local)
	c := newCollector(&fakeProvider{}, today)

	ten := c.Collect(context.Background(), 10, []string{"USD"})
	eleven := c.Collect(context.Background(), 11, []string{"USD"})
	assert.Equal(t, ten, eleven)
	assert.Len(t, eleven, 10)

	zero := c.Collect(context.Background(), 0, []string{"USD"})
	assert.Len(t, zero, 1)
}

func TestCollectKeepsOrderWhateverTheCompletionOrder(t *testing.T) {
	today := time.Date(2024, time.January, 10, 8, 0, 0, 0, time.Local)
	p := &fakeProvider{}
	p.fetch = func(ctx context.Context, date time.Time, currencies []string) (models.MDayRates, error) {
		// older days answer first
		time.Sleep(time.Duration(date.Day()) * 3 * time.Millisecond)
		return models.MDayRates{Date: utils.FormatDate(date)}, nil
	}

	report := newCollector(p, today).Collect(context.Background(), 5, []string{"USD"})
	assert.Equal(t, []string{"10.01.2024", "09.01.2024", "08.01.2024", "07.01.2024", "06.01.2024"}, dates(report))
}

func TestCollectRunsFetchesConcurrently(t *testing.T) {
	today := time.Date(2024, time.January, 10, 8, 0, 0, 0, time.Local)
	const days = 6

	var started sync.WaitGroup
	started.Add(days)
	release := make(chan struct{})

	p := &fakeProvider{}
	p.fetch = func(ctx context.Context, date time.Time, currencies []string) (models.MDayRates, error) {
		started.Done()
		<-release
		return models.MDayRates{Date: utils.FormatDate(date)}, nil
	}

	go func() {
		started.Wait()
		close(release)
	}()

	done := make(chan []models.MDayRates)
	go func() { done <- newCollector(p, today).Collect(context.Background(), days, nil) }()

	select {
	case report := <-done:
		assert.Len(t, report, days)
	case <-time.After(2 * time.Second):
		t.Fatal("fetches did not run concurrently")
	}
}

func TestCollectIsolatesFailures(t *testing.T) {
	today := time.Date(2024, time.January, 10, 8, 0, 0, 0, time.Local)
	p := &fakeProvider{}
	p.fetch = func(ctx context.Context, date time.Time, currencies []string) (models.MDayRates, error) {
		if date.Day() == 9 {
			return models.MDayRates{}, errors.New("connection reset")
		}
		return models.MDayRates{
			Date:  utils.FormatDate(date),
			Rates: []models.MCurrencyRate{{Currency: "USD", Sale: "38", Purchase: "37"}},
		}, nil
	}

	report := newCollector(p, today).Collect(context.Background(), 3, []string{"USD"})
	require.Len(t, report, 3)

	assert.Len(t, report[0].Rates, 1)
	assert.Equal(t, "09.01.2024", report[1].Date)
	assert.Empty(t, report[1].Rates)
	assert.Len(t, report[2].Rates, 1)
}

func TestCollectTimesOutSlowDays(t *testing.T) {
	today := time.Date(2024, time.January, 10, 8, 0, 0, 0, time.Local)
	p := &fakeProvider{}
	p.fetch = func(ctx context.Context, date time.Time, currencies []string) (models.MDayRates, error) {
		if date.Day() == 10 {
			<-ctx.Done()
			return models.MDayRates{}, ctx.Err()
		}
		return models.MDayRates{Date: utils.FormatDate(date), Rates: []models.MCurrencyRate{{Currency: "USD"}}}, nil
	}

	c := newCollector(p, today)
	c.FetchTimeout = 20 * time.Millisecond

	report := c.Collect(context.Background(), 2, []string{"USD"})
	assert.Equal(t, []string{"10.01.2024", "09.01.2024"}, dates(report))
	assert.Empty(t, report[0].Rates)
	assert.Len(t, report[1].Rates, 1)
}

func TestCollectKeepsResolvedFallbackDate(t *testing.T) {
	today := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.Local)
	p := &fakeProvider{}
	p.fetch = func(ctx context.Context, date time.Time, currencies []string) (models.MDayRates, error) {
		return models.MDayRates{Date: utils.FormatDate(utils.PreviousDay(date))}, nil
	}

	report := newCollector(p, today).Collect(context.Background(), 1, []string{"USD"})
	assert.Equal(t, []string{"31.12.2023"}, dates(report))
}

func TestFormatReport(t *testing.T) {
	report := []models.MDayRates{{
		Date:  "01.01.2024",
		Rates: []models.MCurrencyRate{{Currency: "USD", Sale: "45.0", Purchase: "44.5"}},
	}}

	assert.Equal(t, []string{"01.01.2024", "USD: Sale:45.0; Purchase: 44.5 "}, FormatReport(report))
}

func TestFormatReportEmptyDay(t *testing.T) {
	report := []models.MDayRates{
		{Date: "02.01.2024"},
		{Date: "01.01.2024", Rates: []models.MCurrencyRate{
			{Currency: "EUR", Sale: "41.1", Purchase: "41.0"},
			{Currency: "USD", Sale: "38.0", Purchase: "37.9"},
		}},
	}

	assert.Equal(t, []string{
		"02.01.2024",
		"01.01.2024",
		"EUR: Sale:41.1; Purchase: 41.0 ",
		"USD: Sale:38.0; Purchase: 37.9 ",
	}, FormatReport(report))
}
