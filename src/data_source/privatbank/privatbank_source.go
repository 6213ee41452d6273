package privatbank

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exchange-chat/src/cache"
	"exchange-chat/src/helpers"
	"exchange-chat/src/interfaces"
	"exchange-chat/src/logger"
	"exchange-chat/src/models"
	"exchange-chat/src/utils"

	"github.com/samber/lo"
)

// PrivatBankSource reads the PrivatBank exchange rate archive, one request
// per calendar day.
type PrivatBankSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	Cache   *cache.RateCache
	BaseURL string
	now     func() time.Time
}

// -----------------------------------------------------------------------------

func NewPrivatBankSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *PrivatBankSource {
	baseURL := cfg.Rates.BaseURL
	if baseURL == "" {
		baseURL = utils.PrivatBankArchiveURL
	}
	return &PrivatBankSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
		Cache:   cache.NewRateCache(time.Duration(cfg.Rates.CacheTTLMinutes) * time.Minute),
		BaseURL: baseURL,
		now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *PrivatBankSource) Name() string {
	return "privatbank"
}

// -----------------------------------------------------------------------------

type archiveResponse struct {
	Date         string `json:"date"`
	Bank         string `json:"bank"`
	ExchangeRate []struct {
		BaseCurrency   string      `json:"baseCurrency"`
		Currency       string      `json:"currency"`
		SaleRateNB     json.Number `json:"saleRateNB"`
		PurchaseRateNB json.Number `json:"purchaseRateNB"`
	} `json:"exchangeRate"`
}

// -----------------------------------------------------------------------------

// Fetch returns the rates of date filtered to currencies. A day without data
// is retried once for the previous day; if that is empty too the result
// carries the previous day's date and no rates.
func (s *PrivatBankSource) Fetch(ctx context.Context, date time.Time, currencies []string) (models.MDayRates, error) {
	day, err := s.fetchDay(ctx, date)
	if err != nil {
		return day, err
	}

	return models.MDayRates{
		Date: day.Date,
		Rates: lo.Filter(day.Rates, func(r models.MCurrencyRate, _ int) bool {
			return lo.Contains(currencies, r.Currency)
		}),
	}, nil
}

// -----------------------------------------------------------------------------

func (s *PrivatBankSource) fetchDay(ctx context.Context, date time.Time) (models.MDayRates, error) {
	date = utils.StartOfDay(date)
	if cached, ok := s.Cache.Get(date); ok {
		s.Logger.Debug("Cache hit for %s", utils.FormatDate(date))
		return cached, nil
	}

	resolved := date
	rates, found, err := s.request(ctx, resolved)
	if err != nil {
		return models.MDayRates{Date: utils.FormatDate(resolved)}, err
	}

	if !found {
		resolved = utils.PreviousDay(date)
		s.Logger.Debug("No rates for %s, falling back to %s", utils.FormatDate(date), utils.FormatDate(resolved))

		rates, found, err = s.request(ctx, resolved)
		if err != nil {
			return models.MDayRates{Date: utils.FormatDate(resolved)}, err
		}
		if !found {
			s.Logger.Info("No rates for %s nor %s", utils.FormatDate(date), utils.FormatDate(resolved))
		}
	}

	day := models.MDayRates{Date: utils.FormatDate(resolved), Rates: rates}
	if found && date.Before(utils.StartOfDay(s.now())) {
		s.Cache.Put(date, day)
		s.Logger.Debug("Cached %s (%d day(s) held)", utils.FormatDate(date), s.Cache.Size())
	}
	return day, nil
}

// -----------------------------------------------------------------------------

// request performs one archive call. found is false when the response has
// no exchangeRate data for the date.
func (s *PrivatBankSource) request(ctx context.Context, date time.Time) ([]models.MCurrencyRate, bool, error) {
	dateStr := utils.FormatDate(date)

	body, err := s.Network.Get(ctx, s.BaseURL, map[string]string{"date": dateStr})
	if err != nil {
		return nil, false, helpers.NewDataSourceError(fmt.Sprintf("%s: fetch %s", s.Name(), dateStr), err)
	}

	var resp archiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, helpers.NewDataSourceError(fmt.Sprintf("%s: decode %s", s.Name(), dateStr), err)
	}

	if len(resp.ExchangeRate) == 0 {
		return nil, false, nil
	}

	rates := make([]models.MCurrencyRate, 0, len(resp.ExchangeRate))
	for _, entry := range resp.ExchangeRate {
		if entry.Currency == "" {
			continue
		}
		rates = append(rates, models.MCurrencyRate{
			Currency: entry.Currency,
			Sale:     entry.SaleRateNB.String(),
			Purchase: entry.PurchaseRateNB.String(),
		})
	}
	return rates, true, nil
}
