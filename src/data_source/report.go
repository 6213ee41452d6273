package datasource

import (
	"fmt"

	"exchange-chat/src/models"
)

// FormatReport renders a report as chat lines: the date, then one line per
// currency. The trailing space on currency lines is part of the format.
func FormatReport(report []models.MDayRates) []string {
	lines := make([]string, 0, len(report)*3)
	for _, day := range report {
		lines = append(lines, day.Date)
		for _, r := range day.Rates {
			lines = append(lines, FormatRate(r))
		}
	}
	return lines
}

// FormatRate renders "<CODE>: Sale:<sale>; Purchase: <purchase> ".
func FormatRate(r models.MCurrencyRate) string {
	return fmt.Sprintf("%s: Sale:%s; Purchase: %s ", r.Currency, r.Sale, r.Purchase)
}
