package models

// MCurrencyRate is one currency line of a daily report. Sale and Purchase are
// the provider's decimal literals, kept as text.
type MCurrencyRate struct {
	Currency string `json:"currency"`
	Sale     string `json:"sale"`
	Purchase string `json:"purchase"`
}

// MDayRates holds the rates of a single day, keyed by the date that was
// actually resolved (DD.MM.YYYY), which may be the day before the requested one.
type MDayRates struct {
	Date  string          `json:"date"`
	Rates []MCurrencyRate `json:"rates"`
}
