package utils

// -----------------------------------------------------------------------------

const (
	// MaxDays is the deepest history the provider archive is queried for.
	MaxDays = 10

	// DateLayout is DD.MM.YYYY, used both on the wire and in reports.
	DateLayout = "02.01.2006"

	// AuditTimeLayout is YYYY-MM-DD HH:MM:SS.
	AuditTimeLayout = "2006-01-02 15:04:05"

	PrivatBankArchiveURL = "https://api.privatbank.ua/p24api/exchange_rates?json"

	ExchangeCommand = "exchange"

	MaxDaysWarning = "Sorry, max 10 past days data is available!"

	ExchangeBusyWarning = "Previous exchange requests are still running, please wait."
)

// DefaultCurrencies is used when a command names fewer than two arguments.
var DefaultCurrencies = []string{"EUR", "USD"}
