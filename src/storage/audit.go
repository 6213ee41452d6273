package storage

import (
	"fmt"
	"strings"

	"exchange-chat/src/interfaces"
	"exchange-chat/src/logger"
	"exchange-chat/src/models"
	"exchange-chat/src/utils"
)

// -----------------------------------------------------------------------------

// NewAuditLog picks the backend named by storage.db_type. The returned log
// still needs Initialize.
func NewAuditLog(cfg *models.MConfig, log *logger.Logger) (interfaces.IAuditLog, error) {
	switch strings.ToLower(cfg.Storage.DBType) {
	case "sqlite":
		return NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		db, err := NewPostgresDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "file", "":
		return NewFileAuditLog(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported audit backend %q", cfg.Storage.DBType)
	}
}

// -----------------------------------------------------------------------------

// FormatAuditLine renders "<YYYY-MM-DD HH:MM:SS> <requester>: <days>, ['EUR', 'USD']".
func FormatAuditLine(e models.MAuditEntry) string {
	return fmt.Sprintf("%s %s: %d, %s",
		e.Timestamp.Format(utils.AuditTimeLayout), e.Requester, e.Days, FormatCurrencyList(e.Currencies))
}

// -----------------------------------------------------------------------------

// FormatCurrencyList renders codes as ['EUR', 'USD'].
func FormatCurrencyList(codes []string) string {
	quoted := make([]string, len(codes))
	for i, c := range codes {
		quoted[i] = "'" + c + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
