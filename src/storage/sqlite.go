package storage

import (
	"database/sql"
	"strings"
	"time"

	"exchange-chat/src/helpers"
	"exchange-chat/src/logger"
	"exchange-chat/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewDatabaseError("open sqlite "+dsn, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping sqlite "+dsn, err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

// createTables never drops: the audit log is append-only across restarts.
func (d *AsyncSQLiteDB) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			requester TEXT NOT NULL,
			days INTEGER NOT NULL,
			currencies TEXT NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("create audit_log", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Append(entry models.MAuditEntry) error {
	_, err := d.DB.Exec(
		`INSERT INTO audit_log (created_at, requester, days, currencies) VALUES (?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339), entry.Requester, entry.Days, strings.Join(entry.Currencies, ","),
	)
	if err != nil {
		return helpers.NewDatabaseError("insert audit entry", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Recent returns up to limit entries, newest first.
func (d *AsyncSQLiteDB) Recent(limit int) ([]models.MAuditEntry, error) {
	rows, err := d.DB.Query(
		`SELECT created_at, requester, days, currencies FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, helpers.NewDatabaseError("query audit_log", err)
	}
	defer rows.Close()

	var entries []models.MAuditEntry
	for rows.Next() {
		var created, requester, currencies string
		var days int
		if err := rows.Scan(&created, &requester, &days, &currencies); err != nil {
			return nil, helpers.NewDatabaseError("scan audit_log", err)
		}
		ts, err := time.Parse(time.RFC3339, created)
		if err != nil {
			d.Logger.Warning("Bad audit timestamp %q: %v", created, err)
		}
		entry := models.MAuditEntry{Timestamp: ts, Requester: requester, Days: days}
		if currencies != "" {
			entry.Currencies = strings.Split(currencies, ",")
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
