package storage

import (
	"fmt"
	"os"
	"sync"

	"exchange-chat/src/helpers"
	"exchange-chat/src/logger"
	"exchange-chat/src/models"
)

// -----------------------------------------------------------------------------

// FileAuditLog appends one text line per entry.
type FileAuditLog struct {
	Path   string
	Logger *logger.Logger

	mu   sync.Mutex
	file *os.File
}

// -----------------------------------------------------------------------------

func NewFileAuditLog(cfg *models.MConfig, log *logger.Logger) (*FileAuditLog, error) {
	if cfg.Storage.DBPath == "" {
		return nil, fmt.Errorf("audit file path cannot be empty")
	}
	return &FileAuditLog{Path: cfg.Storage.DBPath, Logger: log}, nil
}

// -----------------------------------------------------------------------------

func (f *FileAuditLog) Initialize() error {
	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return helpers.NewDatabaseError("open audit file "+f.Path, err)
	}

	f.mu.Lock()
	f.file = file
	f.mu.Unlock()

	f.Logger.Info("Audit log: appending to %s", f.Path)
	return nil
}

// -----------------------------------------------------------------------------

func (f *FileAuditLog) Append(entry models.MAuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return helpers.NewDatabaseError("audit file not initialized", nil)
	}
	if _, err := f.file.WriteString(FormatAuditLine(entry) + "\n"); err != nil {
		return helpers.NewDatabaseError("write audit entry", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (f *FileAuditLog) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
