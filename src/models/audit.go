package models

import "time"

// MAuditEntry records one rate command.
type MAuditEntry struct {
	Timestamp  time.Time
	Requester  string
	Days       int
	Currencies []string
}
