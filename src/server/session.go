package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	datasource "exchange-chat/src/data_source"
	"exchange-chat/src/helpers"
	"exchange-chat/src/interfaces"
	"exchange-chat/src/logger"
	"exchange-chat/src/models"
	"exchange-chat/src/utils"
)

// -----------------------------------------------------------------------------
// Command parsing
// -----------------------------------------------------------------------------

// ExchangeRequest is a parsed "exchange [days] [CODE...]" line.
type ExchangeRequest struct {
	Days       int
	Currencies []string
}

// IsExchangeCommand matches lines whose trimmed, lower-cased text starts with
// the command word.
func IsExchangeCommand(message string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimLeft(message, " \t\r\n")), utils.ExchangeCommand)
}

// ParseExchangeCommand reads the arguments after the command word. days
// defaults to 1; the code list falls back to defaults unless at least two
// arguments were given, so "exchange 3 PLN" asks for PLN only.
func ParseExchangeCommand(message string, defaults []string) (ExchangeRequest, error) {
	fields := strings.Fields(message)
	var args []string
	if len(fields) > 1 {
		args = fields[1:]
	}

	req := ExchangeRequest{Days: 1}
	if len(args) >= 1 {
		days, err := strconv.Atoi(args[0])
		if err != nil {
			return req, helpers.NewCommandError(fmt.Sprintf("Invalid day count %q: must be a number", args[0]), nil)
		}
		req.Days = days
	}

	if len(args) >= 2 {
		req.Currencies = args[1:]
	} else {
		req.Currencies = append([]string(nil), defaults...)
	}
	return req, nil
}

// -----------------------------------------------------------------------------
// SessionHandler
// -----------------------------------------------------------------------------

// pendingExchanges caps the commands one session may have queued.
const pendingExchanges = 4

// SessionHandler runs the per-connection loop: chat lines are broadcast,
// exchange commands are answered to the requester only.
type SessionHandler struct {
	Registry          *ConnectionRegistry
	Collector         interfaces.IRateCollector
	Audit             interfaces.IAuditLog
	Logger            *logger.Logger
	MaxDays           int
	DefaultCurrencies []string

	// ctx bounds rate fetches; it belongs to the server, not the connection.
	ctx context.Context
	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewSessionHandler(ctx context.Context, cfg *models.MConfig, registry *ConnectionRegistry,
	collector interfaces.IRateCollector, audit interfaces.IAuditLog, log *logger.Logger) *SessionHandler {

	defaults := cfg.Rates.DefaultCurrencies
	if len(defaults) == 0 {
		defaults = utils.DefaultCurrencies
	}
	maxDays := cfg.Rates.MaxDays
	if maxDays <= 0 {
		maxDays = utils.MaxDays
	}

	return &SessionHandler{
		Registry:          registry,
		Collector:         collector,
		Audit:             audit,
		Logger:            log,
		MaxDays:           maxDays,
		DefaultCurrencies: defaults,
		ctx:               ctx,
		now:               time.Now,
	}
}

// -----------------------------------------------------------------------------

// Serve registers conn, handles every message next yields and unregisters
// on the way out, whatever ended the loop. Exchange commands run on a
// per-session worker so the read loop keeps answering control frames while
// rates are fetched; their replies keep the order the commands arrived in.
func (h *SessionHandler) Serve(conn interfaces.IConnection, next func() (string, error)) {
	session := h.Registry.Register(conn)

	queue := make(chan ExchangeRequest, pendingExchanges)
	worker := make(chan struct{})
	go func() {
		defer close(worker)
		for req := range queue {
			h.runExchange(session, req)
		}
	}()

	defer func() {
		close(queue)
		h.Registry.Unregister(session)
		<-worker
	}()

	for {
		message, err := next()
		if err != nil {
			if isGracefulClose(err) {
				h.Logger.Debug("%s closed the connection", session.Identity)
			} else {
				h.Logger.Error("Connection %s (%s): %v", session.Identity, conn.RemoteAddr(), err)
			}
			return
		}

		if !IsExchangeCommand(message) {
			h.broadcast(session, message)
			continue
		}

		req, ok := h.parse(session, message)
		if !ok {
			continue
		}
		select {
		case queue <- req:
		default:
			h.Logger.Info("%s: %d exchange request(s) already pending", session.Identity, pendingExchanges)
			h.reply(session, []string{utils.ExchangeBusyWarning})
		}
	}
}

// -----------------------------------------------------------------------------

// HandleMessage processes one message synchronously, exchange included.
func (h *SessionHandler) HandleMessage(session *Session, message string) {
	if !IsExchangeCommand(message) {
		h.broadcast(session, message)
		return
	}
	if req, ok := h.parse(session, message); ok {
		h.runExchange(session, req)
	}
}

// -----------------------------------------------------------------------------

func (h *SessionHandler) broadcast(session *Session, message string) {
	h.Registry.Broadcast(fmt.Sprintf("%s: %s", session.Identity, message))
}

// -----------------------------------------------------------------------------

// parse answers a malformed command with its error line.
func (h *SessionHandler) parse(session *Session, message string) (ExchangeRequest, bool) {
	req, err := ParseExchangeCommand(message, h.DefaultCurrencies)
	if err != nil {
		h.Logger.Info("%s: %v", session.Identity, err)
		var cmdErr *helpers.CommandError
		if errors.As(err, &cmdErr) {
			h.reply(session, []string{cmdErr.Message})
		}
		return req, false
	}
	return req, true
}

// -----------------------------------------------------------------------------

func (h *SessionHandler) runExchange(session *Session, req ExchangeRequest) {
	days, truncated := utils.ClampDays(req.Days, h.MaxDays)
	if truncated {
		if !h.reply(session, []string{utils.MaxDaysWarning}) {
			return
		}
	}

	report := h.Collector.Collect(h.ctx, days, req.Currencies)

	entry := models.MAuditEntry{
		Timestamp:  h.now(),
		Requester:  session.Identity,
		Days:       days,
		Currencies: req.Currencies,
	}
	if h.Audit != nil {
		if err := h.Audit.Append(entry); err != nil {
			h.Logger.Error("Audit append failed: %v", err)
		}
	}

	h.reply(session, datasource.FormatReport(report))
}

// -----------------------------------------------------------------------------

// reply unicasts lines; false means the requester is gone.
func (h *SessionHandler) reply(session *Session, lines []string) bool {
	if err := h.Registry.Unicast(session, lines); err != nil {
		if errors.Is(err, ErrConnectionClosed) {
			h.Logger.Debug("Discarding reply to %s: %v", session.Identity, err)
		} else {
			h.Logger.Warning("Reply to %s failed: %v", session.Identity, err)
		}
		return false
	}
	return true
}
