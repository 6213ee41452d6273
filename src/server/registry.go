package server

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"exchange-chat/src/helpers"
	"exchange-chat/src/interfaces"
	"exchange-chat/src/logger"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

type SessionState int32

const (
	StateConnecting SessionState = iota
	StateActive
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateActive:
		return "ACTIVE"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Session pairs a connection with the identity the registry gave it.
type Session struct {
	ID       string
	Identity string
	Conn     interfaces.IConnection
	state    atomic.Int32
}

func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *Session) setState(state SessionState) {
	s.state.Store(int32(state))
}

// -----------------------------------------------------------------------------
// ConnectionRegistry
// -----------------------------------------------------------------------------

const defaultSendTimeout = 2 * time.Second

// ConnectionRegistry is the set of live sessions. Mutations take the write
// lock; Broadcast sends to a snapshot taken under the read lock, so a session
// removed before the snapshot never receives the message.
type ConnectionRegistry struct {
	Logger *logger.Logger
	// SendTimeout bounds how long Unicast waits for room in a send buffer.
	SendTimeout time.Duration
	identities  helpers.IdentityGenerator

	mu      sync.RWMutex
	members map[string]*Session
}

// -----------------------------------------------------------------------------

func NewConnectionRegistry(identities helpers.IdentityGenerator, log *logger.Logger) *ConnectionRegistry {
	if identities == nil {
		identities = helpers.RandomFullName
	}
	return &ConnectionRegistry{
		Logger:      log,
		SendTimeout: defaultSendTimeout,
		identities:  identities,
		members:     make(map[string]*Session),
	}
}

// -----------------------------------------------------------------------------

// Register adds conn under a fresh identity and marks the session ACTIVE.
func (r *ConnectionRegistry) Register(conn interfaces.IConnection) *Session {
	session := &Session{
		ID:       uuid.NewString(),
		Identity: r.identities(),
		Conn:     conn,
	}
	session.setState(StateConnecting)

	r.mu.Lock()
	r.members[session.ID] = session
	r.mu.Unlock()

	session.setState(StateActive)
	r.Logger.Info("%s connects as %s", conn.RemoteAddr(), session.Identity)
	return session
}

// -----------------------------------------------------------------------------

// Unregister removes session. Removing an absent session is a no-op; the
// result tells whether it was a member.
func (r *ConnectionRegistry) Unregister(session *Session) bool {
	if session == nil {
		return false
	}

	r.mu.Lock()
	_, ok := r.members[session.ID]
	delete(r.members, session.ID)
	r.mu.Unlock()

	session.setState(StateClosed)
	if ok {
		r.Logger.Info("%s disconnects", session.Conn.RemoteAddr())
	}
	return ok
}

// -----------------------------------------------------------------------------

func (r *ConnectionRegistry) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Session, 0, len(r.members))
	for _, s := range r.members {
		list = append(list, s)
	}
	return list
}

// -----------------------------------------------------------------------------

// Broadcast sends text to every member, the sender included. A member whose
// send fails is dropped and closed; the others still get the message.
// Returns the number of successful deliveries.
func (r *ConnectionRegistry) Broadcast(text string) int {
	delivered := 0
	for _, s := range r.snapshot() {
		if err := s.Conn.Send(text); err != nil {
			r.dropFailed(s, err)
			continue
		}
		delivered++
	}
	return delivered
}

// -----------------------------------------------------------------------------

// Unicast sends lines to one session, in order, stopping at the first failure.
// Unlike Broadcast it waits for buffer space, so a reply longer than the send
// buffer still arrives whole.
func (r *ConnectionRegistry) Unicast(session *Session, lines []string) error {
	for _, line := range lines {
		if err := session.Conn.SendWait(line, r.SendTimeout); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (r *ConnectionRegistry) dropFailed(s *Session, err error) {
	if errors.Is(err, ErrConnectionClosed) {
		r.Logger.Debug("Skipping closed connection %s", s.Identity)
	} else {
		r.Logger.Warning("Send to %s (%s) failed: %v", s.Identity, s.Conn.RemoteAddr(), err)
	}
	r.Unregister(s)
	s.Conn.Close()
}

// -----------------------------------------------------------------------------

func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// -----------------------------------------------------------------------------

// Identities lists the display names of current members, sorted.
func (r *ConnectionRegistry) Identities() []string {
	sessions := r.snapshot()
	names := make([]string, len(sessions))
	for i, s := range sessions {
		names[i] = s.Identity
	}
	sort.Strings(names)
	return names
}

// -----------------------------------------------------------------------------

// CloseAll closes every member connection; used on shutdown.
func (r *ConnectionRegistry) CloseAll() {
	for _, s := range r.snapshot() {
		s.Conn.Close()
	}
}
