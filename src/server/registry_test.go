package server

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"exchange-chat/src/helpers"
	"exchange-chat/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every frame sent to it.
type fakeConn struct {
	addr string

	mu      sync.Mutex
	frames  []string
	sendErr error
	closed  bool
}

func newFakeConn(addr string) *fakeConn {
	return &fakeConn{addr: addr}
}

func (c *fakeConn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, text)
	return nil
}

func (c *fakeConn) SendWait(text string, _ time.Duration) error {
	return c.Send(text)
}

func (c *fakeConn) RemoteAddr() string { return c.addr }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.frames...)
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestRegistry(names ...string) *ConnectionRegistry {
	return NewConnectionRegistry(helpers.FixedIdentities(names...), logger.NewLogger(nil, "RegistryTest"))
}

// -----------------------------------------------------------------------------

func TestRegisterAssignsIdentityAndActivates(t *testing.T) {
	r := newTestRegistry("Alice", "Bob")

	a := r.Register(newFakeConn("10.0.0.1:1"))
	b := r.Register(newFakeConn("10.0.0.2:1"))

	assert.Equal(t, "Alice", a.Identity)
	assert.Equal(t, "Bob", b.Identity)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, StateActive, a.State())
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, []string{"Alice", "Bob"}, r.Identities())
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := newTestRegistry("Alice")
	s := r.Register(newFakeConn("a"))

	assert.True(t, r.Unregister(s))
	assert.False(t, r.Unregister(s))
	assert.False(t, r.Unregister(nil))
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, StateClosed, s.State())
}

func TestBroadcastReachesEveryMemberIncludingSender(t *testing.T) {
	r := newTestRegistry("Alice", "Bob", "Carol")
	conns := []*fakeConn{newFakeConn("a"), newFakeConn("b"), newFakeConn("c")}
	for _, c := range conns {
		r.Register(c)
	}

	assert.Equal(t, 3, r.Broadcast("Alice: hi"))
	for _, c := range conns {
		assert.Equal(t, []string{"Alice: hi"}, c.Frames())
	}
}

func TestBroadcastSkipsUnregistered(t *testing.T) {
	r := newTestRegistry("Alice", "Bob")
	a, b := newFakeConn("a"), newFakeConn("b")
	r.Register(a)
	sb := r.Register(b)

	r.Unregister(sb)
	r.Broadcast("after")

	assert.Equal(t, []string{"after"}, a.Frames())
	assert.Empty(t, b.Frames())
}

func TestBroadcastIsolatesFailingMember(t *testing.T) {
	r := newTestRegistry("Alice", "Bob", "Carol")
	good1, bad, good2 := newFakeConn("a"), newFakeConn("b"), newFakeConn("c")
	bad.sendErr = ErrSlowConsumer
	r.Register(good1)
	r.Register(bad)
	r.Register(good2)

	assert.Equal(t, 2, r.Broadcast("msg"))
	assert.Equal(t, []string{"msg"}, good1.Frames())
	assert.Equal(t, []string{"msg"}, good2.Frames())

	// the failing member is gone and closed
	assert.Equal(t, 2, r.Count())
	assert.True(t, bad.IsClosed())
}

func TestUnicastKeepsOrderAndStopsOnFailure(t *testing.T) {
	r := newTestRegistry("Alice", "Bob")
	a, b := newFakeConn("a"), newFakeConn("b")
	sa := r.Register(a)
	r.Register(b)

	require.NoError(t, r.Unicast(sa, []string{"one", "two", "three"}))
	assert.Equal(t, []string{"one", "two", "three"}, a.Frames())
	assert.Empty(t, b.Frames())

	a.sendErr = errors.New("broken pipe")
	assert.Error(t, r.Unicast(sa, []string{"four"}))
}

func TestRegistryConcurrentMutation(t *testing.T) {
	r := newTestRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := r.Register(newFakeConn(fmt.Sprintf("c%d", i)))
			r.Broadcast("ping")
			r.Unregister(s)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count())
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "CONNECTING", StateConnecting.String())
	assert.Equal(t, "ACTIVE", StateActive.String())
	assert.Equal(t, "CLOSED", StateClosed.String())
}
