// README: Session registry tests: overwrite-on-reconnect and presence.
package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

// fakeConn records envelopes instead of writing to a socket.
type fakeConn struct {
	mu     sync.Mutex
	writes []Envelope
	closed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	env, ok := v.(Envelope)
	if !ok {
		return errors.New("unexpected payload type")
	}
	c.writes = append(c.writes, env)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) envelopes() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, len(c.writes))
	copy(out, c.writes)
	return out
}

func TestEmit_NoSession(t *testing.T) {
	r := NewRegistry()
	if err := r.Emit(RoleRider, "u1", EventRideConfirmed, nil); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestEmit_WrapsInEnvelope(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}
	r.Register(RoleRider, "u1", conn)

	payload := map[string]string{"id": "r1", "status": "confirmed"}
	if err := r.Emit(RoleRider, "u1", EventRideConfirmed, payload); err != nil {
		t.Fatalf("emit: %v", err)
	}

	writes := conn.envelopes()
	if len(writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(writes))
	}
	if writes[0].Event != EventRideConfirmed {
		t.Errorf("expected event %s, got %s", EventRideConfirmed, writes[0].Event)
	}
	var decoded map[string]string
	if err := json.Unmarshal(writes[0].Data, &decoded); err != nil {
		t.Fatalf("decode envelope data: %v", err)
	}
	if decoded["id"] != "r1" || decoded["status"] != "confirmed" {
		t.Errorf("unexpected payload: %v", decoded)
	}
}

func TestRegister_OverwritesOnReconnect(t *testing.T) {
	r := NewRegistry()
	oldConn := &fakeConn{}
	newConn := &fakeConn{}

	r.Register(RoleCaptain, "c1", oldConn)
	r.Register(RoleCaptain, "c1", newConn)

	if err := r.Emit(RoleCaptain, "c1", EventRideOffer, "x"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(oldConn.envelopes()) != 0 {
		t.Errorf("stale connection must not receive events")
	}
	if len(newConn.envelopes()) != 1 {
		t.Errorf("latest connection must receive the event")
	}
}

func TestRemove_OnlyEvictsCurrentSession(t *testing.T) {
	r := NewRegistry()
	oldSess := r.Register(RoleCaptain, "c1", &fakeConn{})
	newConn := &fakeConn{}
	r.Register(RoleCaptain, "c1", newConn)

	// The old connection's teardown runs after the reconnect; it must not
	// evict the replacement.
	r.Remove(RoleCaptain, "c1", oldSess)

	if !r.CaptainConnected("c1") {
		t.Fatal("replacement session was evicted by a stale remove")
	}
	if err := r.Emit(RoleCaptain, "c1", EventRideOffer, "x"); err != nil {
		t.Fatalf("emit after stale remove: %v", err)
	}
	if len(newConn.envelopes()) != 1 {
		t.Errorf("replacement session should still receive events")
	}
}

func TestRemove_CurrentSession(t *testing.T) {
	r := NewRegistry()
	sess := r.Register(RoleRider, "u1", &fakeConn{})
	r.Remove(RoleRider, "u1", sess)

	if r.Resolve(RoleRider, "u1") != nil {
		t.Fatal("expected session to be gone")
	}
	if err := r.Emit(RoleRider, "u1", EventRideConfirmed, nil); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after remove, got %v", err)
	}
}

func TestRolesAreIsolated(t *testing.T) {
	r := NewRegistry()
	riderConn := &fakeConn{}
	r.Register(RoleRider, "x1", riderConn)

	// Same identity string under the captain role is a different channel.
	if r.CaptainConnected("x1") {
		t.Error("rider session must not count as captain presence")
	}
	if err := r.Emit(RoleCaptain, "x1", EventRideOffer, nil); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for the captain role, got %v", err)
	}
}

func TestCaptainConnected(t *testing.T) {
	r := NewRegistry()
	if r.CaptainConnected("c1") {
		t.Error("expected offline before register")
	}
	sess := r.Register(RoleCaptain, "c1", &fakeConn{})
	if !r.CaptainConnected("c1") {
		t.Error("expected online after register")
	}
	r.Remove(RoleCaptain, "c1", sess)
	if r.CaptainConnected("c1") {
		t.Error("expected offline after remove")
	}
}
