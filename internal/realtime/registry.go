// README: Session registry mapping (role, identity) to the latest live
// connection. The registry is the process-wide source of channel presence;
// it is rebuilt empty on restart.
package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	"gocab/internal/observability"
	"gocab/internal/types"
)

var ErrNoSession = errors.New("no live session")

// Conn is the subset of a websocket connection the registry needs. Satisfied
// by *websocket.Conn; tests substitute fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Session is one live client connection. Writes are serialized per session
// because gorilla connections allow only one concurrent writer.
type Session struct {
	conn Conn
	mu   sync.Mutex
}

func (s *Session) Send(event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(Envelope{Event: event, Data: raw})
}

type sessionKey struct {
	role Role
	id   types.ID
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[sessionKey]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[sessionKey]*Session)}
}

// Register stores the connection as the identity's current channel,
// replacing any previous one. Only the latest connection per identity
// receives notifications.
func (r *Registry) Register(role Role, id types.ID, conn Conn) *Session {
	sess := &Session{conn: conn}
	r.mu.Lock()
	_, existed := r.sessions[sessionKey{role, id}]
	r.sessions[sessionKey{role, id}] = sess
	r.mu.Unlock()
	if !existed {
		observability.ConnectedClients.WithLabelValues(string(role)).Inc()
	}
	return sess
}

// Remove deregisters a session, but only if it is still the current one:
// a slow disconnect must not evict the connection that replaced it.
func (r *Registry) Remove(role Role, id types.ID, sess *Session) {
	r.mu.Lock()
	cur, ok := r.sessions[sessionKey{role, id}]
	if ok && cur == sess {
		delete(r.sessions, sessionKey{role, id})
	}
	r.mu.Unlock()
	if ok && cur == sess {
		observability.ConnectedClients.WithLabelValues(string(role)).Dec()
	}
}

// Resolve returns the identity's current session, or nil when offline.
func (r *Registry) Resolve(role Role, id types.ID) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[sessionKey{role, id}]
}

// Emit sends one event to the identity's current channel. ErrNoSession when
// the client is offline; callers treat every failure as non-fatal.
func (r *Registry) Emit(role Role, id types.ID, event string, data interface{}) error {
	sess := r.Resolve(role, id)
	if sess == nil {
		return ErrNoSession
	}
	return sess.Send(event, data)
}

// CaptainConnected satisfies fleet.Presence.
func (r *Registry) CaptainConnected(id types.ID) bool {
	return r.Resolve(RoleCaptain, id) != nil
}
