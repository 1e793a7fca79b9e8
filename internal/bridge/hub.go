package bridge

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/webgl-serve/internal/store"
)

// DefaultTimeout is how long a lookup waits for the agent.
const DefaultTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HubConfig configures a Hub.
type HubConfig struct {
	Timeout time.Duration
	// Secret, when set, must be presented by agents as a bearer token.
	Secret string
	Logger *slog.Logger
}

// Hub accepts agent connections and implements store.Store by asking the
// most recently registered agent for each file.
type Hub struct {
	timeout time.Duration
	secret  string
	logger  *slog.Logger

	mu      sync.Mutex
	agents  []*agentConn
	pending map[string]*lookup
}

type agentConn struct {
	id   string
	name string
	conn *websocket.Conn

	writeMu sync.Mutex
}

// send writes m, giving up after timeout so an agent that stopped reading
// cannot hold writeMu forever.
func (a *agentConn) send(m Message, timeout time.Duration) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.conn.SetWriteDeadline(time.Now().Add(timeout))
	return a.conn.WriteJSON(m)
}

type lookup struct {
	agent *agentConn
	path  string
	done  chan result
}

type result struct {
	msg Message
	err error
}

// NewHub creates a Hub with no agents.
func NewHub(cfg HubConfig) *Hub {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Hub{
		timeout: cfg.Timeout,
		secret:  cfg.Secret,
		logger:  cfg.Logger,
		pending: make(map[string]*lookup),
	}
}

// Agents returns the number of registered agents.
func (h *Hub) Agents() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.agents)
}

// Pending returns the number of lookups awaiting an answer.
func (h *Hub) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// Get asks the owning agent for path and waits for its answer, the timeout
// or ctx, whichever comes first. Every call has its own correlation token,
// so concurrent lookups of the same path do not interfere.
func (h *Hub) Get(ctx context.Context, path string) (*store.File, error) {
	h.mu.Lock()
	if len(h.agents) == 0 {
		h.mu.Unlock()
		return nil, ErrNoAgent
	}
	owner := h.agents[len(h.agents)-1]
	id := uuid.NewString()
	l := &lookup{agent: owner, path: path, done: make(chan result, 1)}
	h.pending[id] = l
	h.mu.Unlock()

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	if err := owner.send(Message{Action: ActionGetFile, ID: id, FilePath: path}, h.timeout); err != nil {
		h.forget(id)
		// A failed write leaves the connection unusable; closing it ends
		// the read loop, which drops the agent.
		owner.conn.Close()
		return nil, fmt.Errorf("sending request for %s: %w", path, err)
	}

	select {
	case res := <-l.done:
		if res.err != nil {
			return nil, res.err
		}
		if !res.msg.Success {
			return nil, &FileError{Path: path, Message: res.msg.Error}
		}
		if res.msg.FilePath == "" {
			res.msg.FilePath = path
		}
		return toFile(res.msg), nil
	case <-timer.C:
		h.forget(id)
		return nil, ErrTimeout
	case <-ctx.Done():
		h.forget(id)
		return nil, ctx.Err()
	}
}

func (h *Hub) forget(id string) {
	h.mu.Lock()
	delete(h.pending, id)
	h.mu.Unlock()
}

// ServeHTTP upgrades an agent connection and serves it until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("bridge: websocket upgrade", slog.Any("err", err))
		return
	}
	a := &agentConn{id: uuid.NewString(), conn: conn}
	defer h.drop(a)

	for {
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("bridge: websocket read", slog.String("agent", a.name), slog.Any("err", err))
			}
			return
		}

		switch {
		case m.Response:
			h.resolve(a, m)
		case m.Action == ActionRegister:
			h.register(a, m.Name)
		default:
			h.logger.Debug("bridge: ignoring message", slog.String("action", m.Action))
		}
	}
}

func (h *Hub) authorized(r *http.Request) bool {
	if h.secret == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

func (h *Hub) register(a *agentConn, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, other := range h.agents {
		if other == a {
			h.agents = append(h.agents[:i], h.agents[i+1:]...)
			break
		}
	}
	a.name = name
	h.agents = append(h.agents, a)
	h.logger.Info("bridge agent registered", slog.String("agent", name), slog.Int("agents", len(h.agents)))
}

func (h *Hub) resolve(a *agentConn, m Message) {
	h.mu.Lock()
	l, ok := h.pending[m.ID]
	if ok && l.agent == a {
		delete(h.pending, m.ID)
	}
	h.mu.Unlock()

	switch {
	case !ok:
		h.logger.Debug("bridge: response for unknown request", slog.String("id", m.ID))
	case l.agent != a:
		h.logger.Warn("bridge: response from wrong agent", slog.String("id", m.ID), slog.String("agent", a.name))
	default:
		l.done <- result{msg: m}
	}
}

// drop removes a disconnected agent and fails its pending lookups.
func (h *Hub) drop(a *agentConn) {
	a.conn.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	for i, other := range h.agents {
		if other == a {
			h.agents = append(h.agents[:i], h.agents[i+1:]...)
			h.logger.Info("bridge agent disconnected", slog.String("agent", a.name), slog.Int("agents", len(h.agents)))
			break
		}
	}
	for id, l := range h.pending {
		if l.agent == a {
			delete(h.pending, id)
			l.done <- result{err: ErrAgentGone}
		}
	}
}

// Close disconnects every agent.
func (h *Hub) Close() error {
	h.mu.Lock()
	agents := append([]*agentConn(nil), h.agents...)
	h.mu.Unlock()

	for _, a := range agents {
		a.writeMu.Lock()
		a.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		a.writeMu.Unlock()
		a.conn.Close()
	}
	return nil
}
