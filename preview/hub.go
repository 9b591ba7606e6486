// Package preview serves the browser rendering surface: a static shell page
// that renders HTML fragments pushed to it over a websocket.
package preview

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 16
)

// ErrClosed is returned by RenderContent after Close.
var ErrClosed = errors.New("preview hub is closed")

//go:embed shell.html
var shellHTML string

var shellTemplate = template.Must(template.New("shell").Parse(shellHTML))

// Message is the wire format exchanged with the shell page.
type Message struct {
	Type string `json:"type"`
	HTML string `json:"html,omitempty"`
}

const (
	MessageRender = "render"
	MessageReady  = "ready"
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans rendered payloads out to every connected browser. It implements
// render.Surface.
type Hub struct {
	logger   *zap.Logger
	title    string
	onReady  func()
	router   *mux.Router
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[string]*client
	last      []byte
	closed    bool
	readyOnce sync.Once
	wg        sync.WaitGroup
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *zap.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithTitle sets the title of the shell page.
func WithTitle(title string) HubOption {
	return func(h *Hub) { h.title = title }
}

// WithOnReady registers a hook fired once, when the first browser reports
// that the shell page finished loading.
func WithOnReady(fn func()) HubOption {
	return func(h *Hub) { h.onReady = fn }
}

// NewHub creates a hub and its routes.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger:  zap.NewNop(),
		title:   "folio preview",
		clients: make(map[string]*client),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	r := mux.NewRouter()
	r.HandleFunc("/", h.handleShell).Methods(http.MethodGet)
	r.HandleFunc("/ws", h.handleWebSocket)
	h.router = r
	return h
}

// Handler returns the HTTP handler serving the shell page and the websocket.
func (h *Hub) Handler() http.Handler { return h.router }

// RenderContent broadcasts an HTML fragment to every connected browser and
// keeps it for browsers that connect later.
func (h *Hub) RenderContent(payload string) error {
	data, err := json.Marshal(Message{Type: MessageRender, HTML: payload})
	if err != nil {
		return fmt.Errorf("encode render message: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.last = data
	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping slow preview client", zap.String("client", id))
			delete(h.clients, id)
			close(c.send)
		}
	}
	return nil
}

// Clients returns the number of connected browsers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every browser and waits for their goroutines to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		for id, c := range h.clients {
			delete(h.clients, id)
			close(c.send)
		}
	}
	h.mu.Unlock()
	h.wg.Wait()
}

// ListenAndServe serves the hub on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("Preview listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		h.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("preview shutdown: %w", err)
		}
		return nil
	}
}

func (h *Hub) handleShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := shellTemplate.Execute(w, struct{ Title string }{h.title}); err != nil {
		h.logger.Error("Failed to render shell page", zap.Error(err))
	}
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c.id] = c
	if h.last != nil {
		c.send <- h.last
	}
	h.wg.Add(2)
	h.mu.Unlock()

	h.logger.Debug("Preview client connected", zap.String("client", c.id))
	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		h.logger.Debug("Preview client disconnected", zap.String("client", c.id))
		h.wg.Done()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Preview client closed unexpectedly", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("Ignoring malformed preview message", zap.Error(err))
			continue
		}
		if msg.Type == MessageReady {
			h.readyOnce.Do(func() {
				h.logger.Debug("Preview surface ready")
				if h.onReady != nil {
					h.onReady()
				}
			})
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		h.wg.Done()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("Preview write failed", zap.String("client", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
