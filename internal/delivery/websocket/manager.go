package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"storyboard-server/internal/flow"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// MessageTypeState тип сообщения со снимком состояния.
const MessageTypeState = "state"

// StateSource отдает текущий снимок новому клиенту.
type StateSource interface {
	State() flow.Snapshot
}

// Message сообщение, отправляемое клиенту.
type Message struct {
	Type    string        `json:"type"`
	Payload flow.Snapshot `json:"payload"`
}

// Manager рассылает снимки состояния всем открытым вкладкам.
// Реализует flow.Listener.
type Manager struct {
	source   StateSource
	logger   *zap.Logger
	upgrader websocket.Upgrader

	clients    map[uuid.UUID]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

// Client - одно WebSocket-соединение.
type Client struct {
	ID      uuid.UUID
	conn    *websocket.Conn
	manager *Manager
	send    chan []byte
}

// NewManager создает менеджер. Пустой allowedOrigins разрешает любые источники.
func NewManager(source StateSource, allowedOrigins []string, logger *zap.Logger) *Manager {
	m := &Manager{
		source:     source,
		logger:     logger.Named("websocket"),
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBufferSize),
		done:       make(chan struct{}),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return m
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// Run обрабатывает регистрацию и рассылку до отмены ctx, затем закрывает все соединения.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.stopped = true
			for id, client := range m.clients {
				close(client.send)
				delete(m.clients, id)
			}
			m.mu.Unlock()
			m.logger.Info("WebSocket manager stopped")
			return nil

		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.ID] = client
			m.mu.Unlock()
			m.logger.Debug("Client connected", zap.String("client_id", client.ID.String()))

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client.ID]; ok {
				close(client.send)
				delete(m.clients, client.ID)
				m.logger.Debug("Client disconnected", zap.String("client_id", client.ID.String()))
			}
			m.mu.Unlock()

		case data := <-m.broadcast:
			m.mu.Lock()
			for id, client := range m.clients {
				select {
				case client.send <- data:
				default:
					// медленный клиент отключается
					close(client.send)
					delete(m.clients, id)
					m.logger.Warn("Dropping slow client", zap.String("client_id", id.String()))
				}
			}
			m.mu.Unlock()
		}
	}
}

// StateChanged реализует flow.Listener. Не блокирует контроллер: при переполнении
// очереди снимок отбрасывается, следующий все равно придет.
func (m *Manager) StateChanged(snap flow.Snapshot) {
	data, err := json.Marshal(Message{Type: MessageTypeState, Payload: snap})
	if err != nil {
		m.logger.Error("Failed to marshal state message", zap.Error(err))
		return
	}
	select {
	case m.broadcast <- data:
	case <-m.done:
	default:
		m.logger.Warn("Broadcast queue is full, dropping state", zap.String("screen", string(snap.Screen)))
	}
}

// ClientCount количество подключенных клиентов.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// ServeHTTP апгрейдит соединение и сразу отправляет текущее состояние.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	stopped := m.stopped
	m.mu.RUnlock()
	if stopped {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:      uuid.New(),
		conn:    conn,
		manager: m,
		send:    make(chan []byte, sendBufferSize),
	}

	initial, err := json.Marshal(Message{Type: MessageTypeState, Payload: m.source.State()})
	if err == nil {
		client.send <- initial
	}

	select {
	case m.register <- client:
	case <-m.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump читает только управляющие кадры: клиент ничего не присылает, триггеры идут через HTTP.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
