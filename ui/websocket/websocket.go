package websocket

import (
	"context"
	"encoding/json"

	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Message codes.
const (
	CodeSettingsChanged       = "SETTINGS_CHANGED"
	CodeDeveloperModeUnlocked = "DEVELOPER_MODE_UNLOCKED"
	CodeState                 = "STATE"
	CodeError                 = "ERROR"

	CodeFetchState  = "FETCH_STATE"
	CodeUnlockClick = "UNLOCK_CLICK"
	CodeOpenPanel   = "OPEN_PANEL"
	CodeClosePanel  = "CLOSE_PANEL"
)

const broadcastBuffer = 256

type BroadcastMessage struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Result    any    `json:"result"`
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type directMessage struct {
	conn    Conn
	message BroadcastMessage
}

// Hub fans store changes out to the connected clients of this process. All
// writes happen on the Run goroutine.
type Hub struct {
	store domain.ISettingsStore

	clients    map[Conn]struct{}
	register   chan Conn
	unregister chan Conn
	broadcast  chan BroadcastMessage
	direct     chan directMessage
	done       chan struct{}
}

func NewHub(store domain.ISettingsStore) *Hub {
	return &Hub{
		store:      store,
		clients:    make(map[Conn]struct{}),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		broadcast:  make(chan BroadcastMessage, broadcastBuffer),
		direct:     make(chan directMessage, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run subscribes to the store and serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	unsubscribeState := h.store.Subscribe(func(state domain.StoreState) {
		h.Publish(BroadcastMessage{Code: CodeSettingsChanged, Message: "Settings changed", Result: state})
	})
	unsubscribeUnlock := h.store.OnDeveloperModeUnlocked(func(event domain.UnlockEvent) {
		h.Publish(BroadcastMessage{Code: CodeDeveloperModeUnlocked, Message: event.Message, Result: event.State})
	})
	defer unsubscribeState()
	defer unsubscribeUnlock()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				h.closeConnection(conn)
			}
			return

		case conn := <-h.register:
			h.clients[conn] = struct{}{}
			logrus.Debug("[WS] Connection registered")

		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				logrus.Debug("[WS] Connection unregistered")
			}

		case message := <-h.broadcast:
			h.broadcastToLocal(message)

		case dm := <-h.direct:
			if _, ok := h.clients[dm.conn]; ok {
				h.write(dm.conn, dm.message)
			}
		}
	}
}

// Publish queues message for every client. It never blocks the caller; a
// full queue drops the message.
func (h *Hub) Publish(message BroadcastMessage) {
	select {
	case h.broadcast <- message:
	default:
		logrus.Warnf("[WS] Broadcast queue full, dropping %s", message.Code)
	}
}

func (h *Hub) Attach(conn Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

func (h *Hub) Detach(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

func (h *Hub) reply(conn Conn, message BroadcastMessage) {
	select {
	case h.direct <- directMessage{conn: conn, message: message}:
	default:
		logrus.Warnf("[WS] Reply queue full, dropping %s", message.Code)
	}
}

func (h *Hub) broadcastToLocal(message BroadcastMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			h.closeConnection(conn)
		}
	}
}

func (h *Hub) write(conn Conn, message BroadcastMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logrus.Errorf("[WS] Write error: %v", err)
		h.closeConnection(conn)
	}
}

func (h *Hub) closeConnection(conn Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	delete(h.clients, conn)
}

// HandleMessage serves one inbound client message.
func (h *Hub) HandleMessage(ctx context.Context, conn Conn, raw []byte) {
	var request BroadcastMessage
	if err := json.Unmarshal(raw, &request); err != nil {
		h.reply(conn, BroadcastMessage{Code: CodeError, Message: "invalid message"})
		return
	}
	if request.RequestID == "" {
		request.RequestID = uuid.NewString()
	}

	switch request.Code {
	case CodeFetchState:
		h.reply(conn, BroadcastMessage{
			Code:      CodeState,
			Message:   "Current settings state",
			RequestID: request.RequestID,
			Result:    h.store.GetState(),
		})
	case CodeUnlockClick:
		h.store.RegisterUnlockClick(ctx)
		h.reply(conn, BroadcastMessage{
			Code:      CodeState,
			Message:   "Click registered",
			RequestID: request.RequestID,
			Result:    h.store.GetUnlockProgress(),
		})
	case CodeOpenPanel:
		h.store.OpenPanel()
	case CodeClosePanel:
		h.store.ClosePanel()
	default:
		h.reply(conn, BroadcastMessage{
			Code:      CodeError,
			Message:   "unsupported code " + request.Code,
			RequestID: request.RequestID,
		})
	}
}

func (h *Hub) RegisterRoutes(app fiber.Router) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		defer func() {
			h.Detach(conn)
			_ = conn.Close()
		}()

		h.Attach(conn)

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Warnf("[WS] read error: %v", err)
				}
				return
			}

			if messageType == websocket.TextMessage {
				h.HandleMessage(context.Background(), conn, message)
			} else {
				logrus.Debugf("[WS] unsupported message type: %d", messageType)
			}
		}
	}))
}
