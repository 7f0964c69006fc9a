package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"zefood-console/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Типы сообщений, которые консоль отправляет в браузер
const (
	NewOrderType          = "NEW_ORDER"
	OrderStatusUpdateType = "ORDER_STATUS_UPDATE"
	TrackingUpdateType    = "TRACKING_UPDATE"
	CheckoutUpdateType    = "CHECKOUT_UPDATE"
	NavigateType          = "NAVIGATE"
	ClipboardType         = "CLIPBOARD"
	AuthStateType         = "AUTH_STATE"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

// Message - формат сообщения WebSocket
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client - подключение браузера
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Manager управляет подключениями браузеров и рассылкой сообщений
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	mutex      sync.RWMutex
	log        logger.ILogger
	upgrader   websocket.Upgrader
	greeting   func() []Message
	done       chan struct{}
}

// NewManager создает менеджер; рассылка начинается после Start
func NewManager(log logger.ILogger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, sendBuffer),
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // консоль слушает локально
			},
		},
		done: make(chan struct{}),
	}
}

// SetGreeting задает сообщения, которые получает каждый новый клиент (например, состояние входа)
func (manager *Manager) SetGreeting(fn func() []Message) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	manager.greeting = fn
}

// Start запускает обработку регистрации и рассылки до отмены контекста
func (manager *Manager) Start(ctx context.Context) {
	manager.log.Info("Запуск WebSocket Manager")
	go func() {
		defer close(manager.done)
		for {
			select {
			case <-ctx.Done():
				manager.closeAll()
				return

			case client := <-manager.register:
				manager.mutex.Lock()
				if old, ok := manager.clients[client.id]; ok {
					close(old.send)
				}
				manager.clients[client.id] = client
				greeting := manager.greeting
				manager.mutex.Unlock()
				manager.log.Debug("Клиент подключен", logger.String("client_id", client.id))

				if greeting != nil {
					for _, msg := range greeting() {
						msg := msg
						manager.deliver(client, &msg)
					}
				}

			case client := <-manager.unregister:
				manager.remove(client)

			case message := <-manager.broadcast:
				manager.mutex.RLock()
				clients := make([]*Client, 0, len(manager.clients))
				for _, c := range manager.clients {
					clients = append(clients, c)
				}
				manager.mutex.RUnlock()

				for _, c := range clients {
					manager.deliver(c, message)
				}
			}
		}
	}()
}

// Done закрывается после остановки менеджера
func (manager *Manager) Done() <-chan struct{} {
	return manager.done
}

// deliver кладет сообщение в очередь клиента; медленный клиент отключается
func (manager *Manager) deliver(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		manager.log.Error("Ошибка при кодировании сообщения", logger.String("type", message.Type), logger.Error(err))
		return
	}

	manager.mutex.RLock()
	registered := manager.clients[client.id] == client
	queued := false
	if registered {
		select {
		case client.send <- data:
			queued = true
		default:
		}
	}
	manager.mutex.RUnlock()

	if registered && !queued {
		manager.log.Warning("Очередь клиента переполнена, отключаем", logger.String("client_id", client.id))
		manager.remove(client)
	}
}

func (manager *Manager) remove(client *Client) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if manager.clients[client.id] != client {
		return
	}
	delete(manager.clients, client.id)
	close(client.send)
	manager.log.Debug("Клиент отключен", logger.String("client_id", client.id))
}

func (manager *Manager) closeAll() {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	for id, c := range manager.clients {
		close(c.send)
		delete(manager.clients, id)
	}
}

// Broadcast отправляет сообщение всем подключенным браузерам
func (manager *Manager) Broadcast(msgType string, payload interface{}) {
	select {
	case manager.broadcast <- &Message{Type: msgType, Payload: payload}:
	case <-manager.done:
	}
}

// ClientCount возвращает число подключенных браузеров
func (manager *Manager) ClientCount() int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return len(manager.clients)
}

// Handler обрабатывает подключения браузеров к /ws
func (manager *Manager) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !websocket.IsWebSocketUpgrade(c.Request) {
			c.String(http.StatusBadRequest, "Требуется WebSocket соединение")
			return
		}

		conn, err := manager.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			manager.log.Error("Ошибка обновления соединения до WebSocket", logger.Error(err))
			return
		}

		clientID := c.Query("client_id")
		if clientID == "" {
			clientID = uuid.NewString()
		}
		client := &Client{id: clientID, conn: conn, send: make(chan []byte, sendBuffer)}

		select {
		case manager.register <- client:
		case <-manager.done:
			conn.Close()
			return
		}

		go manager.writePump(client)
		go manager.readPump(client)
	}
}

// readPump читает сообщения браузера; поддерживается только {"type":"ping"}
func (manager *Manager) readPump(client *Client) {
	defer func() {
		select {
		case manager.unregister <- client:
		case <-manager.done:
		}
		client.conn.Close()
	}()

	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var data struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &data); err != nil {
			manager.log.Debug("Ошибка при разборе JSON", logger.Error(err))
			continue
		}

		if data.Type == "ping" {
			manager.deliver(client, &Message{Type: "pong", Payload: gin.H{"time": time.Now().Unix()}})
		}
	}
}

// writePump - единственный писатель в соединение клиента
func (manager *Manager) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
