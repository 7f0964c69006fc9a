// Package orders - живая лента заказов ресторана через сокет событий
package orders

import (
	"context"
	"encoding/json"
	"sync"

	"zefood-console/internal/logger"
	"zefood-console/internal/models"
	"zefood-console/internal/socketio"
)

// События сокета заказов
const (
	EventNewOrder          = "newOrder"
	EventOrderStatusUpdate = "orderStatusUpdate"
	EventJoinRestaurant    = "joinRestaurant"
	EventJoinOrder         = "joinOrder"
	EventLeaveOrder        = "leaveOrder"
)

// Socket - то, что клиенту нужно от сокета (реализуется socketio.Client)
type Socket interface {
	On(event string, h socketio.Handler)
	OnConnect(fn func())
	OnDisconnect(fn func(reason string))
	Connect(ctx context.Context) error
	Emit(event string, args ...interface{}) error
	Connected() bool
	Close() error
}

// State - состояние подключения клиента
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	default:
		return "disconnected"
	}
}

// Handlers - заменяемые обработчики событий; nil пропускается
type Handlers struct {
	OnNewOrder     func(order models.Order)
	OnStatusUpdate func(update models.OrderStatusUpdate)
}

// EventsClient держит одно подключение и комнату ресторана.
// Обработчики можно менять без переподключения.
type EventsClient struct {
	socket Socket
	log    logger.ILogger

	mu           sync.Mutex
	handlers     Handlers
	state        State
	restaurantID string
	// joinedKey - комната, в которую вошли на текущем подключении
	joinedKey string
}

// NewEventsClient подписывается на события сокета; подключение начинается в Connect
func NewEventsClient(socket Socket, log logger.ILogger) *EventsClient {
	if log == nil {
		log = logger.NewNop()
	}
	c := &EventsClient{
		socket: socket,
		log:    log,
	}

	socket.OnConnect(c.handleConnect)
	socket.OnDisconnect(c.handleDisconnect)
	socket.On(EventNewOrder, c.handleNewOrder)
	socket.On(EventOrderStatusUpdate, c.handleStatusUpdate)
	return c
}

// Connect запускает подключение
func (c *EventsClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateDisconnected {
		c.state = StateConnecting
	}
	c.mu.Unlock()

	return c.socket.Connect(ctx)
}

// SetHandlers заменяет обработчики событий
func (c *EventsClient) SetHandlers(h Handlers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = h
}

// SetRestaurant задает комнату ресторана. Если сокет уже подключен, вход выполняется сразу.
func (c *EventsClient) SetRestaurant(restaurantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.restaurantID = restaurantID
	if c.state == StateConnected || c.state == StateJoined {
		c.joinLocked()
	}
}

// State возвращает текущее состояние
func (c *EventsClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// JoinOrder входит в комнату отдельного заказа
func (c *EventsClient) JoinOrder(orderID string) error {
	return c.socket.Emit(EventJoinOrder, orderID)
}

// LeaveOrder выходит из комнаты заказа
func (c *EventsClient) LeaveOrder(orderID string) error {
	return c.socket.Emit(EventLeaveOrder, orderID)
}

// Close отключает сокет. Вызывается всегда при уходе владельца.
func (c *EventsClient) Close() error {
	err := c.socket.Close()

	c.mu.Lock()
	c.state = StateDisconnected
	c.joinedKey = ""
	c.mu.Unlock()
	return err
}

func (c *EventsClient) handleConnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateConnected
	c.log.Info("Сокет заказов подключен")
	c.joinLocked()
}

func (c *EventsClient) handleDisconnect(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateDisconnected
	c.joinedKey = ""
	c.log.Info("Сокет заказов отключен", logger.String("reason", reason))
}

// joinLocked отправляет joinRestaurant не более одного раза на (подключение, ресторан)
func (c *EventsClient) joinLocked() {
	if c.restaurantID == "" || c.joinedKey == c.restaurantID {
		return
	}

	if err := c.socket.Emit(EventJoinRestaurant, c.restaurantID); err != nil {
		c.log.Warning("Не удалось войти в комнату ресторана",
			logger.String("restaurant_id", c.restaurantID), logger.Error(err))
		return
	}
	c.joinedKey = c.restaurantID
	c.state = StateJoined
	c.log.Info("Вход в комнату ресторана", logger.String("restaurant_id", c.restaurantID))
}

func (c *EventsClient) handleNewOrder(data json.RawMessage) {
	var payload struct {
		Order models.Order `json:"order"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.log.Warning("Ошибка разбора newOrder", logger.Error(err))
		return
	}

	c.mu.Lock()
	fn := c.handlers.OnNewOrder
	c.mu.Unlock()

	if fn != nil {
		fn(payload.Order)
	}
}

func (c *EventsClient) handleStatusUpdate(data json.RawMessage) {
	var update models.OrderStatusUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		c.log.Warning("Ошибка разбора orderStatusUpdate", logger.Error(err))
		return
	}

	c.mu.Lock()
	fn := c.handlers.OnStatusUpdate
	c.mu.Unlock()

	if fn != nil {
		fn(update)
	}
}
