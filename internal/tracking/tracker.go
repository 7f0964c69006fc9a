// Package tracking - отслеживание одного заказа: положение курьера, прогресс и видимость карты
package tracking

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"zefood-console/internal/logger"
	"zefood-console/internal/models"
	"zefood-console/internal/socketio"
)

// Namespace - пространство имен сокета отслеживания
const Namespace = "/tracking"

// События пространства /tracking
const (
	EventSubscribe         = "subscribeToOrder"
	EventUnsubscribe       = "unsubscribeFromOrder"
	EventGetTracking       = "getOrderTracking"
	EventDriverLocation    = "driverLocation"
	EventOrderTracking     = "orderTracking"
	EventOrderStatusUpdate = "orderStatusUpdate"
)

// ErrConnection - текст ошибки подключения для клиента
const ErrConnection = "Erro de conexao"

// Socket - то, что трекеру нужно от сокета
type Socket interface {
	On(event string, h socketio.Handler)
	OnConnect(fn func())
	OnDisconnect(fn func(reason string))
	OnConnectError(fn func(err error))
	Connect(ctx context.Context) error
	Emit(event string, args ...interface{}) error
	Connected() bool
	Close() error
}

// Marker - маркер курьера на карте
type Marker struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Rotation  float64   `json:"rotation"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// View - то, что отображается на странице отслеживания
type View struct {
	OrderID     string                   `json:"orderId"`
	Connected   bool                     `json:"connected"`
	Error       string                   `json:"error,omitempty"`
	Status      models.OrderStatus       `json:"status,omitempty"`
	StatusLabel string                   `json:"statusLabel,omitempty"`
	Step        int                      `json:"step"`
	Steps       []models.OrderStatus     `json:"steps"`
	ShowMap     bool                     `json:"showMap"`
	Location    *models.DriverLocation   `json:"location,omitempty"`
	Marker      *Marker                  `json:"marker,omitempty"`
	Snapshot    *models.TrackingSnapshot `json:"snapshot,omitempty"`
	Address     string                   `json:"address"`
}

// Tracker подписывается на заказ и ведет состояние отображения
type Tracker struct {
	orderID string
	socket  Socket
	log     logger.ILogger
	now     func() time.Time

	mu        sync.Mutex
	connected bool
	errText   string
	status    models.OrderStatus
	snapshot  *models.TrackingSnapshot
	location  *models.DriverLocation
	marker    *Marker
	showMap   bool
	handler   func(View)
	closed    bool

	// статус пришел событием после последнего запроса среза
	statusSinceRequest bool
}

// NewTracker создает трекер заказа; подключение начинается в Start
func NewTracker(orderID string, socket Socket, log logger.ILogger) *Tracker {
	if log == nil {
		log = logger.NewNop()
	}
	t := &Tracker{
		orderID: orderID,
		socket:  socket,
		log:     log.With(logger.String("order_id", orderID)),
		now:     time.Now,
	}

	socket.OnConnect(t.handleConnect)
	socket.OnDisconnect(t.handleDisconnect)
	socket.OnConnectError(t.handleConnectError)
	socket.On(EventDriverLocation, t.handleDriverLocation)
	socket.On(EventOrderTracking, t.handleSnapshot)
	socket.On(EventOrderStatusUpdate, t.handleStatusUpdate)
	return t
}

// Start запускает подключение
func (t *Tracker) Start(ctx context.Context) error {
	return t.socket.Connect(ctx)
}

// OrderID возвращает отслеживаемый заказ
func (t *Tracker) OrderID() string {
	return t.orderID
}

// SetHandler задает обработчик изменений вида
func (t *Tracker) SetHandler(fn func(View)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = fn
}

// View возвращает текущее состояние
func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

// ApplyStatus применяет статус, полученный не через сокет (например, из REST)
func (t *Tracker) ApplyStatus(status models.OrderStatus) {
	t.update(func() bool {
		if status == "" || status == t.status {
			return false
		}
		t.status = status
		t.statusSinceRequest = true
		return true
	})
}

// Close отписывается от заказа и отключает сокет
func (t *Tracker) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	if err := t.socket.Emit(EventUnsubscribe, t.orderID); err != nil {
		t.log.Debug("Отписка от заказа не отправлена", logger.Error(err))
	}
	return t.socket.Close()
}

func (t *Tracker) handleConnect() {
	t.update(func() bool {
		t.connected = true
		t.errText = ""
		return true
	})

	// Срез запрашивается сразу: курьер мог не двигаться с момента открытия страницы
	if err := t.socket.Emit(EventSubscribe, t.orderID); err != nil {
		t.log.Warning("Не удалось подписаться на заказ", logger.Error(err))
	}
	t.mu.Lock()
	t.statusSinceRequest = false
	t.mu.Unlock()
	if err := t.socket.Emit(EventGetTracking, t.orderID); err != nil {
		t.log.Warning("Не удалось запросить срез отслеживания", logger.Error(err))
	}
}

func (t *Tracker) handleDisconnect(reason string) {
	t.log.Info("Сокет отслеживания отключен", logger.String("reason", reason))
	t.update(func() bool {
		t.connected = false
		return true
	})
}

func (t *Tracker) handleConnectError(err error) {
	t.log.Warning("Ошибка подключения к сокету отслеживания", logger.Error(err))
	t.update(func() bool {
		t.errText = ErrConnection
		return true
	})
}

func (t *Tracker) handleDriverLocation(data json.RawMessage) {
	var loc models.DriverLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		t.log.Warning("Ошибка разбора driverLocation", logger.Error(err))
		return
	}
	if loc.OrderID != t.orderID {
		return
	}

	t.update(func() bool {
		return t.applyLocationLocked(loc)
	})
}

func (t *Tracker) handleSnapshot(data json.RawMessage) {
	var payload struct {
		Data *models.TrackingSnapshot `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.log.Warning("Ошибка разбора orderTracking", logger.Error(err))
		return
	}
	snap := payload.Data
	if snap == nil || (snap.OrderID != "" && snap.OrderID != t.orderID) {
		return
	}

	t.update(func() bool {
		t.snapshot = snap
		if snap.Status != "" && !t.staleSnapshotStatusLocked(snap.Status) {
			t.status = snap.Status
		}
		if snap.Driver != nil && snap.Driver.Location != nil {
			t.applyLocationLocked(models.DriverLocation{
				OrderID:   t.orderID,
				DriverID:  snap.Driver.ID,
				Latitude:  snap.Driver.Location.Latitude,
				Longitude: snap.Driver.Location.Longitude,
				Timestamp: snap.Driver.Location.LastUpdate,
			})
		}
		return true
	})
}

// staleSnapshotStatusLocked - срез собран до статуса, уже пришедшего событием,
// и вернул бы шаг назад
func (t *Tracker) staleSnapshotStatusLocked(status models.OrderStatus) bool {
	return t.statusSinceRequest && StepIndex(status) < StepIndex(t.status)
}

func (t *Tracker) handleStatusUpdate(data json.RawMessage) {
	var update models.OrderStatusUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		t.log.Warning("Ошибка разбора orderStatusUpdate", logger.Error(err))
		return
	}
	if update.OrderID != t.orderID {
		return
	}
	t.ApplyStatus(update.Status)
}

// applyLocationLocked применяет положение, если оно не старше текущего.
// Положение без времени считается полученным сейчас.
func (t *Tracker) applyLocationLocked(loc models.DriverLocation) bool {
	if loc.Timestamp.IsZero() {
		loc.Timestamp = t.now()
	}
	if t.location != nil && loc.Timestamp.Before(t.location.Timestamp) {
		return false
	}
	t.location = &loc

	rotation := 0.0
	if t.marker != nil {
		rotation = t.marker.Rotation
	}
	if loc.Heading != nil {
		rotation = *loc.Heading
	}
	t.marker = &Marker{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Rotation:  rotation,
		UpdatedAt: loc.Timestamp,
	}
	return true
}

// update выполняет изменение под блокировкой и уведомляет обработчик
func (t *Tracker) update(change func() bool) {
	t.mu.Lock()
	if t.closed || !change() {
		t.mu.Unlock()
		return
	}
	// Карта, однажды показанная, остается видимой до ухода со страницы
	if !t.showMap && EnRoute(t.status) && t.location != nil {
		t.showMap = true
	}
	view := t.viewLocked()
	handler := t.handler
	t.mu.Unlock()

	if handler != nil {
		handler(view)
	}
}

func (t *Tracker) viewLocked() View {
	v := View{
		OrderID:   t.orderID,
		Connected: t.connected,
		Error:     t.errText,
		Status:    t.status,
		Step:      StepIndex(t.status),
		Steps:     Steps,
		ShowMap:   t.showMap,
		Snapshot:  t.snapshot,
	}
	if t.status != "" {
		v.StatusLabel = Label(t.status)
	}
	if t.location != nil {
		loc := *t.location
		v.Location = &loc
	}
	if t.marker != nil {
		m := *t.marker
		v.Marker = &m
	}
	var addr *models.DeliveryAddress
	if t.snapshot != nil {
		addr = t.snapshot.DeliveryAddress
	}
	v.Address = FormatAddress(addr)
	return v
}
