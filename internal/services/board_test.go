package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"zefood-console/internal/models"
	"zefood-console/internal/orders"
	"zefood-console/internal/socketio/sockettest"
	"zefood-console/internal/sound"
	"zefood-console/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushed struct {
	Type    string
	Payload interface{}
}

type fakePusher struct {
	mu       sync.Mutex
	messages []pushed
}

func (p *fakePusher) Broadcast(msgType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, pushed{Type: msgType, Payload: payload})
}

func (p *fakePusher) ofType(msgType string) []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pushed
	for _, m := range p.messages {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

type fakeSound struct {
	mu    sync.Mutex
	plays []sound.Options
	stops int
}

func (s *fakeSound) Play(opts sound.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays = append(s.plays, opts)
}

func (s *fakeSound) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

type fakeRestaurantAPI struct {
	restaurant *models.Restaurant
	profileErr error
	orders     []models.Order
	ordersErr  error

	// вызывается до ответа GetMyOrders
	beforeOrders func()

	mu      sync.Mutex
	updates []models.OrderStatus
	block   chan struct{}
	updErr  error
}

func (a *fakeRestaurantAPI) GetMyRestaurant(context.Context) (*models.Restaurant, error) {
	return a.restaurant, a.profileErr
}

func (a *fakeRestaurantAPI) GetMyOrders(context.Context) ([]models.Order, error) {
	if a.beforeOrders != nil {
		a.beforeOrders()
	}
	return a.orders, a.ordersErr
}

func (a *fakeRestaurantAPI) UpdateOrderStatus(_ context.Context, _ string, status models.OrderStatus) error {
	a.mu.Lock()
	a.updates = append(a.updates, status)
	block := a.block
	a.mu.Unlock()
	if block != nil {
		<-block
	}
	return a.updErr
}

func (a *fakeRestaurantAPI) updateCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.updates)
}

type boardFixture struct {
	board  *Board
	socket *sockettest.Socket
	api    *fakeRestaurantAPI
	push   *fakePusher
	sound  *fakeSound
}

func newBoardFixture(t *testing.T, api *fakeRestaurantAPI) boardFixture {
	t.Helper()
	socket := sockettest.New()
	events := orders.NewEventsClient(socket, nil)
	require.NoError(t, events.Connect(context.Background()))

	push := &fakePusher{}
	player := &fakeSound{}
	board := NewBoard(api, events, NewNotificationService(player, push, nil), push, nil)
	return boardFixture{board: board, socket: socket, api: api, push: push, sound: player}
}

func TestBoardLoadJoinsRestaurantRoom(t *testing.T) {
	f := newBoardFixture(t, &fakeRestaurantAPI{
		restaurant: &models.Restaurant{ID: "r1"},
		orders: []models.Order{
			{ID: "o1", Status: models.OrderStatusPending},
			{ID: "o2", Status: models.OrderStatusPreparing},
		},
	})

	// сокет подключился раньше, чем загрузился профиль
	f.socket.TriggerConnect()
	assert.Empty(t, f.socket.EmitsOf(orders.EventJoinRestaurant))

	require.NoError(t, f.board.Load(context.Background()))
	joins := f.socket.EmitsOf(orders.EventJoinRestaurant)
	require.Len(t, joins, 1)
	assert.Equal(t, []interface{}{"r1"}, joins[0].Args)
	assert.Equal(t, "r1", f.board.RestaurantID())
	assert.Len(t, f.board.All(), 2)
}

func TestBoardLoadErrors(t *testing.T) {
	f := newBoardFixture(t, &fakeRestaurantAPI{
		profileErr: errors.New("profile"),
		ordersErr:  errors.New("orders"),
	})
	assert.Error(t, f.board.Load(context.Background()))
	assert.Empty(t, f.board.RestaurantID())
	assert.Empty(t, f.board.All())
}

func TestBoardLoadWithoutProfile(t *testing.T) {
	f := newBoardFixture(t, &fakeRestaurantAPI{
		orders: []models.Order{{ID: "o1", Status: models.OrderStatusPending}},
	})
	f.socket.TriggerConnect()

	require.NoError(t, f.board.Load(context.Background()))
	assert.Empty(t, f.board.RestaurantID())
	assert.Empty(t, f.socket.EmitsOf(orders.EventJoinRestaurant))
	assert.Len(t, f.board.All(), 1)
}

func TestBoardLoadKeepsOrdersArrivedDuringLoad(t *testing.T) {
	api := &fakeRestaurantAPI{
		restaurant: &models.Restaurant{ID: "r1"},
		orders: []models.Order{
			{ID: "o1", Status: models.OrderStatusPending},
			{ID: "o2", Status: models.OrderStatusPreparing},
		},
	}
	f := newBoardFixture(t, api)
	f.socket.TriggerConnect()

	// заказ приходит по сокету после входа в комнату, но до ответа со списком
	api.beforeOrders = func() {
		f.socket.Trigger(orders.EventNewOrder, map[string]interface{}{
			"order": map[string]interface{}{"id": "o3", "status": "PENDING"},
		})
		f.socket.Trigger(orders.EventNewOrder, map[string]interface{}{
			"order": map[string]interface{}{"id": "o1", "status": "PENDING"},
		})
	}
	require.NoError(t, f.board.Load(context.Background()))

	all := f.board.All()
	require.Len(t, all, 3)
	assert.Equal(t, "o3", all[0].ID)
	assert.Equal(t, "o1", all[1].ID)
	assert.Equal(t, "o2", all[2].ID)
}

func TestBoardNewOrderDedupedAndPrepended(t *testing.T) {
	f := newBoardFixture(t, &fakeRestaurantAPI{
		restaurant: &models.Restaurant{ID: "r1"},
		orders:     []models.Order{{ID: "o1", Status: models.OrderStatusConfirmed}},
	})
	require.NoError(t, f.board.Load(context.Background()))
	f.socket.TriggerConnect()

	order := map[string]interface{}{
		"id": "abc123def456", "status": "PENDING",
		"customer": map[string]interface{}{"fullName": "Maria"},
	}
	f.socket.Trigger(orders.EventNewOrder, map[string]interface{}{"order": order})
	f.socket.Trigger(orders.EventNewOrder, map[string]interface{}{"order": order})

	all := f.board.All()
	require.Len(t, all, 2)
	assert.Equal(t, "abc123def456", all[0].ID)

	require.Len(t, f.sound.plays, 1)
	assert.Equal(t, sound.Options{Volume: sound.Volume(0.8), Loop: true, LoopCount: 3}, f.sound.plays[0])

	msgs := f.push.ofType(websocket.NewOrderType)
	require.Len(t, msgs, 1)
	n := msgs[0].Payload.(NewOrderNotification)
	assert.Equal(t, "Novo pedido recebido!", n.Toast.Title)
	assert.Equal(t, "Pedido #DEF456 - Maria", n.Toast.Description)

	assert.Len(t, f.board.Orders(TabPending), 1)
	assert.Len(t, f.board.Orders(TabPreparing), 1)
}

func TestBoardStatusUpdatePatchesOrder(t *testing.T) {
	f := newBoardFixture(t, &fakeRestaurantAPI{
		restaurant: &models.Restaurant{ID: "r1"},
		orders: []models.Order{
			{ID: "o1", Status: models.OrderStatusReady, Total: 30},
		},
	})
	require.NoError(t, f.board.Load(context.Background()))
	f.socket.TriggerConnect()

	f.socket.Trigger(orders.EventOrderStatusUpdate, map[string]interface{}{
		"orderId": "o1", "status": "PICKED_UP",
		"order": map[string]interface{}{"id": "o1", "status": "PICKED_UP", "driverId": "d9", "total": 999},
	})
	f.socket.Trigger(orders.EventOrderStatusUpdate, map[string]interface{}{"orderId": "unknown", "status": "READY"})

	all := f.board.All()
	require.Len(t, all, 1)
	assert.Equal(t, models.OrderStatusPickedUp, all[0].Status)
	assert.Equal(t, "d9", all[0].DriverID)
	assert.Equal(t, 30.0, all[0].Total, "остальные поля не меняются")

	assert.Len(t, f.push.ofType(websocket.OrderStatusUpdateType), 1)
	assert.Len(t, f.board.Orders(TabDelivering), 1)
	assert.Empty(t, f.board.Orders(TabReady))
}

func TestBoardCounts(t *testing.T) {
	f := newBoardFixture(t, &fakeRestaurantAPI{
		restaurant: &models.Restaurant{ID: "r1"},
		orders: []models.Order{
			{ID: "1", Status: models.OrderStatusPending},
			{ID: "2", Status: models.OrderStatusConfirmed},
			{ID: "3", Status: models.OrderStatusPreparing},
			{ID: "4", Status: models.OrderStatusOutForDelivery},
			{ID: "5", Status: models.OrderStatusDelivered},
			{ID: "6", Status: models.OrderStatusCancelled},
		},
	})
	require.NoError(t, f.board.Load(context.Background()))

	assert.Equal(t, map[Tab]int{
		TabPending:    1,
		TabPreparing:  2,
		TabReady:      0,
		TabDelivering: 1,
		TabHistory:    2,
	}, f.board.Counts())
}

func TestBoardUpdateStatusSkipsDuplicates(t *testing.T) {
	api := &fakeRestaurantAPI{
		orders: []models.Order{{ID: "o1", Status: models.OrderStatusPending}},
		block:  make(chan struct{}),
	}
	f := newBoardFixture(t, api)
	require.NoError(t, f.board.Load(context.Background()))

	updated, err := f.board.UpdateStatus(context.Background(), "o1", models.OrderStatusPending)
	require.NoError(t, err)
	assert.False(t, updated, "тот же статус")
	assert.Equal(t, 0, api.updateCount())

	done := make(chan bool)
	go func() {
		ok, _ := f.board.UpdateStatus(context.Background(), "o1", models.OrderStatusConfirmed)
		done <- ok
	}()
	require.Eventually(t, func() bool { return api.updateCount() == 1 }, time.Second, time.Millisecond)

	updated, err = f.board.UpdateStatus(context.Background(), "o1", models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, updated, "вызов уже выполняется")

	close(api.block)
	assert.True(t, <-done)
	assert.Equal(t, 1, api.updateCount())

	// локальная копия ждет события сокета
	assert.Equal(t, models.OrderStatusPending, f.board.All()[0].Status)
}

func TestBoardUpdateStatusError(t *testing.T) {
	api := &fakeRestaurantAPI{
		orders: []models.Order{{ID: "o1", Status: models.OrderStatusPending}},
		updErr: errors.New("invalid transition"),
	}
	f := newBoardFixture(t, api)
	require.NoError(t, f.board.Load(context.Background()))

	_, err := f.board.UpdateStatus(context.Background(), "o1", models.OrderStatusReady)
	assert.Error(t, err)

	// после ошибки можно повторить
	_, err = f.board.UpdateStatus(context.Background(), "o1", models.OrderStatusReady)
	assert.Error(t, err)
	assert.Equal(t, 2, api.updateCount())
}

func TestBoardCloseDisconnects(t *testing.T) {
	f := newBoardFixture(t, &fakeRestaurantAPI{})
	f.board.StopSound()
	assert.Equal(t, 1, f.sound.stops)

	require.NoError(t, f.board.Close())
	assert.True(t, f.socket.Closed())
}

func TestParseTab(t *testing.T) {
	tab, ok := ParseTab("delivering")
	assert.True(t, ok)
	assert.Equal(t, TabDelivering, tab)

	_, ok = ParseTab("archive")
	assert.False(t, ok)
}

func TestShortOrderID(t *testing.T) {
	assert.Equal(t, "DEF456", ShortOrderID("abc123def456"))
	assert.Equal(t, "AB", ShortOrderID("ab"))
}
