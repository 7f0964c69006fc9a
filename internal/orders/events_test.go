package orders

import (
	"context"
	"math/rand"
	"testing"

	"zefood-console/internal/models"
	"zefood-console/internal/socketio"
	"zefood-console/internal/socketio/sockettest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*EventsClient, *sockettest.Socket) {
	t.Helper()
	socket := sockettest.New()
	c := NewEventsClient(socket, nil)
	require.NoError(t, c.Connect(context.Background()))
	return c, socket
}

func TestJoinOnConnectWhenKeyKnown(t *testing.T) {
	c, socket := newTestClient(t)
	assert.Equal(t, StateConnecting, c.State())

	c.SetRestaurant("r1")
	assert.Empty(t, socket.Emits(), "до подключения ничего не отправляется")

	socket.TriggerConnect()
	joins := socket.EmitsOf(EventJoinRestaurant)
	require.Len(t, joins, 1)
	assert.Equal(t, []interface{}{"r1"}, joins[0].Args)
	assert.Equal(t, StateJoined, c.State())
}

func TestLateKeyJoinsImmediately(t *testing.T) {
	c, socket := newTestClient(t)

	socket.TriggerConnect()
	assert.Equal(t, StateConnected, c.State())
	assert.Empty(t, socket.EmitsOf(EventJoinRestaurant))

	c.SetRestaurant("r1")
	assert.Len(t, socket.EmitsOf(EventJoinRestaurant), 1)
	assert.Equal(t, StateJoined, c.State())

	// повторная установка того же ключа не входит второй раз
	c.SetRestaurant("r1")
	socket.TriggerConnect()
	assert.Len(t, socket.EmitsOf(EventJoinRestaurant), 1)
}

func TestRejoinAfterReconnect(t *testing.T) {
	c, socket := newTestClient(t)
	c.SetRestaurant("r1")

	socket.TriggerConnect()
	socket.TriggerDisconnect(socketio.ReasonTransportClose)
	assert.Equal(t, StateDisconnected, c.State())

	socket.TriggerConnect()
	joins := socket.EmitsOf(EventJoinRestaurant)
	require.Len(t, joins, 2)
	assert.Equal(t, []interface{}{"r1"}, joins[1].Args)
}

func TestKeyChangeJoinsNewRoom(t *testing.T) {
	c, socket := newTestClient(t)
	socket.TriggerConnect()

	c.SetRestaurant("r1")
	c.SetRestaurant("r2")

	joins := socket.EmitsOf(EventJoinRestaurant)
	require.Len(t, joins, 2)
	assert.Equal(t, []interface{}{"r2"}, joins[1].Args)
}

// Для любой последовательности событий на одном подключении нет повторного входа
// в ту же комнату, а каждое подключение с известным ключом входит ровно один раз
func TestJoinOncePerConnectionAndKey(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	keys := []string{"r1", "r2", "r3"}

	for run := 0; run < 200; run++ {
		c, socket := newTestClient(t)

		connected := false
		key := ""
		joined := ""

		for step := 0; step < 30; step++ {
			before := len(socket.EmitsOf(EventJoinRestaurant))
			want := 0

			switch rnd.Intn(3) {
			case 0:
				if connected {
					continue
				}
				connected = true
				socket.TriggerConnect()
				if key != "" {
					want = 1
					joined = key
				}
			case 1:
				if !connected {
					continue
				}
				connected = false
				joined = ""
				socket.TriggerDisconnect(socketio.ReasonTransportError)
			case 2:
				key = keys[rnd.Intn(len(keys))]
				c.SetRestaurant(key)
				if connected && joined != key {
					want = 1
					joined = key
				}
			}

			joins := socket.EmitsOf(EventJoinRestaurant)
			require.Equal(t, want, len(joins)-before, "run %d step %d", run, step)
			if want == 1 {
				assert.Equal(t, []interface{}{key}, joins[len(joins)-1].Args)
			}
		}
	}
}

func TestEventsForwardedToHandlers(t *testing.T) {
	c, socket := newTestClient(t)
	socket.TriggerConnect()

	var orders []models.Order
	var updates []models.OrderStatusUpdate
	c.SetHandlers(Handlers{
		OnNewOrder:     func(o models.Order) { orders = append(orders, o) },
		OnStatusUpdate: func(u models.OrderStatusUpdate) { updates = append(updates, u) },
	})

	socket.Trigger(EventNewOrder, map[string]interface{}{
		"order": map[string]interface{}{"id": "o1", "status": "PENDING", "total": 42.5},
	})
	socket.Trigger(EventOrderStatusUpdate, map[string]interface{}{
		"orderId": "o1", "status": "CONFIRMED",
		"order": map[string]interface{}{"id": "o1", "status": "CONFIRMED", "driverId": "d1"},
	})
	socket.TriggerRaw(EventNewOrder, []byte(`not json`))

	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, 42.5, orders[0].Total)

	require.Len(t, updates, 1)
	assert.Equal(t, models.OrderStatusConfirmed, updates[0].Status)
	require.NotNil(t, updates[0].Order)
	assert.Equal(t, "d1", updates[0].Order.DriverID)

	// замена обработчиков без переподключения
	var replaced int
	c.SetHandlers(Handlers{OnNewOrder: func(models.Order) { replaced++ }})
	socket.Trigger(EventNewOrder, map[string]interface{}{"order": map[string]interface{}{"id": "o2"}})
	socket.Trigger(EventOrderStatusUpdate, map[string]interface{}{"orderId": "o2", "status": "READY"})
	assert.Equal(t, 1, replaced)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, socket.ConnectCalls())
}

func TestJoinAndLeaveOrder(t *testing.T) {
	c, socket := newTestClient(t)
	assert.ErrorIs(t, c.JoinOrder("o1"), socketio.ErrNotConnected)

	socket.TriggerConnect()
	require.NoError(t, c.JoinOrder("o1"))
	require.NoError(t, c.LeaveOrder("o1"))

	assert.Len(t, socket.EmitsOf(EventJoinOrder), 1)
	assert.Len(t, socket.EmitsOf(EventLeaveOrder), 1)
}

func TestCloseIsUnconditional(t *testing.T) {
	c, socket := newTestClient(t)
	require.NoError(t, c.Close())
	assert.True(t, socket.Closed())
	assert.Equal(t, StateDisconnected, c.State())

	c2, socket2 := newTestClient(t)
	c2.SetRestaurant("r1")
	socket2.TriggerConnect()
	require.NoError(t, c2.Close())
	assert.True(t, socket2.Closed())
	assert.Equal(t, StateDisconnected, c2.State())
}
