package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"zefood-console/internal/checkout"
	"zefood-console/internal/models"
	"zefood-console/internal/socketio/sockettest"
	"zefood-console/internal/tracking"
	"zefood-console/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingSessionsLifecycle(t *testing.T) {
	sockets := map[string]*sockettest.Socket{}
	push := &fakePusher{}
	sessions := NewTrackingSessions(func(orderID string) (tracking.Socket, error) {
		s := sockettest.New()
		sockets[orderID] = s
		return s, nil
	}, push, nil)

	view, err := sessions.Open(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", view.OrderID)
	require.Contains(t, sockets, "o1")
	assert.Equal(t, 1, sockets["o1"].ConnectCalls())

	// повторное открытие не создает второй сокет
	_, err = sessions.Open(context.Background(), "o1")
	require.NoError(t, err)
	assert.Len(t, sockets, 1)

	sockets["o1"].TriggerConnect()
	sockets["o1"].Trigger(tracking.EventOrderStatusUpdate, map[string]interface{}{"orderId": "o1", "status": "READY"})

	got, ok := sessions.Get("o1")
	require.True(t, ok)
	assert.Equal(t, 2, got.Step)

	updates := push.ofType(websocket.TrackingUpdateType)
	require.NotEmpty(t, updates)
	assert.Equal(t, models.OrderStatusReady, updates[len(updates)-1].Payload.(tracking.View).Status)

	assert.True(t, sessions.Close("o1"))
	assert.False(t, sessions.Close("o1"))
	assert.Len(t, sockets["o1"].EmitsOf(tracking.EventUnsubscribe), 1)
	assert.True(t, sockets["o1"].Closed())

	_, ok = sessions.Get("o1")
	assert.False(t, ok)
}

func TestTrackingSessionsFactoryError(t *testing.T) {
	sessions := NewTrackingSessions(func(string) (tracking.Socket, error) {
		return nil, errors.New("no token")
	}, &fakePusher{}, nil)

	_, err := sessions.Open(context.Background(), "o1")
	assert.Error(t, err)
	_, ok := sessions.Get("o1")
	assert.False(t, ok)
}

func TestTrackingSessionsCloseAll(t *testing.T) {
	var created []*sockettest.Socket
	sessions := NewTrackingSessions(func(string) (tracking.Socket, error) {
		s := sockettest.New()
		created = append(created, s)
		return s, nil
	}, &fakePusher{}, nil)

	for _, id := range []string{"a", "b"} {
		_, err := sessions.Open(context.Background(), id)
		require.NoError(t, err)
	}
	sessions.CloseAll()
	for _, s := range created {
		assert.True(t, s.Closed())
	}
}

type checkoutAPI struct {
	order *models.Order
	err   error
}

func (a *checkoutAPI) GetOrder(context.Context, string) (*models.Order, error) {
	return a.order, a.err
}

func (a *checkoutAPI) CreatePixPayment(context.Context, string) (*models.PixChallenge, error) {
	return &models.PixChallenge{Code: "pix"}, nil
}

func (a *checkoutAPI) CreateCardPreference(context.Context, string) (string, error) {
	return "https://pay.example.com", nil
}

func (a *checkoutAPI) ProcessCashPayment(context.Context, string) error { return nil }

func (a *checkoutAPI) SimulatePayment(context.Context, string) error { return nil }

type recordingNav struct {
	pushes []string
}

func (n *recordingNav) Push(path string)    { n.pushes = append(n.pushes, path) }
func (n *recordingNav) Redirect(url string) {}

func TestCheckoutSessionsOpenAndClose(t *testing.T) {
	push := &fakePusher{}
	sessions := NewCheckoutSessions(CheckoutOptions{
		API:          &checkoutAPI{order: &models.Order{ID: "o1", PaymentStatus: models.PaymentStatusPending}},
		Navigator:    &recordingNav{},
		PollInterval: time.Hour,
	}, push, nil)

	view, err := sessions.Open(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, checkout.StateSelectingMethod, view.State)

	flow, ok := sessions.Get("o1")
	require.True(t, ok)
	require.NoError(t, flow.Submit(context.Background()))
	assert.Equal(t, checkout.StateAwaitingPayment, flow.State())

	updates := push.ofType(websocket.CheckoutUpdateType)
	require.NotEmpty(t, updates)
	assert.Equal(t, checkout.StateAwaitingPayment, updates[len(updates)-1].Payload.(checkout.View).State)

	assert.True(t, sessions.Close("o1"))
	_, ok = sessions.Get("o1")
	assert.False(t, ok)
}

func TestCheckoutSessionsLoadFailure(t *testing.T) {
	nav := &recordingNav{}
	sessions := NewCheckoutSessions(CheckoutOptions{
		API:       &checkoutAPI{err: errors.New("not found")},
		Navigator: nav,
	}, &fakePusher{}, nil)

	view, err := sessions.Open(context.Background(), "o1")
	assert.Error(t, err)
	assert.Equal(t, checkout.StateTerminal, view.State)
	assert.Equal(t, []string{"/customer"}, nav.pushes)

	_, ok := sessions.Get("o1")
	assert.False(t, ok)
}
