package services

import (
	"zefood-console/internal/checkout"
	"zefood-console/internal/models"
	"zefood-console/internal/tracking"
	"zefood-console/internal/websocket"
)

// AuthState - сообщение AUTH_STATE
type AuthState struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

// SendOrderStatusUpdate сообщает браузерам о смене статуса заказа
func SendOrderStatusUpdate(push Pusher, update models.OrderStatusUpdate) {
	push.Broadcast(websocket.OrderStatusUpdateType, update)
}

// SendTrackingUpdate отправляет новое состояние страницы отслеживания
func SendTrackingUpdate(push Pusher, view tracking.View) {
	push.Broadcast(websocket.TrackingUpdateType, view)
}

// SendCheckoutUpdate отправляет новое состояние оплаты
func SendCheckoutUpdate(push Pusher, view checkout.View) {
	push.Broadcast(websocket.CheckoutUpdateType, view)
}

// SendAuthState отправляет состояние входа
func SendAuthState(push Pusher, user *models.User) {
	push.Broadcast(websocket.AuthStateType, NewAuthState(user))
}

// NewAuthState собирает сообщение AUTH_STATE
func NewAuthState(user *models.User) AuthState {
	return AuthState{Authenticated: user != nil, User: user}
}
