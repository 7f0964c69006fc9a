package services

import (
	"strings"

	"zefood-console/internal/logger"
	"zefood-console/internal/models"
	"zefood-console/internal/sound"
	"zefood-console/internal/websocket"
)

// Pusher рассылает сообщения подключенным браузерам (реализуется websocket.Manager)
type Pusher interface {
	Broadcast(msgType string, payload interface{})
}

// SoundPlayer проигрывает звук оповещения (реализуется sound.Player)
type SoundPlayer interface {
	Play(opts sound.Options)
	Stop()
}

// Toast - всплывающее уведомление в браузере
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DurationMs  int    `json:"durationMs"`
}

// NewOrderNotification - сообщение NEW_ORDER
type NewOrderNotification struct {
	Order models.Order `json:"order"`
	Toast Toast        `json:"toast"`
}

// Звук нового заказа: громче обычного и три повтора
var newOrderSound = sound.Options{Volume: sound.Volume(0.8), Loop: true, LoopCount: 3}

type NotificationService struct {
	sound SoundPlayer
	push  Pusher
	log   logger.ILogger
}

func NewNotificationService(player SoundPlayer, push Pusher, log logger.ILogger) *NotificationService {
	if log == nil {
		log = logger.NewNop()
	}
	return &NotificationService{sound: player, push: push, log: log}
}

// NotifyNewOrder проигрывает звук и показывает уведомление о новом заказе
func (s *NotificationService) NotifyNewOrder(order models.Order) {
	if s.sound != nil {
		s.sound.Play(newOrderSound)
	}

	s.log.Info("Новый заказ", logger.String("order_id", order.ID))
	s.push.Broadcast(websocket.NewOrderType, NewOrderNotification{
		Order: order,
		Toast: Toast{
			Title:       "Novo pedido recebido!",
			Description: "Pedido #" + ShortOrderID(order.ID) + " - " + customerName(order),
			DurationMs:  10000,
		},
	})
}

// StopSound прерывает звук оповещения
func (s *NotificationService) StopSound() {
	if s.sound != nil {
		s.sound.Stop()
	}
}

// ShortOrderID - последние 6 символов идентификатора в верхнем регистре
func ShortOrderID(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

func customerName(order models.Order) string {
	if order.Customer != nil && order.Customer.FullName != "" {
		return order.Customer.FullName
	}
	return "Cliente"
}
