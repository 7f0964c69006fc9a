package services

import (
	"context"
	"fmt"
	"sync"

	"zefood-console/internal/logger"
	"zefood-console/internal/metrics"
	"zefood-console/internal/models"
	"zefood-console/internal/orders"
)

// RestaurantAPI - вызовы бэкенда для доски заказов (реализуется api.Client)
type RestaurantAPI interface {
	GetMyRestaurant(ctx context.Context) (*models.Restaurant, error)
	GetMyOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

// Tab - вкладка доски заказов
type Tab string

const (
	TabPending    Tab = "pending"
	TabPreparing  Tab = "preparing"
	TabReady      Tab = "ready"
	TabDelivering Tab = "delivering"
	TabHistory    Tab = "history"
)

// Tabs - вкладки в порядке отображения
var Tabs = []Tab{TabPending, TabPreparing, TabReady, TabDelivering, TabHistory}

var tabStatuses = map[Tab][]models.OrderStatus{
	TabPending:    {models.OrderStatusPending},
	TabPreparing:  {models.OrderStatusConfirmed, models.OrderStatusPreparing},
	TabReady:      {models.OrderStatusReady},
	TabDelivering: {models.OrderStatusPickedUp, models.OrderStatusInTransit, models.OrderStatusOutForDelivery},
	TabHistory:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

// ParseTab проверяет название вкладки
func ParseTab(s string) (Tab, bool) {
	tab := Tab(s)
	_, ok := tabStatuses[tab]
	return tab, ok
}

// InTab - относится ли статус к вкладке
func InTab(tab Tab, status models.OrderStatus) bool {
	for _, s := range tabStatuses[tab] {
		if s == status {
			return true
		}
	}
	return false
}

// Board - доска заказов ресторана с живой лентой
type Board struct {
	api      RestaurantAPI
	events   *orders.EventsClient
	notifier *NotificationService
	push     Pusher
	log      logger.ILogger

	mu           sync.RWMutex
	orders       []models.Order
	restaurantID string
	updating     map[string]bool
}

func NewBoard(api RestaurantAPI, events *orders.EventsClient, notifier *NotificationService, push Pusher, log logger.ILogger) *Board {
	if log == nil {
		log = logger.NewNop()
	}
	b := &Board{
		api:      api,
		events:   events,
		notifier: notifier,
		push:     push,
		log:      log,
		updating: make(map[string]bool),
	}

	events.SetHandlers(orders.Handlers{
		OnNewOrder:     b.handleNewOrder,
		OnStatusUpdate: b.handleStatusUpdate,
	})
	return b
}

// Load загружает профиль ресторана и заказы. Комната ресторана становится известна
// только после загрузки профиля, поэтому вход в нее может произойти уже после подключения сокета.
func (b *Board) Load(ctx context.Context) error {
	restaurant, err := b.api.GetMyRestaurant(ctx)
	switch {
	case err != nil:
		b.log.Error("Ошибка при загрузке профиля ресторана", logger.Error(err))
	case restaurant == nil || restaurant.ID == "":
		b.log.Warning("Профиль ресторана пуст, комната ресторана не выбрана")
	default:
		b.mu.Lock()
		b.restaurantID = restaurant.ID
		b.mu.Unlock()
		b.log.Info("Профиль ресторана загружен", logger.String("restaurant_id", restaurant.ID))
		b.events.SetRestaurant(restaurant.ID)
	}

	list, ordersErr := b.api.GetMyOrders(ctx)
	if ordersErr != nil {
		b.log.Error("Ошибка при загрузке заказов", logger.Error(ordersErr))
		return fmt.Errorf("ошибка при загрузке заказов: %w", ordersErr)
	}

	b.mu.Lock()
	b.orders = mergeOrders(b.orders, list)
	b.mu.Unlock()
	return err
}

// mergeOrders берет загруженный список за основу; заказы, пришедшие по сокету
// и еще не попавшие в ответ, остаются в начале доски
func mergeOrders(current, loaded []models.Order) []models.Order {
	ids := make(map[string]bool, len(loaded))
	for _, o := range loaded {
		ids[o.ID] = true
	}
	merged := make([]models.Order, 0, len(current)+len(loaded))
	for _, o := range current {
		if !ids[o.ID] {
			merged = append(merged, o)
		}
	}
	return append(merged, loaded...)
}

// RestaurantID возвращает ресторан оператора (пусто до загрузки профиля)
func (b *Board) RestaurantID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.restaurantID
}

// All возвращает все заказы, новые первыми
func (b *Board) All() []models.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Order(nil), b.orders...)
}

// Orders возвращает заказы вкладки
func (b *Board) Orders(tab Tab) []models.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []models.Order{}
	for _, o := range b.orders {
		if InTab(tab, o.Status) {
			out = append(out, o)
		}
	}
	return out
}

// Counts возвращает число заказов по вкладкам
func (b *Board) Counts() map[Tab]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := make(map[Tab]int, len(Tabs))
	for _, tab := range Tabs {
		counts[tab] = 0
	}
	for _, o := range b.orders {
		for _, tab := range Tabs {
			if InTab(tab, o.Status) {
				counts[tab]++
			}
		}
	}
	return counts
}

// UpdateStatus меняет статус заказа на бэкенде. Повторный вызов во время выполнения
// и смена на тот же статус пропускаются (false). Локальная копия обновится событием сокета.
func (b *Board) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (bool, error) {
	b.mu.Lock()
	if b.updating[orderID] {
		b.mu.Unlock()
		return false, nil
	}
	for _, o := range b.orders {
		if o.ID == orderID && o.Status == status {
			b.mu.Unlock()
			return false, nil
		}
	}
	b.updating[orderID] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.updating, orderID)
		b.mu.Unlock()
	}()

	if err := b.api.UpdateOrderStatus(ctx, orderID, status); err != nil {
		b.log.Error("Ошибка при обновлении заказа",
			logger.String("order_id", orderID), logger.String("status", string(status)), logger.Error(err))
		return false, err
	}
	return true, nil
}

// StopSound прерывает звук нового заказа
func (b *Board) StopSound() {
	b.notifier.StopSound()
}

// Connect подключает доску к событиям заказов. Повторный вызов ничего не делает.
func (b *Board) Connect(ctx context.Context) error {
	return b.events.Connect(ctx)
}

// Close отключает ленту заказов
func (b *Board) Close() error {
	return b.events.Close()
}

func (b *Board) handleNewOrder(order models.Order) {
	b.mu.Lock()
	for _, o := range b.orders {
		if o.ID == order.ID {
			b.mu.Unlock()
			return
		}
	}
	b.orders = append([]models.Order{order}, b.orders...)
	b.mu.Unlock()

	metrics.NewOrdersTotal.Inc()
	b.notifier.NotifyNewOrder(order)
}

func (b *Board) handleStatusUpdate(update models.OrderStatusUpdate) {
	found := false
	b.mu.Lock()
	for i := range b.orders {
		if b.orders[i].ID != update.OrderID {
			continue
		}
		found = true
		b.orders[i].Status = update.Status
		if update.Order != nil {
			b.orders[i].DriverID = update.Order.DriverID
		} else {
			b.orders[i].DriverID = ""
		}
	}
	b.mu.Unlock()

	if found {
		SendOrderStatusUpdate(b.push, update)
	}
}
