package services

import (
	"context"
	"fmt"
	"sync"

	"zefood-console/internal/logger"
	"zefood-console/internal/tracking"
)

// TrackingSocketFactory создает отдельный сокет /tracking для заказа
type TrackingSocketFactory func(orderID string) (tracking.Socket, error)

// TrackingSessions - открытые страницы отслеживания по заказам
type TrackingSessions struct {
	newSocket TrackingSocketFactory
	push      Pusher
	log       logger.ILogger

	mu       sync.Mutex
	trackers map[string]*tracking.Tracker
}

func NewTrackingSessions(newSocket TrackingSocketFactory, push Pusher, log logger.ILogger) *TrackingSessions {
	if log == nil {
		log = logger.NewNop()
	}
	return &TrackingSessions{
		newSocket: newSocket,
		push:      push,
		log:       log,
		trackers:  make(map[string]*tracking.Tracker),
	}
}

// Open начинает отслеживание заказа; повторный вызов возвращает текущее состояние.
// Сокет живет до Close, а не до отмены ctx запроса.
func (s *TrackingSessions) Open(ctx context.Context, orderID string) (tracking.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.trackers[orderID]; ok {
		return t.View(), nil
	}

	socket, err := s.newSocket(orderID)
	if err != nil {
		return tracking.View{}, fmt.Errorf("ошибка при создании сокета отслеживания: %w", err)
	}

	t := tracking.NewTracker(orderID, socket, s.log)
	t.SetHandler(func(view tracking.View) {
		SendTrackingUpdate(s.push, view)
	})
	if err := t.Start(context.WithoutCancel(ctx)); err != nil {
		t.Close()
		return tracking.View{}, fmt.Errorf("ошибка при подключении к отслеживанию: %w", err)
	}

	s.trackers[orderID] = t
	s.log.Info("Отслеживание заказа открыто", logger.String("order_id", orderID))
	return t.View(), nil
}

// Get возвращает состояние отслеживания заказа
func (s *TrackingSessions) Get(orderID string) (tracking.View, bool) {
	s.mu.Lock()
	t, ok := s.trackers[orderID]
	s.mu.Unlock()

	if !ok {
		return tracking.View{}, false
	}
	return t.View(), true
}

// Close завершает отслеживание заказа
func (s *TrackingSessions) Close(orderID string) bool {
	s.mu.Lock()
	t, ok := s.trackers[orderID]
	delete(s.trackers, orderID)
	s.mu.Unlock()

	if !ok {
		return false
	}
	if err := t.Close(); err != nil {
		s.log.Warning("Ошибка при закрытии отслеживания", logger.String("order_id", orderID), logger.Error(err))
	}
	return true
}

// CloseAll завершает все отслеживания (при выходе или остановке)
func (s *TrackingSessions) CloseAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.trackers))
	for id := range s.trackers {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Close(id)
	}
}
