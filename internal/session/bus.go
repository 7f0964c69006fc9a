package session

import (
	"sync"
	"time"
)

// Expired - событие истечения сессии
type Expired struct {
	Reason string
	At     time.Time
}

// Bus - канал публикации/подписки для сигнала об истекшей сессии.
// Создается явно в точке сборки приложения; у каждого экземпляра свои подписчики.
type Bus struct {
	mu   sync.RWMutex
	subs map[uint64]func(Expired)
	next uint64
	now  func() time.Time
}

// NewBus создает пустой канал
func NewBus() *Bus {
	return &Bus{
		subs: make(map[uint64]func(Expired)),
		now:  time.Now,
	}
}

// Subscribe регистрирует обработчик и возвращает функцию отписки.
// Повторный вызов функции отписки ничего не делает.
func (b *Bus) Subscribe(fn func(Expired)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish доставляет событие всем текущим подписчикам
func (b *Bus) Publish(e Expired) {
	b.mu.RLock()
	handlers := make([]func(Expired), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
}

// NotifyExpired публикует событие с текущим временем (используется транспортом)
func (b *Bus) NotifyExpired(reason string) {
	b.Publish(Expired{Reason: reason, At: b.now()})
}

// Subscribers возвращает количество подписчиков
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
