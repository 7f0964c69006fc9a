package services

import (
	"context"
	"sync"
	"time"

	"zefood-console/internal/checkout"
	"zefood-console/internal/logger"
)

// CheckoutOptions - общие зависимости сценариев оплаты
type CheckoutOptions struct {
	API            checkout.PaymentsAPI
	Navigator      checkout.Navigator
	Clipboard      checkout.Clipboard
	PollInterval   time.Duration
	RedirectDelay  time.Duration
	CopyResetDelay time.Duration
}

// CheckoutSessions - открытые сценарии оплаты по заказам
type CheckoutSessions struct {
	opts CheckoutOptions
	push Pusher
	log  logger.ILogger

	mu    sync.Mutex
	flows map[string]*checkout.Flow
}

func NewCheckoutSessions(opts CheckoutOptions, push Pusher, log logger.ILogger) *CheckoutSessions {
	if log == nil {
		log = logger.NewNop()
	}
	return &CheckoutSessions{
		opts:  opts,
		push:  push,
		log:   log,
		flows: make(map[string]*checkout.Flow),
	}
}

// Open открывает оплату заказа и загружает его. Ошибка загрузки закрывает сценарий.
func (s *CheckoutSessions) Open(ctx context.Context, orderID string) (checkout.View, error) {
	s.mu.Lock()
	if f, ok := s.flows[orderID]; ok {
		s.mu.Unlock()
		return f.View(), nil
	}

	f := checkout.NewFlow(checkout.Options{
		OrderID:        orderID,
		API:            s.opts.API,
		Navigator:      s.opts.Navigator,
		Clipboard:      s.opts.Clipboard,
		Logger:         s.log,
		PollInterval:   s.opts.PollInterval,
		RedirectDelay:  s.opts.RedirectDelay,
		CopyResetDelay: s.opts.CopyResetDelay,
	})
	f.SetHandler(func(view checkout.View) {
		SendCheckoutUpdate(s.push, view)
	})
	s.flows[orderID] = f
	s.mu.Unlock()

	if err := f.Load(ctx); err != nil {
		s.Close(orderID)
		return f.View(), err
	}
	return f.View(), nil
}

// Get возвращает сценарий оплаты заказа
func (s *CheckoutSessions) Get(orderID string) (*checkout.Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flows[orderID]
	return f, ok
}

// Close останавливает опрос и таймеры сценария
func (s *CheckoutSessions) Close(orderID string) bool {
	s.mu.Lock()
	f, ok := s.flows[orderID]
	delete(s.flows, orderID)
	s.mu.Unlock()

	if ok {
		f.Close()
	}
	return ok
}

// CloseAll останавливает все сценарии
func (s *CheckoutSessions) CloseAll() {
	s.mu.Lock()
	flows := s.flows
	s.flows = make(map[string]*checkout.Flow)
	s.mu.Unlock()

	for _, f := range flows {
		f.Close()
	}
}
