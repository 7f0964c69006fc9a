// Package checkout - сценарий оплаты заказа: выбор способа, Pix с опросом статуса,
// переход во внешний шлюз для карт и подтверждение наличных.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"zefood-console/internal/logger"
	"zefood-console/internal/metrics"
	"zefood-console/internal/models"
)

// State - состояние сценария оплаты
type State string

const (
	StateLoading         State = "loading"
	StateSelectingMethod State = "selecting-method"
	StateSubmitting      State = "submitting"
	StateAwaitingPayment State = "awaiting-instant-payment"
	StateRedirecting     State = "redirecting-external"
	StateConfirmed       State = "confirmed"
	StateTerminal        State = "terminal"
)

// MsgPaymentFailed - сообщение клиенту при любой ошибке оплаты
const MsgPaymentFailed = "Erro ao processar pagamento. Tente novamente."

var (
	ErrPaymentFailed         = errors.New("payment failed")
	ErrInvalidState          = errors.New("action not allowed in current checkout state")
	ErrInvalidMethod         = errors.New("unknown payment method")
	ErrNoPaymentCode         = errors.New("no payment code to copy")
	ErrSimulationUnavailable = errors.New("payment simulation is not available in this build")
)

// PaymentsAPI - вызовы бэкенда, нужные сценарию (реализуется api.Client)
type PaymentsAPI interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	CreatePixPayment(ctx context.Context, orderID string) (*models.PixChallenge, error)
	CreateCardPreference(ctx context.Context, orderID string) (string, error)
	ProcessCashPayment(ctx context.Context, orderID string) error
	SimulatePayment(ctx context.Context, orderID string) error
}

// Navigator переводит браузер: Push - внутренний путь, Redirect - внешний адрес
type Navigator interface {
	Push(path string)
	Redirect(url string)
}

// Clipboard копирует текст в буфер обмена пользователя
type Clipboard interface {
	WriteText(text string) error
}

// Options - зависимости и задержки сценария
type Options struct {
	OrderID        string
	API            PaymentsAPI
	Navigator      Navigator
	Clipboard      Clipboard
	Logger         logger.ILogger
	PollInterval   time.Duration
	RedirectDelay  time.Duration
	CopyResetDelay time.Duration
}

// View - состояние для отображения
type View struct {
	OrderID string               `json:"orderId"`
	State   State                `json:"state"`
	Method  models.PaymentMethod `json:"method"`
	Order   *models.Order        `json:"order,omitempty"`
	Pix     *models.PixChallenge `json:"pix,omitempty"`
	Copied  bool                 `json:"copied"`
	Error   string               `json:"error,omitempty"`
}

// Flow - сценарий оплаты одного заказа
type Flow struct {
	orderID        string
	api            PaymentsAPI
	nav            Navigator
	clipboard      Clipboard
	log            logger.ILogger
	pollInterval   time.Duration
	redirectDelay  time.Duration
	copyResetDelay time.Duration

	mu          sync.Mutex
	state       State
	method      models.PaymentMethod
	order       *models.Order
	pix         *models.PixChallenge
	copied      bool
	errText     string
	closed      bool
	stopPoll    context.CancelFunc
	copyTimer   *time.Timer
	copyGen     uint64
	redirectTmr *time.Timer
	handler     func(View)
}

// NewFlow создает сценарий; способ оплаты по умолчанию - Pix
func NewFlow(opts Options) *Flow {
	f := &Flow{
		orderID:        opts.OrderID,
		api:            opts.API,
		nav:            opts.Navigator,
		clipboard:      opts.Clipboard,
		log:            opts.Logger,
		pollInterval:   opts.PollInterval,
		redirectDelay:  opts.RedirectDelay,
		copyResetDelay: opts.CopyResetDelay,
		state:          StateLoading,
		method:         models.PaymentMethodPix,
	}
	if f.log == nil {
		f.log = logger.NewNop()
	}
	f.log = f.log.With(logger.String("order_id", opts.OrderID))

	if f.pollInterval <= 0 {
		f.pollInterval = 5 * time.Second
	}
	if f.redirectDelay <= 0 {
		f.redirectDelay = 2 * time.Second
	}
	if f.copyResetDelay <= 0 {
		f.copyResetDelay = 2 * time.Second
	}
	return f
}

// OrderID возвращает заказ сценария
func (f *Flow) OrderID() string {
	return f.orderID
}

// SetHandler задает обработчик изменений
func (f *Flow) SetHandler(fn func(View)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = fn
}

// View возвращает текущее состояние
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// State возвращает текущее состояние сценария
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Copied - показывается ли подтверждение копирования
func (f *Flow) Copied() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copied
}

func (f *Flow) orderPath() string {
	return "/customer/orders/" + url.PathEscape(f.orderID)
}

// Load загружает заказ. Уже оплаченный заказ сразу подтверждается,
// ошибка загрузки возвращает пользователя на главную.
func (f *Flow) Load(ctx context.Context) error {
	order, err := f.api.GetOrder(ctx, f.orderID)
	if err != nil {
		f.log.Error("Ошибка при загрузке заказа", logger.Error(err))
		f.mu.Lock()
		f.state = StateTerminal
		closed := f.closed
		f.mu.Unlock()
		if !closed {
			f.nav.Push("/customer")
		}
		f.changed()
		return fmt.Errorf("ошибка при загрузке заказа: %w", err)
	}

	f.mu.Lock()
	f.order = order
	if order.PaymentStatus == models.PaymentStatusPaid {
		f.confirmLocked()
	} else {
		f.state = StateSelectingMethod
	}
	f.mu.Unlock()

	f.changed()
	return nil
}

// Select выбирает способ оплаты. Сетевых вызовов нет.
func (f *Flow) Select(method models.PaymentMethod) error {
	if !method.Valid() {
		return ErrInvalidMethod
	}

	f.mu.Lock()
	if f.state != StateSelectingMethod {
		f.mu.Unlock()
		return ErrInvalidState
	}
	f.method = method
	f.mu.Unlock()

	f.changed()
	return nil
}

// Submit отправляет оплату выбранным способом.
// При ошибке сценарий остается на выборе способа с общим сообщением.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateSelectingMethod {
		f.mu.Unlock()
		return ErrInvalidState
	}
	f.state = StateSubmitting
	f.errText = ""
	method := f.method
	f.mu.Unlock()
	f.changed()

	var err error
	switch {
	case method == models.PaymentMethodPix:
		err = f.submitPix(ctx)
	case method == models.PaymentMethodCash:
		err = f.submitCash(ctx)
	case method.IsCard():
		err = f.submitCard(ctx)
	default:
		err = ErrInvalidMethod
	}

	if err != nil {
		f.log.Error("Ошибка оплаты", logger.String("method", string(method)), logger.Error(err))
		f.mu.Lock()
		if f.state == StateSubmitting {
			f.state = StateSelectingMethod
		}
		f.errText = MsgPaymentFailed
		f.mu.Unlock()
		f.changed()
		return fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}
	return nil
}

func (f *Flow) submitPix(ctx context.Context) error {
	challenge, err := f.api.CreatePixPayment(ctx, f.orderID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.pix = challenge
	f.state = StateAwaitingPayment
	f.startPollLocked()
	f.mu.Unlock()

	f.log.Info("Ожидание оплаты Pix")
	f.changed()
	return nil
}

func (f *Flow) submitCash(ctx context.Context) error {
	if err := f.api.ProcessCashPayment(ctx, f.orderID); err != nil {
		return err
	}

	f.mu.Lock()
	f.state = StateTerminal
	closed := f.closed
	f.mu.Unlock()

	if !closed {
		f.nav.Push(f.orderPath())
	}
	f.changed()
	return nil
}

func (f *Flow) submitCard(ctx context.Context) error {
	initPoint, err := f.api.CreateCardPreference(ctx, f.orderID)
	if err != nil {
		return err
	}
	if initPoint == "" {
		return errors.New("шлюз не вернул адрес оплаты")
	}

	f.mu.Lock()
	f.state = StateRedirecting
	closed := f.closed
	f.mu.Unlock()

	if !closed {
		f.nav.Redirect(initPoint)
	}
	f.changed()
	return nil
}

// Back возвращает от ожидания Pix к выбору способа и останавливает опрос
func (f *Flow) Back() error {
	f.mu.Lock()
	if f.state != StateAwaitingPayment {
		f.mu.Unlock()
		return ErrInvalidState
	}
	f.stopPollLocked()
	f.pix = nil
	f.copied = false
	f.state = StateSelectingMethod
	f.mu.Unlock()

	f.changed()
	return nil
}

// CopyCode копирует код Pix и на время показывает подтверждение
func (f *Flow) CopyCode() error {
	f.mu.Lock()
	if f.pix == nil || f.pix.Code == "" {
		f.mu.Unlock()
		return ErrNoPaymentCode
	}
	code := f.pix.Code
	f.mu.Unlock()

	if f.clipboard != nil {
		if err := f.clipboard.WriteText(code); err != nil {
			return fmt.Errorf("ошибка при копировании кода: %w", err)
		}
	}

	f.mu.Lock()
	f.copied = true
	if f.copyTimer != nil {
		f.copyTimer.Stop()
	}
	// сработавший таймер Stop не отменяет; старое поколение сброс не выполнит
	f.copyGen++
	gen := f.copyGen
	f.copyTimer = time.AfterFunc(f.copyResetDelay, func() { f.resetCopied(gen) })
	f.mu.Unlock()

	f.changed()
	return nil
}

func (f *Flow) resetCopied(gen uint64) {
	f.mu.Lock()
	if !f.copied || gen != f.copyGen {
		f.mu.Unlock()
		return
	}
	f.copied = false
	f.mu.Unlock()
	f.changed()
}

// Simulate принудительно подтверждает оплату. Доступно только в сборке с тегом paymentsim.
func (f *Flow) Simulate(ctx context.Context) error {
	if !SimulationEnabled() {
		return ErrSimulationUnavailable
	}

	if err := f.api.SimulatePayment(ctx, f.orderID); err != nil {
		f.log.Error("Ошибка симуляции оплаты", logger.Error(err))
		return err
	}

	f.mu.Lock()
	f.stopPollLocked()
	f.confirmLocked()
	f.mu.Unlock()

	f.changed()
	return nil
}

// Close останавливает опрос и отложенные действия
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.stopPollLocked()
	if f.copyTimer != nil {
		f.copyTimer.Stop()
	}
	if f.redirectTmr != nil {
		f.redirectTmr.Stop()
	}
}

// confirmLocked фиксирует оплату и планирует переход к заказу
func (f *Flow) confirmLocked() {
	if f.closed || f.state == StateConfirmed || f.state == StateTerminal {
		return
	}
	f.state = StateConfirmed
	f.log.Info("Оплата подтверждена")
	f.redirectTmr = time.AfterFunc(f.redirectDelay, f.finish)
}

func (f *Flow) finish() {
	f.mu.Lock()
	if f.closed || f.state != StateConfirmed {
		f.mu.Unlock()
		return
	}
	f.state = StateTerminal
	f.mu.Unlock()

	f.nav.Push(f.orderPath())
	f.changed()
}

func (f *Flow) startPollLocked() {
	f.stopPollLocked()
	ctx, cancel := context.WithCancel(context.Background())
	f.stopPoll = cancel
	go f.poll(ctx)
}

func (f *Flow) stopPollLocked() {
	if f.stopPoll != nil {
		f.stopPoll()
		f.stopPoll = nil
	}
}

// poll проверяет статус оплаты до подтверждения или остановки
func (f *Flow) poll(ctx context.Context) {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		order, err := f.api.GetOrder(ctx, f.orderID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			metrics.PaymentPollsTotal.WithLabelValues("error").Inc()
			f.log.Warning("Ошибка при проверке статуса оплаты", logger.Error(err))
			continue
		}
		if order.PaymentStatus != models.PaymentStatusPaid {
			metrics.PaymentPollsTotal.WithLabelValues("pending").Inc()
			continue
		}
		metrics.PaymentPollsTotal.WithLabelValues("paid").Inc()

		f.mu.Lock()
		if ctx.Err() != nil || f.state != StateAwaitingPayment {
			f.mu.Unlock()
			return
		}
		f.stopPollLocked()
		f.order = order
		f.confirmLocked()
		f.mu.Unlock()

		f.changed()
		return
	}
}

func (f *Flow) changed() {
	f.mu.Lock()
	handler := f.handler
	view := f.viewLocked()
	f.mu.Unlock()

	if handler != nil {
		handler(view)
	}
}

func (f *Flow) viewLocked() View {
	return View{
		OrderID: f.orderID,
		State:   f.state,
		Method:  f.method,
		Order:   f.order,
		Pix:     f.pix,
		Copied:  f.copied,
		Error:   f.errText,
	}
}
