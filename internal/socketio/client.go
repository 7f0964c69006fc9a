package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"zefood-console/internal/logger"
	"zefood-console/internal/metrics"

	"github.com/gorilla/websocket"
)

// Причины отключения, как их называет socket.io-client
const (
	ReasonClientDisconnect = "io client disconnect"
	ReasonServerDisconnect = "io server disconnect"
	ReasonTransportClose   = "transport close"
	ReasonTransportError   = "transport error"
	ReasonPingTimeout      = "ping timeout"
)

// ErrNotConnected - попытка отправить событие без активного подключения
var ErrNotConnected = errors.New("socket is not connected")

// ConnectError - сервер отклонил подключение к пространству имен (например, неверный токен).
// После такой ошибки клиент не переподключается сам.
type ConnectError struct {
	Message string
}

func (e *ConnectError) Error() string {
	return e.Message
}

// Handler получает первый аргумент события (или null)
type Handler func(data json.RawMessage)

// Options - параметры подключения
type Options struct {
	URL       string // http(s)://host[:port] или ws(s)://...
	Path      string // по умолчанию /socket.io/
	Namespace string // по умолчанию "/"
	// Auth вызывается при каждом подключении, чтобы взять актуальный токен
	Auth    func() map[string]interface{}
	Backoff *Backoff
	Dialer  *websocket.Dialer
	Logger  logger.ILogger
}

// Client - клиент Socket.IO v5 поверх WebSocket с автоматическим переподключением.
// Обработчики вызываются последовательно из горутины чтения.
type Client struct {
	url       string
	namespace string
	auth      func() map[string]interface{}
	backoff   *Backoff
	dialer    *websocket.Dialer
	log       logger.ILogger

	mu             sync.RWMutex
	handlers       map[string][]Handler
	onConnect      []func()
	onDisconnect   []func(reason string)
	onConnectError []func(err error)
	conn           *websocket.Conn
	connected      bool
	sid            string
	started        bool
	closed         bool
	cancel         context.CancelFunc
	done           chan struct{}

	writeMu sync.Mutex
}

// NewClient создает клиента; подключение начинается в Connect
func NewClient(opts Options) (*Client, error) {
	wsURL, err := engineURL(opts.URL, opts.Path)
	if err != nil {
		return nil, err
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}
	if !strings.HasPrefix(namespace, "/") {
		namespace = "/" + namespace
	}

	backoff := opts.Backoff
	if backoff == nil {
		backoff = DefaultBackoff()
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		url:       wsURL,
		namespace: namespace,
		auth:      opts.Auth,
		backoff:   backoff,
		dialer:    dialer,
		log:       log.With(logger.String("namespace", namespace)),
		handlers:  make(map[string][]Handler),
		done:      make(chan struct{}),
	}, nil
}

// engineURL строит адрес транспорта websocket Engine.IO
func engineURL(raw, path string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("неверный адрес сокета %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("неподдерживаемая схема адреса сокета: %q", u.Scheme)
	}

	if path == "" {
		path = "/socket.io/"
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	u.Path = strings.TrimRight(u.Path, "/") + path

	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// On регистрирует обработчик события
func (c *Client) On(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// OnConnect вызывается после каждого подключения к пространству имен (включая переподключения)
func (c *Client) OnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

// OnDisconnect вызывается при потере подключения
func (c *Client) OnDisconnect(fn func(reason string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = append(c.onDisconnect, fn)
}

// OnConnectError вызывается при неудачной попытке подключения
func (c *Client) OnConnectError(fn func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnectError = append(c.onConnectError, fn)
}

// Connect запускает подключение в фоне и сразу возвращается.
// Ошибки подключения приходят в OnConnectError, переподключение автоматическое.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("socket is closed")
	}
	if c.started {
		return nil
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(runCtx)
	return nil
}

// Connected - активно ли подключение к пространству имен
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// ID возвращает идентификатор сокета на сервере
func (c *Client) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sid
}

// Done закрывается, когда цикл подключения завершен
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Emit отправляет событие. Без подключения возвращает ErrNotConnected.
func (c *Client) Emit(event string, args ...interface{}) error {
	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	p, err := eventPacket(c.namespace, event, args...)
	if err != nil {
		return err
	}
	if err := c.write(conn, encodePacket(p)); err != nil {
		return fmt.Errorf("ошибка при отправке события %s: %w", event, err)
	}
	return nil
}

// Close отключает сокет и останавливает переподключение. Безопасно вызывать несколько раз.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn, connected, cancel, started := c.conn, c.connected, c.cancel, c.started
	c.mu.Unlock()

	if connected && conn != nil {
		// Сообщаем серверу об уходе из пространства имен
		if err := c.write(conn, encodePacket(Packet{Type: packetDisconnect, Namespace: c.namespace})); err != nil {
			c.log.Debug("Не удалось отправить пакет отключения", logger.Error(err))
		}
	}
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	if !started {
		close(c.done)
	}
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) write(conn *websocket.Conn, msg string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

// run - цикл подключения с переподключением по политике Backoff
func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	for {
		reason, err := c.session(ctx)
		if ctx.Err() != nil || c.isClosed() {
			return
		}
		if err != nil {
			c.log.Warning("Ошибка подключения к сокету", logger.Error(err))
			c.fireConnectError(err)

			var rejected *ConnectError
			if errors.As(err, &rejected) {
				return
			}
		}
		if reason == ReasonServerDisconnect {
			// Сервер сам закрыл пространство имен - клиент по умолчанию не переподключается
			c.log.Info("Сервер отключил сокет, переподключение не выполняется")
			return
		}

		delay := c.backoff.Duration()
		metrics.SocketReconnectsTotal.WithLabelValues(c.namespace).Inc()
		c.log.Debug("Переподключение к сокету", logger.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session выполняет одно подключение: рукопожатие, вход в пространство имен и чтение.
// Возвращает причину отключения (если подключение состоялось) или ошибку подключения.
func (c *Client) session(ctx context.Context) (string, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("websocket dial: %w", err)
	}

	// Закрываем соединение при отмене контекста, чтобы прервать чтение
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	open, err := c.handshake(conn)
	if err != nil {
		c.dropConn(conn)
		return "", err
	}

	pingWindow := time.Duration(open.PingInterval+open.PingTimeout) * time.Millisecond
	if pingWindow <= 0 {
		pingWindow = 45 * time.Second
	}

	reason, rejected := c.readLoop(conn, pingWindow)

	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.conn = nil
	closedByClient := c.closed
	c.mu.Unlock()
	conn.Close()

	if closedByClient {
		reason = ReasonClientDisconnect
	}
	if rejected != nil {
		return reason, rejected
	}
	if wasConnected {
		c.fireDisconnect(reason)
		return reason, nil
	}
	return reason, fmt.Errorf("соединение закрыто до подключения: %s", reason)
}

func (c *Client) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

// handshake читает пакет открытия Engine.IO и отправляет вход в пространство имен
func (c *Client) handshake(conn *websocket.Conn) (openPayload, error) {
	var open openPayload

	conn.SetReadDeadline(time.Now().Add(20 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return open, fmt.Errorf("ошибка чтения пакета открытия: %w", err)
	}
	if len(msg) == 0 || msg[0] != engineOpen {
		return open, fmt.Errorf("ожидался пакет открытия, получено %q", string(msg))
	}
	if err := json.Unmarshal(msg[1:], &open); err != nil {
		return open, fmt.Errorf("ошибка разбора пакета открытия: %w", err)
	}

	connect := Packet{Type: packetConnect, Namespace: c.namespace}
	if c.auth != nil {
		if auth := c.auth(); auth != nil {
			data, err := json.Marshal(auth)
			if err != nil {
				return open, fmt.Errorf("ошибка кодирования auth: %w", err)
			}
			connect.Data = data
		}
	}
	if err := c.write(conn, encodePacket(connect)); err != nil {
		return open, fmt.Errorf("ошибка отправки connect: %w", err)
	}
	return open, nil
}

// readLoop читает сообщения до разрыва соединения и возвращает причину
func (c *Client) readLoop(conn *websocket.Conn, pingWindow time.Duration) (string, *ConnectError) {
	for {
		conn.SetReadDeadline(time.Now().Add(pingWindow))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			var netErr interface{ Timeout() bool }
			if errors.As(err, &netErr) && netErr.Timeout() {
				return ReasonPingTimeout, nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ReasonTransportClose, nil
			}
			return ReasonTransportError, nil
		}

		msg := string(raw)
		if msg == "" {
			continue
		}

		switch msg[0] {
		case enginePing:
			if err := c.write(conn, "3"+msg[1:]); err != nil {
				return ReasonTransportError, nil
			}
		case engineClose:
			return ReasonTransportClose, nil
		case engineNoop, enginePong:
		case engineMessage:
			if reason, rejected, stop := c.handlePacket(msg); stop {
				return reason, rejected
			}
		default:
			c.log.Debug("Неизвестный пакет Engine.IO", logger.String("packet", msg))
		}
	}
}

// handlePacket обрабатывает пакет Socket.IO; stop=true завершает сессию
func (c *Client) handlePacket(msg string) (string, *ConnectError, bool) {
	p, err := decodePacket(msg)
	if err != nil {
		c.log.Warning("Ошибка разбора пакета", logger.Error(err))
		return "", nil, false
	}
	if p.Namespace != c.namespace {
		return "", nil, false
	}

	switch p.Type {
	case packetConnect:
		var payload struct {
			SID string `json:"sid"`
		}
		if len(p.Data) > 0 {
			json.Unmarshal(p.Data, &payload)
		}
		c.mu.Lock()
		c.connected = true
		c.sid = payload.SID
		c.mu.Unlock()
		c.backoff.Reset()
		c.log.Info("Сокет подключен", logger.String("sid", payload.SID))
		c.fireConnect()

	case packetConnectError:
		message := connectErrorMessage(p.Data)
		return message, &ConnectError{Message: message}, true

	case packetDisconnect:
		return ReasonServerDisconnect, nil, true

	case packetEvent:
		name, args, err := parseEvent(p.Data)
		if err != nil {
			c.log.Warning("Ошибка разбора события", logger.Error(err))
			return "", nil, false
		}
		metrics.SocketEventsTotal.WithLabelValues(c.namespace, name).Inc()
		var first json.RawMessage
		if len(args) > 0 {
			first = args[0]
		}
		c.dispatch(name, first)

	case packetAck:
		// подтверждения не используются
	}
	return "", nil, false
}

func (c *Client) dispatch(event string, data json.RawMessage) {
	c.mu.RLock()
	handlers := append([]Handler(nil), c.handlers[event]...)
	c.mu.RUnlock()

	for _, h := range handlers {
		h(data)
	}
}

func (c *Client) fireConnect() {
	c.mu.RLock()
	handlers := append([]func(){}, c.onConnect...)
	c.mu.RUnlock()
	for _, fn := range handlers {
		fn()
	}
}

func (c *Client) fireDisconnect(reason string) {
	c.log.Info("Сокет отключен", logger.String("reason", reason))
	c.mu.RLock()
	handlers := append([]func(string){}, c.onDisconnect...)
	c.mu.RUnlock()
	for _, fn := range handlers {
		fn(reason)
	}
}

func (c *Client) fireConnectError(err error) {
	c.mu.RLock()
	handlers := append([]func(error){}, c.onConnectError...)
	c.mu.RUnlock()
	for _, fn := range handlers {
		fn(err)
	}
}
