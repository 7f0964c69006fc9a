// Package sockettest содержит поддельный сокет для тестов потребителей socketio.Client
package sockettest

import (
	"context"
	"encoding/json"
	"sync"

	"zefood-console/internal/socketio"
)

// Emit - отправленное событие
type Emit struct {
	Event string
	Args  []interface{}
}

// Socket записывает отправленные события и позволяет имитировать сервер
type Socket struct {
	mu           sync.Mutex
	handlers     map[string][]socketio.Handler
	onConnect    []func()
	onDisconnect []func(reason string)
	onError      []func(err error)
	emits        []Emit
	connected    bool
	connectCalls int
	closed       bool
	EmitErr      error
}

// New создает отключенный сокет
func New() *Socket {
	return &Socket{handlers: make(map[string][]socketio.Handler)}
}

func (s *Socket) On(event string, h socketio.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], h)
}

func (s *Socket) OnConnect(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnect = append(s.onConnect, fn)
}

func (s *Socket) OnDisconnect(fn func(reason string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDisconnect = append(s.onDisconnect, fn)
}

func (s *Socket) OnConnectError(fn func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = append(s.onError, fn)
}

// Connect только отмечает вызов; подключение имитирует TriggerConnect
func (s *Socket) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectCalls++
	return nil
}

func (s *Socket) Emit(event string, args ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return socketio.ErrNotConnected
	}
	if s.EmitErr != nil {
		return s.EmitErr
	}
	s.emits = append(s.emits, Emit{Event: event, Args: args})
	return nil
}

func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Close закрывает сокет; если он был подключен, вызывает обработчики отключения
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	wasConnected := s.connected
	s.connected = false
	handlers := append([]func(string){}, s.onDisconnect...)
	s.mu.Unlock()

	if wasConnected {
		for _, fn := range handlers {
			fn(socketio.ReasonClientDisconnect)
		}
	}
	return nil
}

// TriggerConnect имитирует успешное подключение
func (s *Socket) TriggerConnect() {
	s.mu.Lock()
	s.connected = true
	handlers := append([]func(){}, s.onConnect...)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// TriggerDisconnect имитирует потерю подключения
func (s *Socket) TriggerDisconnect(reason string) {
	s.mu.Lock()
	s.connected = false
	handlers := append([]func(string){}, s.onDisconnect...)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(reason)
	}
}

// TriggerConnectError имитирует отказ в подключении
func (s *Socket) TriggerConnectError(err error) {
	s.mu.Lock()
	handlers := append([]func(error){}, s.onError...)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(err)
	}
}

// Trigger доставляет событие сервера; payload кодируется в JSON
func (s *Socket) Trigger(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	s.TriggerRaw(event, data)
}

// TriggerRaw доставляет событие с готовым JSON
func (s *Socket) TriggerRaw(event string, data json.RawMessage) {
	s.mu.Lock()
	handlers := append([]socketio.Handler(nil), s.handlers[event]...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
}

// Emits возвращает копию отправленных событий
func (s *Socket) Emits() []Emit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Emit(nil), s.emits...)
}

// EmitsOf возвращает отправленные события с указанным именем
func (s *Socket) EmitsOf(event string) []Emit {
	var out []Emit
	for _, e := range s.Emits() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (s *Socket) ConnectCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectCalls
}

func (s *Socket) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
