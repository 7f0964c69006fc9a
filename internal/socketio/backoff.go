package socketio

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Backoff повторяет политику переподключения socket.io-client по умолчанию:
// задержка 1с, максимум 5с, множитель 2, разброс 0.5.
type Backoff struct {
	Min    time.Duration
	Max    time.Duration
	Factor float64
	Jitter float64

	mu       sync.Mutex
	attempts int
	random   func() float64
}

// DefaultBackoff возвращает политику по умолчанию
func DefaultBackoff() *Backoff {
	return &Backoff{
		Min:    time.Second,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: 0.5,
	}
}

// Duration возвращает задержку перед следующей попыткой
func (b *Backoff) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp := b.attempts
	if exp > 32 {
		exp = 32
	}
	b.attempts++

	factor := b.Factor
	if factor < 1 {
		factor = 1
	}
	ms := float64(b.Min) * math.Pow(factor, float64(exp))

	if b.Jitter > 0 {
		rnd := rand.Float64
		if b.random != nil {
			rnd = b.random
		}
		r := rnd()
		deviation := math.Floor(r * b.Jitter * ms)
		if int(math.Floor(r*10))&1 == 0 {
			ms -= deviation
		} else {
			ms += deviation
		}
	}

	if limit := float64(b.Max); b.Max > 0 && ms > limit {
		ms = limit
	}
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms)
}

// Attempts - сколько задержек выдано с последнего сброса
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Reset сбрасывает счетчик после успешного подключения
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
}
