package socketio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffWithoutJitter(t *testing.T) {
	b := &Backoff{Min: time.Second, Max: 5 * time.Second, Factor: 2}

	assert.Equal(t, time.Second, b.Duration())
	assert.Equal(t, 2*time.Second, b.Duration())
	assert.Equal(t, 4*time.Second, b.Duration())
	assert.Equal(t, 5*time.Second, b.Duration())
	assert.Equal(t, 5*time.Second, b.Duration())
	assert.Equal(t, 5, b.Attempts())

	b.Reset()
	assert.Equal(t, 0, b.Attempts())
	assert.Equal(t, time.Second, b.Duration())
}

func TestBackoffJitter(t *testing.T) {
	b := DefaultBackoff()

	// 0.2 -> floor(2) четное, задержка уменьшается на 10%
	b.random = func() float64 { return 0.2 }
	assert.Equal(t, 900*time.Millisecond, b.Duration())

	// 0.1 -> floor(1) нечетное, задержка увеличивается на 5%
	b.Reset()
	b.random = func() float64 { return 0.1 }
	assert.Equal(t, 1050*time.Millisecond, b.Duration())
}

func TestDefaultBackoffBounds(t *testing.T) {
	b := DefaultBackoff()
	for i := 0; i < 50; i++ {
		d := b.Duration()
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}
