// Package sound - звуковое оповещение о новых заказах
package sound

import (
	"context"
	_ "embed"
	"os"
	"sync"

	"zefood-console/internal/logger"
)

//go:embed assets/notification.wav
var fallbackWAV []byte

const (
	DefaultVolume    = 0.7
	DefaultLoopCount = 3
)

// Options - параметры воспроизведения. Volume == nil означает громкость по умолчанию,
// ноль - без звука. Нулевой LoopCount заменяется значением по умолчанию.
type Options struct {
	Volume    *float64
	Loop      bool
	LoopCount int
}

// Volume задает громкость для Options
func Volume(v float64) *float64 {
	return &v
}

// Clip - звук, готовый к воспроизведению
type Clip struct {
	Name string
	// Path задан, если звук загружен из файла
	Path string
	Data []byte
}

// Fallback возвращает встроенный звук
func Fallback() Clip {
	return Clip{Name: "notification.wav", Data: fallbackWAV}
}

// Output воспроизводит звук один раз и ждет окончания
type Output interface {
	Play(ctx context.Context, clip Clip, volume float64) error
}

// Player проигрывает звук оповещения с повторами
type Player struct {
	out  Output
	clip Clip
	log  logger.ILogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPlayer загружает звук из assetPath; если файл недоступен, используется встроенный
func NewPlayer(assetPath string, out Output, log logger.ILogger) *Player {
	if log == nil {
		log = logger.NewNop()
	}
	return &Player{
		out:  out,
		clip: loadClip(assetPath, log),
		log:  log,
	}
}

func loadClip(path string, log logger.ILogger) Clip {
	if path == "" {
		return Fallback()
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		log.Warning("Не удалось загрузить звук оповещения, используется встроенный",
			logger.String("path", path), logger.Any("error", err))
		return Fallback()
	}
	return Clip{Name: path, Path: path, Data: data}
}

// Clip возвращает загруженный звук
func (p *Player) Clip() Clip {
	return p.clip
}

// Play начинает воспроизведение, прерывая предыдущее.
// С Loop звук повторяется LoopCount раз.
func (p *Player) Play(opts Options) {
	volume := DefaultVolume
	if opts.Volume != nil {
		volume = *opts.Volume
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	if opts.LoopCount <= 0 {
		opts.LoopCount = DefaultLoopCount
	}
	times := 1
	if opts.Loop {
		times = opts.LoopCount
	}
	if volume == 0 {
		times = 0
	}

	p.mu.Lock()
	p.stopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go func() {
		defer close(done)
		for i := 0; i < times; i++ {
			if ctx.Err() != nil {
				return
			}
			if err := p.out.Play(ctx, p.clip, volume); err != nil {
				if ctx.Err() == nil {
					p.log.Warning("Не удалось воспроизвести звук оповещения", logger.Error(err))
				}
				return
			}
		}
	}()
}

// Stop прерывает воспроизведение и повторы
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Wait ждет окончания текущего воспроизведения
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Player) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}
