package sound

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOutput struct {
	mu      sync.Mutex
	plays   int
	volumes []float64
	clips   []string
	block   chan struct{}
	err     error
}

func (r *recordingOutput) Play(ctx context.Context, clip Clip, volume float64) error {
	r.mu.Lock()
	r.plays++
	r.volumes = append(r.volumes, volume)
	r.clips = append(r.clips, clip.Name)
	block, err := r.block, r.err
	r.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (r *recordingOutput) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plays
}

func TestFallbackWhenAssetMissing(t *testing.T) {
	p := NewPlayer(filepath.Join(t.TempDir(), "missing.mp3"), &recordingOutput{}, nil)
	clip := p.Clip()
	assert.Empty(t, clip.Path)
	require.True(t, len(clip.Data) > 12)
	assert.Equal(t, "RIFF", string(clip.Data[:4]))
	assert.Equal(t, "WAVE", string(clip.Data[8:12]))
}

func TestLoadsAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notification.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3fake"), 0o644))

	p := NewPlayer(path, &recordingOutput{}, nil)
	assert.Equal(t, path, p.Clip().Path)
	assert.Equal(t, []byte("ID3fake"), p.Clip().Data)
}

func TestPlayOnceWithDefaults(t *testing.T) {
	out := &recordingOutput{}
	p := NewPlayer("", out, nil)

	p.Play(Options{})
	p.Wait()

	assert.Equal(t, 1, out.count())
	assert.Equal(t, []float64{DefaultVolume}, out.volumes)
}

func TestPlayLoopsLoopCountTimes(t *testing.T) {
	out := &recordingOutput{}
	p := NewPlayer("", out, nil)

	p.Play(Options{Volume: Volume(0.8), Loop: true, LoopCount: 3})
	p.Wait()

	assert.Equal(t, 3, out.count())
	assert.Equal(t, []float64{0.8, 0.8, 0.8}, out.volumes)
}

func TestMutedVolumeIsKept(t *testing.T) {
	out := &recordingOutput{block: make(chan struct{})}
	p := NewPlayer("", out, nil)

	p.Play(Options{Loop: true, LoopCount: 5})
	require.Eventually(t, func() bool { return out.count() == 1 }, time.Second, time.Millisecond)

	// без звука: предыдущее воспроизведение прерывается, новое не начинается
	p.Play(Options{Volume: Volume(0), Loop: true})
	p.Wait()
	assert.Equal(t, 1, out.count())
	assert.Equal(t, []float64{DefaultVolume}, out.volumes)
}

func TestVolumeIsClamped(t *testing.T) {
	out := &recordingOutput{}
	p := NewPlayer("", out, nil)

	p.Play(Options{Volume: Volume(3)})
	p.Wait()
	assert.Equal(t, []float64{1}, out.volumes)
}

func TestStopHaltsLooping(t *testing.T) {
	out := &recordingOutput{block: make(chan struct{})}
	p := NewPlayer("", out, nil)

	p.Play(Options{Loop: true, LoopCount: 5})
	require.Eventually(t, func() bool { return out.count() == 1 }, time.Second, time.Millisecond)

	p.Stop()
	p.Wait()
	assert.Equal(t, 1, out.count())
}

func TestNewPlayRestarts(t *testing.T) {
	out := &recordingOutput{block: make(chan struct{})}
	p := NewPlayer("", out, nil)

	p.Play(Options{Loop: true, LoopCount: 5})
	require.Eventually(t, func() bool { return out.count() == 1 }, time.Second, time.Millisecond)

	p.Play(Options{})
	require.Eventually(t, func() bool { return out.count() == 2 }, time.Second, time.Millisecond)

	close(out.block)
	p.Wait()
	assert.Equal(t, 2, out.count())
}

func TestOutputErrorStopsLoop(t *testing.T) {
	out := &recordingOutput{err: errors.New("no audio device")}
	p := NewPlayer("", out, nil)

	p.Play(Options{Loop: true})
	p.Wait()
	assert.Equal(t, 1, out.count())
}

func TestBellOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BellOutput{W: &buf}.Play(context.Background(), Fallback(), 1))
	assert.Equal(t, "\a", buf.String())
}

func TestNewOutput(t *testing.T) {
	assert.IsType(t, BellOutput{}, NewOutput(""))

	out, ok := NewOutput("paplay --volume={volume}").(*CommandOutput)
	require.True(t, ok)
	assert.Equal(t, "paplay", out.Command)
	assert.Equal(t, []string{"--volume={volume}"}, out.Args)
}

func TestCommandOutputWritesFallbackOnce(t *testing.T) {
	out := &CommandOutput{Command: "true"}
	path, err := out.file(Fallback())
	require.NoError(t, err)
	again, err := out.file(Fallback())
	require.NoError(t, err)
	assert.Equal(t, path, again)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Fallback().Data, data)

	require.NoError(t, out.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
