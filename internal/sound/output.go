package sound

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// BellOutput подает звуковой сигнал терминала
type BellOutput struct {
	W io.Writer
}

func (b BellOutput) Play(ctx context.Context, _ Clip, _ float64) error {
	w := b.W
	if w == nil {
		w = os.Stdout
	}
	_, err := io.WriteString(w, "\a")
	return err
}

// CommandOutput проигрывает звук внешней программой (afplay, paplay, aplay...).
// В аргументах {volume} заменяется на громкость 0-100; путь к файлу добавляется последним.
type CommandOutput struct {
	Command string
	Args    []string

	mu      sync.Mutex
	tmpPath string
}

// NewCommandOutput разбирает строку вида "paplay --volume={volume}"
func NewCommandOutput(commandLine string) *CommandOutput {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	return &CommandOutput{Command: fields[0], Args: fields[1:]}
}

func (c *CommandOutput) Play(ctx context.Context, clip Clip, volume float64) error {
	path, err := c.file(clip)
	if err != nil {
		return err
	}

	percent := strconv.Itoa(int(volume * 100))
	args := make([]string, 0, len(c.Args)+1)
	for _, a := range c.Args {
		args = append(args, strings.ReplaceAll(a, "{volume}", percent))
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, c.Command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", c.Command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// file возвращает путь к звуку; встроенный звук один раз сохраняется во временный файл
func (c *CommandOutput) file(clip Clip) (string, error) {
	if clip.Path != "" {
		return clip.Path, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tmpPath != "" {
		return c.tmpPath, nil
	}

	f, err := os.CreateTemp("", "zefood-*"+filepath.Ext(clip.Name))
	if err != nil {
		return "", fmt.Errorf("ошибка при создании временного файла: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(clip.Data); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("ошибка при записи звука: %w", err)
	}
	c.tmpPath = f.Name()
	return c.tmpPath, nil
}

// Close удаляет временный файл
func (c *CommandOutput) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tmpPath == "" {
		return nil
	}
	err := os.Remove(c.tmpPath)
	c.tmpPath = ""
	return err
}

// NewOutput выбирает вывод: внешняя программа, если задана, иначе сигнал терминала
func NewOutput(commandLine string) Output {
	if out := NewCommandOutput(commandLine); out != nil {
		return out
	}
	return BellOutput{}
}
