package audio

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/julianstephens/murmur/internal/logger"
)

// Player owns the single playback stream. Play replaces whatever is playing;
// when it fails nothing is left playing.
type Player interface {
	Play(path string) error
	Pause() error
	// Done is closed when the current stream ends, by itself or by Pause.
	Done() <-chan struct{}
}

// FFplayPlayer plays files with one ffplay process at a time.
type FFplayPlayer struct {
	Path string

	command func(name string, args ...string) *exec.Cmd

	mu      sync.Mutex
	current *stream
}

type stream struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func NewFFplayPlayer(path string) *FFplayPlayer {
	return &FFplayPlayer{
		Path:    path,
		command: exec.Command,
	}
}

func PlayArgs(path string) []string {
	return []string{"-nodisp", "-autoexit", "-hide_banner", "-loglevel", "error", path}
}

func (p *FFplayPlayer) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	cmd := p.command(p.Path, PlayArgs(path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.Path, err)
	}

	s := &stream{cmd: cmd, done: make(chan struct{})}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("Playback ended", "path", path, "error", err)
		}
		close(s.done)
	}()
	p.current = s
	return nil
}

// Pause stops the current stream. It is a no-op when nothing is playing.
func (p *FFplayPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *FFplayPlayer) stopLocked() {
	if p.current == nil {
		return
	}
	select {
	case <-p.current.done:
	default:
		_ = p.current.cmd.Process.Kill()
		<-p.current.done
	}
	p.current = nil
}

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

func (p *FFplayPlayer) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return closedChan
	}
	return p.current.done
}
