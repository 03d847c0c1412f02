package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/logger"
)

// Recorder opens recording sessions that write to a file.
type Recorder interface {
	Start(ctx context.Context, path string, s Settings) (Session, error)
}

// Session is an open recording. Stop finalizes the file.
type Session interface {
	Stop() error
}

// FFmpegRecorder captures from the system input with ffmpeg.
type FFmpegRecorder struct {
	Path        string
	InputFormat string
	InputDevice string
	StartWindow time.Duration
	StopGrace   time.Duration

	command func(name string, args ...string) *exec.Cmd
}

func NewFFmpegRecorder(path, inputFormat, inputDevice string) *FFmpegRecorder {
	return &FFmpegRecorder{
		Path:        path,
		InputFormat: inputFormat,
		InputDevice: inputDevice,
		StartWindow: constants.RecorderStartWindow,
		StopGrace:   constants.RecorderStopGrace,
		command:     exec.Command,
	}
}

// RecordArgs returns the ffmpeg arguments that capture from the given input into path.
func RecordArgs(inputFormat, inputDevice, path string, s Settings) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	if inputFormat != "" {
		args = append(args, "-f", inputFormat)
	}
	args = append(args, "-i", inputDevice)
	args = append(args, s.encodeArgs()...)
	return append(args, path)
}

// Start launches ffmpeg and returns once it has stayed up for the start
// window. A process that exits before then means the device could not be opened.
func (r *FFmpegRecorder) Start(ctx context.Context, path string, s Settings) (Session, error) {
	cmd := r.command(r.Path, RecordArgs(r.InputFormat, r.InputDevice, path, s)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open recorder stdin: %w", err)
	}
	stderr := &syncBuffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", r.Path, err)
	}

	sess := &ffmpegSession{
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		exited: make(chan struct{}),
		grace:  r.StopGrace,
	}
	go sess.wait()

	timer := time.NewTimer(r.StartWindow)
	defer timer.Stop()

	select {
	case <-sess.exited:
		return nil, fmt.Errorf("recorder exited during startup: %s", sess.failure())
	case <-ctx.Done():
		sess.kill()
		return nil, ctx.Err()
	case <-timer.C:
	}

	logger.Debug("Recorder started", "path", path, "pid", cmd.Process.Pid)
	return sess, nil
}

type ffmpegSession struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *syncBuffer
	exited chan struct{}
	err    error
	grace  time.Duration

	stopOnce sync.Once
	stopErr  error
}

func (s *ffmpegSession) wait() {
	s.err = s.cmd.Wait()
	close(s.exited)
}

func (s *ffmpegSession) failure() string {
	msg := strings.TrimSpace(s.stderr.String())
	if msg == "" && s.err != nil {
		msg = s.err.Error()
	}
	if msg == "" {
		msg = "no output"
	}
	return msg
}

func (s *ffmpegSession) kill() {
	_ = s.cmd.Process.Kill()
	<-s.exited
}

// Stop asks ffmpeg to finish with "q" and kills it if it has not exited
// within the grace period.
func (s *ffmpegSession) Stop() error {
	s.stopOnce.Do(func() {
		select {
		case <-s.exited:
			s.stopErr = fmt.Errorf("recorder stopped unexpectedly: %s", s.failure())
			return
		default:
		}

		_, _ = io.WriteString(s.stdin, "q\n")
		_ = s.stdin.Close()

		timer := time.NewTimer(s.grace)
		defer timer.Stop()

		select {
		case <-s.exited:
		case <-timer.C:
			logger.Warn("Recorder did not exit in time, killing", "pid", s.cmd.Process.Pid)
			s.kill()
		}
	})
	return s.stopErr
}

// syncBuffer is a bytes.Buffer safe for the exec copy goroutine and readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
