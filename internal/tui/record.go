package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/murmur/internal/models"
)

// Stopper finishes the recording already in progress.
type Stopper interface {
	StopRecording(ctx context.Context) (models.VoiceNote, error)
}

type savedMsg struct {
	note models.VoiceNote
	err  error
}

// RecordModel shows a running recording and stops it on request. The
// recording must already be started.
type RecordModel struct {
	ctx      context.Context
	stopper  Stopper
	path     string
	watch    stopwatch.Model
	keys     KeyMap
	help     help.Model
	stopping bool
	note     models.VoiceNote
	err      error
	done     bool
}

func NewRecordModel(ctx context.Context, stopper Stopper, path string) RecordModel {
	return RecordModel{
		ctx:     ctx,
		stopper: stopper,
		path:    path,
		watch:   stopwatch.NewWithInterval(time.Second),
		keys:    RecordKeyMap(),
		help:    help.New(),
	}
}

func (m RecordModel) Init() tea.Cmd {
	return m.watch.Init()
}

func (m RecordModel) stop() tea.Cmd {
	return func() tea.Msg {
		note, err := m.stopper.StopRecording(m.ctx)
		return savedMsg{note: note, err: err}
	}
}

func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Stop), key.Matches(msg, m.keys.Quit):
			if m.stopping {
				return m, nil
			}
			m.stopping = true
			return m, tea.Batch(m.watch.Stop(), m.stop())
		}
	case savedMsg:
		m.note, m.err, m.done = msg.note, msg.err, true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.watch, cmd = m.watch.Update(msg)
	return m, cmd
}

func (m RecordModel) View() string {
	if m.done {
		return ""
	}
	status := recordingStyle.Render("● Recording")
	if m.stopping {
		status = mutedStyle.Render("Saving...")
	}
	return docStyle.Render(fmt.Sprintf("%s  %s\n%s\n\n%s",
		status, m.watch.View(), mutedStyle.Render(m.path), m.help.View(m.keys)))
}

// Result is the saved note, or the error from stopping.
func (m RecordModel) Result() (models.VoiceNote, error) {
	return m.note, m.err
}
