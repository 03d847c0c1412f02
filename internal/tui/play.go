package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/murmur/internal/models"
)

// Playback controls the single playback stream.
type Playback interface {
	TogglePlayback(ctx context.Context, id string) (bool, error)
	PlaybackFinished(id string)
}

type finishedMsg struct{}

type pausedMsg struct {
	err error
}

// PlayModel follows one playing note until its stream ends or the user
// pauses it. Playback must already be started.
type PlayModel struct {
	ctx      context.Context
	playback Playback
	note     models.VoiceNote
	ended    <-chan struct{}
	watch    stopwatch.Model
	keys     KeyMap
	help     help.Model
	finished bool
	err      error
}

func NewPlayModel(ctx context.Context, playback Playback, note models.VoiceNote, ended <-chan struct{}) PlayModel {
	return PlayModel{
		ctx:      ctx,
		playback: playback,
		note:     note,
		ended:    ended,
		watch:    stopwatch.NewWithInterval(time.Second),
		keys:     PlayKeyMap(),
		help:     help.New(),
	}
}

func (m PlayModel) Init() tea.Cmd {
	return tea.Batch(m.watch.Init(), m.waitForEnd())
}

func (m PlayModel) waitForEnd() tea.Cmd {
	ended := m.ended
	return func() tea.Msg {
		<-ended
		return finishedMsg{}
	}
}

func (m PlayModel) pause() tea.Cmd {
	return func() tea.Msg {
		_, err := m.playback.TogglePlayback(m.ctx, m.note.ID)
		return pausedMsg{err: err}
	}
}

func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Stop), key.Matches(msg, m.keys.Quit):
			if m.finished {
				return m, nil
			}
			m.finished = true
			return m, m.pause()
		}
	case pausedMsg:
		m.err = msg.err
		return m, tea.Quit
	case finishedMsg:
		if !m.finished {
			m.finished = true
			m.playback.PlaybackFinished(m.note.ID)
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.watch, cmd = m.watch.Update(msg)
	return m, cmd
}

func (m PlayModel) View() string {
	if m.finished {
		return ""
	}
	return docStyle.Render(fmt.Sprintf("%s %s  %s\n\n%s",
		playingStyle.Render("▶ Playing"), filepath.Base(m.note.Path), m.watch.View(), m.help.View(m.keys)))
}

func (m PlayModel) Err() error {
	return m.err
}
