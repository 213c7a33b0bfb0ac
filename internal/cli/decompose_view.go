package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/alexanderramin/reqplan/internal/progress"
	"github.com/alexanderramin/reqplan/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errStreamCancelled = errors.New("cancelled")

type stateMsg progress.State

type streamDoneMsg struct {
	state progress.State
	err   error
}

// streamFeed is the channel pair a running stream reports through. updates
// is closed before the single result is sent.
type streamFeed struct {
	updates <-chan progress.State
	result  <-chan streamDoneMsg
}

func (f streamFeed) wait() tea.Cmd {
	return func() tea.Msg {
		if s, ok := <-f.updates; ok {
			return stateMsg(s)
		}
		return <-f.result
	}
}

// startStream runs the decomposition in the background. The stream stops
// when ctx is cancelled.
func startStream(ctx context.Context, svc service.DecompositionService, runID string, mode service.StreamMode) streamFeed {
	updates := make(chan progress.State, 16)
	result := make(chan streamDoneMsg, 1)
	go func() {
		state, err := svc.Stream(ctx, runID, mode, func(s progress.State) {
			select {
			case updates <- s:
			case <-ctx.Done():
			}
		})
		close(updates)
		result <- streamDoneMsg{state: state, err: err}
	}()
	return streamFeed{updates: updates, result: result}
}

type decomposeModel struct {
	spinner spinner.Model
	feed    streamFeed
	cancel  context.CancelFunc
	quit    key.Binding

	title   string
	state   progress.State
	done    bool
	aborted bool
	err     error
}

func newDecomposeModel(title string, feed streamFeed, cancel context.CancelFunc) decomposeModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	return decomposeModel{
		spinner: s,
		feed:    feed,
		cancel:  cancel,
		quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
		title:   title,
		state:   progress.State{InFlight: true},
	}
}

func (m decomposeModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.feed.wait())
}

func (m decomposeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done || !key.Matches(msg, m.quit) {
			return m, nil
		}
		m.aborted = true
		m.done = true
		m.err = errStreamCancelled
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case stateMsg:
		if m.done {
			return m, nil
		}
		m.state = progress.State(msg)
		return m, m.feed.wait()

	case streamDoneMsg:
		if m.done {
			return m, nil
		}
		m.state = msg.state
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m decomposeModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.Header(m.title))
	b.WriteString("\n")

	switch {
	case m.aborted:
		b.WriteString(formatter.Warn("Decomposition cancelled."))
	case m.done && m.state.Err == "" && m.err != nil:
		b.WriteString(formatter.Failure("Decomposition failed: " + m.err.Error()))
	case m.done:
		b.WriteString(formatter.FormatStreamState(m.state))
	default:
		b.WriteString(m.spinner.View() + " " + formatter.FormatStreamState(m.state))
		b.WriteString("\n")
		b.WriteString(formatter.Dim(m.quit.Help().Key + " " + m.quit.Help().Desc))
	}
	b.WriteString("\n")
	return b.String()
}

// runDecomposeView shows the live progress view until the stream ends or
// the user cancels.
func runDecomposeView(ctx context.Context, app *App, runID string, mode service.StreamMode, out io.Writer) (progress.State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := startStream(ctx, app.Decompositions, runID, mode)
	model := newDecomposeModel("Decomposing "+shortID(runID)+" ("+mode.String()+")", feed, cancel)

	final, err := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return progress.State{}, err
	}
	m, ok := final.(decomposeModel)
	if !ok || !m.done {
		return progress.State{}, errStreamCancelled
	}
	return m.state, m.err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
