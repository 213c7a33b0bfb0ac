// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and returned Cmds are executed inline. Cmds
// that block (spinner and cursor ticks, channel waits with nothing queued)
// are abandoned after a short timeout so tests never sleep.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many chained Cmds one Send may execute.
const MaxDrainDepth = 100

// cmdTimeout separates instant Cmds from timer-driven ones. Ticks wait
// tens of milliseconds or more.
const cmdTimeout = 10 * time.Millisecond

// Driver holds the model under test.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.Quit has been returned. The runtime would
	// normally swallow the QuitMsg, so the driver records it.
	Quitting bool
	// Msgs lists every message fed to Update, in order.
	Msgs []tea.Msg
}

type Option func(*Driver)

// WithSize sends a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrainInit runs the model's Init Cmd and everything it leads to.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send feeds msg through Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	d.update(msg, 0)
}

func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func (d *Driver) PressEnter() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyEnter})
}

func (d *Driver) PressEsc() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyEsc})
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
}

// View returns the model's current rendering.
func (d *Driver) View() string {
	return d.Model.View()
}

// AssertViewContains fails the test when the view lacks want.
func (d *Driver) AssertViewContains(want string) {
	d.T.Helper()
	if v := d.View(); !strings.Contains(v, want) {
		d.T.Errorf("view does not contain %q:\n%s", want, v)
	}
}

func (d *Driver) update(msg tea.Msg, depth int) {
	d.Msgs = append(d.Msgs, msg)
	var next tea.Cmd
	d.Model, next = d.Model.Update(msg)
	d.drain(next, depth+1)
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg := runWithTimeout(cmd)
	switch m := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, sub := range m {
			d.drain(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
		d.Msgs = append(d.Msgs, m)
		d.Model, _ = d.Model.Update(m)
	default:
		if isBlink(msg) {
			return
		}
		d.update(msg, depth)
	}
}

func runWithTimeout(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}

// isBlink matches the unexported cursor blink messages from bubbles.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
