package formatter

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ConfigureColor drops to plain output when NO_COLOR is set or stdout is
// not a terminal.
func ConfigureColor(interactive bool) {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" || !interactive {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// StepStyle colors a processing step by status.
func StepStyle(s domain.StepStatus) lipgloss.Style {
	switch s {
	case domain.StepCompleted:
		return StyleGreen
	case domain.StepInProgress:
		return StyleYellow
	case domain.StepFailed:
		return StyleRed
	default:
		return StyleDim
	}
}

// StepIcon is the one-glyph marker for a step status.
func StepIcon(s domain.StepStatus) string {
	switch s {
	case domain.StepCompleted:
		return StyleGreen.Render("✔")
	case domain.StepInProgress:
		return StyleYellow.Render("▶")
	case domain.StepFailed:
		return StyleRed.Render("✘")
	default:
		return StyleDim.Render("○")
	}
}

// RunStatusPill renders a run's overall status.
func RunStatusPill(s domain.RunStatus) string {
	label := strings.ToUpper(string(s))
	if label == "" {
		label = "UNKNOWN"
	}
	switch s {
	case domain.RunCompleted:
		return StyleGreen.Render(label)
	case domain.RunProcessing:
		return StyleYellow.Render(label)
	case domain.RunFailed:
		return StyleRed.Render(label)
	case domain.RunUploaded:
		return StyleBlue.Render(label)
	default:
		return StyleDim.Render(label)
	}
}

// SyncIndicator renders a ticket's sync status such as "● SUCCESS".
func SyncIndicator(s domain.SyncStatus) string {
	switch s {
	case domain.SyncSuccess:
		return StyleGreen.Render("● SUCCESS")
	case domain.SyncError:
		return StyleRed.Render("● ERROR")
	case domain.SyncPending:
		return StyleYellow.Render("● PENDING")
	default:
		return StyleDim.Render("● NOT SYNCED")
	}
}

// PriorityStyle colors a work item priority.
func PriorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityCritical:
		return StyleRed
	case domain.PriorityHigh:
		return StyleYellow
	case domain.PriorityLow:
		return StyleDim
	default:
		return StyleFg
	}
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

// Success, Warn and Failure prefix one-line status messages.
func Success(text string) string {
	return StyleGreen.Render("✔ ") + text
}

func Warn(text string) string {
	return StyleYellow.Render("! ") + text
}

func Failure(text string) string {
	return StyleRed.Render("✘ ") + text
}
