package formatter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/charmbracelet/glamour"
)

var (
	mdMu        sync.Mutex
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// SummaryMarkdown builds the markdown document for a summary. Empty
// sections are left out.
func SummaryMarkdown(s domain.DocumentSummary) string {
	var b strings.Builder
	name := s.ProjectName
	if name == "" {
		name = "Untitled project"
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	if s.ProjectDescription != "" {
		b.WriteString(s.ProjectDescription + "\n\n")
	}
	if s.TimelineEstimate != "" {
		fmt.Fprintf(&b, "**Estimated timeline:** %s\n\n", s.TimelineEstimate)
	}

	sections := []struct {
		title string
		items []string
	}{
		{"Objectives", s.Objectives},
		{"Scope", s.Scope},
		{"Key features", s.KeyFeatures},
		{"Technical requirements", s.TechnicalRequirements},
		{"Stakeholders", s.Stakeholders},
		{"Risks", s.Risks},
		{"Assumptions", s.Assumptions},
	}
	for _, sec := range sections {
		if len(sec.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", sec.title)
		for _, it := range sec.items {
			fmt.Fprintf(&b, "- %s\n", it)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatSummary renders the summary as terminal markdown. style is a
// glamour standard style ("dark", "light", "notty").
func FormatSummary(s domain.DocumentSummary, style string, width int) string {
	return RenderMarkdown(SummaryMarkdown(s), style, width)
}

// RenderMarkdown renders md with a cached renderer per style and width.
// A fixed style avoids terminal background queries. On failure the
// source text is returned.
func RenderMarkdown(md, style string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if style == "" {
		style = "dark"
	}
	width = max(width, 20)
	key := fmt.Sprintf("%s:%d", style, width)

	mdMu.Lock()
	defer mdMu.Unlock()
	r := mdRenderers[key]
	if r == nil {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md + "\n"
		}
		mdRenderers[key] = r
	}

	out, err := r.Render(md)
	if err != nil {
		return md + "\n"
	}
	return strings.TrimRight(out, "\n") + "\n"
}
