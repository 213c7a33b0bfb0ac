package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a tree display.
type TreeItem struct {
	Title  string
	Key    string // shown dimmed before the title when set
	Level  int
	IsLast bool
	// Ancestors records, per level above this one, whether that ancestor
	// was the last child, so pipes stop under finished branches.
	Ancestors []bool
	Status    string
	Detail    string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders items as an indented tree with box-drawing
// connectors. Detail badges are right-aligned across all lines.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	badges := make([]string, len(items))
	widest := 0

	for idx, item := range items {
		var prefix strings.Builder
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				if i-1 < len(item.Ancestors) && item.Ancestors[i-1] {
					prefix.WriteString(treeBlank)
				} else {
					prefix.WriteString(treePipe)
				}
			}
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}

		title := item.Title
		if item.Key != "" {
			title = StyleDim.Render(item.Key+" ") + title
		}
		switch strings.ToLower(item.Status) {
		case "completed", "done":
			title = StyleGreen.Render("✔ ") + Dim(title)
		case "in_progress":
			title = StyleYellowBold.Render("▶ " + title)
		case "failed":
			title = StyleRed.Render("✘ ") + title
		}

		contents[idx] = StyleDim.Render(prefix.String()) + title
		if item.Detail != "" {
			badges[idx] = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		widest = max(widest, lipgloss.Width(contents[idx]))
	}

	var b strings.Builder
	for i, content := range contents {
		b.WriteString(content)
		if badges[i] != "" {
			b.WriteString(strings.Repeat(" ", widest-lipgloss.Width(content)+colGap))
			b.WriteString(badges[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}
