package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/hierarchy"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, favorite
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for dashboard links and URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleFavorite for the favorite entry.
	StyleFavorite = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess  = "✓"
	iconError    = "✗"
	iconWarning  = "!"
	iconInfo     = "›"
	iconArrow    = "→"
	iconFavorite = "★"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Collections
// =============================================================================

// printCounts prints collection statistics on a single line.
func printCounts(entries []dashboard.Entry) {
	var perLevel [dashboard.MaxDepth + 1]int
	for _, e := range entries {
		if e.Level.Valid() {
			perLevel[e.Level]++
		}
	}
	parts := []string{fmt.Sprintf("%d dashboards", len(entries))}
	for l, n := range perLevel {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(dashboard.Level(l).String())))
		}
	}
	if fav, ok := dashboard.Favorite(entries); ok {
		parts = append(parts, iconFavorite+" "+fav.Link)
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")))
}

// nodeLabel renders a tree node as "Title /link", marking the favorite.
func nodeLabel(n *hierarchy.Node) string {
	label := StyleValue.Render(n.Title) + " " + StyleLink.Render("/"+n.Link)
	if n.IsMain {
		label = StyleFavorite.Render(iconFavorite+" "+n.Title) + " " + StyleLink.Render("/"+n.Link)
	}
	return label
}

// renderTree draws the hierarchy with box-drawing branches.
func renderTree(nodes []*hierarchy.Node) string {
	var build func(n *hierarchy.Node) any
	build = func(n *hierarchy.Node) any {
		if len(n.Children) == 0 {
			return nodeLabel(n)
		}
		t := tree.Root(nodeLabel(n)).Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(StyleDim)
		for _, c := range n.Children {
			t.Child(build(c))
		}
		return t
	}

	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(fmt.Sprint(build(n)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTable draws the flat collection as a table.
func renderTable(entries []dashboard.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		fav := ""
		if e.IsMain {
			fav = iconFavorite
		}
		parent := e.Parent
		if parent == "" {
			parent = "—"
		}
		rows[i] = []string{fav, e.Link, e.Title, e.Level.String(), parent}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("", "Link", "Title", "Level", "Parent").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleFavorite
			case col == 1:
				return StyleLink
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func writeLine(w io.Writer, s string) {
	_, _ = io.WriteString(w, s+"\n")
}
