package render

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Brand colors.
var (
	iris   = lipgloss.Color("#8B5CF6")
	slate  = lipgloss.Color("#667085")
	green  = lipgloss.Color("#22A06B")
	yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	iconBuild   = "●"
	iconTrigger = "○"
	iconSanity  = "✓"
)

// ColorProfile returns Ascii when NO_COLOR is set and detects the terminal otherwise.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

type styles struct {
	title   lipgloss.Style
	stage   lipgloss.Style
	muted   lipgloss.Style
	build   lipgloss.Style
	trigger lipgloss.Style
	sanity  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(iris),
		stage:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(slate),
		build:   r.NewStyle().Foreground(iris),
		trigger: r.NewStyle().Foreground(yellow),
		sanity:  r.NewStyle().Foreground(green),
	}
}
