// Package theme holds the switchable color palettes and shared lipgloss
// styles. Styles are package-level and rebuilt by Apply when the user
// changes theme, so views always render with the active palette.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette is one named set of adaptive color pairs
// (dark terminal value, light terminal value).
type Palette struct {
	Accent lipgloss.AdaptiveColor
	Green  lipgloss.AdaptiveColor
	Yellow lipgloss.AdaptiveColor
	Red    lipgloss.AdaptiveColor
	Gray   lipgloss.AdaptiveColor
	White  lipgloss.AdaptiveColor
	Subtle lipgloss.AdaptiveColor
	Border lipgloss.AdaptiveColor
}

// DefaultTheme is applied at startup and used for unknown theme names.
const DefaultTheme = "ocean"

var palettes = map[string]Palette{
	"ocean": {
		Accent: lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"},
		Green:  lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"},
		Yellow: lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"},
		Red:    lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"},
		Gray:   lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"},
		White:  lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"},
		Subtle: lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"},
		Border: lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"},
	},
	"forest": {
		Accent: lipgloss.AdaptiveColor{Dark: "#74C69D", Light: "#2D6A4F"},
		Green:  lipgloss.AdaptiveColor{Dark: "#95D5B2", Light: "#40916C"},
		Yellow: lipgloss.AdaptiveColor{Dark: "#E9C46A", Light: "#B7791F"},
		Red:    lipgloss.AdaptiveColor{Dark: "#E76F51", Light: "#C53030"},
		Gray:   lipgloss.AdaptiveColor{Dark: "#84A98C", Light: "#52796F"},
		White:  lipgloss.AdaptiveColor{Dark: "#F1FAEE", Light: "#1B4332"},
		Subtle: lipgloss.AdaptiveColor{Dark: "#3A5A40", Light: "#CCE3DE"},
		Border: lipgloss.AdaptiveColor{Dark: "#3A5A40", Light: "#D8E2DC"},
	},
	"mono": {
		Accent: lipgloss.AdaptiveColor{Dark: "#D0D0D0", Light: "#303030"},
		Green:  lipgloss.AdaptiveColor{Dark: "#B8B8B8", Light: "#484848"},
		Yellow: lipgloss.AdaptiveColor{Dark: "#E8E8E8", Light: "#181818"},
		Red:    lipgloss.AdaptiveColor{Dark: "#FFFFFF", Light: "#000000"},
		Gray:   lipgloss.AdaptiveColor{Dark: "#808080", Light: "#707070"},
		White:  lipgloss.AdaptiveColor{Dark: "#F8F8F8", Light: "#101010"},
		Subtle: lipgloss.AdaptiveColor{Dark: "#404040", Light: "#D0D0D0"},
		Border: lipgloss.AdaptiveColor{Dark: "#404040", Light: "#C0C0C0"},
	},
}

// names is the cycle order for the theme key.
var names = []string{"ocean", "forest", "mono"}

// Active is the palette currently in effect.
var Active Palette

// activeName tracks which palette Active came from.
var activeName = DefaultTheme

// Shared styles, rebuilt by Apply.
var (
	// HeaderStyle is used for the application title bar.
	HeaderStyle lipgloss.Style

	// StatusBarStyle is used for the bottom status bar.
	StatusBarStyle lipgloss.Style

	// PanelStyle wraps bordered content areas (detail view, help).
	PanelStyle lipgloss.Style

	// CardStyle is the base style for a conversation card.
	CardStyle lipgloss.Style

	// UnreadCardStyle highlights a card containing unread messages.
	UnreadCardStyle lipgloss.Style

	// SelectedCardStyle marks the focused card.
	SelectedCardStyle lipgloss.Style

	// SubjectStyle renders a card's subject line.
	SubjectStyle lipgloss.Style

	// UnreadSubjectStyle renders the subject of an unread conversation.
	UnreadSubjectStyle lipgloss.Style

	// PreviewStyle renders member preview rows inside a card.
	PreviewStyle lipgloss.Style

	// UnreadPreviewStyle renders preview rows for unread members.
	UnreadPreviewStyle lipgloss.Style

	// MoreStyle renders the "+N more" marker.
	MoreStyle lipgloss.Style

	// ErrorStyle renders error text in the status bar.
	ErrorStyle lipgloss.Style

	// HelpStyle is used for keyboard hints.
	HelpStyle lipgloss.Style
)

func init() {
	Apply(DefaultTheme)
}

// Apply switches the active palette and rebuilds all shared styles.
// Unknown names fall back to the default theme. It returns the name of
// the palette actually applied.
func Apply(name string) string {
	p, ok := palettes[name]
	if !ok {
		name = DefaultTheme
		p = palettes[name]
	}
	Active = p
	activeName = name

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.White).
		Background(p.Accent).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.White).
		Background(p.Subtle).
		Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)

	CardStyle = lipgloss.NewStyle().
		PaddingLeft(2)

	UnreadCardStyle = lipgloss.NewStyle().
		PaddingLeft(2).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(p.Accent)

	SelectedCardStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.Accent)

	SubjectStyle = lipgloss.NewStyle().
		Foreground(p.White)

	UnreadSubjectStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	PreviewStyle = lipgloss.NewStyle().
		Foreground(p.Gray)

	UnreadPreviewStyle = lipgloss.NewStyle().
		Foreground(p.Accent)

	MoreStyle = lipgloss.NewStyle().
		Foreground(p.Gray).
		Italic(true)

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Red)

	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Gray).
		Italic(true)

	return name
}

// ActiveName returns the name of the palette currently applied.
func ActiveName() string {
	return activeName
}

// Next returns the theme name following the active one in cycle order.
func Next() string {
	for i, n := range names {
		if n == activeName {
			return names[(i+1)%len(names)]
		}
	}
	return DefaultTheme
}

// Names returns the available theme names in cycle order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
