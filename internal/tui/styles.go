package tui

import (
	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/charmbracelet/lipgloss"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// palette is the set of colors that changes with the theme.
type palette struct {
	text   lipgloss.Color
	muted  lipgloss.Color
	accent lipgloss.Color
	border lipgloss.Color
	banner lipgloss.Color
	errors lipgloss.Color
}

var palettes = map[string]palette{
	ThemeLight: {
		text:   lipgloss.Color("#111827"),
		muted:  lipgloss.Color("#6b7280"),
		accent: lipgloss.Color("#2563eb"),
		border: lipgloss.Color("#d1d5db"),
		banner: lipgloss.Color("#7c3aed"),
		errors: lipgloss.Color("#dc2626"),
	},
	ThemeDark: {
		text:   lipgloss.Color("#f3f4f6"),
		muted:  lipgloss.Color("#9ca3af"),
		accent: lipgloss.Color("#60a5fa"),
		border: lipgloss.Color("#374151"),
		banner: lipgloss.Color("#a78bfa"),
		errors: lipgloss.Color("#f87171"),
	},
}

// styles holds every lipgloss style the dashboard renders with.
type styles struct {
	theme string

	header    lipgloss.Style
	panel     lipgloss.Style
	title     lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	banner    lipgloss.Style
	errorText lipgloss.Style
	footer    lipgloss.Style
	selected  lipgloss.Style
	prompt    lipgloss.Style
	border    lipgloss.Color
}

// newStyles builds the style set for a theme. Unknown themes fall back to light.
func newStyles(theme string) styles {
	p, ok := palettes[theme]
	if !ok {
		theme = ThemeLight
		p = palettes[ThemeLight]
	}

	return styles{
		theme: theme,
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.text).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.border),
		panel: lipgloss.NewStyle().
			Foreground(p.text).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(p.border),
		title:     lipgloss.NewStyle().Bold(true).Foreground(p.text),
		muted:     lipgloss.NewStyle().Foreground(p.muted),
		accent:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		banner:    lipgloss.NewStyle().Foreground(p.banner).Bold(true),
		errorText: lipgloss.NewStyle().Foreground(p.errors).Bold(true),
		footer:    lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(p.accent),
		prompt:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		border:    p.border,
	}
}

// severityStyle returns the lipgloss style for a severity level.
func severityStyle(severity models.Severity) lipgloss.Style {
	color, ok := aggregator.SeverityColors[severity]
	if !ok {
		return lipgloss.NewStyle()
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	if models.Rank(severity) >= models.Rank(models.SeverityHigh) {
		s = s.Bold(true)
	}
	return s
}

// gradeStyle returns the lipgloss style for a risk grade.
func gradeStyle(g aggregator.RiskGrade) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Bold(true)
}

// badgeStyle returns the lipgloss style for the score badge.
func badgeStyle(b aggregator.Badge) lipgloss.Style {
	switch b {
	case aggregator.BadgeGood:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")).Bold(true)
	case aggregator.BadgeFair:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#ca8a04")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true)
	}
}

// chartBar returns the style of one chart series.
func chartBar(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
