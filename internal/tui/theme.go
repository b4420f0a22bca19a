package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/example/commit-swipe/internal/card"
)

type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Card     lipgloss.Style
	Peek     lipgloss.Style
	Tag      lipgloss.Style
	Badge    lipgloss.Style
	Toast    lipgloss.Style
	Modal    lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Mine     lipgloss.Style
	Theirs   lipgloss.Style
	Tiers    map[card.Tier]lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Card: lipgloss.NewStyle().
			Width(cardWidth).
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
		Peek: lipgloss.NewStyle().
			Width(cardWidth).
			Padding(0, 2).
			Faint(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")),
		Tag:      lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("237")),
		Badge:    lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("160")).Foreground(lipgloss.Color("231")),
		Toast:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Modal:    lipgloss.NewStyle().Padding(1, 3).BorderStyle(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("205")),
		Positive: lipgloss.NewStyle().Bold(true).Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).Foreground(lipgloss.Color("42")).BorderForeground(lipgloss.Color("42")),
		Negative: lipgloss.NewStyle().Bold(true).Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).Foreground(lipgloss.Color("203")).BorderForeground(lipgloss.Color("203")),
		Mine:     lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		Theirs:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Tiers: map[card.Tier]lipgloss.Style{
			card.TierHigh:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
			card.TierMedium:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
			card.TierNeutral: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
	}
}
