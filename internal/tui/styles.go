package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pokeradvisor/poker"
	"github.com/lox/pokeradvisor/sdk/advisor"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	focusColor  = lipgloss.Color("#04B575")
	paneColor   = lipgloss.Color("#626262")
)

// ActionStyle colours an action the way the web client does.
func ActionStyle(a advisor.Action) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color())).Bold(true)
}

// FormatCards renders cards in brackets, hearts and diamonds in red.
func FormatCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return "[]"
	}

	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		if s := card.Suit(); s == poker.Hearts || s == poker.Diamonds {
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}

	return "[" + strings.Join(formatted, " ") + "]"
}
