package ui

import "github.com/charmbracelet/lipgloss"

// theme groups reusable styles for the chat and menu screens.
type theme struct {
	header       lipgloss.Style
	headerMeta   lipgloss.Style
	divider      lipgloss.Style
	menuItem     lipgloss.Style
	menuCursor   lipgloss.Style
	menuStatus   lipgloss.Style
	sender       lipgloss.Style
	selfSender   lipgloss.Style
	message      lipgloss.Style
	translation  lipgloss.Style
	pending      lipgloss.Style
	paneTitle    lipgloss.Style
	connected    lipgloss.Style
	connecting   lipgloss.Style
	disconnected lipgloss.Style
	statusErr    lipgloss.Style
	errLine      lipgloss.Style
	hint         lipgloss.Style
	inputLabel   lipgloss.Style
	input        lipgloss.Style
	viewport     lipgloss.Style
}

// defaultTheme defines the visual palette shared by every screen.
func defaultTheme() theme {
	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("25")),
		headerMeta: lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")),
		divider: lipgloss.NewStyle().
			Foreground(lipgloss.Color("24")),
		menuItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 2),
		menuCursor: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("75")).
			Padding(0, 2),
		menuStatus: lipgloss.NewStyle().
			Foreground(lipgloss.Color("216")),
		sender: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75")),
		selfSender: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("114")),
		message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		translation: lipgloss.NewStyle().
			Foreground(lipgloss.Color("180")),
		pending: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("244")),
		paneTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("110")).
			Padding(0, 1),
		connected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("114")),
		connecting: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("222")),
		disconnected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("209")),
		statusErr: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203")),
		errLine: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		inputLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")),
		input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("67")).
			Padding(0, 1),
		viewport: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("24")).
			Padding(0, 1),
	}
}
