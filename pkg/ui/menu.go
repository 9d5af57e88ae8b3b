package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"polyglot/pkg/room"
)

type menuMode int

const (
	menuSelect menuMode = iota
	menuCreateInput
	menuJoinInput
)

var menuEntries = []string{"Create a room", "Join a room", "Quit"}

type menuState struct {
	mode   menuMode
	cursor int
	input  textinput.Model
	status string
}

func newMenuState() *menuState {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 0

	return &menuState{input: in}
}

func (s *menuState) update(m *model, msg tea.Msg) (state, tea.Cmd) {
	typed, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	if s.mode == menuSelect {
		return s.updateSelect(typed)
	}

	return s.updateInput(m, typed)
}

func (s *menuState) updateSelect(msg tea.KeyMsg) (state, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(menuEntries)-1 {
			s.cursor++
		}
	case "esc", "q":
		return s, tea.Quit
	case "enter":
		switch s.cursor {
		case 0:
			s.mode = menuCreateInput
			s.status = ""
			s.input.Placeholder = "Room name"
			s.input.SetValue("")
			s.input.Focus()
			return s, textinput.Blink
		case 1:
			s.mode = menuJoinInput
			s.status = ""
			s.input.Placeholder = "Room identifier"
			s.input.SetValue("")
			s.input.Focus()
			return s, textinput.Blink
		default:
			return s, tea.Quit
		}
	}

	return s, nil
}

func (s *menuState) updateInput(m *model, msg tea.KeyMsg) (state, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = menuSelect
		s.status = ""
		s.input.Blur()
		return s, nil
	case "enter":
		value := strings.TrimSpace(s.input.Value())
		if value == "" {
			s.status = "nothing entered"
			return s, nil
		}

		if s.mode == menuCreateInput {
			return s.createRoom(m, value)
		}

		return s.joinRoom(m, value)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *menuState) createRoom(m *model, name string) (state, tea.Cmd) {
	created := room.New(name)

	note := "room identifier copied to clipboard"
	if err := room.CopyToClipboard(created.Identifier); err != nil {
		m.log.Warn("Clipboard copy failed", "error", err)
		note = "clipboard unavailable, share the identifier from the header"
	}

	return m.enterRoom(created, note)
}

func (s *menuState) joinRoom(m *model, identifier string) (state, tea.Cmd) {
	joined, err := room.Parse(identifier)
	if err != nil {
		s.status = fmt.Sprintf("invalid identifier: %v", err)
		return s, nil
	}

	return m.enterRoom(joined, "")
}

func (s *menuState) view(m *model) string {
	header := m.theme.header.Width(max(20, m.width-2)).Render("polyglot")
	meta := m.theme.headerMeta.Render("peer-to-peer chat with live translation")
	line := m.theme.divider.Render(strings.Repeat("─", max(8, m.width-2)))

	parts := []string{header, meta, line, ""}

	switch s.mode {
	case menuSelect:
		for i, entry := range menuEntries {
			style := m.theme.menuItem
			if i == s.cursor {
				style = m.theme.menuCursor
			}
			parts = append(parts, style.Render(entry))
		}
		parts = append(parts, "", m.theme.hint.Render("↑/↓ select · Enter confirm · Esc quit"))
	case menuCreateInput:
		parts = append(parts,
			m.theme.inputLabel.Render("Name your room"),
			m.theme.input.Width(max(30, m.width-4)).Render(s.input.View()),
			m.theme.hint.Render("Enter create · Esc back"),
		)
	case menuJoinInput:
		parts = append(parts,
			m.theme.inputLabel.Render("Paste a room identifier"),
			m.theme.input.Width(max(30, m.width-4)).Render(s.input.View()),
			m.theme.hint.Render("Enter join · Esc back"),
		)
	}

	if s.status != "" {
		parts = append(parts, "", m.theme.menuStatus.Render(s.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
