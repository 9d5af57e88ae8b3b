package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	chatlog "polyglot/pkg/chat"
	"polyglot/pkg/p2p"
	"polyglot/pkg/room"
	"polyglot/pkg/translate"
)

const tickInterval = 50 * time.Millisecond

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// chatState is the active-room screen. All session and translation traffic
// is drained here, once per tick, with non-blocking reads only.
type chatState struct {
	room    room.Room
	session sessionClient
	cancel  context.CancelFunc

	log       *chatlog.Log
	requested map[uint64]struct{}
	outgoing  []string

	subscribeAttempted bool
	status             ConnectionStatus
	statusDetail       string
	errLine            string
	note               string

	showTranslations bool
	scrollLatest     bool

	input        textinput.Model
	messagesPane viewport.Model
	sidePane     viewport.Model
}

func newChatState(m *model, r room.Room, session sessionClient, cancel context.CancelFunc, note string) *chatState {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "Say something..."
	in.CharLimit = 0
	in.Focus()

	return &chatState{
		room:         r,
		session:      session,
		cancel:       cancel,
		log:          chatlog.NewLog(m.ids, m.cfg.Translation.TargetLanguage),
		requested:    make(map[uint64]struct{}),
		status:       StatusConnecting,
		note:         note,
		input:        in,
		messagesPane: viewport.New(80, 12),
		sidePane:     viewport.New(40, 12),
	}
}

func (s *chatState) update(m *model, msg tea.Msg) (state, tea.Cmd) {
	switch typed := msg.(type) {
	case tickMsg:
		s.orchestrate(m)
		s.refreshPanes(m)
		return s, tickCmd()
	case tea.KeyMsg:
		switch typed.String() {
		case "esc":
			s.abandon()
			menu := newMenuState()
			menu.status = fmt.Sprintf("left room %q", s.room.Name)
			return menu, nil
		case "ctrl+t":
			if m.translator.Enabled() {
				s.showTranslations = !s.showTranslations
				s.resize(m)
			}
			return s, nil
		case "pgup":
			s.messagesPane.PageUp()
			return s, nil
		case "pgdown":
			s.messagesPane.PageDown()
			return s, nil
		case "home":
			s.messagesPane.GotoTop()
			return s, nil
		case "end":
			s.messagesPane.GotoBottom()
			return s, nil
		case "enter":
			return s.submit(m)
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *chatState) submit(m *model) (state, tea.Cmd) {
	content := strings.TrimSpace(s.input.Value())
	if content == "" {
		return s, nil
	}
	s.input.SetValue("")

	switch {
	case content == "/exit" || content == "/quit":
		s.abandon()
		return s, tea.Quit
	case content == "/leave":
		s.abandon()
		menu := newMenuState()
		menu.status = fmt.Sprintf("left room %q", s.room.Name)
		return menu, nil
	case strings.HasPrefix(content, "/lang "):
		s.changeLanguage(m, strings.TrimSpace(strings.TrimPrefix(content, "/lang ")))
		return s, nil
	}

	s.log.AddMessage(content, m.username)
	s.outgoing = append(s.outgoing, content)
	s.scrollLatest = true
	return s, nil
}

// changeLanguage clears every translation and the requested set together, so
// the next tick re-requests each message exactly once in the new language.
func (s *chatState) changeLanguage(m *model, language string) {
	if language == "" {
		return
	}

	s.log.SetTargetLanguage(language)
	s.requested = make(map[uint64]struct{})
	s.note = fmt.Sprintf("translating to %s", language)
	m.log.Info("Target language changed", "language", language)
}

// abandon tears down the room's session context. In-flight sends are lost.
func (s *chatState) abandon() {
	s.session.Unsubscribe()
	s.cancel()
}

// orchestrate is the per-tick pass. Order matters: translation responses
// land before new requests are issued, the subscribe attempt precedes the
// outgoing flush, and session events are applied last.
func (s *chatState) orchestrate(m *model) {
	for {
		resp, ok := m.translator.TryResponse()
		if !ok {
			break
		}
		s.log.SetTranslation(resp.MessageID, resp.Translation, resp.Language)
	}

	if m.translator.Enabled() {
		for _, message := range s.log.Messages() {
			if message.HasTranslation() {
				continue
			}
			if _, seen := s.requested[message.ID]; seen {
				continue
			}
			m.translator.Request(translate.Request{
				MessageID:      message.ID,
				Content:        message.Content,
				TargetLanguage: s.log.TargetLanguage(),
			})
			s.requested[message.ID] = struct{}{}
		}
	}

	if !s.subscribeAttempted {
		s.session.Subscribe(s.room.Topic)
		s.subscribeAttempted = true
	}

	for _, content := range s.outgoing {
		s.session.Send(p2p.NewWireMessage(content, m.username))
	}
	s.outgoing = s.outgoing[:0]

	for {
		event, ok := s.session.TryEvent()
		if !ok {
			break
		}
		s.applyEvent(m, event)
	}
}

func (s *chatState) applyEvent(m *model, event p2p.Event) {
	switch event.Kind {
	case p2p.EventMessageReceived:
		s.log.AddMessage(event.Message.Content, event.Message.SenderID)
		s.scrollLatest = true
	case p2p.EventSubscribed:
		s.status = StatusConnected
		s.statusDetail = ""
	case p2p.EventError:
		s.applyErrorEvent(m, event)
	}
}

func (s *chatState) applyErrorEvent(m *model, event p2p.Event) {
	switch event.Err {
	case p2p.ErrSubscriptionLost, p2p.ErrChannelClosed:
		s.status = StatusDisconnected
		s.subscribeAttempted = false
		m.log.Warn("Subscription dropped", "kind", event.Err.String(), "detail", event.Detail)
	case p2p.ErrNetworkCreationFailed, p2p.ErrSubscriptionFailed:
		s.status = StatusError
		s.statusDetail = event.Detail
		s.subscribeAttempted = false
		m.log.Error("Session failure", "kind", event.Err.String(), "detail", event.Detail)
	case p2p.ErrSendFailed, p2p.ErrSerializationFailed:
		// Per-message failure. Connection state stays as-is.
		s.errLine = fmt.Sprintf("%s: %s", event.Err, event.Detail)
		m.log.Warn("Message failure", "kind", event.Err.String(), "detail", event.Detail)
	}
}

func (s *chatState) resize(m *model) {
	width := max(60, m.width-4)
	height := max(8, m.height-9)

	if s.showTranslations {
		half := width / 2
		s.messagesPane.Width = half
		s.sidePane.Width = width - half - 2
	} else {
		s.messagesPane.Width = width
	}
	s.messagesPane.Height = height
	s.sidePane.Height = height
	s.input.Width = max(40, m.width-8)
}

func (s *chatState) refreshPanes(m *model) {
	var lines []string
	var translated []string
	for _, message := range s.log.Messages() {
		senderStyle := m.theme.sender
		if message.Sender == m.username {
			senderStyle = m.theme.selfSender
		}
		lines = append(lines, senderStyle.Render(message.Sender+":")+" "+m.theme.message.Render(message.Content))

		if message.HasTranslation() {
			translated = append(translated, senderStyle.Render(message.Sender+":")+" "+m.theme.translation.Render(message.Translation))
		} else {
			translated = append(translated, m.theme.pending.Render(message.Sender+": Translating..."))
		}
	}

	s.messagesPane.SetContent(strings.Join(lines, "\n"))
	s.sidePane.SetContent(strings.Join(translated, "\n"))
	if s.scrollLatest {
		s.messagesPane.GotoBottom()
		s.sidePane.GotoBottom()
		s.scrollLatest = false
	}
}

func (s *chatState) view(m *model) string {
	header := m.theme.header.Width(max(20, m.width-2)).Render("polyglot · " + s.room.Name)
	meta := m.theme.headerMeta.Render(s.room.Identifier)
	line := m.theme.divider.Render(strings.Repeat("─", max(8, m.width-2)))

	body := m.theme.viewport.Render(s.messagesPane.View())
	if s.showTranslations {
		left := lipgloss.JoinVertical(lipgloss.Left,
			m.theme.paneTitle.Render("Messages"),
			m.theme.viewport.Render(s.messagesPane.View()),
		)
		right := lipgloss.JoinVertical(lipgloss.Left,
			m.theme.paneTitle.Render(s.log.TargetLanguage()),
			m.theme.viewport.Render(s.sidePane.View()),
		)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	}

	parts := []string{header, meta, line, body, s.statusLine(m)}
	if s.errLine != "" {
		parts = append(parts, m.theme.errLine.Render(s.errLine))
	}
	parts = append(parts,
		m.theme.inputLabel.Render(m.username)+" "+m.theme.hint.Render(s.inputHint(m)),
		m.theme.input.Width(max(40, m.width-4)).Render(s.input.View()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *chatState) statusLine(m *model) string {
	var status string
	switch s.status {
	case StatusConnected:
		status = m.theme.connected.Render("● connected")
	case StatusConnecting:
		status = m.theme.connecting.Render("◌ connecting...")
	case StatusDisconnected:
		status = m.theme.disconnected.Render("○ disconnected, retrying")
	case StatusError:
		status = m.theme.statusErr.Render("✗ " + s.statusDetail)
	}

	if s.note != "" {
		status += "  " + m.theme.hint.Render(s.note)
	}

	return status
}

func (s *chatState) inputHint(m *model) string {
	hint := "(Enter send · /lang <language> · /leave · Esc menu)"
	if m.translator.Enabled() {
		hint = "(Enter send · Ctrl+T translations · /lang <language> · /leave · Esc menu)"
	}

	return hint
}
