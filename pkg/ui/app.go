// Package ui renders the terminal client: a main menu for creating or
// joining rooms and a chat screen whose orchestration pass bridges the
// network session and the translation worker on every tick.
package ui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"polyglot/pkg/config"
	"polyglot/pkg/p2p"
	"polyglot/pkg/provider"
	"polyglot/pkg/room"
	"polyglot/pkg/translate"

	chatlog "polyglot/pkg/chat"
)

// sessionClient is the slice of the network session the orchestrator drives.
type sessionClient interface {
	Subscribe(topic room.Topic)
	Send(message p2p.WireMessage)
	Unsubscribe()
	TryEvent() (p2p.Event, bool)
}

// translationClient is the slice of the translation worker the orchestrator
// drives.
type translationClient interface {
	Enabled() bool
	Request(req translate.Request)
	TryResponse() (translate.Response, bool)
}

// sessionFactory starts a fresh network session bound to ctx. Each room
// entry gets its own session; cancelling ctx abandons it.
type sessionFactory func(ctx context.Context) sessionClient

// state is one screen of the application. Each screen handles its own input
// and rendering; transitions happen by returning a different state.
type state interface {
	update(m *model, msg tea.Msg) (state, tea.Cmd)
	view(m *model) string
}

type model struct {
	ctx        context.Context
	cfg        *config.Config
	log        *slog.Logger
	theme      theme
	translator translationClient
	sessions   sessionFactory
	ids        *chatlog.IDSource
	username   string
	width      int
	height     int
	state      state
}

func newModel(ctx context.Context, cfg *config.Config, log *slog.Logger, translator translationClient, sessions sessionFactory) *model {
	return &model{
		ctx:        ctx,
		cfg:        cfg,
		log:        log.With("component", "ui"),
		theme:      defaultTheme(),
		translator: translator,
		sessions:   sessions,
		ids:        chatlog.NewIDSource(),
		username:   cfg.Profile.Username,
		width:      100,
		height:     28,
		state:      newMenuState(),
	}
}

// Run starts the terminal client and blocks until the user quits.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	translator := translate.NewService(ctx, cfg.Translation.Enabled(), func(ctx context.Context) (*translate.Translator, error) {
		engine, err := provider.New(cfg)
		if err != nil {
			return nil, err
		}
		return translate.NewTranslator(engine), nil
	}, log)

	sessions := func(sessionCtx context.Context) sessionClient {
		substrate := p2p.NewRelaySubstrate(cfg.Network.RelayURL, uuid.NewString(), log)
		return p2p.Start(sessionCtx, substrate, log)
	}

	program := tea.NewProgram(newModel(ctx, cfg, log, translator, sessions), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		if active, ok := m.state.(*chatState); ok {
			active.resize(m)
		}
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			if active, ok := m.state.(*chatState); ok {
				active.abandon()
			}
			return m, tea.Quit
		}
	}

	next, cmd := m.state.update(m, msg)
	m.state = next
	return m, cmd
}

func (m *model) View() string {
	return m.state.view(m)
}

// enterRoom builds a chat screen for the room, starting a session bound to
// its own cancellable context so leaving the room can tear it down.
func (m *model) enterRoom(r room.Room, note string) (state, tea.Cmd) {
	sessionCtx, cancel := context.WithCancel(m.ctx)
	session := m.sessions(sessionCtx)
	active := newChatState(m, r, session, cancel, note)
	active.resize(m)
	m.log.Info("Entering room", "room", r.Name, "topic", r.Topic.Hex())
	return active, tickCmd()
}

func max(a int, b int) int {
	if a > b {
		return a
	}

	return b
}
