// Package app wires the application together and runs the Bubble Tea
// program.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/praagya/vidya/internal/analytics"
	"github.com/praagya/vidya/internal/api"
	"github.com/praagya/vidya/internal/catalog"
	"github.com/praagya/vidya/internal/progress"
	"github.com/praagya/vidya/internal/router"
	"github.com/praagya/vidya/internal/screen"
	"github.com/praagya/vidya/internal/screens/home"
	"github.com/praagya/vidya/internal/screens/player"
	"github.com/praagya/vidya/internal/store"
	"github.com/praagya/vidya/internal/ui/layout"
)

// Options tweak startup behavior.
type Options struct {
	// StartVideoID skips the browser and opens a video directly.
	StartVideoID string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(initial screen.Screen) AppModel {
	return AppModel{
		router: router.New(initial),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, "", m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if provider, ok := active.(screen.KeyHintProvider); ok {
		if hints := provider.KeyHints(); len(hints) > 0 {
			footerHints = hints
		}
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// credStore adapts the token repository to the API client.
type credStore struct {
	repo store.TokenRepo
}

func (c credStore) LoadTokens(ctx context.Context) (string, string, error) {
	creds, err := c.repo.Load(ctx)
	if err != nil {
		return "", "", err
	}
	return creds.AccessToken, creds.RefreshToken, nil
}

func (c credStore) SaveTokens(ctx context.Context, access, refresh string) error {
	return c.repo.Save(ctx, store.Credentials{AccessToken: access, RefreshToken: refresh})
}

// Run starts the application with the given config.
func Run(cfg Config, opts Options) error {
	log, logCloser, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return err
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer st.Close()

	deps := buildDeps(cfg, st, log)

	initial, err := initialScreen(deps, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newAppModel(initial))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

// buildDeps assembles the service graph shared by all screens.
func buildDeps(cfg Config, st *store.Store, log zerolog.Logger) home.Deps {
	tokens := api.NewRefreshingTokenSource(
		credStore{repo: st.Tokens()},
		cfg.APIBaseURL+"/auth/refresh",
		nil,
	)
	client := api.New(cfg.APIBaseURL, tokens, &http.Client{Timeout: cfg.RequestTimeout}, log)

	var sink analytics.Sink = analytics.NopSink{}
	if cfg.AnalyticsURL != "" {
		sink = analytics.NewHTTPSink(cfg.AnalyticsURL, log)
	}

	catalogSvc := catalog.NewService(client, log)
	return home.Deps{
		Catalog: catalogSvc,
		Player: player.Deps{
			Catalog: catalogSvc,
			Syncer:  progress.NewSyncer(client, log),
			Resume:  st.Resume(),
			Prefs:   st.Prefs(),
			Sink:    sink,
			Log:     log,
		},
		Log: log,
	}
}

func initialScreen(deps home.Deps, opts Options) (screen.Screen, error) {
	if opts.StartVideoID == "" {
		return home.New(deps), nil
	}

	ctx := context.Background()
	video, err := deps.Catalog.Video(ctx, opts.StartVideoID)
	if err != nil {
		return nil, fmt.Errorf("resolve video %s: %w", opts.StartVideoID, err)
	}
	return player.New(deps.Player, *video), nil
}
