package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dreamgate/internal/cache"
	"dreamgate/internal/config"
	"dreamgate/internal/dream"
	"dreamgate/internal/oracle"
	"dreamgate/internal/theme"
)

// runInteractive starts the TUI loop: type an intent, watch the dream
// arrive, repeat. The config file is watched so edits invalidate the
// cache mid-session.
func runInteractive(ctx context.Context) error {
	cfgPath, err := resolvedConfigPath()
	if err != nil {
		return err
	}

	cc, err := cache.New(filepath.Join(baseDir(), "cache"))
	if err != nil {
		return err
	}
	watcher, err := cache.NewWatcher(filepath.Dir(cfgPath), cc)
	if err == nil {
		if err := watcher.Start(ctx); err == nil {
			defer watcher.Stop()
		}
	}

	m := newInteractiveModel(ctx, cfgPath, cc)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type outcomeMsg struct {
	outcome dream.Outcome
	err     error
}

type interactiveModel struct {
	ctx     context.Context
	cfgPath string
	cache   *cache.ConfigCache

	input    textinput.Model
	spin     spinner.Model
	view     viewport.Model
	ready    bool
	dreaming bool
	history  []string

	styles interactiveStyles
}

type interactiveStyles struct {
	title  lipgloss.Style
	prompt lipgloss.Style
	faint  lipgloss.Style
	err    lipgloss.Style
}

func newInteractiveModel(ctx context.Context, cfgPath string, cc *cache.ConfigCache) interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "state an intent, or /help"
	ti.Focus()
	ti.CharLimit = 280

	sp := spinner.New()
	sp.Spinner = spinner.Points

	return interactiveModel{
		ctx:     ctx,
		cfgPath: cfgPath,
		cache:   cc,
		input:   ti,
		spin:    sp,
		styles: interactiveStyles{
			title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
			prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
			faint:  lipgloss.NewStyle().Faint(true),
			err:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		},
	}
}

func (m interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - 4
		}
		m.refreshView()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.dreaming {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			return m.handleLine(line)
		}

	case outcomeMsg:
		m.dreaming = false
		if msg.err != nil {
			m.append(m.styles.err.Render("error: " + msg.err.Error()))
		} else {
			m.append(renderOutcomeLines(msg.outcome))
		}
		return m, nil

	case spinner.TickMsg:
		if m.dreaming {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.view, cmd = m.view.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m interactiveModel) handleLine(line string) (tea.Model, tea.Cmd) {
	switch {
	case line == "/quit" || line == "/q":
		return m, tea.Quit

	case line == "/help":
		m.append(strings.Join([]string{
			"commands:",
			"  /themes        list configured themes",
			"  /cache         show cache stats",
			"  /reload        drop cached configs and re-read on next dream",
			"  /quit          exit",
			"anything else is dreamed as an intent",
		}, "\n"))
		return m, nil

	case line == "/cache":
		m.append(m.cache.Stats().String())
		return m, nil

	case line == "/reload":
		m.cache.InvalidateAll()
		m.append("cache dropped, configs re-read on next dream")
		return m, nil

	case line == "/themes":
		cfg, _, _, err := m.loadCached()
		if err != nil {
			m.append(m.styles.err.Render(err.Error()))
			return m, nil
		}
		var names []string
		for _, t := range cfg.Themes {
			names = append(names, t.ID)
		}
		m.append("themes: " + strings.Join(names, ", "))
		return m, nil

	default:
		m.append(m.styles.prompt.Render("> ") + line)
		m.dreaming = true
		return m, tea.Batch(m.spin.Tick, m.dreamCmd(line))
	}
}

func (m *interactiveModel) loadCached() (*config.Config, cache.Tier, string, error) {
	cfg, tier, err := m.cache.Get(m.cfgPath)
	return cfg, tier, m.cfgPath, err
}

func (m interactiveModel) dreamCmd(intent string) tea.Cmd {
	return func() tea.Msg {
		cfg, _, _, err := m.loadCached()
		if err != nil {
			return outcomeMsg{err: err}
		}
		client, err := oracle.NewClient(m.ctx, backend, cfg.Model)
		if err != nil {
			return outcomeMsg{err: err}
		}
		runner := dream.NewRunner(client, cfg.ModelTimeout(), newRNG())
		outcome := runner.Run(m.ctx, &config.Brain{Intent: intent}, cfg)
		_ = persistOutcome(outcome, outcome.ID)
		return outcomeMsg{outcome: outcome}
	}
}

func (m *interactiveModel) append(s string) {
	m.history = append(m.history, s)
	m.refreshView()
}

func (m *interactiveModel) refreshView() {
	if !m.ready {
		return
	}
	m.view.SetContent(strings.Join(m.history, "\n\n"))
	m.view.GotoBottom()
}

func (m interactiveModel) View() string {
	if !m.ready {
		return "loading..."
	}
	header := m.styles.title.Render("dreamgate") + " " +
		m.styles.faint.Render("· the gate is open · esc to leave")
	status := ""
	if m.dreaming {
		status = m.spin.View() + " dreaming..."
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s", header, m.view.View(), status, m.input.View())
}

func renderOutcomeLines(o dream.Outcome) string {
	if o.Artifact == nil {
		return fmt.Sprintf("attempt failed: %v", o.Err)
	}
	a := o.Artifact
	colored := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color)).Bold(true)
	themeID := o.Theme
	if themeID == theme.None {
		themeID = "none"
	}
	return strings.Join([]string{
		colored.Render(a.Symbol) + "  " + a.Phrase,
		"reasoning: " + a.Reasoning,
		fmt.Sprintf("theme=%s concept=%s status=%s elapsed=%v",
			themeID, o.Concept, o.Status, o.Elapsed.Round(time.Millisecond)),
	}, "\n")
}
