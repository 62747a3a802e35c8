package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"birdie/internal/clock"
	"birdie/internal/config"
	"birdie/internal/logging"
	"birdie/internal/mood"
	"birdie/internal/nudge"
	"birdie/internal/scheduler"
	"birdie/internal/streak"
)

type mode int

const (
	modeMain mode = iota
	modeJournal
)

type configMsg struct {
	cfg config.Config
}

type landMsg struct {
	celebration int
}

type Model struct {
	cfg     config.Config
	nudger  *nudge.Nudger
	screen  *Screen
	clock   clock.Clock
	ticker  *scheduler.Ticker
	logger  *logging.Logger
	updates <-chan config.Config

	mode    mode
	journal textarea.Model
	prompt  string
	status  string
}

// NewModel wires a started nudger into a bubbletea model. scr must be the
// Screen the nudger renders to. updates may be nil when hot reload is off.
func NewModel(cfg config.Config, n *nudge.Nudger, scr *Screen, clk clock.Clock, updates <-chan config.Config, logger *logging.Logger) Model {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	ta := textarea.New()
	ta.Placeholder = "Write freely. Nothing leaves this box."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(60)
	ta.SetHeight(8)

	n.Start(clk.Now())
	return Model{
		cfg:     cfg,
		nudger:  n,
		screen:  scr,
		clock:   clk,
		ticker:  scheduler.NewTicker(cfg.Tick()),
		logger:  logger,
		updates: updates,
		mode:    modeMain,
		journal: ta,
		status:  fmt.Sprintf("Press '%s' for a journaling prompt.", cfg.Keys.Prompt),
	}
}

func Run(m Model) error {
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ticker.Start(), waitForConfig(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case scheduler.TickMsg:
		if !m.ticker.Accept(msg) {
			return m, nil
		}
		m.tick()
		return m, m.ticker.Next()
	case tea.FocusMsg:
		m.tick()
	case tea.WindowSizeMsg:
		m.screen.resize(msg.Width, msg.Height)
		m.journal.SetWidth(max(20, min(72, msg.Width-10)))
		m.nudger.Reposition()
	case landMsg:
		m.screen.land(msg.celebration)
	case configMsg:
		return m.reload(msg.cfg)
	}
	return m, nil
}

func (m *Model) tick() {
	m.nudger.Tick(m.clock.Now())
	if err := m.nudger.Machine().PersistErr(); err != nil {
		m.status = fmt.Sprintf("state not saved: %v", err)
	}
}

func (m Model) reload(cfg config.Config) (tea.Model, tea.Cmd) {
	m.nudger.Apply(cfg)
	m.logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	m.cfg = cfg
	m.status = "Config reloaded"
	return m, tea.Batch(m.ticker.SetInterval(cfg.Tick()), waitForConfig(m.updates))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.mode == modeJournal {
		return m.updateJournalMode(key, msg)
	}
	return m.updateMainMode(key)
}

func (m Model) updateMainMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Prompt, "enter":
		if m.screen.locked {
			m.status = "Done for today. Birdie will wait for you after midnight."
			return m, nil
		}
		m.prompt = m.nudger.NextPrompt()
		m.journal.Reset()
		m.mode = modeJournal
		m.status = ""
		return m, m.journal.Focus()
	case m.cfg.Keys.Reposition:
		m.nudger.Reposition()
	}
	return m, nil
}

func (m Model) updateJournalMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel:
		m.closeJournal()
		m.status = "Journal closed"
		return m, nil
	case m.cfg.Keys.Another:
		m.prompt = m.nudger.NextPrompt()
		return m, nil
	case m.cfg.Keys.Done:
		m.logger.Debugf("journal closed with %d characters", len(m.journal.Value()))
		m.closeJournal()
		return m.complete()
	default:
		var cmd tea.Cmd
		m.journal, cmd = m.journal.Update(msg)
		return m, cmd
	}
}

func (m *Model) closeJournal() {
	m.journal.Blur()
	m.mode = modeMain
}

func (m Model) complete() (tea.Model, tea.Cmd) {
	err := m.nudger.Complete(m.clock.Now())
	if errors.Is(err, streak.ErrAlreadyCompleted) {
		m.status = "Already done today"
		return m, nil
	}
	if err != nil {
		m.status = fmt.Sprintf("complete failed: %v", err)
		return m, nil
	}
	m.status = fmt.Sprintf("Streak %d! See you tomorrow.", m.nudger.Machine().Streak())
	if err := m.nudger.Machine().PersistErr(); err != nil {
		m.status += fmt.Sprintf(" (state not saved: %v)", err)
	}
	celebration := m.screen.celebration
	land := tea.Tick(m.cfg.CelebrateFor(), func(time.Time) tea.Msg {
		return landMsg{celebration: celebration}
	})
	// Restart the countdown so the next tick lands a full interval from now.
	return m, tea.Batch(land, m.ticker.Start())
}

func waitForConfig(updates <-chan config.Config) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-updates
		if !ok {
			return nil
		}
		return configMsg{cfg: cfg}
	}
}

func (m Model) View() string {
	if m.screen.width <= 0 || m.screen.height <= 0 {
		return ""
	}
	if m.mode == modeJournal {
		return m.renderJournal()
	}
	return m.renderMain()
}

var (
	moodColors = map[mood.Mood]lipgloss.Color{
		mood.Happy:   lipgloss.Color("42"),
		mood.Neutral: lipgloss.Color("252"),
		mood.Annoyed: lipgloss.Color("214"),
		mood.Pissed:  lipgloss.Color("196"),
	}
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	promptStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("111"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
)

func (m Model) styles() map[styleID]lipgloss.Style {
	bird := lipgloss.NewStyle().Foreground(moodColors[m.screen.mood])
	if m.screen.flying {
		bird = bird.Bold(true)
	}
	control := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("63"))
	if m.screen.locked {
		control = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	}
	return map[styleID]lipgloss.Style{
		stBird:    bird,
		stStreak:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		stCaption: lipgloss.NewStyle().Italic(true),
		stBorder:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		stDigits:  lipgloss.NewStyle().Bold(true),
		stLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		stControl: control,
		stBadge:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

func (m Model) renderMain() string {
	s := m.screen
	w, h := s.Viewport()
	var b strings.Builder
	if w > 0 && h > 0 {
		c := newCanvas(w, h)
		if s.placed {
			name := s.asset
			if s.flying {
				name = flyingSprite
			}
			for i, line := range sprite(name) {
				c.put(s.bird.Left, s.bird.Top+i, line, stBird)
			}
		}
		l := s.layout()
		c.put(l.streak.Left, l.streak.Top, s.streakText(), stStreak)
		c.put(l.caption.Left, l.caption.Top, s.captionText(w), stCaption)
		drawCountdown(c, l.countdown.Left, l.countdown.Top, s.hours, s.minutes, s.seconds)
		if s.locked {
			c.put(l.control.Left, l.control.Top, labelDone, stControl)
			c.put(l.control.Left+lipgloss.Width(labelDone)+2, l.control.Top, doneBadge, stBadge)
		} else {
			c.put(l.control.Left, l.control.Top, labelGetPrompt, stControl)
		}
		b.WriteString(c.render(m.styles()))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(runewidth.Truncate(m.status, s.width, "…")))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(runewidth.Truncate(renderHelp(m.cfg.Keys), s.width, "…")))
	return b.String()
}

// drawCountdown paints three flip-style boxes with unit labels underneath.
func drawCountdown(c *canvas, left, top, hours, minutes, seconds int) {
	border := lipgloss.RoundedBorder()
	units := []struct {
		value int
		label string
	}{
		{hours, "HOURS"},
		{minutes, "MINUTES"},
		{seconds, "SECONDS"},
	}
	boxLeft := (columnWidth - digitWidth - 2) / 2
	for i, u := range units {
		x := left + i*(columnWidth+1)
		bx := x + boxLeft
		c.put(bx, top, border.TopLeft+strings.Repeat(border.Top, digitWidth)+border.TopRight, stBorder)
		c.put(bx, top+1, border.Left, stBorder)
		c.put(bx+1, top+1, fmt.Sprintf(" %02d ", u.value), stDigits)
		c.put(bx+1+digitWidth, top+1, border.Right, stBorder)
		c.put(bx, top+2, border.BottomLeft+strings.Repeat(border.Bottom, digitWidth)+border.BottomRight, stBorder)
		c.put(x+(columnWidth-len(u.label))/2, top+3, u.label, stLabel)
		if i < len(units)-1 {
			c.put(x+columnWidth, top+1, ":", stBorder)
		}
	}
}

func (m Model) renderJournal() string {
	k := m.cfg.Keys
	help := helpStyle.Render(fmt.Sprintf("%s done for the day • %s another prompt • %s close", k.Done, k.Another, k.Cancel))
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Journal"),
		"",
		promptStyle.Render(m.prompt),
		"",
		m.journal.View(),
		"",
		help,
	)
	return lipgloss.Place(m.screen.width, m.screen.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(content))
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s prompt • %s done (in journal) • %s another • %s close • %s shoo bird • %s quit",
		k.Prompt, k.Done, k.Another, k.Cancel, k.Reposition, k.Quit)
}
