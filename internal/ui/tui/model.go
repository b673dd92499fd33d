package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/stats"
	"github.com/bamsammich/dupes/internal/ui"
)

type viewMode int

const (
	viewFeed viewMode = iota
	viewRate
)

// Bubble Tea messages.
type progressMsg event.Progress
type channelDoneMsg struct{}
type tickMsg time.Time
type saveResultMsg struct{ err error }

// readNextEvent returns a tea.Cmd that blocks on the progress channel.
func readNextEvent(ch <-chan event.Progress) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return channelDoneMsg{}
		}
		return progressMsg(ev)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// saveModal manages the text input overlay for saving the report.
type saveModal struct {
	active bool
	input  string
	cursor int
}

func (s *saveModal) open(name string) {
	s.active = true
	s.input = name
	s.cursor = len(name)
}

func (s *saveModal) insertRune(r rune) {
	s.input = s.input[:s.cursor] + string(r) + s.input[s.cursor:]
	s.cursor += len(string(r))
}

func (s *saveModal) backspace() {
	if s.cursor > 0 {
		s.input = s.input[:s.cursor-1] + s.input[s.cursor:]
		s.cursor--
	}
}

func (s *saveModal) moveLeft() {
	if s.cursor > 0 {
		s.cursor--
	}
}

func (s *saveModal) moveRight() {
	if s.cursor < len(s.input) {
		s.cursor++
	}
}

func (s *saveModal) render() string {
	prompt := styleSavePrompt.Render("Save report to: ")
	cursor := styleSaveInput.Render("█")
	return "  " + prompt + styleSaveInput.Render(s.input[:s.cursor]) + cursor + styleSaveInput.Render(s.input[s.cursor:])
}

// Model is the root Bubble Tea model.
type Model struct {
	events  <-chan event.Progress
	stats   stats.ReadTicker
	workers int
	hooks   Hooks

	mode      viewMode
	feed      feedView
	rate      rateView
	width     int
	height    int
	statusMsg string // transient notification
	done      bool   // progress channel closed
	outcome   engine.State
	quitting  bool

	lastSnap stats.Snapshot
	save     saveModal
}

// Hooks connect the model to the running scan. Any of them may be nil.
type Hooks struct {
	// Cancel asks the scan to stop.
	Cancel func()
	// Result is called once the progress channel closes.
	Result func() engine.Result
	// Save writes the report to path.
	Save func(path string) error
}

// NewModel creates a new TUI model.
func NewModel(events <-chan event.Progress, collector stats.ReadTicker, workers int, hooks Hooks) Model {
	return Model{
		events:  events,
		stats:   collector,
		workers: workers,
		hooks:   hooks,
		feed:    newFeedView(),
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		readNextEvent(m.events),
		tickCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case progressMsg:
		m.feed.handleEvent(event.Progress(msg))
		return m, readNextEvent(m.events)

	case channelDoneMsg:
		m.done = true
		m.lastSnap = m.stats.Snapshot()
		if m.hooks.Result != nil {
			res := m.hooks.Result()
			m.outcome = res.Status
			m.feed.setGroups(res.Groups)
			if res.Err != nil {
				m.statusMsg = res.Err.Error()
			}
		}
		return m, nil

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.stats.Tick()
		m.lastSnap = m.stats.Snapshot()
		return m, tickCmd()

	case saveResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("save failed: %v", msg.err)
		} else {
			m.statusMsg = fmt.Sprintf("saved to %s", m.save.input)
		}
		m.save.active = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// When the save modal is active, capture all input.
	if m.save.active {
		return m.handleSaveKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if !m.done && m.hooks.Cancel != nil {
			m.hooks.Cancel()
		}
		m.quitting = true
		return m, tea.Quit

	case "r":
		m.mode = viewRate
		m.statusMsg = ""

	case "f":
		m.mode = viewFeed
		m.statusMsg = ""

	case "j", "down":
		m.feed.scrollDown()

	case "k", "up":
		m.feed.scrollUp()

	case "G":
		m.feed.scrollToBottom()

	case "g":
		m.feed.scrollToTop()

	case "s":
		if m.done && m.hooks.Save != nil {
			m.save.open(fmt.Sprintf("dupes-%s.json", time.Now().Format("2006-01-02-150405")))
			m.statusMsg = ""
		}
	}

	return m, nil
}

func (m Model) handleSaveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.save.active = false
		m.statusMsg = ""
	case tea.KeyEnter:
		return m, m.writeReport(m.save.input)
	case tea.KeyBackspace:
		m.save.backspace()
	case tea.KeyLeft:
		m.save.moveLeft()
	case tea.KeyRight:
		m.save.moveRight()
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.save.insertRune(r)
		}
	}
	return m, nil
}

func (m Model) writeReport(path string) tea.Cmd {
	save := m.hooks.Save
	return func() tea.Msg {
		return saveResultMsg{err: save(path)}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	contentHeight := max(3, m.height-3) // header, status line, footer

	switch m.mode {
	case viewFeed:
		b.WriteString(m.feed.view(m.width, contentHeight, m.lastSnap, m.done))
	case viewRate:
		b.WriteString(m.rate.view(m.width, m.lastSnap, m.stats, m.workers))
	}

	switch {
	case m.save.active:
		b.WriteString(m.save.render())
	case m.statusMsg != "":
		b.WriteString(styleStatus.Render("  " + m.statusMsg))
	}
	b.WriteByte('\n')

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	snap := m.lastSnap
	label := styleHeaderLabel.Render("dupes")

	if m.done {
		icon := styleIconDone.Render("done")
		if m.outcome != engine.Completed {
			icon = styleIconFailed.Render(strings.ToLower(m.outcome.String()))
		}
		return styleHeader.Render(fmt.Sprintf("  %s  %s  %s groups  %s wasted  %s",
			label, icon,
			ui.FormatCount(snap.Groups),
			ui.FormatBytes(snap.WastedBytes),
			ui.FormatDuration(snap.Elapsed),
		))
	}

	p := m.feed.latest[m.feed.current]
	pct := ui.Fraction(p)
	return styleHeader.Render(fmt.Sprintf("  %s  %-12s  %3.0f%%  %s  %s files  %s  %dw",
		label,
		ui.PhaseLabel(m.feed.current),
		pct*100,
		styleProgressFilled.Render(ui.ProgressBar(pct, 10)),
		ui.FormatCount(snap.FilesWalked),
		ui.FormatDuration(snap.Elapsed),
		m.workers,
	))
}

func (m Model) renderFooter() string {
	type keybind struct {
		key   string
		label string
	}

	binds := []keybind{
		{"q", "cancel"},
		{"r", "rate"},
		{"f", "feed"},
	}
	if m.done {
		binds = []keybind{
			{"s", "save"},
			{"j/k", "scroll"},
			{"r", "rate"},
			{"f", "groups"},
			{"q", "quit"},
		}
	}

	parts := make([]string, 0, len(binds))
	for _, kb := range binds {
		parts = append(parts,
			styleKeybindKey.Render(kb.key)+" "+styleKeybindLabel.Render(kb.label))
	}

	return "  " + strings.Join(parts, "   ")
}
