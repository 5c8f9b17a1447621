package tui

import (
	"context"
	"errors"
	"io"
	"strings"

	"price-tracker/internal/domain"
	"price-tracker/internal/tracker"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var menu = []string{"Summary", "Chart", "Statistics", "Analysis", "Settings"}

const activeMenu = 1

// Coordinator is the part of tracker.Coordinator the UI drives.
type Coordinator interface {
	Initialize(ctx context.Context) error
	Activate(ctx context.Context, iv domain.Interval) error
	RefreshPrice(ctx context.Context)
	State() tracker.TrackerState
	Summary() (domain.PriceSummary, bool)
}

// Surface is a chart surface that can also draw itself.
type Surface interface {
	tracker.ChartSurface
	Render() string
}

type initializedMsg struct{ err error }

type activatedMsg struct {
	interval domain.Interval
	err      error
}

type priceRefreshedMsg struct{}

// Model is the bubbletea model for one tracker session.
type Model struct {
	ctx      context.Context
	coord    Coordinator
	chart    Surface
	currency string
	logger   *log.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width      int
	height     int
	baseWidth  int
	baseHeight int
	fullscreen bool
}

type Options struct {
	Currency string
	// ChartWidth and ChartHeight are the non-fullscreen chart size.
	ChartWidth  int
	ChartHeight int
	Logger      *log.Logger
}

func NewModel(ctx context.Context, coord Coordinator, chart Surface, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	m := Model{
		ctx:        ctx,
		coord:      coord,
		chart:      chart,
		currency:   strings.ToUpper(opts.Currency),
		logger:     opts.Logger.WithPrefix("tui"),
		keys:       defaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		baseWidth:  opts.ChartWidth,
		baseHeight: opts.ChartHeight,
	}
	m.chart.Resize(m.baseWidth, m.baseHeight)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initialize())
}

func (m Model) initialize() tea.Cmd {
	return func() tea.Msg {
		return initializedMsg{err: m.coord.Initialize(m.ctx)}
	}
}

func (m Model) activate(iv domain.Interval) tea.Cmd {
	return func() tea.Msg {
		return activatedMsg{interval: iv, err: m.coord.Activate(m.ctx, iv)}
	}
}

func (m Model) refreshPrice() tea.Cmd {
	return func() tea.Msg {
		m.coord.RefreshPrice(m.ctx)
		return priceRefreshedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case initializedMsg:
		if msg.err != nil && !errors.Is(msg.err, tracker.ErrClosed) {
			m.logger.Error("initialize failed", "err", msg.err)
		}
		return m, nil

	case activatedMsg:
		if msg.err != nil && !errors.Is(msg.err, tracker.ErrClosed) {
			m.logger.Error("activate failed", "interval", msg.interval, "err", msg.err)
		}
		return m, nil

	case priceRefreshedMsg:
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Prev):
		return m, m.activate(m.neighbor(-1))

	case key.Matches(msg, m.keys.Next):
		return m, m.activate(m.neighbor(1))

	case key.Matches(msg, m.keys.Pick):
		idx := int(msg.String()[0] - '1')
		return m, m.activate(domain.Intervals()[idx])

	case key.Matches(msg, m.keys.Fullscreen):
		m.fullscreen = !m.fullscreen
		m.resizeChart()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.refreshPrice()
	}
	return m, nil
}

// neighbor returns the interval step positions away from the active one, clamped.
func (m Model) neighbor(step int) domain.Interval {
	ivs := domain.Intervals()
	active := m.coord.State().ActiveInterval
	idx := 0
	for i, iv := range ivs {
		if iv == active {
			idx = i
			break
		}
	}
	idx = min(max(idx+step, 0), len(ivs)-1)
	return ivs[idx]
}

func (m *Model) resizeChart() {
	if m.fullscreen && m.width > 0 && m.height > 0 {
		// One row is kept for the help line.
		m.chart.Resize(m.width, m.height-1)
		return
	}
	w := m.baseWidth
	if m.width > 0 {
		w = min(w, m.width)
	}
	m.chart.Resize(w, m.baseHeight)
}

func (m Model) View() string {
	if m.fullscreen {
		return m.chart.Render() + "\n" + m.help.View(m.keys)
	}

	st := m.coord.State()
	sections := []string{}
	if header := m.headerView(); header != "" {
		sections = append(sections, header)
	}
	sections = append(sections, m.menuView(), "", m.buttonsView(st))
	if st.LastError != "" {
		sections = append(sections, errorStyle.Render(st.LastError))
	}
	sections = append(sections, "", m.chart.Render(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	summary, ok := m.coord.Summary()
	if !ok {
		return ""
	}
	price := lipgloss.JoinHorizontal(lipgloss.Top,
		priceStyle.Render(summary.FormatPrice()),
		" ",
		currencyStyle.Render(m.currency),
	)
	changeStyle := gainStyle
	if summary.Negative() {
		changeStyle = lossStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left, price, changeStyle.Render(summary.FormatChange()))
}

func (m Model) menuView() string {
	items := make([]string, len(menu))
	for i, item := range menu {
		if i == activeMenu {
			items[i] = menuActiveStyle.Render(item)
		} else {
			items[i] = menuStyle.Render(item)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func (m Model) buttonsView(st tracker.TrackerState) string {
	buttons := []string{buttonStyle.Render("[f] Fullscreen")}
	for _, iv := range domain.Intervals() {
		if iv == st.ActiveInterval {
			buttons = append(buttons, buttonActiveStyle.Render(iv.String()))
		} else {
			buttons = append(buttons, buttonStyle.Render(iv.String()))
		}
	}
	if st.State.Phase == tracker.PhaseLoading {
		buttons = append(buttons, " "+m.spinner.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}
