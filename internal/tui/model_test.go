package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	"price-tracker/internal/chart"
	"price-tracker/internal/domain"
	"price-tracker/internal/tracker"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeCoordinator struct {
	mu          sync.Mutex
	state       tracker.TrackerState
	summary     *domain.PriceSummary
	activated   []domain.Interval
	initialized int
	refreshed   int
}

func newFakeCoordinator() *fakeCoordinator {
	return &fakeCoordinator{state: tracker.TrackerState{
		ActiveInterval: domain.Interval1D,
		State:          tracker.State{Phase: tracker.PhaseReady, Interval: domain.Interval1D},
	}}
}

func (f *fakeCoordinator) Initialize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initialized++
	return nil
}

func (f *fakeCoordinator) Activate(ctx context.Context, iv domain.Interval) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, iv)
	f.state.ActiveInterval = iv
	return nil
}

func (f *fakeCoordinator) RefreshPrice(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed++
}

func (f *fakeCoordinator) State() tracker.TrackerState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeCoordinator) Summary() (domain.PriceSummary, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summary == nil {
		return domain.PriceSummary{}, false
	}
	return *f.summary, true
}

func newTestModel(coord *fakeCoordinator) (Model, *chart.Terminal) {
	surface := chart.NewTerminal(chart.InitialWidth, chart.InitialHeight)
	m := NewModel(context.Background(), coord, surface, Options{
		Currency:    "usd",
		ChartWidth:  chart.InitialWidth,
		ChartHeight: chart.InitialHeight,
	})
	return m, surface
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPickKeyActivatesInterval(t *testing.T) {
	coord := newFakeCoordinator()
	m, _ := newTestModel(coord)

	_, cmd := m.Update(keyRunes("5"))
	if cmd == nil {
		t.Fatal("expected activate command")
	}
	msg := cmd()
	am, ok := msg.(activatedMsg)
	if !ok || am.interval != domain.Interval6M {
		t.Fatalf("unexpected message %#v", msg)
	}
	if len(coord.activated) != 1 || coord.activated[0] != domain.Interval6M {
		t.Fatalf("unexpected activations: %v", coord.activated)
	}
}

func TestArrowKeysStepThroughIntervals(t *testing.T) {
	coord := newFakeCoordinator()
	m, _ := newTestModel(coord)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	cmd()
	if coord.State().ActiveInterval != domain.Interval3D {
		t.Fatalf("expected 3d, got %s", coord.State().ActiveInterval)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	cmd()
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	cmd()
	if coord.State().ActiveInterval != domain.Interval1D {
		t.Fatalf("left should clamp at 1d, got %s", coord.State().ActiveInterval)
	}
}

func TestFullscreenTogglesChartSize(t *testing.T) {
	coord := newFakeCoordinator()
	m, surface := newTestModel(coord)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	updated, _ = updated.Update(keyRunes("f"))
	if w, h := surface.Size(); w != 160 || h != 49 {
		t.Fatalf("expected fullscreen 160x49, got %dx%d", w, h)
	}

	updated, _ = updated.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if w, h := surface.Size(); w != 120 || h != 39 {
		t.Fatalf("expected resize while fullscreen, got %dx%d", w, h)
	}

	updated.Update(keyRunes("f"))
	if w, h := surface.Size(); w != chart.InitialWidth || h != chart.InitialHeight {
		t.Fatalf("expected initial size after exit, got %dx%d", w, h)
	}
}

func TestReloadRefreshesPrice(t *testing.T) {
	coord := newFakeCoordinator()
	m, _ := newTestModel(coord)

	_, cmd := m.Update(keyRunes("r"))
	if _, ok := cmd().(priceRefreshedMsg); !ok {
		t.Fatal("expected price refresh message")
	}
	if coord.refreshed != 1 {
		t.Fatalf("expected one refresh, got %d", coord.refreshed)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(newFakeCoordinator())
	_, cmd := m.Update(keyRunes("q"))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit")
	}
}

func TestViewShowsHeaderErrorAndButtons(t *testing.T) {
	coord := newFakeCoordinator()
	summary := domain.NewPriceSummary("usd", 60000, -3.0)
	coord.summary = &summary
	coord.state.LastError = "Too many requests! Please wait a minute and try again to load the 6m data."

	m, surface := newTestModel(coord)
	s := domain.Series{Interval: domain.Interval1D, Points: []domain.PricePoint{
		{Timestamp: 1, Price: 1, Volume: 1},
		{Timestamp: 2, Price: 2, Volume: 2},
	}}
	p := s.Payload()
	surface.SetPriceData(p.Price)
	surface.SetVolumeData(p.Volume)

	view := m.View()
	for _, want := range []string{"60000.00", "USD", "-1855.67 (-3.00%)", "Chart", "1y", "load the 6m data", "█"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestInitRunsInitialize(t *testing.T) {
	coord := newFakeCoordinator()
	m, _ := newTestModel(coord)

	if msg := m.initialize()(); msg.(initializedMsg).err != nil {
		t.Fatalf("unexpected init error: %v", msg)
	}
	if coord.initialized != 1 {
		t.Fatalf("expected Initialize once, got %d", coord.initialized)
	}
	if m.Init() == nil {
		t.Fatal("expected init command")
	}
}
