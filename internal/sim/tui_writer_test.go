package sim

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"towerdefense-sim/internal/config"
	"towerdefense-sim/internal/game"
	"towerdefense-sim/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

type fakeController struct {
	started bool
	placed  []game.Point
	err     error
	snap    game.Snapshot
}

func (c *fakeController) Start() error { c.started = true; return c.err }
func (c *fakeController) PlaceTower(x, y float64) error {
	c.placed = append(c.placed, game.Point{X: x, Y: y})
	return c.err
}
func (c *fakeController) NextLevel() error        { return c.err }
func (c *fakeController) Restart() error          { return c.err }
func (c *fakeController) Snapshot() game.Snapshot { return c.snap }

func testCampaign() *config.Campaign {
	return &config.Campaign{
		Board:   config.Board{Width: 800, Height: 600},
		Player:  config.Player{StartHealth: 10, StartMoney: 100},
		Tower:   config.Tower{Range: 150, FireRate: 1, Cost: 50},
		Enemies: []config.EnemyType{{Kind: "grunt", MaxHealth: 6}},
		Levels: []config.Level{
			{Number: 1, VictoryScore: 100, Enemy: "grunt", Path: config.PathSpec{Turns: 3}, Waves: []config.Wave{{Count: 4, IntervalMs: 100}}},
		},
	}
}

func update(t *testing.T, m tuiModel, msg tea.Msg) (tuiModel, tea.Cmd) {
	t.Helper()
	mi, cmd := m.Update(msg)
	return mi.(tuiModel), cmd
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	if err := w.WriteState(telemetry.StateRow{Level: 1, Phase: "playing"}); err != nil {
		t.Fatalf("state: %v", err)
	}
	if _, ok := p.msgs[0].(stateMsg); !ok {
		t.Fatalf("expected stateMsg, got %T", p.msgs[0])
	}
	ev := telemetry.EventRow{Type: "enemy_defeated", EntityID: 3, Money: 10, Score: 15, Timestamp: time.Unix(0, 0).UTC()}
	if err := w.WriteEvents([]telemetry.EventRow{ev}); err != nil {
		t.Fatalf("event: %v", err)
	}
	em, ok := p.msgs[1].(eventMsg)
	if !ok {
		t.Fatalf("expected eventMsg, got %T", p.msgs[1])
	}
	if !strings.Contains(em.line, "enemy_defeated") || !strings.Contains(em.line, "id=3") {
		t.Errorf("unexpected event line %q", em.line)
	}
	if err := w.WriteEntities([]telemetry.EntityRow{{Kind: telemetry.KindTower}}); err != nil {
		t.Fatalf("entities: %v", err)
	}
	if _, ok := p.msgs[2].(entitiesMsg); !ok {
		t.Fatalf("expected entitiesMsg, got %T", p.msgs[2])
	}
	w.SetAdminStatus(true)
	if _, ok := p.msgs[3].(adminMsg); !ok {
		t.Fatalf("expected adminMsg, got %T", p.msgs[3])
	}
	w.SetController(&fakeController{})
	if _, ok := p.msgs[4].(setControllerMsg); !ok {
		t.Fatalf("expected setControllerMsg, got %T", p.msgs[4])
	}
}

func TestWrapToggle(t *testing.T) {
	c := testCampaign()
	c.Levels[0].Enemy = "grunt with a very long name that needs wrapping"
	m := newTUIModel(c)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 30})
	m, _ = update(t, m, logMsg{line: "one two three four five six"})
	lines := strings.Split(m.vp.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	before := m.header
	m, _ = update(t, m, keys("w"))
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.vp.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
	if strings.Count(m.header, "\n") <= strings.Count(before, "\n") {
		t.Fatalf("expected level list to wrap")
	}
}

func TestScrollToggle(t *testing.T) {
	m := newTUIModel(nil)
	m.vp.Height = 1
	m.vp.Width = 20
	m, _ = update(t, m, logMsg{line: "l1"})
	m, _ = update(t, m, logMsg{line: "l2"})
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	m, _ = update(t, m, keys("a"))
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	m, _ = update(t, m, logMsg{line: "l3"})
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.vp.YOffset)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.vp.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.vp.YOffset)
	}
	m, _ = update(t, m, keys("a"))
	if !m.autoscroll {
		t.Fatalf("autoscroll should be on")
	}
	if want := len(m.logs) - m.vp.Height; m.vp.YOffset != want {
		t.Fatalf("expected YOffset %d, got %d", want, m.vp.YOffset)
	}
}

func TestControlKeys(t *testing.T) {
	ctrl := &fakeController{snap: game.Snapshot{Path: []game.Point{{X: 0, Y: 300}, {X: 400, Y: 300}}}}
	m := newTUIModel(testCampaign())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m, _ = update(t, m, setControllerMsg{ctrl: ctrl})
	if len(m.path) != 2 {
		t.Fatalf("path not loaded from controller: %v", m.path)
	}

	_, cmd := update(t, m, keys("s"))
	if cmd == nil {
		t.Fatalf("start should return a command")
	}
	if msg := cmd(); msg != nil || !ctrl.started {
		t.Fatalf("start not forwarded: %v", msg)
	}

	m, _ = update(t, m, keys("p"))
	if !m.placeDialog {
		t.Fatalf("placement dialog not opened")
	}
	if got := m.placeInput.Value(); got != "200,240" {
		t.Errorf("suggested placement %q, want 200,240", got)
	}
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.placeDialog || cmd == nil {
		t.Fatalf("enter should close the dialog and place")
	}
	cmd()
	if len(ctrl.placed) != 1 || ctrl.placed[0] != (game.Point{X: 200, Y: 240}) {
		t.Fatalf("unexpected placements %v", ctrl.placed)
	}

	ctrl.err = errors.New("not enough money")
	_, cmd = update(t, m, keys("n"))
	msg, ok := cmd().(logMsg)
	if !ok || !strings.Contains(msg.line, "not enough money") {
		t.Fatalf("controller error not reported: %v", msg)
	}
}

func TestControlWithoutSimulator(t *testing.T) {
	m := newTUIModel(nil)
	_, cmd := update(t, m, keys("r"))
	if msg, ok := cmd().(logMsg); !ok || !strings.Contains(msg.line, "no simulator") {
		t.Fatalf("expected a log line, got %v", msg)
	}
}

func TestSummaryCounts(t *testing.T) {
	m := newTUIModel(nil)
	base := time.Unix(100, 0)
	for i, typ := range []string{"projectile_fired", "projectile_fired", "projectile_missed", "enemy_defeated", "enemy_defeated"} {
		m, _ = update(t, m, eventMsg{line: typ, row: telemetry.EventRow{Type: typ, Timestamp: base.Add(time.Duration(i) * time.Second)}})
	}
	if len(m.logs) != 3 {
		t.Errorf("fired shots should not be logged, got %d lines", len(m.logs))
	}
	s := m.renderSummary()
	if !strings.Contains(s, "kills=2") || !strings.Contains(s, "hit=50%") {
		t.Errorf("unexpected summary %q", s)
	}
	if len(m.killHistory) != 2 || m.killHistory[0] != 1 || m.killHistory[1] != 1 {
		t.Errorf("kill history %v, want [1 1]", m.killHistory)
	}
}

func TestRenderMap(t *testing.T) {
	ctrl := &fakeController{snap: game.Snapshot{Path: []game.Point{{X: 0, Y: 300}, {X: 800, Y: 300}}}}
	m := newTUIModel(testCampaign())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 41, Height: 30})
	m, _ = update(t, m, setControllerMsg{ctrl: ctrl})
	m, _ = update(t, m, stateMsg{telemetry.StateRow{Level: 1}})
	m, _ = update(t, m, entitiesMsg{rows: []telemetry.EntityRow{
		{Kind: telemetry.KindTower, X: 400, Y: 100},
		{Kind: telemetry.KindEnemy, X: 200, Y: 300, Health: 1},
	}})
	m, _ = update(t, m, keys("m"))
	out := m.View()
	for _, want := range []string{"board 800x600", "T", "#", bgRed + colorWhite + "E"} {
		if !strings.Contains(out, want) {
			t.Errorf("map missing %q", want)
		}
	}
}

func TestParsePlacement(t *testing.T) {
	x, y, err := parsePlacement(" 120.5, 80 ")
	if err != nil || x != 120.5 || y != 80 {
		t.Fatalf("got %v %v %v", x, y, err)
	}
	if _, _, err := parsePlacement("120"); !errors.Is(err, errPlacementFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if _, _, err := parsePlacement("a,b"); err == nil {
		t.Fatalf("expected parse error")
	}
}
