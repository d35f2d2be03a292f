package sim

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"testing"
	"time"

	"towerdefense-sim/internal/config"
	"towerdefense-sim/internal/game"
	"towerdefense-sim/internal/scenario"
	"towerdefense-sim/internal/telemetry"
)

// collectWriter records every row handed to it.
type collectWriter struct {
	states   []telemetry.StateRow
	events   []telemetry.EventRow
	entities []telemetry.EntityRow
}

func (c *collectWriter) WriteState(r telemetry.StateRow) error {
	c.states = append(c.states, r)
	return nil
}

func (c *collectWriter) WriteEvent(r telemetry.EventRow) error {
	c.events = append(c.events, r)
	return nil
}

func (c *collectWriter) WriteEntities(rows []telemetry.EntityRow) error {
	c.entities = append(c.entities, rows...)
	return nil
}

func (c *collectWriter) hasEvent(typ game.EventType) bool {
	for _, e := range c.events {
		if e.Type == string(typ) {
			return true
		}
	}
	return false
}

// One quick enemy per level and a tower that kills it in a single hit.
const shortCampaign = `
board: {width: 800, height: 600, reserved: {x: 600, y: 0, w: 200, h: 100}}
player: {start_health: 5, start_money: 100, money_per_level: 10}
tower: {range: 1000, fire_rate: 20, cost: 40}
projectile: {speed: 2000, radius: 4, damage: 5}
enemies:
  - {kind: scout, radius: 20, speed: 50, max_health: 3, money: 10, score: 10}
levels:
  - number: 1
    victory_score: 10
    enemy: scout
    path:
      points: [{x: 0, y: 300}, {x: 400, y: 300}]
    waves:
      - {count: 1, interval_ms: 100}
  - number: 2
    victory_score: 10
    enemy: scout
    path:
      points: [{x: 0, y: 300}, {x: 400, y: 300}]
    waves:
      - {count: 1, interval_ms: 100}
`

func loadShortCampaign(t *testing.T) *config.Campaign {
	t.Helper()
	schema, err := os.ReadFile("../../schemas/levels.cue")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	c, err := config.Parse("short.yaml", []byte(shortCampaign), schema)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSimulator(t *testing.T, w StateWriter) (*Simulator, *fakeClock) {
	t.Helper()
	s, err := NewSimulator("run-test", loadShortCampaign(t), 1, w, 50*time.Millisecond, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s.now = clock.Now
	s.start = clock.now
	return s, clock
}

// runUntil ticks every 50ms until cond holds or the tick budget runs out.
func runUntil(t *testing.T, s *Simulator, clock *fakeClock, budget int, cond func(game.Snapshot) bool) game.Snapshot {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < budget; i++ {
		s.tick(ctx)
		if snap := s.Snapshot(); cond(snap) {
			return snap
		}
		clock.Advance(50 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %d ticks: %+v", budget, s.Snapshot())
	return game.Snapshot{}
}

func TestSimulator_TickWritesTelemetry(t *testing.T) {
	w := &collectWriter{}
	s, _ := newTestSimulator(t, w)
	if err := s.PlaceTower(100, 250); err != nil {
		t.Fatalf("PlaceTower: %v", err)
	}
	s.tick(context.Background())

	if len(w.states) != 1 {
		t.Fatalf("expected one state row, got %d", len(w.states))
	}
	st := w.states[0]
	if st.RunID != "run-test" || st.Level != 1 || st.Phase != string(game.PhaseIdle) {
		t.Errorf("unexpected state row: %+v", st)
	}
	if st.Money != 60 || st.Towers != 1 {
		t.Errorf("money=%d towers=%d, want 60 and 1", st.Money, st.Towers)
	}
	if !w.hasEvent(game.EventTowerPlaced) {
		t.Errorf("tower_placed event not written: %+v", w.events)
	}
	if len(w.entities) != 1 || w.entities[0].Kind != telemetry.KindTower {
		t.Errorf("expected the tower entity row, got %+v", w.entities)
	}
	if got := s.RecentEvents(); len(got) != len(w.events) {
		t.Errorf("history has %d events, writer saw %d", len(got), len(w.events))
	}
}

func TestSimulator_ManualLevelVictory(t *testing.T) {
	w := &collectWriter{}
	s, clock := newTestSimulator(t, w)
	if err := s.NextLevel(); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("NextLevel before victory: %v", err)
	}
	if err := s.PlaceTower(100, 250); err != nil {
		t.Fatalf("PlaceTower: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	snap := runUntil(t, s, clock, 100, func(s game.Snapshot) bool { return s.Phase.Terminal() })
	if snap.Phase != game.PhaseVictory {
		t.Fatalf("phase %s, want victory", snap.Phase)
	}
	if snap.Kills != 1 || snap.Score != 10 || snap.Health != 5 {
		t.Errorf("unexpected end state: %+v", snap)
	}
	if s.Finished() {
		t.Errorf("manual campaign should not finish on its own")
	}
	for _, typ := range []game.EventType{game.EventWaveStarted, game.EventEnemySpawned, game.EventProjectileFired, game.EventEnemyDefeated} {
		if !w.hasEvent(typ) {
			t.Errorf("missing %s event", typ)
		}
	}

	if err := s.NextLevel(); err != nil {
		t.Fatalf("NextLevel: %v", err)
	}
	snap = s.Snapshot()
	if s.Level() != 2 || snap.Phase != game.PhaseIdle || snap.Money != 110 {
		t.Errorf("level 2 not set up: level=%d %+v", s.Level(), snap)
	}
}

func TestSimulator_AutoCampaignWithAutopilot(t *testing.T) {
	w := &collectWriter{}
	s, clock := newTestSimulator(t, w)
	s.SetAutoCampaign(true)
	script := &scenario.Script{
		Name: "one-tower",
		Phases: []scenario.Phase{
			{Name: "open", Placements: []scenario.Placement{{At: 0.25, Offset: 50}}, Start: true},
		},
	}
	if err := s.SetScript(script); err != nil {
		t.Fatalf("SetScript: %v", err)
	}

	ctx := context.Background()
	finished := false
	for i := 0; i < 400 && !finished; i++ {
		finished = s.tick(ctx)
		clock.Advance(50 * time.Millisecond)
	}
	if !finished || !s.Finished() {
		t.Fatalf("campaign did not finish: level=%d %+v", s.Level(), s.Snapshot())
	}
	if s.Level() != 2 || s.Snapshot().Phase != game.PhaseVictory {
		t.Errorf("expected victory in the last level, got level=%d phase=%s", s.Level(), s.Snapshot().Phase)
	}
	levels := map[int]bool{}
	for _, st := range w.states {
		levels[st.Level] = true
	}
	if !levels[1] || !levels[2] {
		t.Errorf("state rows should cover both levels: %v", levels)
	}
}

func TestSimulator_MaxTicks(t *testing.T) {
	s, _ := newTestSimulator(t, &collectWriter{})
	s.SetMaxTicks(3)
	ctx := context.Background()
	if s.tick(ctx) || s.tick(ctx) {
		t.Fatalf("finished before the tick limit")
	}
	if !s.tick(ctx) {
		t.Fatalf("expected finish at the tick limit")
	}
}

func TestSimulator_RestartAndReloadedCampaign(t *testing.T) {
	s, _ := newTestSimulator(t, &collectWriter{})
	if err := s.PlaceTower(100, 250); err != nil {
		t.Fatalf("PlaceTower: %v", err)
	}

	reloaded := loadShortCampaign(t)
	reloaded.Player.StartMoney = 500
	s.SetCampaign(reloaded)
	if s.Snapshot().Money != 60 {
		t.Fatalf("reload must not touch the running level")
	}
	if err := s.Restart(); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	snap := s.Snapshot()
	if snap.Money != 500 || len(snap.Towers) != 0 || snap.Phase != game.PhaseIdle {
		t.Errorf("restart did not rebuild the level from the reloaded campaign: %+v", snap)
	}
	if s.Campaign() != reloaded {
		t.Errorf("reloaded campaign not in effect")
	}
}

func TestSimulator_SubscribeGetsLatestSnapshot(t *testing.T) {
	s, clock := newTestSimulator(t, &collectWriter{})
	ch, cancel := s.Subscribe()
	defer cancel()

	ctx := context.Background()
	s.tick(ctx)
	clock.Advance(50 * time.Millisecond)
	if err := s.PlaceTower(100, 250); err != nil {
		t.Fatalf("PlaceTower: %v", err)
	}
	s.tick(ctx)

	select {
	case snap := <-ch:
		if len(snap.Towers) != 1 {
			t.Fatalf("expected the latest snapshot, got %+v", snap)
		}
	default:
		t.Fatalf("no snapshot published")
	}
	select {
	case <-ch:
		t.Fatalf("older snapshot should have been dropped")
	default:
	}

	cancel()
	s.tick(ctx)
	select {
	case <-ch:
		t.Fatalf("unsubscribed channel received a snapshot")
	default:
	}
}

func TestSimulator_RunStopsOnContext(t *testing.T) {
	s, err := NewSimulator("run-ctx", loadShortCampaign(t), 1, &collectWriter{}, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNewSimulator_UnknownLevel(t *testing.T) {
	_, err := NewSimulator("r", loadShortCampaign(t), 9, &collectWriter{}, time.Second, nil)
	if !errors.Is(err, config.ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
}
