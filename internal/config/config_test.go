package config

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const schemaPath = "../../schemas/levels.cue"

const smallCampaign = `
board: {width: 800, height: 600, reserved: {x: 600, y: 0, w: 200, h: 100}}
player: {start_health: 5, start_money: 60, money_per_level: 20}
tower: {range: 120, fire_rate: 2, cost: 40}
projectile: {speed: 300, radius: 4, damage: 2}
enemies:
  - {kind: scout, radius: 20, speed: 50, max_health: 3, money: 10, score: 10}
levels:
  - number: 1
    victory_score: 30
    enemy: scout
    path:
      points: [{x: 0, y: 300}, {x: 400, y: 300}, {x: 400, y: 500}]
    waves:
      - {count: 3, interval_ms: 500}
  - number: 2
    victory_score: 60
    enemy: scout
    path: {turns: 4, margin: 50}
    waves:
      - {count: 5, interval_ms: 400}
`

func readSchema(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	return b
}

func TestLoad_DefaultCampaign(t *testing.T) {
	c, err := Load("../../config/levels.yaml", schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(c.Levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(c.Levels))
	}
	// Path margins differ from the level numbers they sit next to.
	for i, want := range []float64{100, 80, 70} {
		if got := c.Levels[i].Path.Margin; got != want {
			t.Errorf("level %d margin %v, want %v", c.Levels[i].Number, got, want)
		}
	}
	lvl, err := c.GameLevel(3)
	if err != nil {
		t.Fatalf("GameLevel: %v", err)
	}
	if lvl.VictoryScore != 10000 || len(lvl.Waves) != 7 {
		t.Errorf("unexpected level 3: %+v", lvl)
	}
	if lvl.StartMoney != 200 {
		t.Errorf("level 3 start money %d, want 200", lvl.StartMoney)
	}
	if lvl.Enemy.Speed != 85 || lvl.Tower.Range != 150 || lvl.Tower.Projectile.Speed != 400 {
		t.Errorf("stats not carried over: %+v", lvl)
	}
}

func TestParse_SmallCampaign(t *testing.T) {
	c, err := Parse("small.yaml", []byte(smallCampaign), readSchema(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	path, err := c.Path(1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if path.Len() != 3 || path.End().Y != 500 {
		t.Errorf("fixed path not used: %+v", path.Points())
	}
	gen, err := c.Path(2, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("generated Path: %v", err)
	}
	if gen.End().X != 750 {
		t.Errorf("generated base at x=%v, want 750", gen.End().X)
	}
	if next, ok := c.Next(1); !ok || next != 2 {
		t.Errorf("Next(1) = %d, %v", next, ok)
	}
	if _, ok := c.Next(2); ok {
		t.Errorf("Next after the last level should report false")
	}
	if _, err := c.GameLevel(9); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestParse_SchemaRejectsBadValues(t *testing.T) {
	bad := []struct {
		name string
		yaml string
	}{
		{"empty waves", `
board: {width: 800, height: 600, reserved: {x: 600, y: 0, w: 200, h: 100}}
player: {start_health: 5, start_money: 60, money_per_level: 20}
tower: {range: 120, fire_rate: 2, cost: 40}
projectile: {speed: 300, radius: 4, damage: 2}
enemies: [{kind: scout, radius: 20, speed: 50, max_health: 3, money: 10, score: 10}]
levels: [{number: 1, victory_score: 30, enemy: scout, path: {turns: 2, margin: 50}, waves: []}]
`},
		{"zero fire rate", `
board: {width: 800, height: 600, reserved: {x: 600, y: 0, w: 200, h: 100}}
player: {start_health: 5, start_money: 60, money_per_level: 20}
tower: {range: 120, fire_rate: 0, cost: 40}
projectile: {speed: 300, radius: 4, damage: 2}
enemies: [{kind: scout, radius: 20, speed: 50, max_health: 3, money: 10, score: 10}]
levels: [{number: 1, victory_score: 30, enemy: scout, path: {turns: 2, margin: 50}, waves: [{count: 1, interval_ms: 10}]}]
`},
		{"unknown field", smallCampaign + "\nextra: true\n"},
	}
	schema := readSchema(t)
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.name, []byte(tc.yaml), schema); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestParse_UnknownEnemy(t *testing.T) {
	doc := `
board: {width: 800, height: 600, reserved: {x: 600, y: 0, w: 200, h: 100}}
player: {start_health: 5, start_money: 60, money_per_level: 20}
tower: {range: 120, fire_rate: 2, cost: 40}
projectile: {speed: 300, radius: 4, damage: 2}
enemies: [{kind: scout, radius: 20, speed: 50, max_health: 3, money: 10, score: 10}]
levels: [{number: 1, victory_score: 30, enemy: tank, path: {turns: 2, margin: 50}, waves: [{count: 1, interval_ms: 10}]}]
`
	if _, err := Parse("x.yaml", []byte(doc), readSchema(t)); !errors.Is(err, ErrUnknownEnemy) {
		t.Fatalf("expected ErrUnknownEnemy, got %v", err)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "levels.yaml")
	if err := os.WriteFile(cfgPath, []byte(smallCampaign), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(chan *Campaign, 1)
	w := &Watcher{ConfigPath: cfgPath, SchemaPath: schemaPath, OnChange: func(c *Campaign) {
		select {
		case got <- c:
		default:
		}
	}}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before touching the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(cfgPath, []byte(smallCampaign), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-got:
		if len(c.Levels) != 2 {
			t.Errorf("reloaded %d levels, want 2", len(c.Levels))
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no reload after write")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}
