// Game loop and run state machine
package game

import (
	"errors"
	"fmt"
	"math"
)

// Phase is the top-level state of a run.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePlaying Phase = "playing"
	PhaseVictory Phase = "victory"
	PhaseDefeat  Phase = "defeat"
)

// Terminal reports whether no further simulation happens in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat
}

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRunOver           = errors.New("run is over")
	ErrNotIdle           = errors.New("run already started")
	ErrInvalidLevel      = errors.New("invalid level")
	ErrInvalidPosition   = errors.New("tower position must be finite")
)

// Level is everything a run needs besides its path.
type Level struct {
	Number       int
	VictoryScore int
	StartHealth  int
	StartMoney   int
	Waves        []Wave
	Enemy        EnemyStats
	Tower        TowerStats
	// MaxFrameDelta caps the milliseconds simulated by one Frame; 0 disables the cap.
	MaxFrameDelta float64
}

// Game owns one run: the active entities, the economy and the phase.
type Game struct {
	level       Level
	path        Path
	phase       Phase
	health      int
	money       int
	score       int
	towers      []*Tower
	enemies     *EnemySet
	projectiles []*Projectile
	sched       *Scheduler
	ids         IDSource

	lastFrame float64
	haveFrame bool
	ticks     uint64
	elapsed   float64
	kills     int
	leaks     int
	pending   []Event
}

// New sets up an idle run of level along path.
func New(level Level, path Path) (*Game, error) {
	if path.Len() < 2 {
		return nil, ErrShortPath
	}
	if level.Tower.FireRate <= 0 {
		return nil, fmt.Errorf("%w: tower fire rate must be positive", ErrInvalidLevel)
	}
	if level.StartHealth <= 0 {
		return nil, fmt.Errorf("%w: start health must be positive", ErrInvalidLevel)
	}
	sched, err := NewScheduler(level.Waves)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	return &Game{
		level:   level,
		path:    path,
		phase:   PhaseIdle,
		health:  level.StartHealth,
		money:   level.StartMoney,
		enemies: NewEnemySet(),
		sched:   sched,
	}, nil
}

// Start moves an idle run into play.
func (g *Game) Start() error {
	if g.phase != PhaseIdle {
		return ErrNotIdle
	}
	g.setPhase(PhasePlaying)
	g.pending = append(g.pending, Event{Type: EventWaveStarted, Wave: g.sched.WaveNumber(), FinalWave: g.sched.FinalWave()})
	return nil
}

// PlaceTower buys a tower at pos. Towers can be placed before the run starts and
// while it is playing.
func (g *Game) PlaceTower(pos Point) error {
	if !finite(pos.X) || !finite(pos.Y) {
		// The position is left out of the event so it stays encodable.
		g.pending = append(g.pending, Event{Type: EventPlacementRejected, Reason: "invalid_position"})
		return ErrInvalidPosition
	}
	if g.phase.Terminal() {
		g.pending = append(g.pending, Event{Type: EventPlacementRejected, Position: pos, Reason: "run_over"})
		return ErrRunOver
	}
	cost := g.level.Tower.Cost
	if g.money < cost {
		g.pending = append(g.pending, Event{Type: EventPlacementRejected, Position: pos, Money: g.money, Reason: "insufficient_funds"})
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, g.money, cost)
	}
	g.money -= cost
	tw := NewTower(g.ids.Next(), pos, g.level.Tower)
	g.towers = append(g.towers, tw)
	g.pending = append(g.pending, Event{Type: EventTowerPlaced, EntityID: tw.ID(), Position: pos, Money: -cost})
	return nil
}

// Frame advances the run to timestamp, a monotonic time in milliseconds. The first
// frame only records the timestamp. Gaps larger than MaxFrameDelta are clamped.
func (g *Game) Frame(timestamp float64) []Event {
	if !g.haveFrame {
		g.haveFrame = true
		g.lastFrame = timestamp
		events := g.pending
		g.pending = nil
		return events
	}
	dt := timestamp - g.lastFrame
	g.lastFrame = timestamp
	if dt < 0 {
		dt = 0
	}
	if g.level.MaxFrameDelta > 0 && dt > g.level.MaxFrameDelta {
		dt = g.level.MaxFrameDelta
	}
	return g.Step(dt)
}

// Step simulates dt milliseconds and returns the events of this tick, including any
// placement or phase events queued since the previous tick.
func (g *Game) Step(dt float64) []Event {
	events := g.pending
	g.pending = nil
	if g.phase != PhasePlaying {
		return events
	}
	g.ticks++
	g.elapsed += dt
	t := &Tick{Delta: dt, Enemies: g.enemies, IDs: &g.ids}

	st := g.sched.Tick(dt, g.enemies.Len())
	if st.WaveStarted {
		events = append(events, Event{Type: EventWaveStarted, Wave: g.sched.WaveNumber(), FinalWave: g.sched.FinalWave()})
	}
	if st.Spawn {
		e := NewEnemy(g.ids.Next(), g.path, g.level.Enemy)
		g.enemies.Add(e)
		events = append(events, Event{Type: EventEnemySpawned, EntityID: e.ID(), Position: e.Position(), Wave: g.sched.WaveNumber()})
	}

	for _, tw := range g.towers {
		if p := tw.Update(t); p != nil {
			g.projectiles = append(g.projectiles, p)
			events = append(events, Event{Type: EventProjectileFired, EntityID: p.ID(), TargetID: p.Target(), Position: p.Position()})
		}
	}

	for _, p := range g.projectiles {
		p.Update(t)
		if p.Missed() {
			events = append(events, Event{Type: EventProjectileMissed, EntityID: p.ID(), TargetID: p.Target(), Position: p.Position()})
		}
	}

	for _, e := range g.enemies.All() {
		e.Update(dt)
	}

	// Rewards use the tower count and score from before this tick's kills.
	towers, scoreBefore := len(g.towers), g.score
	for _, e := range g.enemies.All() {
		if !e.IsDefeated() {
			continue
		}
		money := MoneyReward(e.MoneyValue(), towers)
		score := ScoreReward(e.ScoreValue(), scoreBefore)
		g.money += money
		g.score += score
		g.kills++
		events = append(events, Event{Type: EventEnemyDefeated, EntityID: e.ID(), Position: e.Position(), Money: money, Score: score})
	}

	leaked := 0
	for _, e := range g.enemies.All() {
		if e.HasReachedEnd() {
			leaked++
			events = append(events, Event{Type: EventEnemyLeaked, EntityID: e.ID(), Position: e.Position()})
		}
	}
	g.health -= leaked
	g.leaks += leaked

	g.enemies.Retain(func(e *Enemy) bool { return !e.Gone() })
	kept := g.projectiles[:0]
	for _, p := range g.projectiles {
		if !p.Done() {
			kept = append(kept, p)
		}
	}
	clear(g.projectiles[len(kept):])
	g.projectiles = kept

	switch {
	case g.health <= 0:
		g.setPhase(PhaseDefeat)
	case g.score >= g.level.VictoryScore && g.enemies.Len() == 0 && g.sched.Exhausted():
		g.setPhase(PhaseVictory)
	}
	events = append(events, g.pending...)
	g.pending = nil
	return events
}

func (g *Game) setPhase(p Phase) {
	prev := g.phase
	g.phase = p
	g.pending = append(g.pending, Event{Type: EventPhaseChanged, Phase: p, PrevPhase: prev})
}

func (g *Game) Phase() Phase { return g.phase }
func (g *Game) Health() int  { return g.health }
func (g *Game) Money() int   { return g.money }
func (g *Game) Score() int   { return g.score }
func (g *Game) Level() Level { return g.level }
func (g *Game) Path() Path   { return g.path }

// Elapsed returns the simulated play time in milliseconds.
func (g *Game) Elapsed() float64 { return g.elapsed }

// Ticks returns how many simulated ticks have run while playing.
func (g *Game) Ticks() uint64 { return g.ticks }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
