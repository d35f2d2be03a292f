// Simulator driving a tower defense campaign in real time
package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"towerdefense-sim/internal/config"
	"towerdefense-sim/internal/game"
	"towerdefense-sim/internal/scenario"
	"towerdefense-sim/internal/telemetry"
)

var (
	ErrNotFinished = errors.New("level not won yet")
	ErrLastLevel   = errors.New("no level after the current one")
)

// historySize bounds the recent-event log kept for the admin UI.
const historySize = 200

// Simulator owns one campaign: the current level's game plus the writers and
// controllers that observe and steer it. All access to the game goes through mu.
type Simulator struct {
	runID        string
	campaign     *config.Campaign
	next         *config.Campaign
	levelNum     int
	game         *game.Game
	script       *scenario.Script
	pilot        *scenario.Autopilot
	autoCampaign bool
	maxTicks     uint64
	totalTicks   uint64
	finished     bool

	gen          *telemetry.Generator
	writer       StateWriter
	tickInterval time.Duration
	rand         *rand.Rand
	now          func() time.Time
	start        time.Time

	history []telemetry.EventRow
	subs    map[chan game.Snapshot]struct{}
	mu      sync.Mutex
}

// NewSimulator sets up level of campaign in the idle phase.
func NewSimulator(runID string, campaign *config.Campaign, level int, writer StateWriter, tickInterval time.Duration, rng *rand.Rand) (*Simulator, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Simulator{
		runID:        runID,
		campaign:     campaign,
		gen:          telemetry.NewGenerator(runID),
		writer:       writer,
		tickInterval: tickInterval,
		rand:         rng,
		now:          time.Now,
		subs:         make(map[chan game.Snapshot]struct{}),
	}
	s.start = s.now()
	if err := s.setupLevel(level); err != nil {
		return nil, err
	}
	return s, nil
}

// RunID returns the identifier tagging this run's telemetry.
func (s *Simulator) RunID() string { return s.runID }

// SetScript installs an autopilot script; it takes effect immediately and on every
// level set up afterwards. nil removes the autopilot.
func (s *Simulator) SetScript(sc *scenario.Script) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = sc
	s.pilot = nil
	if sc == nil {
		return nil
	}
	p, err := scenario.NewAutopilot(sc, s.game.Path())
	if err != nil {
		return err
	}
	s.pilot = p
	return nil
}

// SetAutoCampaign makes the simulator advance to the next level after a victory and
// stop after the final level or a defeat.
func (s *Simulator) SetAutoCampaign(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoCampaign = on
}

// SetMaxTicks stops the simulator after n ticks in total; 0 means no limit.
func (s *Simulator) SetMaxTicks(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxTicks = n
}

// SetCampaign stores a reloaded campaign. It applies to the next level set up by
// NextLevel or Restart; the level in progress is not touched.
func (s *Simulator) SetCampaign(c *config.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = c
}

// setupLevel replaces the game with a fresh run of level n. Callers hold mu, except
// the constructor.
func (s *Simulator) setupLevel(n int) error {
	if s.next != nil {
		s.campaign = s.next
		s.next = nil
	}
	lvl, err := s.campaign.GameLevel(n)
	if err != nil {
		return err
	}
	path, err := s.campaign.Path(n, s.rand)
	if err != nil {
		return err
	}
	g, err := game.New(lvl, path)
	if err != nil {
		return fmt.Errorf("level %d: %w", n, err)
	}
	s.game = g
	s.levelNum = n
	s.pilot = nil
	if s.script != nil {
		p, err := scenario.NewAutopilot(s.script, path)
		if err != nil {
			return err
		}
		s.pilot = p
	}
	return nil
}

// Start begins the current level.
func (s *Simulator) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Start()
}

// PlaceTower buys a tower at (x, y) in the current level.
func (s *Simulator) PlaceTower(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.PlaceTower(game.Point{X: x, Y: y})
}

// NextLevel sets up the following level once the current one is won.
func (s *Simulator) NextLevel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLevel()
}

func (s *Simulator) nextLevel() error {
	if s.game.Phase() != game.PhaseVictory {
		return ErrNotFinished
	}
	n, ok := s.campaign.Next(s.levelNum)
	if !ok {
		return ErrLastLevel
	}
	return s.setupLevel(n)
}

// Restart rebuilds the current level with a new path.
func (s *Simulator) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = false
	return s.setupLevel(s.levelNum)
}

// Level returns the number of the level being played.
func (s *Simulator) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levelNum
}

// Snapshot returns a copy of the current level's state.
func (s *Simulator) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// Finished reports whether the campaign reached its end or the tick limit.
func (s *Simulator) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Campaign returns the campaign in effect for the current level.
func (s *Simulator) Campaign() *config.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaign
}

// RecentEvents returns a copy of the most recent event rows, oldest first.
func (s *Simulator) RecentEvents() []telemetry.EventRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]telemetry.EventRow, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Simulator) recordEvents(rows []telemetry.EventRow) {
	s.history = append(s.history, rows...)
	if over := len(s.history) - historySize; over > 0 {
		s.history = append(s.history[:0], s.history[over:]...)
	}
}
