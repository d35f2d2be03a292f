package game

import "errors"

// ErrNoWaves is returned when a level has an empty wave schedule.
var ErrNoWaves = errors.New("wave schedule is empty")

// Wave is a batch of enemies spawned at a fixed interval.
type Wave struct {
	Count    int     `json:"count"`
	Interval float64 `json:"interval_ms"`
}

// Scheduler sequences timed spawns across the wave schedule. It never advances past
// the final wave.
type Scheduler struct {
	waves     []Wave
	index     int
	remaining int
	interval  float64
	timer     float64
}

// SchedulerTick reports what happened during one scheduler tick.
type SchedulerTick struct {
	Spawn       bool
	WaveStarted bool
}

// NewScheduler loads the first wave of waves.
func NewScheduler(waves []Wave) (*Scheduler, error) {
	if len(waves) == 0 {
		return nil, ErrNoWaves
	}
	cp := make([]Wave, len(waves))
	copy(cp, waves)
	s := &Scheduler{waves: cp}
	s.LoadWave()
	return s, nil
}

// LoadWave resets the spawn state from the wave at the current index.
func (s *Scheduler) LoadWave() {
	w := s.waves[s.index]
	s.remaining = w.Count
	s.interval = w.Interval
	s.timer = w.Interval
}

// Tick advances the spawn timer by dt milliseconds. active is the number of enemies
// still in play; the next wave loads only once the current one is fully spawned and
// cleared. At most one enemy spawns per tick.
func (s *Scheduler) Tick(dt float64, active int) SchedulerTick {
	var res SchedulerTick
	if s.remaining == 0 && active == 0 && s.index < len(s.waves)-1 {
		s.index++
		s.LoadWave()
		res.WaveStarted = true
	}

	s.timer -= dt
	if s.timer <= 0 && s.remaining > 0 {
		s.timer = s.interval
		s.remaining--
		res.Spawn = true
	}
	return res
}

// WaveNumber returns the 1-based number of the current wave.
func (s *Scheduler) WaveNumber() int { return s.index + 1 }

// TotalWaves returns the length of the schedule.
func (s *Scheduler) TotalWaves() int { return len(s.waves) }

// Remaining returns how many enemies of the current wave are still to spawn.
func (s *Scheduler) Remaining() int { return s.remaining }

// FinalWave reports whether the current wave is the last one.
func (s *Scheduler) FinalWave() bool { return s.index == len(s.waves)-1 }

// Exhausted reports whether every wave has been fully spawned.
func (s *Scheduler) Exhausted() bool { return s.FinalWave() && s.remaining == 0 }
