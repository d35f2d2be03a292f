package sim

import (
	"context"
	"errors"
	"time"

	"towerdefense-sim/internal/game"
	"towerdefense-sim/internal/logging"
)

// Run starts the simulation loop and stops when the context is done or the
// campaign has finished.
func (s *Simulator) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "run_id", s.runID, "level", s.Level(), "tick_interval", s.tickInterval)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if done := s.tick(ctx); done {
				log.Info("simulation finished", "run_id", s.runID)
				return nil
			}
		case <-ctx.Done():
			log.Info("stopping simulator")
			return nil
		}
	}
}

// tick advances the game to the current clock time, writes telemetry and notifies
// subscribers. It reports whether the simulation is finished.
func (s *Simulator) tick(ctx context.Context) bool {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	ts := s.now()
	events := s.game.Frame(float64(ts.Sub(s.start)) / float64(time.Millisecond))
	if s.pilot != nil {
		if err := s.pilot.Step(s.game, events); err != nil {
			log.Error("autopilot step failed", "phase", s.pilot.Phase(), "err", err)
		}
	}
	snap := s.game.Snapshot()
	level := s.levelNum
	s.totalTicks++
	finished := s.advanceCampaign(ctx)
	ts = ts.UTC()
	state := s.gen.State(snap, ts)
	rows := s.gen.Events(events, snap.Ticks, ts)
	s.recordEvents(rows)
	s.publish(snap)
	s.mu.Unlock()

	for _, ev := range events {
		if ev.Type == game.EventPhaseChanged {
			log.Info("phase changed", "level", level, "phase", ev.Phase, "score", snap.Score, "health", snap.Health)
		}
	}

	if err := s.writer.WriteState(state); err != nil {
		log.Error("state write failed", "err", err)
	}
	if ew, ok := s.writer.(EventWriter); ok && len(rows) > 0 {
		if err := writeEvents(ew, rows); err != nil {
			log.Error("event write failed", "count", len(rows), "err", err)
		}
	}
	if nw, ok := s.writer.(EntityWriter); ok {
		if err := nw.WriteEntities(s.gen.Entities(snap, ts)); err != nil {
			log.Error("entity write failed", "err", err)
		}
	}
	return finished
}

// advanceCampaign applies the auto-campaign and tick-limit rules. Callers hold mu.
func (s *Simulator) advanceCampaign(ctx context.Context) bool {
	if s.maxTicks > 0 && s.totalTicks >= s.maxTicks {
		s.finished = true
	}
	if s.autoCampaign {
		switch s.game.Phase() {
		case game.PhaseDefeat:
			s.finished = true
		case game.PhaseVictory:
			if err := s.nextLevel(); err != nil {
				if !errors.Is(err, ErrLastLevel) {
					logging.FromContext(ctx).Error("next level failed", "err", err)
				}
				s.finished = true
			}
		}
	}
	return s.finished
}

// Subscribe returns a channel receiving the latest snapshot after every tick. Slow
// readers only ever see the most recent snapshot. Call cancel to unsubscribe.
func (s *Simulator) Subscribe() (<-chan game.Snapshot, func()) {
	ch := make(chan game.Snapshot, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

// publish hands snap to every subscriber without blocking. Callers hold mu.
func (s *Simulator) publish(snap game.Snapshot) {
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
