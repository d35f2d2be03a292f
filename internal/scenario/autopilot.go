package scenario

import (
	"errors"
	"math"

	"towerdefense-sim/internal/game"
)

// Controller is the slice of a run the autopilot acts on.
type Controller interface {
	PlaceTower(pos game.Point) error
	Start() error
	Money() int
	Score() int
	Elapsed() float64
}

// Autopilot plays a Script against one run. Placements that cannot be afforded yet
// stay queued and are retried on every step.
type Autopilot struct {
	script  *Script
	path    game.Path
	phase   string
	entered bool
	queue   []Placement
	counts  map[string]int
	placed  int
}

// NewAutopilot starts script at its first phase.
func NewAutopilot(script *Script, path game.Path) (*Autopilot, error) {
	if script == nil || len(script.Phases) == 0 {
		return nil, ErrNoPhases
	}
	return &Autopilot{
		script: script,
		path:   path,
		phase:  script.Phases[0].Name,
		counts: make(map[string]int),
	}, nil
}

// Phase returns the name of the current script phase.
func (a *Autopilot) Phase() string { return a.phase }

// Placed returns how many towers the autopilot has bought.
func (a *Autopilot) Placed() int { return a.placed }

// Step feeds the events of the last tick to the autopilot and lets it act on ctrl.
func (a *Autopilot) Step(ctrl Controller, events []game.Event) error {
	for _, ev := range events {
		switch ev.Type {
		case game.EventWaveStarted:
			a.counts[string(ev.Type)] = ev.Wave
		default:
			a.counts[string(ev.Type)]++
		}
	}

	if !a.entered {
		if err := a.enter(ctrl); err != nil {
			return err
		}
	}
	if err := a.drain(ctrl); err != nil {
		return err
	}

	p, _ := a.script.Phase(a.phase)
	for _, tr := range p.Triggers {
		next, ok := a.script.NextPhase(a.phase, Event{Type: tr.Event, Value: a.value(ctrl, tr.Event)})
		if ok {
			a.phase = next
			a.entered = false
			break
		}
	}
	return nil
}

func (a *Autopilot) enter(ctrl Controller) error {
	a.entered = true
	p, ok := a.script.Phase(a.phase)
	if !ok {
		return nil
	}
	a.queue = append(a.queue, p.Placements...)
	if err := a.drain(ctrl); err != nil {
		return err
	}
	if p.Start {
		if err := ctrl.Start(); err != nil && !errors.Is(err, game.ErrNotIdle) {
			return err
		}
	}
	return nil
}

// drain buys queued towers in order until money runs out. A finished run drops
// whatever is still queued.
func (a *Autopilot) drain(ctrl Controller) error {
	for len(a.queue) > 0 {
		err := ctrl.PlaceTower(a.Position(a.queue[0]))
		switch {
		case errors.Is(err, game.ErrInsufficientFunds):
			return nil
		case errors.Is(err, game.ErrRunOver):
			a.queue = nil
			return nil
		case err != nil:
			return err
		}
		a.queue = a.queue[1:]
		a.placed++
	}
	return nil
}

func (a *Autopilot) value(ctrl Controller, event string) int {
	switch event {
	case EventTimeElapsed:
		return int(ctrl.Elapsed() / 1000)
	case EventMoney:
		return ctrl.Money()
	case EventScore:
		return ctrl.Score()
	}
	return a.counts[event]
}

// Position resolves a placement to board coordinates.
func (a *Autopilot) Position(pl Placement) game.Point {
	on := a.path.PointAt(pl.At)
	if pl.Offset == 0 {
		return on
	}
	i := a.path.SegmentAt(pl.At)
	from, to := a.path.At(i-1), a.path.At(i)
	length := from.Distance(to)
	if length == 0 {
		return on
	}
	// Left-hand normal of the travel direction.
	nx, ny := -(to.Y-from.Y)/length, (to.X-from.X)/length
	return game.Point{
		X: math.Round(on.X + nx*pl.Offset),
		Y: math.Round(on.Y + ny*pl.Offset),
	}
}
