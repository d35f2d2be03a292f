// Package scenario describes autopilot scripts: ordered phases that place towers
// along the path and move on when game events cross a threshold.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Trigger event names understood by the autopilot besides the core event types.
const (
	EventTimeElapsed = "time_elapsed" // seconds of play
	EventMoney       = "money"        // current money
	EventScore       = "score"        // current score
)

var ErrNoPhases = errors.New("script has no phases")

// Script is an autopilot plan with ordered phases.
type Script struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase places its towers once when entered and waits for a trigger.
type Phase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Placements  []Placement `yaml:"placements,omitempty"`
	Start       bool        `yaml:"start,omitempty"`
	Triggers    []Trigger   `yaml:"triggers,omitempty"`
}

// Placement positions a tower relative to the path: At is the fraction of the path
// length, Offset the perpendicular distance (positive is left of travel).
type Placement struct {
	At     float64 `yaml:"at"`
	Offset float64 `yaml:"offset"`
}

// Trigger moves the script to another phase based on an event.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value"`
	Next  string `yaml:"next"`
}

// Event represents a runtime occurrence that may advance the script.
type Event struct {
	Type  string
	Value int
}

// Load reads a YAML script definition from disk.
func Load(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Phases) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPhases)
	}
	return &s, nil
}

// Phase looks up a phase by name.
func (s *Script) Phase(name string) (Phase, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// NextPhase returns the name of the next phase given the current phase and event.
// If no trigger matches, ok will be false.
func (s *Script) NextPhase(current string, ev Event) (next string, ok bool) {
	p, found := s.Phase(current)
	if !found {
		return "", false
	}
	for _, tr := range p.Triggers {
		if tr.Event == ev.Type && ev.Value >= tr.Value {
			return tr.Next, true
		}
	}
	return "", false
}
