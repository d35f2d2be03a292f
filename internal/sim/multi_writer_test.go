package sim

import (
	"errors"
	"testing"

	"towerdefense-sim/internal/telemetry"
)

type stateOnlyWriter struct {
	states int
	err    error
}

func (s *stateOnlyWriter) WriteState(telemetry.StateRow) error {
	s.states++
	return s.err
}

type closingWriter struct {
	collectWriter
	closed bool
	admin  bool
	ctrl   Controller
}

func (c *closingWriter) Close() error                  { c.closed = true; return nil }
func (c *closingWriter) SetAdminStatus(l bool)         { c.admin = l }
func (c *closingWriter) SetController(ctrl Controller) { c.ctrl = ctrl }

func TestMultiWriterFanOut(t *testing.T) {
	plain := &stateOnlyWriter{}
	full := &closingWriter{}
	mw := NewMultiWriter(plain, full)

	if err := mw.WriteState(telemetry.StateRow{Tick: 1}); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	if err := mw.WriteEvents([]telemetry.EventRow{{Type: "wave_started"}, {Type: "enemy_spawned"}}); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if err := mw.WriteEntities([]telemetry.EntityRow{{Kind: telemetry.KindEnemy}}); err != nil {
		t.Fatalf("WriteEntities: %v", err)
	}
	mw.SetAdminStatus(true)
	mw.SetController(&fakeController{})
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if plain.states != 1 || len(full.states) != 1 {
		t.Errorf("state not delivered to every writer: %d %d", plain.states, len(full.states))
	}
	if len(full.events) != 2 || len(full.entities) != 1 {
		t.Errorf("events=%d entities=%d, want 2 and 1", len(full.events), len(full.entities))
	}
	if !full.closed || !full.admin || full.ctrl == nil {
		t.Errorf("close, admin status or controller not forwarded")
	}
}

func TestMultiWriterKeepsWritingAfterError(t *testing.T) {
	boom := errors.New("disk full")
	bad := &stateOnlyWriter{err: boom}
	good := &stateOnlyWriter{}
	mw := NewMultiWriter(bad, good)

	err := mw.WriteState(telemetry.StateRow{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if good.states != 1 {
		t.Fatalf("second writer skipped after first failed")
	}
}
