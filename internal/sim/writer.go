package sim

import "towerdefense-sim/internal/telemetry"

// StateWriter is the interface every output writer implements: one status row per tick.
type StateWriter interface {
	WriteState(telemetry.StateRow) error
}

// EventWriter handles game event rows.
type EventWriter interface {
	WriteEvent(telemetry.EventRow) error
}

// Optional: event writers may support batch mode
type batchEventWriter interface {
	WriteEvents([]telemetry.EventRow) error
}

// EntityWriter receives the positions of every active entity per tick.
type EntityWriter interface {
	WriteEntities([]telemetry.EntityRow) error
}

// AdminStatusWriter allows writers to receive admin UI status updates.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}

func writeEvents(w EventWriter, rows []telemetry.EventRow) error {
	if bw, ok := w.(batchEventWriter); ok {
		return bw.WriteEvents(rows)
	}
	for _, r := range rows {
		if err := w.WriteEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// ControllableWriter is implemented by interactive writers that can steer the run.
type ControllableWriter interface {
	SetController(Controller)
}
