package sim

import (
	"errors"
	"io"

	"towerdefense-sim/internal/telemetry"
)

// MultiWriter fans out state, event and entity rows to multiple writers. Event
// and entity rows only reach writers implementing the matching interface.
type MultiWriter struct {
	writers []StateWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(writers ...StateWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteState sends a state row to all writers.
func (mw *MultiWriter) WriteState(row telemetry.StateRow) error {
	var errs []error
	for _, w := range mw.writers {
		errs = append(errs, w.WriteState(row))
	}
	return errors.Join(errs...)
}

// WriteEvent sends an event row to all event writers.
func (mw *MultiWriter) WriteEvent(row telemetry.EventRow) error {
	return mw.WriteEvents([]telemetry.EventRow{row})
}

// WriteEvents sends multiple events to all event writers, using batch if supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.EventRow) error {
	var errs []error
	for _, w := range mw.writers {
		if ew, ok := w.(EventWriter); ok {
			errs = append(errs, writeEvents(ew, rows))
		}
	}
	return errors.Join(errs...)
}

// WriteEntities sends entity rows to all entity writers.
func (mw *MultiWriter) WriteEntities(rows []telemetry.EntityRow) error {
	var errs []error
	for _, w := range mw.writers {
		if nw, ok := w.(EntityWriter); ok {
			errs = append(errs, nw.WriteEntities(rows))
		}
	}
	return errors.Join(errs...)
}

// SetAdminStatus forwards the admin UI status to writers that display it.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.writers {
		if aw, ok := w.(AdminStatusWriter); ok {
			aw.SetAdminStatus(listening)
		}
	}
}

// SetController hands ctrl to every interactive writer.
func (mw *MultiWriter) SetController(ctrl Controller) {
	for _, w := range mw.writers {
		if cw, ok := w.(ControllableWriter); ok {
			cw.SetController(ctrl)
		}
	}
}

// Close closes every writer that holds resources.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
