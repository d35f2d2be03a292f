package sim

import (
	"encoding/json"
	"errors"
	"os"

	"towerdefense-sim/internal/telemetry"
)

// FileWriter writes state, event and entity rows to JSONL files.
type FileWriter struct {
	stateFile  *os.File
	eventFile  *os.File
	entityFile *os.File
	stateEnc   *json.Encoder
	eventEnc   *json.Encoder
	entityEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. eventPath or entityPath may be empty to skip those logs.
func NewFileWriter(statePath, eventPath, entityPath string) (*FileWriter, error) {
	sf, err := os.Create(statePath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{stateFile: sf, stateEnc: json.NewEncoder(sf)}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	if entityPath != "" {
		nf, err := os.Create(entityPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.entityFile = nf
		fw.entityEnc = json.NewEncoder(nf)
	}
	return fw, nil
}

// WriteState logs a single state row.
func (f *FileWriter) WriteState(row telemetry.StateRow) error {
	return f.stateEnc.Encode(row)
}

// WriteEvent logs a single event row, if enabled.
func (f *FileWriter) WriteEvent(row telemetry.EventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(row)
}

// WriteEvents logs multiple event rows.
func (f *FileWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, r := range rows {
		if err := f.WriteEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEntities logs the entity rows of one tick, if enabled.
func (f *FileWriter) WriteEntities(rows []telemetry.EntityRow) error {
	if f.entityEnc == nil {
		return nil
	}
	for _, r := range rows {
		if err := f.entityEnc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var errs []error
	for _, file := range []*os.File{f.stateFile, f.eventFile, f.entityFile} {
		if file != nil {
			errs = append(errs, file.Close())
		}
	}
	return errors.Join(errs...)
}
