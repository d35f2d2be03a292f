package sim

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"time"

	"towerdefense-sim/internal/telemetry"
)

// rowKind peeks at a JSONL line to tell event rows from state rows.
type rowKind struct {
	Type string `json:"type"`
}

// logRow is one decoded line of a state or event log.
type logRow struct {
	ts    time.Time
	state *telemetry.StateRow
	event *telemetry.EventRow
}

func decodeRow(raw json.RawMessage) (logRow, error) {
	var kind rowKind
	if err := json.Unmarshal(raw, &kind); err != nil {
		return logRow{}, err
	}
	if kind.Type != "" {
		var row telemetry.EventRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return logRow{}, err
		}
		return logRow{ts: row.Timestamp, event: &row}, nil
	}
	var row telemetry.StateRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return logRow{}, err
	}
	return logRow{ts: row.Timestamp, state: &row}, nil
}

// player paces rows by their timestamps and hands them to a writer.
type player struct {
	writer StateWriter
	events EventWriter
	speed  float64
	prev   time.Time
}

func newPlayer(writer StateWriter, speed float64) *player {
	ew, _ := writer.(EventWriter)
	return &player{writer: writer, events: ew, speed: speed}
}

func (p *player) play(row logRow) error {
	if !p.prev.IsZero() && p.speed > 0 {
		diff := row.ts.Sub(p.prev)
		if p.speed != 1 {
			diff = time.Duration(float64(diff) / p.speed)
		}
		if diff > 0 {
			time.Sleep(diff)
		}
	}
	p.prev = row.ts
	if row.event != nil {
		if p.events == nil {
			return nil
		}
		return p.events.WriteEvent(*row.event)
	}
	return p.writer.WriteState(*row.state)
}

// ReplayLog replays state and event rows from r to writer. Event rows are only
// delivered when writer implements EventWriter. A speed >0 accelerates playback.
// If speed <= 0, no artificial delay is inserted.
func ReplayLog(r io.Reader, writer StateWriter, speed float64) error {
	dec := json.NewDecoder(r)
	p := newPlayer(writer, speed)
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		row, err := decodeRow(raw)
		if err != nil {
			return err
		}
		if err := p.play(row); err != nil {
			return err
		}
	}
}

// ReplayLogFile opens a file and replays its rows.
func ReplayLogFile(path string, writer StateWriter, speed float64) error {
	return ReplayLogFiles([]string{path}, writer, speed)
}

// ReplayLogFiles merges the rows of several logs, such as a state log and its
// event companion, in timestamp order and replays them. Rows with equal
// timestamps keep their file order.
func ReplayLogFiles(paths []string, writer StateWriter, speed float64) error {
	if len(paths) == 1 {
		f, err := os.Open(paths[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return ReplayLog(f, writer, speed)
	}

	var rows []logRow
	for _, path := range paths {
		fileRows, err := readLogRows(path)
		if err != nil {
			return err
		}
		rows = append(rows, fileRows...)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })

	p := newPlayer(writer, speed)
	for _, row := range rows {
		if err := p.play(row); err != nil {
			return err
		}
	}
	return nil
}

func readLogRows(path string) ([]logRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []logRow
	dec := json.NewDecoder(f)
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return rows, nil
			}
			return nil, err
		}
		row, err := decodeRow(raw)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
