package sim

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"towerdefense-sim/internal/telemetry"
)

//go:generate go tool mockgen -destination=./mocks/greptime_client_mock.go -package=mocks . GreptimeClient

// GreptimeClient is the part of the ingester client the writer uses.
type GreptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

const (
	defaultGreptimePort = 4001
	greptimeTimeout     = 5 * time.Second
)

// GreptimeDBWriter writes run state, events and entity positions to GreptimeDB.
type GreptimeDBWriter struct {
	client      GreptimeClient
	stateTable  string
	eventTable  string
	entityTable string
}

// NewGreptimeDBWriter connects to endpoint (host or host:port) and database.
// Tables are created by GreptimeDB on first write.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return NewGreptimeDBWriterWithClient(client), nil
}

// NewGreptimeDBWriterWithClient wraps an existing client using the configured table names.
func NewGreptimeDBWriterWithClient(client GreptimeClient) *GreptimeDBWriter {
	return &GreptimeDBWriter{
		client:      client,
		stateTable:  telemetry.StateTableName,
		eventTable:  telemetry.EventTableName,
		entityTable: telemetry.EntityTableName,
	}
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// No port given.
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid greptime port %q: %w", portStr, err)
	}
	return host, port, nil
}

func (w *GreptimeDBWriter) write(name string, tbl *table.Table) error {
	ctx, cancel := context.WithTimeout(context.Background(), greptimeTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		return fmt.Errorf("greptime write %s: %w", name, err)
	}
	return nil
}

// WriteState inserts a single state row.
func (w *GreptimeDBWriter) WriteState(row telemetry.StateRow) error {
	return w.WriteStates([]telemetry.StateRow{row})
}

// WriteStates inserts multiple state rows.
func (w *GreptimeDBWriter) WriteStates(rows []telemetry.StateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("level", types.INT64)
	tbl.AddFieldColumn("tick", types.UINT64)
	tbl.AddFieldColumn("phase", types.STRING)
	tbl.AddFieldColumn("health", types.INT64)
	tbl.AddFieldColumn("money", types.INT64)
	tbl.AddFieldColumn("score", types.INT64)
	tbl.AddFieldColumn("victory_score", types.INT64)
	tbl.AddFieldColumn("wave", types.INT64)
	tbl.AddFieldColumn("total_waves", types.INT64)
	tbl.AddFieldColumn("to_spawn", types.INT64)
	tbl.AddFieldColumn("enemies", types.INT64)
	tbl.AddFieldColumn("towers", types.INT64)
	tbl.AddFieldColumn("projectiles", types.INT64)
	tbl.AddFieldColumn("money_reward", types.INT64)
	tbl.AddFieldColumn("score_reward", types.INT64)
	tbl.AddFieldColumn("kills", types.INT64)
	tbl.AddFieldColumn("leaks", types.INT64)
	tbl.AddFieldColumn("elapsed_ms", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		err := tbl.AddRow(r.RunID, int64(r.Level), r.Tick, r.Phase,
			int64(r.Health), int64(r.Money), int64(r.Score), int64(r.VictoryScore),
			int64(r.Wave), int64(r.TotalWaves), int64(r.ToSpawn),
			int64(r.Enemies), int64(r.Towers), int64(r.Projectiles),
			int64(r.MoneyReward), int64(r.ScoreReward), int64(r.Kills), int64(r.Leaks),
			r.ElapsedMs, r.Timestamp)
		if err != nil {
			return err
		}
	}
	return w.write(w.stateTable, tbl)
}

// WriteEvent inserts a single event row.
func (w *GreptimeDBWriter) WriteEvent(row telemetry.EventRow) error {
	return w.WriteEvents([]telemetry.EventRow{row})
}

// WriteEvents inserts multiple event rows.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("type", types.STRING)
	tbl.AddFieldColumn("tick", types.UINT64)
	tbl.AddFieldColumn("entity_id", types.UINT64)
	tbl.AddFieldColumn("target_id", types.UINT64)
	tbl.AddFieldColumn("x", types.FLOAT64)
	tbl.AddFieldColumn("y", types.FLOAT64)
	tbl.AddFieldColumn("wave", types.INT64)
	tbl.AddFieldColumn("money", types.INT64)
	tbl.AddFieldColumn("score", types.INT64)
	tbl.AddFieldColumn("phase", types.STRING)
	tbl.AddFieldColumn("reason", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		err := tbl.AddRow(r.RunID, r.Type, r.Tick, r.EntityID, r.TargetID, r.X, r.Y,
			int64(r.Wave), int64(r.Money), int64(r.Score), r.Phase, r.Reason, r.Timestamp)
		if err != nil {
			return err
		}
	}
	return w.write(w.eventTable, tbl)
}

// WriteEntities inserts the entity positions of one tick.
func (w *GreptimeDBWriter) WriteEntities(rows []telemetry.EntityRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.entityTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("kind", types.STRING)
	tbl.AddTagColumn("entity_id", types.UINT64)
	tbl.AddFieldColumn("tick", types.UINT64)
	tbl.AddFieldColumn("x", types.FLOAT64)
	tbl.AddFieldColumn("y", types.FLOAT64)
	tbl.AddFieldColumn("health", types.INT64)
	tbl.AddFieldColumn("target", types.UINT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.RunID, r.Kind, r.EntityID, r.Tick, r.X, r.Y, int64(r.Health), r.Target, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.entityTable, tbl)
}
