package telemetry

import (
	"time"

	"towerdefense-sim/internal/game"
)

// Generator turns snapshots and events of a run into telemetry rows.
type Generator struct {
	RunID string
}

// NewGenerator creates a generator tagging every row with runID.
func NewGenerator(runID string) *Generator {
	return &Generator{RunID: runID}
}

// State returns the status row for snap.
func (g *Generator) State(snap game.Snapshot, ts time.Time) StateRow {
	return StateRow{
		RunID:        g.RunID,
		Level:        snap.Level,
		Tick:         snap.Ticks,
		Phase:        string(snap.Phase),
		Health:       snap.Health,
		Money:        snap.Money,
		Score:        snap.Score,
		VictoryScore: snap.VictoryScore,
		Wave:         snap.Wave,
		TotalWaves:   snap.TotalWaves,
		ToSpawn:      snap.ToSpawn,
		Enemies:      len(snap.Enemies),
		Towers:       len(snap.Towers),
		Projectiles:  len(snap.Projectiles),
		MoneyReward:  snap.MoneyReward,
		ScoreReward:  snap.ScoreReward,
		Kills:        snap.Kills,
		Leaks:        snap.Leaks,
		ElapsedMs:    snap.ElapsedMs,
		Timestamp:    ts,
	}
}

// Entities returns one row per active entity in snap: enemies, then towers, then
// projectiles.
func (g *Generator) Entities(snap game.Snapshot, ts time.Time) []EntityRow {
	rows := make([]EntityRow, 0, len(snap.Enemies)+len(snap.Towers)+len(snap.Projectiles))
	for _, e := range snap.Enemies {
		rows = append(rows, EntityRow{
			RunID: g.RunID, Kind: KindEnemy, EntityID: uint64(e.ID), Tick: snap.Ticks,
			X: e.Position.X, Y: e.Position.Y, Health: e.Health, Timestamp: ts,
		})
	}
	for _, t := range snap.Towers {
		rows = append(rows, EntityRow{
			RunID: g.RunID, Kind: KindTower, EntityID: uint64(t.ID), Tick: snap.Ticks,
			X: t.Position.X, Y: t.Position.Y, Target: uint64(t.Target), Timestamp: ts,
		})
	}
	for _, p := range snap.Projectiles {
		rows = append(rows, EntityRow{
			RunID: g.RunID, Kind: KindProjectile, EntityID: uint64(p.ID), Tick: snap.Ticks,
			X: p.Position.X, Y: p.Position.Y, Target: uint64(p.Target), Timestamp: ts,
		})
	}
	return rows
}

// Events converts the events of tick into rows.
func (g *Generator) Events(events []game.Event, tick uint64, ts time.Time) []EventRow {
	rows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, EventRow{
			RunID:     g.RunID,
			Type:      string(ev.Type),
			Tick:      tick,
			EntityID:  uint64(ev.EntityID),
			TargetID:  uint64(ev.TargetID),
			X:         ev.Position.X,
			Y:         ev.Position.Y,
			Wave:      ev.Wave,
			Money:     ev.Money,
			Score:     ev.Score,
			Phase:     string(ev.Phase),
			Reason:    ev.Reason,
			Timestamp: ts,
		})
	}
	return rows
}
