// Telemetry rows with greptime tags
package telemetry

import (
	"os"
	"time"
)

// StateRow is the per-tick run status.
type StateRow struct {
	RunID        string    `json:"run_id"` // TAG
	Level        int       `json:"level"`  // TAG
	Tick         uint64    `json:"tick"`
	Phase        string    `json:"phase"`
	Health       int       `json:"health"`
	Money        int       `json:"money"`
	Score        int       `json:"score"`
	VictoryScore int       `json:"victory_score"`
	Wave         int       `json:"wave"`
	TotalWaves   int       `json:"total_waves"`
	ToSpawn      int       `json:"to_spawn"`
	Enemies      int       `json:"enemies"`
	Towers       int       `json:"towers"`
	Projectiles  int       `json:"projectiles"`
	MoneyReward  int       `json:"money_reward"`
	ScoreReward  int       `json:"score_reward"`
	Kills        int       `json:"kills"`
	Leaks        int       `json:"leaks"`
	ElapsedMs    float64   `json:"elapsed_ms"`
	Timestamp    time.Time `json:"ts"` // TIME INDEX
}

// EntityRow is the position of one active entity at a tick.
type EntityRow struct {
	RunID     string    `json:"run_id"`    // TAG
	Kind      string    `json:"kind"`      // TAG: enemy, tower, projectile
	EntityID  uint64    `json:"entity_id"` // TAG
	Tick      uint64    `json:"tick"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Health    int       `json:"health"`
	Target    uint64    `json:"target"`
	Timestamp time.Time `json:"ts"` // TIME INDEX
}

// EventRow records one game event.
type EventRow struct {
	RunID     string    `json:"run_id"` // TAG
	Type      string    `json:"type"`   // TAG
	Tick      uint64    `json:"tick"`
	EntityID  uint64    `json:"entity_id"`
	TargetID  uint64    `json:"target_id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Wave      int       `json:"wave"`
	Money     int       `json:"money"`
	Score     int       `json:"score"`
	Phase     string    `json:"phase"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"ts"` // TIME INDEX
}

// Entity kinds used in EntityRow.Kind.
const (
	KindEnemy      = "enemy"
	KindTower      = "tower"
	KindProjectile = "projectile"
)

func tableName(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

// Table names used when writing to GreptimeDB. They can be overridden via the
// TD_STATE_TABLE, TD_ENTITY_TABLE and TD_EVENT_TABLE environment variables.
var (
	StateTableName  = tableName("TD_STATE_TABLE", "td_state")
	EntityTableName = tableName("TD_ENTITY_TABLE", "td_entities")
	EventTableName  = tableName("TD_EVENT_TABLE", "td_events")
)

func (StateRow) TableName() string  { return StateTableName }
func (EntityRow) TableName() string { return EntityTableName }
func (EventRow) TableName() string  { return EventTableName }
