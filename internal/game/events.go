package game

// EventType names something observable that happened during a tick.
type EventType string

const (
	EventEnemySpawned      EventType = "enemy_spawned"
	EventEnemyDefeated     EventType = "enemy_defeated"
	EventEnemyLeaked       EventType = "enemy_leaked"
	EventProjectileFired   EventType = "projectile_fired"
	EventProjectileMissed  EventType = "projectile_missed"
	EventTowerPlaced       EventType = "tower_placed"
	EventPlacementRejected EventType = "placement_rejected"
	EventWaveStarted       EventType = "wave_started"
	EventPhaseChanged      EventType = "phase_changed"
)

// Event is emitted by the core for presentation and telemetry collaborators.
// Phase change events double as the hook for end-of-run effects.
type Event struct {
	Type      EventType `json:"type"`
	EntityID  EntityID  `json:"entity_id,omitempty"`
	TargetID  EntityID  `json:"target_id,omitempty"`
	Position  Point     `json:"position"`
	Wave      int       `json:"wave,omitempty"`
	FinalWave bool      `json:"final_wave,omitempty"`
	Money     int       `json:"money,omitempty"`
	Score     int       `json:"score,omitempty"`
	Phase     Phase     `json:"phase,omitempty"`
	PrevPhase Phase     `json:"prev_phase,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}
