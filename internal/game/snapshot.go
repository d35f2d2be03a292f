package game

// EnemyView is a read-only copy of an enemy for presentation and telemetry.
type EnemyView struct {
	ID        EntityID `json:"id"`
	Kind      string   `json:"kind"`
	Position  Point    `json:"position"`
	Radius    float64  `json:"radius"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
	PathIndex int      `json:"path_index"`
}

type TowerView struct {
	ID       EntityID `json:"id"`
	Position Point    `json:"position"`
	Range    float64  `json:"range"`
	Cooldown float64  `json:"cooldown_ms"`
	Shots    int      `json:"shots"`
	Target   EntityID `json:"target,omitempty"`
}

type ProjectileView struct {
	ID       EntityID `json:"id"`
	Position Point    `json:"position"`
	Target   EntityID `json:"target"`
}

// Snapshot is the status a presentation layer displays, plus copies of every
// active entity.
type Snapshot struct {
	Level        int     `json:"level"`
	Phase        Phase   `json:"phase"`
	Health       int     `json:"health"`
	Money        int     `json:"money"`
	Score        int     `json:"score"`
	VictoryScore int     `json:"victory_score"`
	Wave         int     `json:"wave"`
	TotalWaves   int     `json:"total_waves"`
	ToSpawn      int     `json:"to_spawn"`
	MoneyReward  int     `json:"money_reward"`
	ScoreReward  int     `json:"score_reward"`
	TowerCost    int     `json:"tower_cost"`
	Kills        int     `json:"kills"`
	Leaks        int     `json:"leaks"`
	Ticks        uint64  `json:"ticks"`
	ElapsedMs    float64 `json:"elapsed_ms"`

	Path        []Point          `json:"path"`
	Enemies     []EnemyView      `json:"enemies"`
	Towers      []TowerView      `json:"towers"`
	Projectiles []ProjectileView `json:"projectiles"`
}

// Snapshot copies the current state of the run.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Level:        g.level.Number,
		Phase:        g.phase,
		Health:       g.health,
		Money:        g.money,
		Score:        g.score,
		VictoryScore: g.level.VictoryScore,
		Wave:         g.sched.WaveNumber(),
		TotalWaves:   g.sched.TotalWaves(),
		ToSpawn:      g.sched.Remaining(),
		MoneyReward:  MoneyReward(g.level.Enemy.Money, len(g.towers)),
		ScoreReward:  ScoreReward(g.level.Enemy.Score, g.score),
		TowerCost:    g.level.Tower.Cost,
		Kills:        g.kills,
		Leaks:        g.leaks,
		Ticks:        g.ticks,
		ElapsedMs:    g.elapsed,
		Path:         g.path.Points(),
		Enemies:      make([]EnemyView, 0, g.enemies.Len()),
		Towers:       make([]TowerView, 0, len(g.towers)),
		Projectiles:  make([]ProjectileView, 0, len(g.projectiles)),
	}
	for _, e := range g.enemies.All() {
		s.Enemies = append(s.Enemies, EnemyView{
			ID:        e.ID(),
			Kind:      e.Kind(),
			Position:  e.Position(),
			Radius:    e.Radius(),
			Health:    e.Health(),
			MaxHealth: e.MaxHealth(),
			PathIndex: e.PathIndex(),
		})
	}
	for _, t := range g.towers {
		v := TowerView{ID: t.ID(), Position: t.Position(), Range: t.Range(), Cooldown: t.Cooldown(), Shots: t.Shots()}
		if id, ok := t.Target(); ok {
			v.Target = id
		}
		s.Towers = append(s.Towers, v)
	}
	for _, p := range g.projectiles {
		s.Projectiles = append(s.Projectiles, ProjectileView{ID: p.ID(), Position: p.Position(), Target: p.Target()})
	}
	return s
}
