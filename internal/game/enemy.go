package game

// EntityID identifies an enemy, tower or projectile within one run.
type EntityID uint64

// EnemyStats are the per-type values an enemy is spawned with.
type EnemyStats struct {
	Kind      string
	Radius    float64
	Speed     float64 // units per second
	MaxHealth int
	Money     int
	Score     int
}

// DefaultEnemy matches the stock enemy of the first campaign.
var DefaultEnemy = EnemyStats{Kind: "grunt", Radius: 25, Speed: 85, MaxHealth: 5, Money: 10, Score: 15}

// Enemy walks the path toward the base.
type Enemy struct {
	id         EntityID
	stats      EnemyStats
	path       Path
	pos        Point
	pathIndex  int
	health     int
	defeated   bool
	reachedEnd bool
}

// NewEnemy places an enemy on the first waypoint heading for the second.
func NewEnemy(id EntityID, path Path, stats EnemyStats) *Enemy {
	if stats.MaxHealth < 1 {
		stats.MaxHealth = 1
	}
	return &Enemy{
		id:        id,
		stats:     stats,
		path:      path,
		pos:       path.Start(),
		pathIndex: 1,
		health:    stats.MaxHealth,
	}
}

// Update moves the enemy along its path for dt milliseconds. Arriving at the last
// waypoint marks the enemy as having reached the end in the same update.
func (e *Enemy) Update(dt float64) {
	if e.pathIndex >= e.path.Len() {
		e.reachedEnd = true
		return
	}
	next, arrived := MoveToward(e.pos, e.path.At(e.pathIndex), e.stats.Speed, dt)
	e.pos = next
	if arrived {
		e.pathIndex++
		e.reachedEnd = e.pathIndex >= e.path.Len()
	}
}

// TakeDamage subtracts amount from health; once health drops to zero the enemy stays defeated.
func (e *Enemy) TakeDamage(amount int) {
	e.health -= amount
	if e.health <= 0 {
		e.defeated = true
	}
}

func (e *Enemy) ID() EntityID        { return e.id }
func (e *Enemy) Kind() string        { return e.stats.Kind }
func (e *Enemy) Position() Point     { return e.pos }
func (e *Enemy) Radius() float64     { return e.stats.Radius }
func (e *Enemy) Health() int         { return e.health }
func (e *Enemy) MaxHealth() int      { return e.stats.MaxHealth }
func (e *Enemy) PathIndex() int      { return e.pathIndex }
func (e *Enemy) MoneyValue() int     { return e.stats.Money }
func (e *Enemy) ScoreValue() int     { return e.stats.Score }
func (e *Enemy) IsDefeated() bool    { return e.defeated }
func (e *Enemy) HasReachedEnd() bool { return e.reachedEnd }

// Gone reports whether the enemy leaves the active set at the end of this tick.
func (e *Enemy) Gone() bool { return e.defeated || e.reachedEnd }

// EnemySet is the active-enemy container. Iteration follows spawn order and lookups
// by handle report false once an enemy has been filtered out.
type EnemySet struct {
	order []*Enemy
	byID  map[EntityID]*Enemy
}

// NewEnemySet returns an empty set.
func NewEnemySet() *EnemySet {
	return &EnemySet{byID: make(map[EntityID]*Enemy)}
}

// Add appends e to the set.
func (s *EnemySet) Add(e *Enemy) {
	s.order = append(s.order, e)
	s.byID[e.id] = e
}

// Get resolves a handle.
func (s *EnemySet) Get(id EntityID) (*Enemy, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// All returns the enemies in spawn order. Callers must not modify the slice.
func (s *EnemySet) All() []*Enemy { return s.order }

// Len returns the number of active enemies.
func (s *EnemySet) Len() int { return len(s.order) }

// Retain replaces the set with the enemies for which keep returns true.
func (s *EnemySet) Retain(keep func(*Enemy) bool) {
	kept := make([]*Enemy, 0, len(s.order))
	for _, e := range s.order {
		if keep(e) {
			kept = append(kept, e)
			continue
		}
		delete(s.byID, e.id)
	}
	s.order = kept
}
