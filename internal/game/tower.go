package game

import "math"

// TowerStats configure a placed tower.
type TowerStats struct {
	Range      float64
	FireRate   float64 // shots per second
	Cost       int
	Projectile ProjectileStats
}

// DefaultTower is the stock tower of the default campaign.
var DefaultTower = TowerStats{Range: 150, FireRate: 1, Cost: 50, Projectile: DefaultProjectile}

// FireInterval returns the milliseconds between shots.
func (s TowerStats) FireInterval() float64 {
	return 1000 / s.FireRate
}

// Tower tracks at most one target and fires on cooldown.
type Tower struct {
	id        EntityID
	stats     TowerStats
	pos       Point
	cooldown  float64
	target    EntityID
	hasTarget bool
	shots     int
}

// NewTower creates a tower ready to fire immediately.
func NewTower(id EntityID, pos Point, stats TowerStats) *Tower {
	return &Tower{id: id, stats: stats, pos: pos}
}

// Update runs cooldown, target validation, acquisition and firing. It returns the
// projectile fired this tick, if any; the caller owns adding it to the active set.
func (tw *Tower) Update(t *Tick) *Projectile {
	tw.cooldown -= t.Delta

	if tw.hasTarget {
		e, ok := t.Enemies.Get(tw.target)
		if !ok || e.IsDefeated() || tw.pos.Distance(e.Position()) > tw.stats.Range {
			tw.clearTarget()
		}
	}

	if !tw.hasTarget {
		tw.acquire(t.Enemies.All())
	}

	if tw.hasTarget && tw.cooldown <= 0 {
		tw.cooldown = tw.stats.FireInterval()
		tw.shots++
		return NewProjectile(t.newID(), tw.pos, tw.target, tw.stats.Projectile)
	}
	return nil
}

// acquire selects the nearest live enemy strictly inside range; the first minimum wins.
func (tw *Tower) acquire(enemies []*Enemy) {
	closest := math.Inf(1)
	for _, e := range enemies {
		if e.IsDefeated() {
			continue
		}
		d := tw.pos.Distance(e.Position())
		if d < tw.stats.Range && d < closest {
			closest = d
			tw.target = e.ID()
			tw.hasTarget = true
		}
	}
}

func (tw *Tower) clearTarget() {
	tw.target = 0
	tw.hasTarget = false
}

func (tw *Tower) ID() EntityID      { return tw.id }
func (tw *Tower) Position() Point   { return tw.pos }
func (tw *Tower) Range() float64    { return tw.stats.Range }
func (tw *Tower) Cooldown() float64 { return tw.cooldown }
func (tw *Tower) Shots() int        { return tw.shots }

// Target returns the handle of the current target.
func (tw *Tower) Target() (EntityID, bool) { return tw.target, tw.hasTarget }
