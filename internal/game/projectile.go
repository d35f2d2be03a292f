package game

// ProjectileStats configure the shots a tower fires.
type ProjectileStats struct {
	Speed  float64 // units per second
	Radius float64
	Damage int
}

// DefaultProjectile matches the stock tower shot.
var DefaultProjectile = ProjectileStats{Speed: 400, Radius: 5, Damage: 1}

// Projectile homes in on one enemy, re-aiming at its live position every tick.
type Projectile struct {
	id     EntityID
	stats  ProjectileStats
	pos    Point
	target EntityID
	hit    bool
	missed bool
}

// NewProjectile creates a projectile at pos aimed at target.
func NewProjectile(id EntityID, pos Point, target EntityID, stats ProjectileStats) *Projectile {
	return &Projectile{id: id, stats: stats, pos: pos, target: target}
}

// Update moves the projectile toward its target and applies damage on contact.
// A target that is no longer in the active set turns the projectile into a miss.
func (p *Projectile) Update(t *Tick) {
	if p.Done() {
		return
	}
	target, ok := t.Enemies.Get(p.target)
	if !ok {
		p.missed = true
		return
	}
	p.pos = Advance(p.pos, target.Position(), p.stats.Speed, t.Delta)
	if p.pos.Distance(target.Position()) < p.stats.Radius+target.Radius() {
		p.hit = true
		target.TakeDamage(p.stats.Damage)
	}
}

func (p *Projectile) ID() EntityID       { return p.id }
func (p *Projectile) Position() Point    { return p.pos }
func (p *Projectile) Target() EntityID   { return p.target }
func (p *Projectile) Damage() int        { return p.stats.Damage }
func (p *Projectile) HasHitTarget() bool { return p.hit }
func (p *Projectile) Missed() bool       { return p.missed }

// Done reports whether the projectile leaves the active set at the end of this tick.
func (p *Projectile) Done() bool { return p.hit || p.missed }
