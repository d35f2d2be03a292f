// YAML level configuration loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"towerdefense-sim/internal/game"
	"towerdefense-sim/internal/pathgen"
)

// Board describes the playing field and the area reserved for the status panel.
type Board struct {
	Width    float64      `yaml:"width"`
	Height   float64      `yaml:"height"`
	Reserved pathgen.Rect `yaml:"reserved"`
}

// Player holds the starting resources of every level.
type Player struct {
	StartHealth   int `yaml:"start_health"`
	StartMoney    int `yaml:"start_money"`
	MoneyPerLevel int `yaml:"money_per_level"`
}

type Tower struct {
	Range    float64 `yaml:"range"`
	FireRate float64 `yaml:"fire_rate"`
	Cost     int     `yaml:"cost"`
}

type Projectile struct {
	Speed  float64 `yaml:"speed"`
	Radius float64 `yaml:"radius"`
	Damage int     `yaml:"damage"`
}

// EnemyType is a named set of enemy stats levels can refer to.
type EnemyType struct {
	Kind      string  `yaml:"kind"`
	Radius    float64 `yaml:"radius"`
	Speed     float64 `yaml:"speed"`
	MaxHealth int     `yaml:"max_health"`
	Money     int     `yaml:"money"`
	Score     int     `yaml:"score"`
}

// Simulation tunes the frame clock.
type Simulation struct {
	MaxFrameDeltaMs float64 `yaml:"max_frame_delta_ms"`
	TickMs          int     `yaml:"tick_ms"`
}

// PathSpec either lists fixed waypoints or asks for a generated path.
type PathSpec struct {
	Turns  int          `yaml:"turns"`
	Margin float64      `yaml:"margin"`
	Points []game.Point `yaml:"points"`
}

type Wave struct {
	Count      int     `yaml:"count"`
	IntervalMs float64 `yaml:"interval_ms"`
}

type Level struct {
	Number       int      `yaml:"number"`
	VictoryScore int      `yaml:"victory_score"`
	Enemy        string   `yaml:"enemy"`
	Path         PathSpec `yaml:"path"`
	Waves        []Wave   `yaml:"waves"`
}

// Campaign is the root configuration: shared stats plus the ordered levels.
type Campaign struct {
	Board      Board       `yaml:"board"`
	Player     Player      `yaml:"player"`
	Tower      Tower       `yaml:"tower"`
	Projectile Projectile  `yaml:"projectile"`
	Enemies    []EnemyType `yaml:"enemies"`
	Simulation Simulation  `yaml:"simulation"`
	Levels     []Level     `yaml:"levels"`
}

var (
	ErrUnknownLevel = errors.New("unknown level")
	ErrUnknownEnemy = errors.New("unknown enemy type")
)

// Load loads the YAML campaign and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*Campaign, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	schema, err := os.ReadFile(cueSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(configPath, data, schema)
}

// Parse validates data against schema and decodes it. name labels CUE errors.
func Parse(name string, data, schema []byte) (*Campaign, error) {
	if err := Validate(name, data, schema); err != nil {
		return nil, err
	}
	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

// check covers the cross references CUE does not express.
func (c *Campaign) check() error {
	for _, l := range c.Levels {
		if _, err := c.enemy(l.Enemy); err != nil {
			return fmt.Errorf("level %d: %w", l.Number, err)
		}
	}
	return nil
}

func (c *Campaign) enemy(kind string) (EnemyType, error) {
	for _, e := range c.Enemies {
		if e.Kind == kind {
			return e, nil
		}
	}
	return EnemyType{}, fmt.Errorf("%w: %q", ErrUnknownEnemy, kind)
}

// Level returns the level with the given number.
func (c *Campaign) Level(number int) (Level, error) {
	for _, l := range c.Levels {
		if l.Number == number {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("%w: %d", ErrUnknownLevel, number)
}

// Next returns the number of the level after number, or false at the end of the campaign.
func (c *Campaign) Next(number int) (int, bool) {
	for i, l := range c.Levels {
		if l.Number == number && i+1 < len(c.Levels) {
			return c.Levels[i+1].Number, true
		}
	}
	return 0, false
}

// GameLevel converts level number into the core's level description.
func (c *Campaign) GameLevel(number int) (game.Level, error) {
	l, err := c.Level(number)
	if err != nil {
		return game.Level{}, err
	}
	et, err := c.enemy(l.Enemy)
	if err != nil {
		return game.Level{}, err
	}
	waves := make([]game.Wave, len(l.Waves))
	for i, w := range l.Waves {
		waves[i] = game.Wave{Count: w.Count, Interval: w.IntervalMs}
	}
	return game.Level{
		Number:       l.Number,
		VictoryScore: l.VictoryScore,
		StartHealth:  c.Player.StartHealth,
		StartMoney:   c.Player.StartMoney + (l.Number-1)*c.Player.MoneyPerLevel,
		Waves:        waves,
		Enemy: game.EnemyStats{
			Kind:      et.Kind,
			Radius:    et.Radius,
			Speed:     et.Speed,
			MaxHealth: et.MaxHealth,
			Money:     et.Money,
			Score:     et.Score,
		},
		Tower: game.TowerStats{
			Range:    c.Tower.Range,
			FireRate: c.Tower.FireRate,
			Cost:     c.Tower.Cost,
			Projectile: game.ProjectileStats{
				Speed:  c.Projectile.Speed,
				Radius: c.Projectile.Radius,
				Damage: c.Projectile.Damage,
			},
		},
		MaxFrameDelta: c.Simulation.MaxFrameDeltaMs,
	}, nil
}

// Path returns the fixed path of level number or generates one with rng.
func (c *Campaign) Path(number int, rng *rand.Rand) (game.Path, error) {
	l, err := c.Level(number)
	if err != nil {
		return game.Path{}, err
	}
	if len(l.Path.Points) > 0 {
		return game.NewPath(l.Path.Points)
	}
	p := pathgen.Params{
		Width:       c.Board.Width,
		Height:      c.Board.Height,
		Turns:       l.Path.Turns,
		Margin:      l.Path.Margin,
		Forbidden:   c.Board.Reserved,
		MaxAttempts: pathgen.DefaultMaxAttempts,
	}
	path, err := pathgen.Generate(p, rng)
	if err != nil {
		return game.Path{}, fmt.Errorf("level %d path: %w", number, err)
	}
	return path, nil
}
