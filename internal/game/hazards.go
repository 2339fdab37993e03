package game

import (
	"fmt"
	"math"
)

// HazardInstance is a hazard placed for the active hole.
type HazardInstance struct {
	ID         string     `json:"id"`
	Type       HazardType `json:"type"`
	Position   Vec3       `json:"position"`
	Radius     float64    `json:"radius"`
	Penalty    int        `json:"penalty"`
	Difficulty float64    `json:"difficulty"`
}

// Contains reports whether pos lies within the hazard on the ground plane.
func (h HazardInstance) Contains(pos Vec3) bool {
	return h.Position.PlanarDistance(pos) <= h.Radius
}

// DestructibleProperties is the fixed profile of one obstacle type.
type DestructibleProperties struct {
	Health          float64
	ExplosionRadius float64
	ExplosionDamage float64
	ScoreValue      int
	RespawnDelay    float64
}

var destructibleProperties = map[DestructibleType]DestructibleProperties{
	DestructibleCrate:    {Health: 50, ExplosionRadius: 5, ExplosionDamage: 20, ScoreValue: 10, RespawnDelay: 30},
	DestructibleBarrel:   {Health: 75, ExplosionRadius: 15, ExplosionDamage: 50, ScoreValue: 25, RespawnDelay: 45},
	DestructibleBarrier:  {Health: 200, ExplosionRadius: 3, ExplosionDamage: 10, ScoreValue: 50, RespawnDelay: 60},
	DestructibleFence:    {Health: 100, ExplosionRadius: 2, ExplosionDamage: 5, ScoreValue: 15, RespawnDelay: 40},
	DestructibleVehicle:  {Health: 300, ExplosionRadius: 20, ExplosionDamage: 75, ScoreValue: 100, RespawnDelay: 90},
	DestructibleBuilding: {Health: 500, ExplosionRadius: 25, ExplosionDamage: 100, ScoreValue: 150, RespawnDelay: 120},
	DestructibleTree:     {Health: 150, ExplosionRadius: 8, ExplosionDamage: 30, ScoreValue: 30, RespawnDelay: 75},
	DestructibleRock:     {Health: 1000, ExplosionRadius: 5, ExplosionDamage: 15, ScoreValue: 200, RespawnDelay: 180},
}

// PropertiesFor returns the profile of t, ok=false for unknown types.
func PropertiesFor(t DestructibleType) (DestructibleProperties, bool) {
	p, ok := destructibleProperties[t]
	return p, ok
}

// DestructibleObstacle is a damageable object on the fairway.
type DestructibleObstacle struct {
	ID              string           `json:"id"`
	Type            DestructibleType `json:"type"`
	Position        Vec3             `json:"position"`
	Radius          float64          `json:"radius"`
	Health          float64          `json:"health"`
	MaxHealth       float64          `json:"max_health"`
	ExplosionRadius float64          `json:"explosion_radius"`
	ExplosionDamage float64          `json:"explosion_damage"`
	ScoreValue      int              `json:"score_value"`
	RespawnDelay    float64          `json:"respawn_delay"`
	Destroyed       bool             `json:"destroyed"`
	DestroyedAt     float64          `json:"destroyed_at"`
}

// DamageResult reports the outcome of hitting an obstacle.
type DamageResult struct {
	ID         string   `json:"id"`
	Destroyed  bool     `json:"destroyed"`
	Attacker   PlayerID `json:"attacker"`
	ScoreValue int      `json:"score_value"`
	Health     float64  `json:"health"`
}

// randomizeHazards copies the hole's static hazards through the seeded
// generator and scatters destructibles along the fairway.
func (e *Environment) randomizeHazards(hole Hole) {
	for _, spec := range hole.Hazards {
		cfg, ok := e.configs[spec.Type]
		if !ok || !cfg.Enabled {
			continue
		}
		if e.rng.Float64() > cfg.Frequency {
			continue
		}

		pos := spec.Position
		radius := spec.Radius
		if cfg.Randomization {
			angle := e.rng.Float64() * 360
			dist := HazardJitterMin + e.rng.Float64()*(HazardJitterMax-HazardJitterMin)
			pos = pos.Offset(angle, dist)
			radius = math.Max(HazardMinRadius, radius+(e.rng.Float64()-0.5)*HazardRadiusJitter*cfg.Intensity)
		}

		e.hazards = append(e.hazards, HazardInstance{
			ID:         fmt.Sprintf("hz-%d-%d", hole.Number, len(e.hazards)+1),
			Type:       spec.Type,
			Position:   pos,
			Radius:     radius,
			Penalty:    int(math.Ceil(float64(HazardPenalty(spec.Type, spec.Penalty)) * cfg.Intensity)),
			Difficulty: HazardDifficulty(spec.Type),
		})
	}

	cfg := e.configs[HazardDestructible]
	if !cfg.Enabled {
		return
	}
	count := MinDestructibles + e.rng.Intn(MaxDestructibles-MinDestructibles+1)
	mid := hole.Tee.Midpoint(hole.Green)
	spread := math.Max(DestructibleMinSpread, hole.FairwayWidth/2)
	for i := 0; i < count; i++ {
		t := destructibleTypes[e.rng.Intn(len(destructibleTypes))]
		pos := mid.Offset(e.rng.Float64()*360, e.rng.Float64()*spread)
		d := e.spawnDestructible(t, pos)
		e.hazards = append(e.hazards, HazardInstance{
			ID:         d.ID,
			Type:       HazardDestructible,
			Position:   pos,
			Radius:     DestructibleBaseRadius,
			Penalty:    0,
			Difficulty: HazardDifficulty(HazardDestructible),
		})
	}
}

func (e *Environment) spawnDestructible(t DestructibleType, pos Vec3) *DestructibleObstacle {
	p, ok := destructibleProperties[t]
	if !ok {
		p = destructibleProperties[DestructibleCrate]
	}
	e.nextObstacle++
	d := &DestructibleObstacle{
		ID:              fmt.Sprintf("obj-%d", e.nextObstacle),
		Type:            t,
		Position:        pos,
		Radius:          DestructibleBaseRadius,
		Health:          p.Health,
		MaxHealth:       p.Health,
		ExplosionRadius: p.ExplosionRadius,
		ExplosionDamage: p.ExplosionDamage,
		ScoreValue:      p.ScoreValue,
		RespawnDelay:    p.RespawnDelay,
	}
	e.destructibles = append(e.destructibles, d)
	return d
}

// Hazards returns a copy of the active hazards.
func (e *Environment) Hazards() []HazardInstance {
	out := make([]HazardInstance, len(e.hazards))
	copy(out, e.hazards)
	return out
}

// HazardsAt lists hazards whose footprint covers pos. Destructible
// footprints only count while the obstacle stands.
func (e *Environment) HazardsAt(pos Vec3) []HazardInstance {
	var out []HazardInstance
	for _, h := range e.hazards {
		if !h.Contains(pos) {
			continue
		}
		if h.Type == HazardDestructible {
			if d := e.destructible(h.ID); d != nil && d.Destroyed {
				continue
			}
		}
		out = append(out, h)
	}
	return out
}

// PenaltyAt sums penalty strokes for landing at pos.
func (e *Environment) PenaltyAt(pos Vec3) int {
	total := 0
	for _, h := range e.HazardsAt(pos) {
		total += h.Penalty
	}
	return total
}

// DifficultyAt multiplies the difficulty of every hazard covering pos.
func (e *Environment) DifficultyAt(pos Vec3) float64 {
	m := 1.0
	for _, h := range e.HazardsAt(pos) {
		m *= h.Difficulty
	}
	return m
}

// Destructibles returns snapshots of every obstacle.
func (e *Environment) Destructibles() []DestructibleObstacle {
	out := make([]DestructibleObstacle, 0, len(e.destructibles))
	for _, d := range e.destructibles {
		out = append(out, *d)
	}
	return out
}

// DestructiblesNear returns standing obstacles within radius of pos.
func (e *Environment) DestructiblesNear(pos Vec3, radius float64) []DestructibleObstacle {
	var out []DestructibleObstacle
	for _, d := range e.destructibles {
		if !d.Destroyed && d.Position.PlanarDistance(pos) <= radius {
			out = append(out, *d)
		}
	}
	return out
}

func (e *Environment) destructible(id string) *DestructibleObstacle {
	for _, d := range e.destructibles {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// DamageDestructible applies damage to obstacle id. Unknown or already
// destroyed obstacles are left alone and reported with ok=false.
func (e *Environment) DamageDestructible(id string, damage float64, attacker PlayerID) (DamageResult, bool) {
	d := e.destructible(id)
	if d == nil || d.Destroyed || damage <= 0 {
		return DamageResult{ID: id}, false
	}
	d.Health -= damage
	res := DamageResult{ID: id, Attacker: attacker, Health: math.Max(d.Health, 0)}
	if d.Health <= 0 {
		d.Health = 0
		d.Destroyed = true
		d.DestroyedAt = e.elapsed
		res.Destroyed = true
		res.ScoreValue = d.ScoreValue
		e.spawn.Spawn("explosion", d.Position)
		e.log.Info().
			Str("id", d.ID).
			Str("type", string(d.Type)).
			Str("attacker", string(attacker)).
			Msg("destructible destroyed")
	}
	return res, true
}

// ApplyExplosion damages every standing obstacle within radius of center,
// falling off linearly with distance.
func (e *Environment) ApplyExplosion(center Vec3, radius, damage float64, attacker PlayerID) []DamageResult {
	if radius <= 0 {
		return nil
	}
	var out []DamageResult
	for _, d := range e.destructibles {
		if d.Destroyed {
			continue
		}
		dist := d.Position.PlanarDistance(center)
		if dist > radius {
			continue
		}
		dmg := damage * (1 - dist/radius)
		if res, ok := e.DamageDestructible(d.ID, dmg, attacker); ok {
			out = append(out, res)
		}
	}
	return out
}
