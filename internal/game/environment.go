package game

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// Wind is the per-hole wind state.
type Wind struct {
	Direction  float64 `json:"direction"`
	Intensity  float64 `json:"intensity"`
	GustChance float64 `json:"gust_chance"`
	Variation  float64 `json:"variation"`
	NextUpdate float64 `json:"next_update"`
}

// WindEffect is the displacement wind adds to a full flight, resolved
// against the shot heading.
type WindEffect struct {
	Lateral      float64 `json:"lateral"`
	Longitudinal float64 `json:"longitudinal"`
	Gusting      bool    `json:"gusting"`
}

// Vector converts the effect into a world displacement for a shot heading.
func (w WindEffect) Vector(headingDeg float64) Vec3 {
	rad := headingDeg * math.Pi / 180
	along := Vec3{X: math.Cos(rad), Y: math.Sin(rad)}
	across := Vec3{X: -math.Sin(rad), Y: math.Cos(rad)}
	return along.Times(w.Longitudinal).Plus(across.Times(w.Lateral))
}

// HazardConfig tunes how one hazard type is generated.
type HazardConfig struct {
	Enabled       bool
	Randomization bool
	Intensity     float64
	Frequency     float64
}

var defaultHazardConfigs = map[HazardType]HazardConfig{
	HazardDestructible: {Enabled: true, Randomization: true, Intensity: 1.0, Frequency: 0.7},
	HazardWater:        {Enabled: true, Randomization: false, Intensity: 1.0, Frequency: 1.0},
	HazardSand:         {Enabled: true, Randomization: false, Intensity: 1.0, Frequency: 1.0},
	HazardRough:        {Enabled: true, Randomization: false, Intensity: 1.0, Frequency: 1.0},
	HazardOutOfBounds:  {Enabled: true, Randomization: false, Intensity: 1.0, Frequency: 1.0},
	HazardSmoke:        {Enabled: false, Randomization: true, Intensity: 0.8, Frequency: 0.3},
	HazardFire:         {Enabled: false, Randomization: true, Intensity: 0.6, Frequency: 0.2},
	HazardElectric:     {Enabled: false, Randomization: true, Intensity: 0.7, Frequency: 0.15},
}

// Environment owns wind, hazards and destructibles for the active hole.
type Environment struct {
	rng     *rand.Rand
	seed    int64
	seedFn  func(hole int) int64
	configs map[HazardType]HazardConfig

	hole          *Hole
	wind          Wind
	elapsed       float64
	hazards       []HazardInstance
	destructibles []*DestructibleObstacle
	nextObstacle  int

	spawn Spawner
	log   zerolog.Logger
}

// EnvironmentOption customizes NewEnvironment.
type EnvironmentOption func(*Environment)

// WithSeed pins the hazard seed instead of deriving it from the clock.
// Each hole still gets its own stream, offset by the hole number.
func WithSeed(seed int64) EnvironmentOption {
	return func(e *Environment) {
		e.seedFn = func(hole int) int64 { return seed + int64(hole)*1000 }
	}
}

// WithHazardConfig overrides generation settings for one hazard type.
func WithHazardConfig(t HazardType, cfg HazardConfig) EnvironmentOption {
	return func(e *Environment) {
		e.configs[t] = cfg
	}
}

func NewEnvironment(spawn Spawner, log zerolog.Logger, opts ...EnvironmentOption) *Environment {
	if spawn == nil {
		spawn = nopSpawner{}
	}
	e := &Environment{
		configs: make(map[HazardType]HazardConfig, len(defaultHazardConfigs)),
		spawn:   spawn,
		log:     log.With().Str("component", "hazards").Logger(),
	}
	for k, v := range defaultHazardConfigs {
		e.configs[k] = v
	}
	e.seedFn = func(hole int) int64 {
		return int64(hole)*1000 + time.Now().UnixMilli()%1000
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = rand.New(rand.NewSource(e.seedFn(0)))
	return e
}

// InitializeHazardSystem seeds randomness for hole, rolls fresh wind and
// places this hole's hazards and destructibles.
func (e *Environment) InitializeHazardSystem(hole Hole) {
	e.CleanupHazardSystem()

	h := hole
	e.hole = &h
	e.seed = e.seedFn(hole.Number)
	e.rng = rand.New(rand.NewSource(e.seed))
	e.wind = Wind{
		Direction:  e.rng.Float64() * 360,
		Intensity:  e.rng.Float64() * WindMaxIntensity,
		GustChance: e.rng.Float64() * WindMaxGustChance,
		Variation:  e.rng.Float64() * WindMaxVariation,
		NextUpdate: WindUpdateInterval,
	}
	e.randomizeHazards(hole)

	e.log.Info().
		Int("hole", hole.Number).
		Int64("seed", e.seed).
		Int("hazards", len(e.hazards)).
		Int("destructibles", len(e.destructibles)).
		Float64("wind_dir", e.wind.Direction).
		Float64("wind_intensity", e.wind.Intensity).
		Msg("hazard system initialized")
}

// UpdateHazardSystem advances wind drift and destructible respawns.
func (e *Environment) UpdateHazardSystem(dt float64) {
	if e.hole == nil {
		return
	}
	e.elapsed += dt

	e.wind.NextUpdate -= dt
	if e.wind.NextUpdate <= 0 {
		e.rerollWind()
		e.wind.NextUpdate = WindUpdateInterval
	}

	for _, d := range e.destructibles {
		if d.Destroyed && e.elapsed-d.DestroyedAt >= d.RespawnDelay {
			d.Destroyed = false
			d.Health = d.MaxHealth
			e.log.Debug().Str("id", d.ID).Str("type", string(d.Type)).Msg("destructible respawned")
		}
	}
}

// CleanupHazardSystem forgets the current hole's state.
func (e *Environment) CleanupHazardSystem() {
	e.hole = nil
	e.hazards = nil
	e.destructibles = nil
	e.nextObstacle = 0
	e.elapsed = 0
	e.wind = Wind{}
}

func (e *Environment) rerollWind() {
	e.wind.Direction = normalizeDegrees(e.wind.Direction + (e.rng.Float64()-0.5)*2*WindDirectionJitter)
	e.wind.Intensity = clamp(e.wind.Intensity+(e.rng.Float64()-0.5)*2*WindIntensityJitter, 0, 1)
}

// Active reports whether a hole is loaded.
func (e *Environment) Active() bool {
	return e.hole != nil
}

func (e *Environment) Seed() int64 {
	return e.seed
}

// CurrentWind returns a copy of the wind state.
func (e *Environment) CurrentWind() Wind {
	return e.wind
}

// IsWindGusting is an independent random trial on every call. Two queries
// during the same flight can disagree.
func (e *Environment) IsWindGusting() bool {
	return e.rng.Float64() < e.wind.GustChance
}

// WindEffectFor resolves wind against a shot of distance meters heading
// direction degrees. The gust trial is taken once per call.
func (e *Environment) WindEffectFor(distance, direction float64) WindEffect {
	if e.hole == nil {
		return WindEffect{}
	}
	rel := (e.wind.Direction - direction) * math.Pi / 180
	force := e.wind.Intensity * (distance / WindReferenceDist) * WindForceScale
	gusting := e.IsWindGusting()
	if gusting {
		force *= WindGustFactor
	}
	return WindEffect{
		Lateral:      math.Sin(rel) * force,
		Longitudinal: math.Cos(rel) * force * WindLongitudinalDamp,
		Gusting:      gusting,
	}
}

// LieMultiplier scales shot distance by surface. Unknown lies are neutral.
func LieMultiplier(l Lie) float64 {
	switch l {
	case LieTee:
		return TeeMultiplier
	case LieFairway:
		return FairwayMultiplier
	case LieRough:
		return RoughMultiplier
	case LieSand:
		return SandMultiplier
	case LieGreen:
		return GreenMultiplier
	}
	return 1.0
}

// HazardPenalty is the stroke penalty for landing in t.
func HazardPenalty(t HazardType, base int) int {
	switch t {
	case HazardWater:
		return PenaltyWater
	case HazardOutOfBounds:
		return PenaltyOutOfBounds
	case HazardSand, HazardRough, HazardDestructible:
		return 0
	}
	return base
}

// HazardDifficulty is the distance multiplier for playing out of t.
func HazardDifficulty(t HazardType) float64 {
	switch t {
	case HazardSand:
		return 0.6
	case HazardRough:
		return 0.7
	case HazardSmoke:
		return 0.8
	case HazardFire:
		return 0.9
	case HazardElectric:
		return 0.85
	}
	return 1.0
}
