package game

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ShotPhase is where a player is in the three-click swing.
type ShotPhase string

const (
	ShotNone      ShotPhase = "NONE"
	ShotAiming    ShotPhase = "AIMING"
	ShotBackswing ShotPhase = "BACKSWING"
	// ShotPower is part of the phase vocabulary but never entered: the
	// second click goes straight to ShotHookSlice.
	ShotPower     ShotPhase = "POWER"
	ShotHookSlice ShotPhase = "HOOK_SLICE"
	ShotExecuting ShotPhase = "EXECUTING"
	ShotComplete  ShotPhase = "COMPLETE"
)

// ShotDescriptor is the captured swing handed to ballistics.
type ShotDescriptor struct {
	Club        ClubType `json:"club"`
	Power       float64  `json:"power"`
	Direction   float64  `json:"direction"`
	LaunchAngle float64  `json:"launch_angle"`
	Spin        float64  `json:"spin"`
	Backspin    float64  `json:"backspin"`
	Valid       bool     `json:"valid"`
}

// PlayerShotState is one player's swing in progress.
type PlayerShotState struct {
	Player         PlayerID       `json:"player"`
	Phase          ShotPhase      `json:"phase"`
	MeterPosition  float64        `json:"meter_position"`
	MeterDirection float64        `json:"meter_direction"`
	MeterSpeed     float64        `json:"meter_speed"`
	Club           ClubType       `json:"club"`
	AimDirection   float64        `json:"aim_direction"`
	LaunchAngle    float64        `json:"launch_angle"`
	Backspin       float64        `json:"backspin"`
	Power          float64        `json:"power"`
	Spin           float64        `json:"spin"`
	TimeRemaining  float64        `json:"time_remaining"`
	Shot           ShotDescriptor `json:"shot"`
}

// ShotOutcome is reported once a shell lands.
type ShotOutcome struct {
	Player        PlayerID       `json:"player"`
	Impact        Impact         `json:"impact"`
	Holed         bool           `json:"holed"`
	Lie           Lie            `json:"lie"`
	Penalty       int            `json:"penalty"`
	Hazards       []HazardType   `json:"hazards,omitempty"`
	Damage        []DamageResult `json:"damage,omitempty"`
	Stroke        int            `json:"stroke"`
	DistanceToPin float64        `json:"distance_to_pin"`
}

// PhaseGate is the session's answer to "may engines accept input now".
type PhaseGate interface {
	CanTakeShots() bool
	CurrentHole() int
}

// ShotEngine resolves full shots for every player in a match.
type ShotEngine struct {
	states  map[PlayerID]*PlayerShotState
	flights map[PlayerID]*ActiveProjectile

	gate    PhaseGate
	players Players
	course  CourseProvider
	env     *Environment
	sched   *Scheduler
	notify  Notifier
	spawn   Spawner
	log     zerolog.Logger

	// OnExecute fires when a stroke is committed at the third click.
	OnExecute func(ShotRecord)
	// OnResolve fires after a landing has been applied to the golfer.
	OnResolve func(ShotOutcome)
}

func NewShotEngine(gate PhaseGate, players Players, course CourseProvider, env *Environment, sched *Scheduler, notify Notifier, spawn Spawner, log zerolog.Logger) *ShotEngine {
	if notify == nil {
		notify = nopNotifier{}
	}
	if spawn == nil {
		spawn = nopSpawner{}
	}
	return &ShotEngine{
		states:  make(map[PlayerID]*PlayerShotState),
		flights: make(map[PlayerID]*ActiveProjectile),
		gate:    gate,
		players: players,
		course:  course,
		env:     env,
		sched:   sched,
		notify:  notify,
		spawn:   spawn,
		log:     log.With().Str("component", "shots").Logger(),
	}
}

// InitializeShotSetup arms a new swing. It refuses outside Playing, for
// golfers not on the current hole, and for golfers who are putting or done.
func (e *ShotEngine) InitializeShotSetup(id PlayerID) bool {
	if !e.gate.CanTakeShots() {
		return false
	}
	g, ok := e.players.Golfer(id)
	if !ok || g.CurrentHole != e.gate.CurrentHole() {
		return false
	}
	if g.HolePhase == HoleComplete || g.HolePhase == HolePutting {
		return false
	}
	if st, ok := e.states[id]; ok && st.Phase == ShotExecuting {
		return false
	}

	distance := MissingDataDistance
	direction := 0.0
	if hole, ok := e.course.Hole(g.CurrentHole); ok {
		distance = g.Ball.PlanarDistance(hole.Green)
		direction = g.Ball.BearingTo(hole.Green)
	}

	st := &PlayerShotState{
		Player:         id,
		Phase:          ShotAiming,
		MeterDirection: 1,
		MeterSpeed:     ShotMeterSpeed,
		Club:           RecommendClub(distance),
		AimDirection:   direction,
		LaunchAngle:    DefaultLaunchAngle,
		Backspin:       DefaultBackspin,
		TimeRemaining:  ShotTimeout,
	}
	e.states[id] = st

	e.notify.NotifyPlayer(id, fmt.Sprintf("%.0fm to pin, %s selected. Click to start your backswing.", distance, st.Club))
	e.log.Debug().
		Str("player", string(id)).
		Float64("distance", distance).
		Str("club", string(st.Club)).
		Msg("shot setup")
	return true
}

// HandleClick routes a click to whichever stage the player is in.
func (e *ShotEngine) HandleClick(id PlayerID) bool {
	st, ok := e.states[id]
	if !ok {
		return false
	}
	switch st.Phase {
	case ShotAiming:
		return e.HandleFirstClick(id)
	case ShotBackswing:
		return e.HandleSecondClick(id)
	case ShotHookSlice:
		return e.HandleThirdClick(id)
	}
	return false
}

// HandleFirstClick starts the power meter.
func (e *ShotEngine) HandleFirstClick(id PlayerID) bool {
	st, ok := e.states[id]
	if !ok || st.Phase != ShotAiming || !e.gate.CanTakeShots() {
		return false
	}
	st.Phase = ShotBackswing
	st.MeterPosition = 0
	st.MeterDirection = 1
	return true
}

// HandleSecondClick locks power and restarts the meter for hook/slice.
func (e *ShotEngine) HandleSecondClick(id PlayerID) bool {
	st, ok := e.states[id]
	if !ok || st.Phase != ShotBackswing || !e.gate.CanTakeShots() {
		return false
	}
	st.Power = clamp(st.MeterPosition, 0, 1)
	st.Phase = ShotHookSlice
	st.MeterPosition = 0
	st.MeterDirection = 1
	return true
}

// HandleThirdClick locks spin and fires. The stroke counts from here on.
func (e *ShotEngine) HandleThirdClick(id PlayerID) bool {
	st, ok := e.states[id]
	if !ok || st.Phase != ShotHookSlice || !e.gate.CanTakeShots() {
		return false
	}
	g, ok := e.players.Golfer(id)
	if !ok {
		return false
	}
	st.Spin = clamp((st.MeterPosition-0.5)*2, -1, 1)
	st.Phase = ShotExecuting
	st.Shot = ShotDescriptor{
		Club:        st.Club,
		Power:       st.Power,
		Direction:   st.AimDirection,
		LaunchAngle: st.LaunchAngle,
		Spin:        st.Spin,
		Backspin:    st.Backspin,
		Valid:       true,
	}
	e.execute(g, st)
	return true
}

func (e *ShotEngine) execute(g *Golfer, st *PlayerShotState) {
	g.Strokes++
	g.TotalStrokes++
	g.LastStrike = g.Ball

	// hazards covering the stance (smoke, fire, sand) shorten the carry on
	// top of the lie
	difficulty := e.env.DifficultyAt(g.Ball)
	carry := st.Club.BaseDistance() * st.Power * LieMultiplier(g.Lie) * difficulty
	tr := NewShotTrajectory(LaunchParams{
		Origin:      g.Ball,
		Carry:       carry,
		Direction:   st.AimDirection,
		LaunchAngle: st.LaunchAngle,
		Spin:        st.Spin,
		Backspin:    st.Backspin,
		Wind:        e.env.WindEffectFor(carry, st.AimDirection),
	})

	predicted := SampleImpact(tr, g.Ball.Z, FlightSampleStep, MaxShotFlight)
	flight := newProjectile(g.ID, ProjectileMortar, tr, g.Ball.Z, MaxShotFlight, e.sched.Now())
	e.flights[g.ID] = flight
	e.spawn.Spawn("mortar_launch", g.Ball)

	if e.OnExecute != nil {
		e.OnExecute(ShotRecord{
			PlayerID:  g.ID,
			Hole:      g.CurrentHole,
			Stroke:    g.Strokes,
			Kind:      string(ProjectileMortar),
			Club:      st.Club,
			Power:     st.Power,
			Spin:      st.Spin,
			Direction: st.AimDirection,
			Landing:   predicted.Point,
			Lie:       g.Lie,
			CreatedAt: time.Now(),
		})
	}

	id := g.ID
	e.sched.Every(FlightSampleStep, id, func() bool {
		cur, ok := e.states[id]
		return ok && cur.Phase == ShotExecuting && e.flights[id] == flight
	}, func() bool {
		impact := flight.sample(e.sched.Now())
		if impact == nil {
			return true
		}
		e.resolve(id, flight, *impact)
		return false
	})

	e.log.Info().
		Str("player", string(g.ID)).
		Int("stroke", g.Strokes).
		Str("club", string(st.Club)).
		Float64("power", st.Power).
		Float64("spin", st.Spin).
		Float64("carry", carry).
		Float64("difficulty", difficulty).
		Msg("shot executed")
}

func (e *ShotEngine) resolve(id PlayerID, flight *ActiveProjectile, impact Impact) {
	delete(e.flights, id)
	st := e.states[id]
	g, ok := e.players.Golfer(id)
	if !ok || st == nil {
		return
	}

	out := ShotOutcome{Player: id, Impact: impact, Stroke: g.Strokes}
	e.spawn.Spawn("mortar_impact", impact.Point)
	out.Damage = e.env.ApplyExplosion(impact.Point, MortarBlastRadius, MortarDamage, id)
	for _, d := range out.Damage {
		if d.Destroyed {
			g.Points += d.ScoreValue
		}
	}

	hole, haveHole := e.course.Hole(g.CurrentHole)
	if !haveHole {
		g.Ball = impact.Point
		out.Lie = g.Lie
		out.DistanceToPin = MissingDataDistance
		st.Phase = ShotNone
		e.report(out)
		return
	}

	out.DistanceToPin = impact.Point.PlanarDistance(hole.Green)
	if out.DistanceToPin <= CupTolerance {
		g.Ball = hole.Green
		g.Lie = LieGreen
		g.HolePhase = HoleComplete
		st.Phase = ShotComplete
		out.Holed = true
		out.Lie = LieGreen
		e.notify.NotifyPlayer(id, fmt.Sprintf("Holed out in %d!", g.Strokes))
		e.report(out)
		return
	}

	hazards := e.env.HazardsAt(impact.Point)
	out.Penalty = e.env.PenaltyAt(impact.Point)
	returnToStrike := false
	for _, h := range hazards {
		out.Hazards = append(out.Hazards, h.Type)
		if h.Type == HazardWater || h.Type == HazardOutOfBounds {
			returnToStrike = true
		}
	}
	if out.Penalty > 0 {
		g.Strokes += out.Penalty
		g.TotalStrokes += out.Penalty
		g.Penalties += out.Penalty
		e.notify.NotifyPlayer(id, fmt.Sprintf("Hazard! +%d stroke penalty", out.Penalty))
	}

	if returnToStrike {
		g.Ball = g.LastStrike
	} else {
		g.Ball = impact.Point
		g.Lie = classifyLie(impact.Point, hole, hazards)
	}
	// The green beyond putter range is still played with a full swing.
	if g.Lie == LieGreen && g.Ball.PlanarDistance(hole.Green) <= PutterDistance {
		g.HolePhase = HolePutting
	} else if !returnToStrike {
		g.HolePhase = HoleFairway
	}
	out.Lie = g.Lie
	st.Phase = ShotNone

	e.notify.NotifyPlayer(id, fmt.Sprintf("Landed %.0fm from the pin (%s)", out.DistanceToPin, g.Lie))
	e.report(out)
}

func (e *ShotEngine) report(out ShotOutcome) {
	e.log.Info().
		Str("player", string(out.Player)).
		Bool("holed", out.Holed).
		Str("lie", string(out.Lie)).
		Int("penalty", out.Penalty).
		Float64("to_pin", out.DistanceToPin).
		Msg("shot resolved")
	if e.OnResolve != nil {
		e.OnResolve(out)
	}
}

// classifyLie names the surface at a landing point.
func classifyLie(p Vec3, hole Hole, hazards []HazardInstance) Lie {
	if p.PlanarDistance(hole.Green) <= hole.GreenRadius {
		return LieGreen
	}
	for _, h := range hazards {
		switch h.Type {
		case HazardSand:
			return LieSand
		case HazardRough:
			return LieRough
		}
	}
	if distanceToSegment(p, hole.Tee, hole.Green) > hole.FairwayWidth/2 {
		return LieRough
	}
	return LieFairway
}

// CancelShotSetup abandons a swing that has not fired. It is a no-op for
// unknown players, idle players and shells already in the air.
func (e *ShotEngine) CancelShotSetup(id PlayerID) bool {
	st, ok := e.states[id]
	if !ok || st.Phase == ShotNone || st.Phase == ShotExecuting || st.Phase == ShotComplete {
		return false
	}
	st.Phase = ShotNone
	st.MeterPosition = 0
	st.MeterDirection = 1
	e.notify.NotifyPlayer(id, "Shot cancelled")
	return true
}

// UpdateShotTimers advances meters and countdowns by dt seconds.
func (e *ShotEngine) UpdateShotTimers(dt float64) {
	for id, st := range e.states {
		switch st.Phase {
		case ShotNone, ShotComplete, ShotExecuting:
			continue
		case ShotBackswing, ShotHookSlice:
			advanceMeter(st, dt)
		}

		st.TimeRemaining -= dt
		if st.TimeRemaining <= 0 {
			st.TimeRemaining = 0
			st.Phase = ShotNone
			e.notify.NotifyPlayer(id, "Shot timed out")
			e.log.Debug().Str("player", string(id)).Msg("shot timed out")
		}
	}
}

// advanceMeter bounces the meter between 0 and 1.
func advanceMeter(st *PlayerShotState, dt float64) {
	st.MeterPosition += st.MeterDirection * st.MeterSpeed * dt
	if st.MeterPosition >= 1 {
		st.MeterPosition = 1
		st.MeterDirection = -1
	} else if st.MeterPosition <= 0 {
		st.MeterPosition = 0
		st.MeterDirection = 1
	}
}

// ChangeClub swaps clubs while aiming.
func (e *ShotEngine) ChangeClub(id PlayerID, club ClubType) bool {
	st, ok := e.states[id]
	if !ok || st.Phase != ShotAiming || !club.Valid() {
		return false
	}
	st.Club = club
	return true
}

// AdjustAim rotates the aim while aiming; the result wraps into [0,360).
func (e *ShotEngine) AdjustAim(id PlayerID, delta float64) bool {
	st, ok := e.states[id]
	if !ok || st.Phase != ShotAiming {
		return false
	}
	st.AimDirection = normalizeDegrees(st.AimDirection + delta)
	return true
}

// AdjustLaunchAngle changes loft while aiming, clamped to the allowed range.
func (e *ShotEngine) AdjustLaunchAngle(id PlayerID, delta float64) bool {
	st, ok := e.states[id]
	if !ok || st.Phase != ShotAiming {
		return false
	}
	st.LaunchAngle = clamp(st.LaunchAngle+delta, MinLaunchAngle, MaxLaunchAngle)
	return true
}

// State returns a copy of the player's swing.
func (e *ShotEngine) State(id PlayerID) (PlayerShotState, bool) {
	st, ok := e.states[id]
	if !ok {
		return PlayerShotState{}, false
	}
	return *st, true
}

// Flight returns a copy of the player's shell in the air, if any.
func (e *ShotEngine) Flight(id PlayerID) (ActiveProjectile, bool) {
	f, ok := e.flights[id]
	if !ok {
		return ActiveProjectile{}, false
	}
	return *f, true
}

// Active reports whether the player has a swing or shell in progress.
func (e *ShotEngine) Active(id PlayerID) bool {
	st, ok := e.states[id]
	return ok && st.Phase != ShotNone && st.Phase != ShotComplete
}

// RemovePlayer forgets a disconnected player.
func (e *ShotEngine) RemovePlayer(id PlayerID) {
	delete(e.states, id)
	delete(e.flights, id)
}

// Reset drops every swing and flight, e.g. when a hole closes.
func (e *ShotEngine) Reset() {
	e.states = make(map[PlayerID]*PlayerShotState)
	e.flights = make(map[PlayerID]*ActiveProjectile)
}
