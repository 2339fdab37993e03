package game

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
)

type PuttPhase string

const (
	PuttNone     PuttPhase = "NONE"
	PuttAiming   PuttPhase = "AIMING"
	PuttCharging PuttPhase = "CHARGING"
	PuttThrowing PuttPhase = "THROWING"
	PuttResult   PuttPhase = "RESULT"
)

type PuttResultKind string

const (
	PuttResultNone    PuttResultKind = ""
	PuttResultSuccess PuttResultKind = "SUCCESS"
	PuttResultMiss    PuttResultKind = "MISS"
)

// PuttTier is the difficulty band chosen from distance to the hole.
type PuttTier string

const (
	TierEasy   PuttTier = "EASY"
	TierMedium PuttTier = "MEDIUM"
	TierHard   PuttTier = "HARD"
	TierExpert PuttTier = "EXPERT"
)

type tierSpec struct {
	radius       float64
	points       int
	timeBonus    int
	maxDeviation float64
}

func tierFor(distance float64) (PuttTier, tierSpec) {
	switch {
	case distance <= easyPuttMax:
		return TierEasy, tierSpec{radius: 2.0, points: 100, timeBonus: 10, maxDeviation: maxDeviationEasy}
	case distance <= mediumPuttMax:
		return TierMedium, tierSpec{radius: 1.5, points: 200, timeBonus: 15, maxDeviation: maxDeviationMedium}
	case distance <= hardPuttMax:
		return TierHard, tierSpec{radius: 1.0, points: 300, timeBonus: 20, maxDeviation: maxDeviationHard}
	default:
		return TierExpert, tierSpec{radius: 0.7, points: 500, timeBonus: 30, maxDeviation: maxDeviationExpert}
	}
}

// PuttingTarget is the ring a dart has to land in.
type PuttingTarget struct {
	Position   Vec3     `json:"position"`
	Radius     float64  `json:"radius"`
	Tier       PuttTier `json:"tier"`
	PointValue int      `json:"point_value"`
	TimeBonus  int      `json:"time_bonus"`
}

// GenerateTarget places a target between ball and hole. The bearing is
// rotated by a random angle within the tier's deviation and the target sits
// at the lesser of 80% of the distance or one meter short of the hole.
func GenerateTarget(rng *rand.Rand, ball, hole Vec3) PuttingTarget {
	distance := ball.PlanarDistance(hole)
	tier, spec := tierFor(distance)

	deviation := (rng.Float64() - 0.5) * 2 * spec.maxDeviation
	bearing := ball.BearingTo(hole) + deviation*180/math.Pi
	reach := math.Max(0, math.Min(PuttTargetShare*distance, distance-PuttTargetMinOffset))

	pos := ball.Offset(bearing, reach)
	pos.Z = hole.Z
	return PuttingTarget{
		Position:   pos,
		Radius:     spec.radius,
		Tier:       tier,
		PointValue: spec.points,
		TimeBonus:  spec.timeBonus,
	}
}

// PlayerPuttingState is one player's work on the green.
type PlayerPuttingState struct {
	Player        PlayerID       `json:"player"`
	Phase         PuttPhase      `json:"phase"`
	Target        *PuttingTarget `json:"target,omitempty"`
	ThrowPower    float64        `json:"throw_power"`
	Attempts      int            `json:"attempts"`
	TimeRemaining float64        `json:"time_remaining"`
	LastResult    PuttResultKind `json:"last_result"`

	seq int
}

// PuttOutcome is reported after each dart lands.
type PuttOutcome struct {
	Player       PlayerID `json:"player"`
	Hit          bool     `json:"hit"`
	MissDistance float64  `json:"miss_distance"`
	Points       int      `json:"points"`
	Bonus        int      `json:"bonus"`
	Attempts     int      `json:"attempts"`
	Penalty      int      `json:"penalty"`
	Holed        bool     `json:"holed"`
	Impact       Impact   `json:"impact"`
}

// PuttingEngine resolves the dart mini-game for every player on a green.
type PuttingEngine struct {
	states map[PlayerID]*PlayerPuttingState
	darts  map[PlayerID]*ActiveProjectile

	gate    PhaseGate
	players Players
	course  CourseProvider
	env     *Environment
	sched   *Scheduler
	notify  Notifier
	spawn   Spawner
	rng     *rand.Rand
	log     zerolog.Logger

	OnExecute func(ShotRecord)
	OnResolve func(PuttOutcome)
}

func NewPuttingEngine(gate PhaseGate, players Players, course CourseProvider, env *Environment, sched *Scheduler, notify Notifier, spawn Spawner, rng *rand.Rand, log zerolog.Logger) *PuttingEngine {
	if notify == nil {
		notify = nopNotifier{}
	}
	if spawn == nil {
		spawn = nopSpawner{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &PuttingEngine{
		states:  make(map[PlayerID]*PlayerPuttingState),
		darts:   make(map[PlayerID]*ActiveProjectile),
		gate:    gate,
		players: players,
		course:  course,
		env:     env,
		sched:   sched,
		notify:  notify,
		spawn:   spawn,
		rng:     rng,
		log:     log.With().Str("component", "putting").Logger(),
	}
}

// canPutt checks phase, hole assignment, lie and range.
func (e *PuttingEngine) canPutt(id PlayerID) (*Golfer, Hole, bool) {
	if !e.gate.CanTakeShots() {
		return nil, Hole{}, false
	}
	g, ok := e.players.Golfer(id)
	if !ok || g.CurrentHole != e.gate.CurrentHole() || g.HolePhase == HoleComplete || g.Lie != LieGreen {
		return nil, Hole{}, false
	}
	hole, ok := e.course.Hole(g.CurrentHole)
	distance := MissingDataDistance
	if ok {
		distance = g.Ball.PlanarDistance(hole.Green)
	}
	if distance > PutterDistance {
		return nil, Hole{}, false
	}
	return g, hole, true
}

// InitializePuttingMode deals a fresh target and starts the putt clock.
// The attempt count carries over between attempts on the same green.
func (e *PuttingEngine) InitializePuttingMode(id PlayerID) bool {
	g, hole, ok := e.canPutt(id)
	if !ok {
		return false
	}
	st, exists := e.states[id]
	if exists && (st.Phase == PuttThrowing || st.Phase == PuttCharging) {
		return false
	}
	if !exists {
		st = &PlayerPuttingState{Player: id}
		e.states[id] = st
	}

	target := GenerateTarget(e.rng, g.Ball, hole.Green)
	st.seq++
	st.Phase = PuttAiming
	st.Target = &target
	st.ThrowPower = 0
	st.TimeRemaining = PuttTimeout
	g.HolePhase = HolePutting

	e.notify.NotifyPlayer(id, fmt.Sprintf("%s putt: hold to charge, release to throw (attempt %d/%d)", target.Tier, st.Attempts+1, MaxPuttAttempts))
	e.log.Debug().
		Str("player", string(id)).
		Str("tier", string(target.Tier)).
		Float64("radius", target.Radius).
		Msg("putting mode")
	return true
}

// StartDartThrow begins charging. Power rises at a fixed rate until release.
func (e *PuttingEngine) StartDartThrow(id PlayerID) bool {
	st, ok := e.states[id]
	if !ok || st.Phase != PuttAiming || !e.gate.CanTakeShots() {
		return false
	}
	st.Phase = PuttCharging
	st.ThrowPower = 0
	seq := st.seq

	e.sched.Every(PuttChargeInterval, id, func() bool {
		cur, ok := e.states[id]
		return ok && cur == st && cur.seq == seq && cur.Phase == PuttCharging
	}, func() bool {
		st.ThrowPower = math.Min(1, st.ThrowPower+PuttChargeRate*PuttChargeInterval)
		return st.ThrowPower < 1
	})
	return true
}

// ReleaseDartThrow throws at the charged power. Each dart is a stroke.
func (e *PuttingEngine) ReleaseDartThrow(id PlayerID) bool {
	st, ok := e.states[id]
	if !ok || st.Phase != PuttCharging || st.Target == nil || !e.gate.CanTakeShots() {
		return false
	}
	g, ok := e.players.Golfer(id)
	if !ok {
		return false
	}
	st.Phase = PuttThrowing
	g.Strokes++
	g.TotalStrokes++

	target := *st.Target
	reach := g.Ball.PlanarDistance(target.Position)
	heading := g.Ball.BearingTo(target.Position)
	wind := e.env.WindEffectFor(reach, heading)
	wind.Lateral *= DartWindShare
	wind.Longitudinal *= DartWindShare

	tr := NewDartTrajectory(g.Ball, target.Position, st.ThrowPower, wind)
	dart := newProjectile(id, ProjectileDart, tr, target.Position.Z, DartMaxFlight, e.sched.Now())
	e.darts[id] = dart
	e.spawn.Spawn("dart", g.Ball)

	if e.OnExecute != nil {
		e.OnExecute(ShotRecord{
			PlayerID:  id,
			Hole:      g.CurrentHole,
			Stroke:    g.Strokes,
			Kind:      string(ProjectileDart),
			Club:      ClubPutter,
			Power:     st.ThrowPower,
			Direction: heading,
			Lie:       g.Lie,
		})
	}

	seq := st.seq
	e.sched.Every(FlightSampleStep, id, func() bool {
		cur, ok := e.states[id]
		return ok && cur.seq == seq && cur.Phase == PuttThrowing && e.darts[id] == dart
	}, func() bool {
		impact := dart.sample(e.sched.Now())
		if impact == nil {
			return true
		}
		e.resolve(id, st, target, *impact)
		return false
	})

	e.log.Debug().
		Str("player", string(id)).
		Float64("power", st.ThrowPower).
		Msg("dart released")
	return true
}

func (e *PuttingEngine) resolve(id PlayerID, st *PlayerPuttingState, target PuttingTarget, impact Impact) {
	delete(e.darts, id)
	st.Phase = PuttResult
	g, ok := e.players.Golfer(id)
	if !ok {
		return
	}

	out := PuttOutcome{Player: id, Impact: impact}
	miss, hit := Classify(impact.Point, target.Position, target.Radius)
	out.MissDistance = miss
	hit = hit && impact.Landed

	if hit {
		out.Hit = true
		out.Points = int(math.Floor(float64(target.PointValue) * (1 - miss/target.Radius)))
		if st.TimeRemaining > PuttTimeout/2 {
			out.Bonus = target.TimeBonus
		}
		g.Points += out.Points + out.Bonus
		st.LastResult = PuttResultSuccess
		out.Attempts = st.Attempts
		out.Holed = true
		e.completeHole(g)
		e.notify.NotifyPlayer(id, fmt.Sprintf("Bullseye! +%d points", out.Points+out.Bonus))
		e.report(out)
		return
	}

	st.Attempts++
	st.LastResult = PuttResultMiss
	out.Attempts = st.Attempts

	if st.Attempts >= MaxPuttAttempts {
		g.Strokes += PuttMissPenalty
		g.TotalStrokes += PuttMissPenalty
		g.Penalties += PuttMissPenalty
		out.Penalty = PuttMissPenalty
		out.Holed = true
		e.completeHole(g)
		e.notify.NotifyPlayer(id, fmt.Sprintf("Out of attempts, hole conceded (+%d strokes)", PuttMissPenalty))
		e.report(out)
		return
	}

	e.notify.NotifyPlayer(id, fmt.Sprintf("Missed by %.1fm. Next attempt shortly.", miss))
	seq := st.seq
	e.sched.After(PuttRetryDelay, id, func() bool {
		cur, ok := e.states[id]
		return ok && cur == st && cur.seq == seq && cur.Phase == PuttResult
	}, func() {
		if !e.InitializePuttingMode(id) {
			st.Phase = PuttNone
		}
	})
	e.report(out)
}

// completeHole finishes the hole for g and drops the putting state.
func (e *PuttingEngine) completeHole(g *Golfer) {
	if hole, ok := e.course.Hole(g.CurrentHole); ok {
		g.Ball = hole.Green
	}
	g.HolePhase = HoleComplete
	delete(e.states, g.ID)
}

func (e *PuttingEngine) report(out PuttOutcome) {
	e.log.Info().
		Str("player", string(out.Player)).
		Bool("hit", out.Hit).
		Float64("miss", out.MissDistance).
		Int("attempts", out.Attempts).
		Int("points", out.Points).
		Bool("holed", out.Holed).
		Msg("putt resolved")
	if e.OnResolve != nil {
		e.OnResolve(out)
	}
}

// UpdatePuttingTimers counts down aiming and charging. A timeout cancels
// the attempt but does not count toward the miss cap.
func (e *PuttingEngine) UpdatePuttingTimers(dt float64) {
	for id, st := range e.states {
		if st.Phase != PuttAiming && st.Phase != PuttCharging {
			continue
		}
		st.TimeRemaining -= dt
		if st.TimeRemaining <= 0 {
			st.TimeRemaining = 0
			e.cancel(st)
			e.notify.NotifyPlayer(id, "Putt timed out")
			e.log.Debug().Str("player", string(id)).Int("attempts", st.Attempts).Msg("putt timed out")
		}
	}
}

// CancelPuttingMode abandons the current attempt. Darts in flight and
// idle players are left alone.
func (e *PuttingEngine) CancelPuttingMode(id PlayerID) bool {
	st, ok := e.states[id]
	if !ok || st.Phase == PuttNone || st.Phase == PuttThrowing {
		return false
	}
	e.cancel(st)
	e.notify.NotifyPlayer(id, "Putt cancelled")
	return true
}

func (e *PuttingEngine) cancel(st *PlayerPuttingState) {
	st.seq++
	st.Phase = PuttNone
	st.ThrowPower = 0
	st.Target = nil
}

// State returns a copy of the player's putting state.
func (e *PuttingEngine) State(id PlayerID) (PlayerPuttingState, bool) {
	st, ok := e.states[id]
	if !ok {
		return PlayerPuttingState{}, false
	}
	out := *st
	if st.Target != nil {
		t := *st.Target
		out.Target = &t
	}
	return out, true
}

// Dart returns a copy of the player's dart in the air, if any.
func (e *PuttingEngine) Dart(id PlayerID) (ActiveProjectile, bool) {
	d, ok := e.darts[id]
	if !ok {
		return ActiveProjectile{}, false
	}
	return *d, true
}

func (e *PuttingEngine) Active(id PlayerID) bool {
	st, ok := e.states[id]
	return ok && st.Phase != PuttNone
}

func (e *PuttingEngine) RemovePlayer(id PlayerID) {
	delete(e.states, id)
	delete(e.darts, id)
}

func (e *PuttingEngine) Reset() {
	e.states = make(map[PlayerID]*PlayerPuttingState)
	e.darts = make(map[PlayerID]*ActiveProjectile)
}
