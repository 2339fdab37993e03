package game

import (
	"testing"

	"github.com/rs/zerolog"
)

type shotRig struct {
	gate     *fakeGate
	roster   *Roster
	course   *Course
	env      *Environment
	sched    *Scheduler
	engine   *ShotEngine
	outcomes []ShotOutcome
	records  []ShotRecord
}

func newShotRig(h Hole) *shotRig {
	r := &shotRig{
		gate:   &fakeGate{playing: true, hole: h.Number},
		roster: NewRoster(8),
		course: singleHoleCourse(h),
		env:    quietEnv(),
		sched:  NewScheduler(),
	}
	r.engine = NewShotEngine(r.gate, r.roster, r.course, r.env, r.sched, nil, nil, zerolog.Nop())
	r.engine.OnResolve = func(out ShotOutcome) { r.outcomes = append(r.outcomes, out) }
	r.engine.OnExecute = func(rec ShotRecord) { r.records = append(r.records, rec) }
	return r
}

// swing clicks through a full swing, stopping the power meter at power
// and the hook/slice meter dead centre.
func (r *shotRig) swing(t *testing.T, id PlayerID, power float64) {
	t.Helper()
	if !r.engine.HandleClick(id) {
		t.Fatal("first click rejected")
	}
	r.engine.UpdateShotTimers(power)
	if !r.engine.HandleClick(id) {
		t.Fatal("second click rejected")
	}
	r.engine.UpdateShotTimers(0.5)
	if !r.engine.HandleClick(id) {
		t.Fatal("third click rejected")
	}
}

// expectedImpact is where a calm, centred driver swing at power lands
// when struck from the origin toward +X.
func expectedImpact(power float64) Impact {
	tr := NewShotTrajectory(LaunchParams{
		Carry:       ClubDriver.BaseDistance() * power * TeeMultiplier,
		LaunchAngle: DefaultLaunchAngle,
		Backspin:    DefaultBackspin,
	})
	return SampleImpact(tr, 0, FlightSampleStep, MaxShotFlight)
}

func TestShotSetupDefaults(t *testing.T) {
	rig := newShotRig(straightHole(320))
	teedUp(rig.roster, "p1", straightHole(320))

	if !rig.engine.InitializeShotSetup("p1") {
		t.Fatal("setup rejected")
	}
	st, _ := rig.engine.State("p1")
	if st.Phase != ShotAiming || st.Club != ClubDriver || st.AimDirection != 0 {
		t.Errorf("setup state = %+v", st)
	}
	if st.LaunchAngle != DefaultLaunchAngle || st.Backspin != DefaultBackspin || st.TimeRemaining != ShotTimeout {
		t.Errorf("setup defaults = %+v", st)
	}
}

func TestShotSetupRefusals(t *testing.T) {
	hole := straightHole(320)

	rig := newShotRig(hole)
	teedUp(rig.roster, "p1", hole)
	rig.gate.playing = false
	if rig.engine.InitializeShotSetup("p1") {
		t.Error("setup accepted outside playing")
	}
	if _, has := rig.engine.State("p1"); has {
		t.Error("refused setup left a shot state behind")
	}

	rig = newShotRig(hole)
	g := teedUp(rig.roster, "p1", hole)
	g.CurrentHole = 2
	if rig.engine.InitializeShotSetup("p1") {
		t.Error("setup accepted for a golfer on another hole")
	}

	rig = newShotRig(hole)
	g = teedUp(rig.roster, "p1", hole)
	g.HolePhase = HolePutting
	if rig.engine.InitializeShotSetup("p1") {
		t.Error("setup accepted while putting")
	}

	if rig.engine.InitializeShotSetup("ghost") {
		t.Error("setup accepted for unknown player")
	}
	if rig.engine.HandleClick("ghost") {
		t.Error("click accepted without setup")
	}
}

func TestShotMeterBounces(t *testing.T) {
	rig := newShotRig(straightHole(320))
	teedUp(rig.roster, "p1", straightHole(320))
	rig.engine.InitializeShotSetup("p1")

	// aiming does not move the meter
	rig.engine.UpdateShotTimers(0.3)
	if st, _ := rig.engine.State("p1"); st.MeterPosition != 0 {
		t.Fatalf("meter moved while aiming: %.2f", st.MeterPosition)
	}

	rig.engine.HandleClick("p1")
	rig.engine.UpdateShotTimers(1.5)
	st, _ := rig.engine.State("p1")
	if st.MeterPosition != 1 || st.MeterDirection != -1 {
		t.Fatalf("meter at top = %.2f dir %.0f", st.MeterPosition, st.MeterDirection)
	}
	rig.engine.UpdateShotTimers(0.25)
	st, _ = rig.engine.State("p1")
	if !approx(st.MeterPosition, 0.75, 1e-9) {
		t.Errorf("meter on the way down = %.2f", st.MeterPosition)
	}
}

func TestShotExecutesAndLands(t *testing.T) {
	hole := straightHole(320)
	rig := newShotRig(hole)
	g := teedUp(rig.roster, "p1", hole)
	rig.engine.InitializeShotSetup("p1")
	rig.swing(t, "p1", 0.5)

	st, _ := rig.engine.State("p1")
	if st.Phase != ShotExecuting || !st.Shot.Valid || st.Shot.Power != 0.5 || st.Shot.Spin != 0 {
		t.Fatalf("after third click = %+v", st)
	}
	if g.Strokes != 1 || g.TotalStrokes != 1 {
		t.Errorf("strokes = %d/%d, want 1/1", g.Strokes, g.TotalStrokes)
	}
	if _, ok := rig.engine.Flight("p1"); !ok {
		t.Error("no shell in the air")
	}
	if len(rig.records) != 1 || rig.records[0].Club != ClubDriver || rig.records[0].Stroke != 1 {
		t.Errorf("records = %+v", rig.records)
	}
	// the swing cannot be restarted mid-flight
	if rig.engine.InitializeShotSetup("p1") || rig.engine.CancelShotSetup("p1") {
		t.Error("setup or cancel accepted during flight")
	}

	rig.sched.Advance(MaxShotFlight)

	if len(rig.outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(rig.outcomes))
	}
	want := expectedImpact(0.5)
	out := rig.outcomes[0]
	if !approx(out.Impact.Point.X, want.Point.X, 1e-6) || out.Holed {
		t.Errorf("outcome = %+v, want landing near x=%.2f", out, want.Point.X)
	}
	if !approx(g.Ball.X, want.Point.X, 1e-6) || !approx(g.Ball.Y, 0, 1e-9) {
		t.Errorf("ball = %+v", g.Ball)
	}
	if g.Lie != LieFairway || g.HolePhase != HoleFairway || g.LastStrike != hole.Tee {
		t.Errorf("golfer after landing: lie %s phase %s last strike %+v", g.Lie, g.HolePhase, g.LastStrike)
	}
	if st, _ := rig.engine.State("p1"); st.Phase != ShotNone {
		t.Errorf("phase after landing = %s", st.Phase)
	}
	if _, ok := rig.engine.Flight("p1"); ok {
		t.Error("shell still in the air after landing")
	}
}

func TestShotHolesOut(t *testing.T) {
	want := expectedImpact(0.5)
	hole := straightHole(want.Point.X)
	rig := newShotRig(hole)
	g := teedUp(rig.roster, "p1", hole)

	rig.engine.InitializeShotSetup("p1")
	if !rig.engine.ChangeClub("p1", ClubDriver) {
		t.Fatal("club change rejected")
	}
	rig.swing(t, "p1", 0.5)
	rig.sched.Advance(MaxShotFlight)

	if len(rig.outcomes) != 1 || !rig.outcomes[0].Holed {
		t.Fatalf("outcomes = %+v", rig.outcomes)
	}
	if g.HolePhase != HoleComplete || g.Ball != hole.Green || g.Strokes != 1 {
		t.Errorf("golfer = phase %s ball %+v strokes %d", g.HolePhase, g.Ball, g.Strokes)
	}
	if st, _ := rig.engine.State("p1"); st.Phase != ShotComplete {
		t.Errorf("phase = %s", st.Phase)
	}
	if rig.engine.InitializeShotSetup("p1") {
		t.Error("setup accepted after holing out")
	}
}

func TestShotIntoWaterReturnsToLastStrike(t *testing.T) {
	landing := expectedImpact(0.5).Point
	hole := straightHole(320, HazardSpec{Type: HazardWater, Position: landing, Radius: 20, Penalty: 1})
	rig := newShotRig(hole)
	rig.env.InitializeHazardSystem(hole)
	rig.env.wind = Wind{}
	g := teedUp(rig.roster, "p1", hole)

	rig.engine.InitializeShotSetup("p1")
	rig.swing(t, "p1", 0.5)
	rig.sched.Advance(MaxShotFlight)

	if len(rig.outcomes) != 1 {
		t.Fatalf("outcomes = %d", len(rig.outcomes))
	}
	out := rig.outcomes[0]
	if out.Penalty != PenaltyWater || len(out.Hazards) != 1 || out.Hazards[0] != HazardWater {
		t.Errorf("outcome = %+v", out)
	}
	if g.Strokes != 2 || g.Penalties != 1 || g.TotalStrokes != 2 {
		t.Errorf("strokes %d penalties %d total %d", g.Strokes, g.Penalties, g.TotalStrokes)
	}
	if g.Ball != hole.Tee || g.Lie != LieTee || g.HolePhase != HoleTeeoff {
		t.Errorf("golfer not returned to the tee: ball %+v lie %s phase %s", g.Ball, g.Lie, g.HolePhase)
	}
}

func TestShotDamagesObstaclesAtImpact(t *testing.T) {
	landing := expectedImpact(0.5).Point
	hole := straightHole(320)
	rig := newShotRig(hole)
	rig.env.InitializeHazardSystem(hole)
	rig.env.wind = Wind{}
	crate := rig.env.spawnDestructible(DestructibleCrate, landing)
	g := teedUp(rig.roster, "p1", hole)

	rig.engine.InitializeShotSetup("p1")
	rig.swing(t, "p1", 0.5)
	rig.sched.Advance(MaxShotFlight)

	if !crate.Destroyed {
		t.Fatalf("crate at the impact point survived with %.1f health", crate.Health)
	}
	if g.Points != crate.ScoreValue {
		t.Errorf("points = %d, want %d", g.Points, crate.ScoreValue)
	}
	if out := rig.outcomes[0]; len(out.Damage) != 1 || !out.Damage[0].Destroyed {
		t.Errorf("damage = %+v", out.Damage)
	}
}

func TestShotCancelAndTimeout(t *testing.T) {
	rig := newShotRig(straightHole(320))
	teedUp(rig.roster, "p1", straightHole(320))

	rig.engine.InitializeShotSetup("p1")
	rig.engine.HandleClick("p1")
	if !rig.engine.CancelShotSetup("p1") {
		t.Fatal("cancel rejected during backswing")
	}
	if rig.engine.CancelShotSetup("p1") {
		t.Error("second cancel accepted")
	}
	if rig.engine.Active("p1") {
		t.Error("cancelled swing still active")
	}

	rig.engine.InitializeShotSetup("p1")
	rig.engine.UpdateShotTimers(ShotTimeout)
	if st, _ := rig.engine.State("p1"); st.Phase != ShotNone || st.TimeRemaining != 0 {
		t.Errorf("after timeout = %+v", st)
	}
	if len(rig.records) != 0 {
		t.Error("a cancelled or timed out swing was recorded as a stroke")
	}
}

func TestShotAdjustmentsOnlyWhileAiming(t *testing.T) {
	rig := newShotRig(straightHole(320))
	teedUp(rig.roster, "p1", straightHole(320))
	rig.engine.InitializeShotSetup("p1")

	rig.engine.AdjustAim("p1", -90)
	rig.engine.AdjustLaunchAngle("p1", 100)
	st, _ := rig.engine.State("p1")
	if st.AimDirection != 270 || st.LaunchAngle != MaxLaunchAngle {
		t.Errorf("aim %.1f angle %.1f", st.AimDirection, st.LaunchAngle)
	}
	rig.engine.AdjustLaunchAngle("p1", -100)
	if st, _ := rig.engine.State("p1"); st.LaunchAngle != MinLaunchAngle {
		t.Errorf("angle = %.1f, want %.1f", st.LaunchAngle, MinLaunchAngle)
	}
	if rig.engine.ChangeClub("p1", "SPOON") {
		t.Error("unknown club accepted")
	}

	rig.engine.HandleClick("p1")
	if rig.engine.ChangeClub("p1", ClubWedge) || rig.engine.AdjustAim("p1", 5) || rig.engine.AdjustLaunchAngle("p1", 5) {
		t.Error("adjustment accepted during backswing")
	}
}

func TestShotResetDropsFlights(t *testing.T) {
	rig := newShotRig(straightHole(320))
	teedUp(rig.roster, "p1", straightHole(320))
	rig.engine.InitializeShotSetup("p1")
	rig.swing(t, "p1", 0.5)

	rig.engine.Reset()
	rig.sched.Advance(MaxShotFlight)
	if len(rig.outcomes) != 0 {
		t.Errorf("a reset flight still landed: %+v", rig.outcomes)
	}
}

func TestClassifyLie(t *testing.T) {
	hole := straightHole(300)
	sand := HazardInstance{Type: HazardSand, Position: Vec3{X: 150}, Radius: 10}
	tests := []struct {
		name    string
		p       Vec3
		hazards []HazardInstance
		want    Lie
	}{
		{"on the green", Vec3{X: 290, Y: 5}, nil, LieGreen},
		{"in a bunker", Vec3{X: 150}, []HazardInstance{sand}, LieSand},
		{"centre line", Vec3{X: 150}, nil, LieFairway},
		{"wide of the fairway", Vec3{X: 150, Y: 30}, nil, LieRough},
	}
	for _, tt := range tests {
		if got := classifyLie(tt.p, hole, tt.hazards); got != tt.want {
			t.Errorf("%s: lie = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestRecommendClub(t *testing.T) {
	tests := map[float64]ClubType{
		10:  ClubPutter,
		20:  ClubPutter,
		60:  ClubWedge,
		150: ClubIron,
		151: ClubDriver,
	}
	for dist, want := range tests {
		if got := RecommendClub(dist); got != want {
			t.Errorf("RecommendClub(%.0f) = %s, want %s", dist, got, want)
		}
	}
}

func TestShotFromSmokeCarriesShorter(t *testing.T) {
	smoke := HazardSpec{Type: HazardSmoke, Position: Vec3{}, Radius: 10}
	hole := straightHole(320, smoke)
	rig := newShotRig(hole)
	rig.env = NewEnvironment(nil, zerolog.Nop(), WithSeed(7),
		WithHazardConfig(HazardDestructible, HazardConfig{Enabled: false}),
		WithHazardConfig(HazardSmoke, HazardConfig{Enabled: true, Frequency: 1, Intensity: 1}),
	)
	rig.engine = NewShotEngine(rig.gate, rig.roster, rig.course, rig.env, rig.sched, nil, nil, zerolog.Nop())
	rig.engine.OnResolve = func(out ShotOutcome) { rig.outcomes = append(rig.outcomes, out) }
	rig.engine.OnExecute = func(rec ShotRecord) { rig.records = append(rig.records, rec) }
	rig.env.InitializeHazardSystem(hole)
	rig.env.wind = Wind{}
	teedUp(rig.roster, "p1", hole)

	rig.engine.InitializeShotSetup("p1")
	rig.swing(t, "p1", 0.5)
	rig.sched.Advance(MaxShotFlight)

	tr := NewShotTrajectory(LaunchParams{
		Carry:       ClubDriver.BaseDistance() * 0.5 * TeeMultiplier * HazardDifficulty(HazardSmoke),
		LaunchAngle: DefaultLaunchAngle,
		Backspin:    DefaultBackspin,
	})
	want := SampleImpact(tr, 0, FlightSampleStep, MaxShotFlight)

	if len(rig.outcomes) != 1 || len(rig.records) != 1 {
		t.Fatalf("outcomes %d records %d", len(rig.outcomes), len(rig.records))
	}
	got := rig.outcomes[0].Impact.Point
	if !approx(got.X, want.Point.X, 1e-6) {
		t.Errorf("landed at x=%.2f, want %.2f", got.X, want.Point.X)
	}
	if got.X >= expectedImpact(0.5).Point.X {
		t.Errorf("smoke did not shorten the carry: %.2f", got.X)
	}
	// the record carries the landing predicted at launch
	if landing := rig.records[0].Landing; !approx(landing.X, got.X, 1e-6) {
		t.Errorf("predicted landing x=%.2f, actual %.2f", landing.X, got.X)
	}
}
