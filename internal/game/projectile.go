package game

// ProjectileKind tells mortar shells from putting darts.
type ProjectileKind string

const (
	ProjectileMortar ProjectileKind = "MORTAR"
	ProjectileDart   ProjectileKind = "DART"
)

// ActiveProjectile is a flight in progress. It lives from release until
// impact is classified or the flight times out.
type ActiveProjectile struct {
	Owner      PlayerID       `json:"owner"`
	Kind       ProjectileKind `json:"kind"`
	Launch     Vec3           `json:"launch"`
	Velocity   Vec3           `json:"velocity"`
	Spin       float64        `json:"spin"`
	Backspin   float64        `json:"backspin"`
	LaunchedAt float64        `json:"launched_at"`
	Impacted   bool           `json:"impacted"`
	Position   Vec3           `json:"position"`

	trajectory Trajectory
	plane      float64
	maxFlight  float64
}

func newProjectile(owner PlayerID, kind ProjectileKind, tr Trajectory, plane, maxFlight, now float64) *ActiveProjectile {
	return &ActiveProjectile{
		Owner:      owner,
		Kind:       kind,
		Launch:     tr.Origin,
		Velocity:   tr.Velocity,
		Spin:       tr.Spin,
		Backspin:   tr.Backspin,
		LaunchedAt: now,
		Position:   tr.Origin,
		trajectory: tr,
		plane:      plane,
		maxFlight:  maxFlight,
	}
}

// sample re-evaluates the flight at game time now. It returns a non-nil
// impact once the projectile has landed or run out of flight time.
func (p *ActiveProjectile) sample(now float64) *Impact {
	elapsed := now - p.LaunchedAt
	p.Position = p.trajectory.PositionAt(elapsed)
	if p.trajectory.Landed(elapsed, p.plane) {
		p.Impacted = true
		return &Impact{Point: groundAt(p.Position, p.plane), Time: elapsed, Landed: true}
	}
	if elapsed >= p.maxFlight {
		p.Impacted = true
		return &Impact{Point: groundAt(p.Position, p.plane), Time: elapsed}
	}
	return nil
}
