package game

import "math"

// LaunchParams describe a full shot at the moment of the third click.
type LaunchParams struct {
	Origin      Vec3
	Carry       float64 // club base × power × lie multiplier
	Direction   float64 // heading, degrees
	LaunchAngle float64 // degrees above the ground plane
	Spin        float64 // hook/slice in [-1,1]
	Backspin    float64
	Wind        WindEffect
}

// Trajectory is an immutable closed-form flight path. Position is always
// evaluated from elapsed time since launch; nothing is integrated.
type Trajectory struct {
	Origin   Vec3    `json:"origin"`
	Velocity Vec3    `json:"velocity"`
	Heading  float64 `json:"heading"`
	Spin     float64 `json:"spin"`
	Backspin float64 `json:"backspin"`
	Drag     float64 `json:"drag"`
	Wind     Vec3    `json:"wind"`
	Nominal  float64 `json:"nominal_flight"`
}

// NewShotTrajectory picks the launch speed whose drag-free range equals the
// requested carry, then layers spin, backspin lift and the wind snapshot on top.
func NewShotTrajectory(p LaunchParams) Trajectory {
	angle := clamp(p.LaunchAngle, 1, 89) * math.Pi / 180
	speed := 0.0
	if p.Carry > 0 {
		speed = math.Sqrt(p.Carry * -Gravity / math.Sin(2*angle))
	}
	spin := clamp(p.Spin, -1, 1)
	hv := speed * math.Cos(angle)
	vz := speed * math.Sin(angle) * (1 + SpinLaunchFactor*p.Backspin)
	lateral := spin * SpinLaunchFactor * hv

	return newTrajectory(p.Origin, p.Direction, hv, lateral, vz, spin, p.Backspin, AirResistance, p.Wind)
}

// NewDartTrajectory aims a putt-throw from origin at target. Speed grows
// with power and with the distance to cover; there is no drag or spin.
func NewDartTrajectory(origin, target Vec3, power float64, wind WindEffect) Trajectory {
	power = clamp(power, 0, 1)
	dist := origin.PlanarDistance(target)
	velocity := DartBaseVelocity * (0.5 + 0.5*power) * (dist / 10)
	heading := origin.BearingTo(target)
	return newTrajectory(origin, heading, velocity, 0, DartVerticalShare*velocity, 0, 0, 1, wind)
}

func newTrajectory(origin Vec3, heading, forward, lateral, vz, spin, backspin, drag float64, wind WindEffect) Trajectory {
	rad := heading * math.Pi / 180
	along := Vec3{X: math.Cos(rad), Y: math.Sin(rad)}
	across := Vec3{X: -math.Sin(rad), Y: math.Cos(rad)}
	v := along.Times(forward).Plus(across.Times(lateral))
	v.Z = vz

	nominal := 0.0
	if vz > 0 {
		nominal = 2 * vz / -Gravity
	}
	return Trajectory{
		Origin:   origin,
		Velocity: v,
		Heading:  heading,
		Spin:     spin,
		Backspin: backspin,
		Drag:     drag,
		Wind:     wind.Vector(heading),
		Nominal:  nominal,
	}
}

// PositionAt evaluates the flight at t seconds after launch.
func (tr Trajectory) PositionAt(t float64) Vec3 {
	if t <= 0 {
		return tr.Origin
	}
	decay := 1.0
	if tr.Drag > 0 && tr.Drag != 1 {
		decay = math.Pow(tr.Drag, t)
	}
	progress := 1.0
	if tr.Nominal > 0 {
		progress = math.Min(t/tr.Nominal, 1)
	}

	pos := Vec3{
		X: tr.Origin.X + tr.Velocity.X*t*decay,
		Y: tr.Origin.Y + tr.Velocity.Y*t*decay,
		Z: tr.Origin.Z + tr.Velocity.Z*t + 0.5*Gravity*t*t,
	}
	pos = pos.Plus(tr.Wind.Times(progress))

	if tr.Spin != 0 {
		drift := tr.Spin * SpinMaxDrift * math.Sin(progress*math.Pi/2)
		rad := tr.Heading * math.Pi / 180
		pos.X += -math.Sin(rad) * drift
		pos.Y += math.Cos(rad) * drift
	}
	return pos
}

// Landed reports whether the flight has crossed plane by time t.
func (tr Trajectory) Landed(t, plane float64) bool {
	return t > 0 && tr.PositionAt(t).Z <= plane
}

// Impact is where and when a flight met its reference plane.
type Impact struct {
	Point  Vec3    `json:"point"`
	Time   float64 `json:"time"`
	Landed bool    `json:"landed"` // false when the flight timed out
}

// SampleImpact steps through the flight at fixed intervals and returns the
// first sample at or below plane, or the position at maxFlight.
func SampleImpact(tr Trajectory, plane, step, maxFlight float64) Impact {
	if step <= 0 {
		step = FlightSampleStep
	}
	for i := 1; ; i++ {
		t := float64(i) * step
		if t > maxFlight {
			break
		}
		if tr.Landed(t, plane) {
			return Impact{Point: groundAt(tr.PositionAt(t), plane), Time: t, Landed: true}
		}
	}
	return Impact{Point: groundAt(tr.PositionAt(maxFlight), plane), Time: maxFlight}
}

func groundAt(p Vec3, plane float64) Vec3 {
	p.Z = plane
	return p
}

// Classify measures the planar miss distance from target and compares it
// to radius.
func Classify(point, target Vec3, radius float64) (float64, bool) {
	d := point.PlanarDistance(target)
	return d, d <= radius
}
