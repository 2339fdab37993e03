package game

import "math"

// Vec3 is a world position or displacement. X/Y are the ground plane, Z is up.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// fix rounds to 4 decimal places for values leaving the server.
func fix(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return math.Round(n*10000) / 10000
}

func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Plus(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Minus(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Times(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// PlanarDistance ignores height.
func (v Vec3) PlanarDistance(o Vec3) float64 {
	dx := o.X - v.X
	dy := o.Y - v.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BearingTo returns the ground-plane heading from v to o in degrees, [0,360).
func (v Vec3) BearingTo(o Vec3) float64 {
	dx := o.X - v.X
	dy := o.Y - v.Y
	if dx == 0 && dy == 0 {
		return 0
	}
	return normalizeDegrees(math.Atan2(dy, dx) * 180 / math.Pi)
}

// Offset moves v along a ground-plane heading.
func (v Vec3) Offset(headingDeg, distance float64) Vec3 {
	rad := headingDeg * math.Pi / 180
	return Vec3{X: v.X + math.Cos(rad)*distance, Y: v.Y + math.Sin(rad)*distance, Z: v.Z}
}

// Midpoint of v and o.
func (v Vec3) Midpoint(o Vec3) Vec3 {
	return Vec3{X: (v.X + o.X) / 2, Y: (v.Y + o.Y) / 2, Z: (v.Z + o.Z) / 2}
}

// Rounded returns v with every component passed through fix.
func (v Vec3) Rounded() Vec3 {
	return Vec3{X: fix(v.X), Y: fix(v.Y), Z: fix(v.Z)}
}

func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// distanceToSegment is the planar distance from p to the segment a-b.
func distanceToSegment(p, a, b Vec3) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return p.PlanarDistance(a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	t = clamp(t, 0, 1)
	proj := Vec3{X: a.X + t*abx, Y: a.Y + t*aby}
	return p.PlanarDistance(proj)
}
