package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HazardSpec is a static hazard as authored on the course.
type HazardSpec struct {
	Type     HazardType `json:"type" yaml:"type"`
	Position Vec3       `json:"position" yaml:"position"`
	Radius   float64    `json:"radius" yaml:"radius"`
	Penalty  int        `json:"penalty" yaml:"penalty"`
}

// Hole is the layout of one hole.
type Hole struct {
	Number       int          `json:"number" yaml:"number"`
	Name         string       `json:"name" yaml:"name"`
	Par          int          `json:"par" yaml:"par"`
	Distance     float64      `json:"distance" yaml:"distance"`
	Tee          Vec3         `json:"tee" yaml:"tee"`
	Green        Vec3         `json:"green" yaml:"green"`
	GreenRadius  float64      `json:"green_radius" yaml:"green_radius"`
	FairwayWidth float64      `json:"fairway_width" yaml:"fairway_width"`
	Hazards      []HazardSpec `json:"hazards" yaml:"hazards"`
}

// CourseProvider supplies hole layouts by 1-based number.
type CourseProvider interface {
	Hole(number int) (Hole, bool)
	HoleCount() int
}

// Course is an ordered list of holes.
type Course struct {
	Name  string `json:"name" yaml:"name"`
	Holes []Hole `json:"holes" yaml:"holes"`
}

var ErrInvalidCourse = errors.New("invalid course")

func (c *Course) Hole(number int) (Hole, bool) {
	if c == nil || number < 1 || number > len(c.Holes) {
		return Hole{}, false
	}
	return c.Holes[number-1], true
}

func (c *Course) HoleCount() int {
	if c == nil {
		return 0
	}
	return len(c.Holes)
}

func (c *Course) TotalPar() int {
	total := 0
	for _, h := range c.Holes {
		total += h.Par
	}
	return total
}

func (c *Course) TotalDistance() float64 {
	total := 0.0
	for _, h := range c.Holes {
		total += h.Distance
	}
	return total
}

// ParForRange sums par over holes start..end inclusive. Out-of-range bounds yield 0.
func (c *Course) ParForRange(start, end int) int {
	if start < 1 || end > len(c.Holes) || start > end {
		return 0
	}
	total := 0
	for _, h := range c.Holes[start-1 : end] {
		total += h.Par
	}
	return total
}

// Validate checks the layout rules every hole must satisfy.
func (c *Course) Validate() error {
	if len(c.Holes) == 0 {
		return fmt.Errorf("%w: no holes", ErrInvalidCourse)
	}
	var errs []error
	for i, h := range c.Holes {
		if err := h.Validate(i + 1); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate checks one hole against its expected position in the course.
func (h Hole) Validate(expected int) error {
	switch {
	case h.Number != expected:
		return fmt.Errorf("%w: hole %d numbered %d", ErrInvalidCourse, expected, h.Number)
	case h.Par < 3 || h.Par > 5:
		return fmt.Errorf("%w: hole %d par %d outside 3-5", ErrInvalidCourse, h.Number, h.Par)
	case h.Distance < 50 || h.Distance > 500:
		return fmt.Errorf("%w: hole %d distance %.0f outside 50-500", ErrInvalidCourse, h.Number, h.Distance)
	case h.GreenRadius < 5 || h.GreenRadius > 30:
		return fmt.Errorf("%w: hole %d green radius %.1f outside 5-30", ErrInvalidCourse, h.Number, h.GreenRadius)
	case h.FairwayWidth < 15 || h.FairwayWidth > 100:
		return fmt.Errorf("%w: hole %d fairway width %.1f outside 15-100", ErrInvalidCourse, h.Number, h.FairwayWidth)
	case h.Tee == h.Green:
		return fmt.Errorf("%w: hole %d tee and green coincide", ErrInvalidCourse, h.Number)
	}
	return nil
}

// LoadCourse reads and validates a YAML course file.
func LoadCourse(path string) (*Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course %s: %w", path, err)
	}
	return ParseCourse(data)
}

func ParseCourse(data []byte) (*Course, error) {
	var c Course
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse course: %w", err)
	}
	for i := range c.Holes {
		if c.Holes[i].Par == 0 {
			c.Holes[i].Par = DefaultPar
		}
		if c.Holes[i].Distance == 0 {
			c.Holes[i].Distance = c.Holes[i].Tee.PlanarDistance(c.Holes[i].Green)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DefaultCourse is the built-in nine-hole layout. Holes run along +X with a
// slight dogleg on the longer ones.
func DefaultCourse() *Course {
	layout := []struct {
		name   string
		par    int
		dist   float64
		bend   float64
		green  float64
		width  float64
		hazard []HazardSpec
	}{
		{"Opening Salvo", 4, 320, 0, 15, 40, []HazardSpec{
			{Type: HazardSand, Position: Vec3{X: 290, Y: 12}, Radius: 8},
			{Type: HazardRough, Position: Vec3{X: 150, Y: -30}, Radius: 15},
		}},
		{"Crater Row", 3, 150, 0, 12, 30, []HazardSpec{
			{Type: HazardWater, Position: Vec3{X: 90, Y: 0}, Radius: 10, Penalty: 1},
		}},
		{"The Long Haul", 5, 480, 40, 18, 50, []HazardSpec{
			{Type: HazardRough, Position: Vec3{X: 220, Y: 30}, Radius: 20},
			{Type: HazardSand, Position: Vec3{X: 440, Y: 30}, Radius: 10},
			{Type: HazardSmoke, Position: Vec3{X: 300, Y: 20}, Radius: 12},
		}},
		{"Bunker Hill", 4, 360, -25, 15, 35, []HazardSpec{
			{Type: HazardSand, Position: Vec3{X: 200, Y: -10}, Radius: 12},
			{Type: HazardSand, Position: Vec3{X: 340, Y: -30}, Radius: 9},
		}},
		{"Minefield", 3, 175, 0, 10, 25, []HazardSpec{
			{Type: HazardFire, Position: Vec3{X: 100, Y: 5}, Radius: 8},
			{Type: HazardOutOfBounds, Position: Vec3{X: 100, Y: 45}, Radius: 20, Penalty: 1},
		}},
		{"River Crossing", 4, 400, 20, 16, 45, []HazardSpec{
			{Type: HazardWater, Position: Vec3{X: 250, Y: 10}, Radius: 18, Penalty: 1},
			{Type: HazardRough, Position: Vec3{X: 120, Y: -25}, Radius: 15},
		}},
		{"Power Lines", 4, 340, 0, 14, 40, []HazardSpec{
			{Type: HazardElectric, Position: Vec3{X: 180, Y: 0}, Radius: 10},
			{Type: HazardSand, Position: Vec3{X: 320, Y: 10}, Radius: 8},
		}},
		{"No Man's Land", 5, 500, -40, 20, 60, []HazardSpec{
			{Type: HazardOutOfBounds, Position: Vec3{X: 260, Y: -70}, Radius: 25, Penalty: 1},
			{Type: HazardRough, Position: Vec3{X: 380, Y: -20}, Radius: 20},
			{Type: HazardWater, Position: Vec3{X: 460, Y: -35}, Radius: 10, Penalty: 1},
		}},
		{"Last Stand", 4, 380, 0, 15, 40, []HazardSpec{
			{Type: HazardSand, Position: Vec3{X: 350, Y: -14}, Radius: 10},
			{Type: HazardWater, Position: Vec3{X: 200, Y: 22}, Radius: 12, Penalty: 1},
		}},
	}

	c := &Course{Name: "Fort Fairway"}
	for i, l := range layout {
		c.Holes = append(c.Holes, Hole{
			Number:       i + 1,
			Name:         l.name,
			Par:          l.par,
			Distance:     l.dist,
			Tee:          Vec3{},
			Green:        Vec3{X: l.dist, Y: l.bend},
			GreenRadius:  l.green,
			FairwayWidth: l.width,
			Hazards:      l.hazard,
		})
	}
	return c
}
