package game

// PlayerID is the stable handle for a golfer inside a match.
type PlayerID string

// Lie is the surface under a ball.
type Lie string

const (
	LieTee         Lie = "TEE"
	LieFairway     Lie = "FAIRWAY"
	LieRough       Lie = "ROUGH"
	LieSand        Lie = "SAND"
	LieGreen       Lie = "GREEN"
	LieOutOfBounds Lie = "OUT_OF_BOUNDS"
)

// HolePhase is a golfer's progress through the current hole.
type HolePhase string

const (
	HoleTeeoff   HolePhase = "TEEOFF"
	HoleFairway  HolePhase = "FAIRWAY"
	HolePutting  HolePhase = "PUTTING"
	HoleComplete HolePhase = "COMPLETE"
)

type ClubType string

const (
	ClubDriver ClubType = "DRIVER"
	ClubIron   ClubType = "IRON"
	ClubWedge  ClubType = "WEDGE"
	ClubPutter ClubType = "PUTTER"
)

// BaseDistance is the full-power carry of the club on a neutral lie.
func (c ClubType) BaseDistance() float64 {
	switch c {
	case ClubDriver:
		return DriverDistance
	case ClubIron:
		return IronDistance
	case ClubWedge:
		return WedgeDistance
	case ClubPutter:
		return PutterDistance
	}
	return IronDistance
}

func (c ClubType) Valid() bool {
	switch c {
	case ClubDriver, ClubIron, ClubWedge, ClubPutter:
		return true
	}
	return false
}

// RecommendClub picks the shortest club whose range covers distance.
func RecommendClub(distance float64) ClubType {
	switch {
	case distance <= PutterDistance:
		return ClubPutter
	case distance <= WedgeDistance:
		return ClubWedge
	case distance <= IronDistance:
		return ClubIron
	default:
		return ClubDriver
	}
}

type HazardType string

const (
	HazardDestructible HazardType = "DESTRUCTIBLE"
	HazardWater        HazardType = "WATER"
	HazardSand         HazardType = "SAND"
	HazardRough        HazardType = "ROUGH"
	HazardOutOfBounds  HazardType = "OUT_OF_BOUNDS"
	HazardSmoke        HazardType = "SMOKE"
	HazardFire         HazardType = "FIRE"
	HazardElectric     HazardType = "ELECTRIC"
)

type DestructibleType string

const (
	DestructibleCrate    DestructibleType = "CRATE"
	DestructibleBarrel   DestructibleType = "BARREL"
	DestructibleBarrier  DestructibleType = "BARRIER"
	DestructibleFence    DestructibleType = "FENCE"
	DestructibleVehicle  DestructibleType = "VEHICLE"
	DestructibleBuilding DestructibleType = "BUILDING"
	DestructibleTree     DestructibleType = "TREE"
	DestructibleRock     DestructibleType = "ROCK"
)

// destructibleTypes fixes the order random placement draws from.
var destructibleTypes = []DestructibleType{
	DestructibleCrate,
	DestructibleBarrel,
	DestructibleBarrier,
	DestructibleFence,
	DestructibleVehicle,
	DestructibleBuilding,
	DestructibleTree,
	DestructibleRock,
}
