package game

import "math"

// Tuning for the golf-combat rules. Distances are in meters, times in seconds.

const (
	TotalHoles = 9
	DefaultPar = 4

	// Session phase timers
	LobbyWaitTime     = 10.0
	TeeTimeDuration   = 30.0
	HoleCountdown     = 5.0
	ShopDuration      = 30.0
	RoundEndDelay     = 10.0
	GameOverDelay     = 20.0
	FastTickInterval  = 0.016
	SlowTickInterval  = 1.0
	MinPlayersToStart = 1

	// Shot meter
	ShotTimeout        = 60.0
	ShotMeterSpeed     = 1.0
	DefaultLaunchAngle = 45.0
	DefaultBackspin    = 0.5
	MinLaunchAngle     = 10.0
	MaxLaunchAngle     = 70.0

	// Club base distances
	DriverDistance = 250.0
	IronDistance   = 150.0
	WedgeDistance  = 80.0
	PutterDistance = 20.0

	// Lie multipliers
	TeeMultiplier     = 1.1
	FairwayMultiplier = 1.0
	RoughMultiplier   = 0.7
	SandMultiplier    = 0.5
	GreenMultiplier   = 0.3

	// Ballistics
	Gravity             = -9.81
	AirResistance       = 0.99 // horizontal decay per second of flight
	SpinMaxDrift        = 15.0 // lateral meters at full hook/slice
	SpinLaunchFactor    = 0.1
	CupTolerance        = 1.5
	FlightSampleStep    = 0.05
	MaxShotFlight       = 15.0
	MortarDamage        = 60.0
	MortarBlastRadius   = 10.0
	PenaltyWater        = 1
	PenaltyOutOfBounds  = 1
	MissingDataDistance = 999.0

	// Putting
	PuttTimeout         = 30.0
	PuttChargeRate      = 0.5
	PuttChargeInterval  = 0.05
	DartBaseVelocity    = 20.0
	DartVerticalShare   = 0.3
	DartMaxFlight       = 2.0
	DartWindShare       = 0.1
	MaxPuttAttempts     = 3
	PuttMissPenalty     = 2
	PuttRetryDelay      = 2.0
	PuttTargetMinOffset = 1.0
	PuttTargetShare     = 0.8

	// Wind
	WindUpdateInterval   = 30.0
	WindDirectionJitter  = 22.5
	WindIntensityJitter  = 0.1
	WindMaxIntensity     = 0.8
	WindMaxGustChance    = 0.3
	WindMaxVariation     = 0.5
	WindForceScale       = 10.0
	WindReferenceDist    = 200.0
	WindGustFactor       = 1.5
	WindLongitudinalDamp = 0.3

	// Hazard generation
	HazardJitterMin        = 5.0
	HazardJitterMax        = 30.0
	HazardRadiusJitter     = 10.0
	HazardMinRadius        = 5.0
	MinDestructibles       = 1
	MaxDestructibles       = 3
	DestructibleMinSpread  = 10.0
	DestructibleBaseRadius = 8.0

	// Scoring
	PointsAce         = 1000
	PointsEagle       = 500
	PointsBirdie      = 200
	PointsPar         = 100
	PointsBogey       = 50
	PointsDoubleBogey = 25
)

// putting tier bounds on remaining distance
const (
	easyPuttMax   = 5.0
	mediumPuttMax = 10.0
	hardPuttMax   = 15.0
)

var (
	maxDeviationEasy   = math.Pi / 12
	maxDeviationMedium = math.Pi / 8
	maxDeviationHard   = math.Pi / 6
	maxDeviationExpert = math.Pi / 4
)
