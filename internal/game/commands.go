package game

// Commands are sent to a Match inbox and handled on the match goroutine.

type Action string

const (
	ActionShotSetup         Action = "shot_setup"
	ActionShotClick         Action = "shot_click"
	ActionShotCancel        Action = "shot_cancel"
	ActionChangeClub        Action = "change_club"
	ActionAdjustAim         Action = "adjust_aim"
	ActionAdjustLaunchAngle Action = "adjust_launch_angle"
	ActionPuttSetup         Action = "putt_setup"
	ActionPuttCharge        Action = "putt_charge"
	ActionPuttRelease       Action = "putt_release"
	ActionPuttCancel        Action = "putt_cancel"
)

// Join adds a golfer, or reconnects one that is already on the roster.
type Join struct {
	PlayerID PlayerID
	Name     string
	Reply    chan<- JoinResult
}

type JoinResult struct {
	Golfer Golfer
	Err    error
}

// Leave removes a golfer for good.
type Leave struct {
	PlayerID PlayerID
}

// Connection marks a golfer's socket as up or down without removing them.
type Connection struct {
	PlayerID  PlayerID
	Connected bool
}

// Input is one player action from the client.
type Input struct {
	PlayerID PlayerID
	Action   Action
	Club     ClubType
	Delta    float64
	Reply    chan<- InputResult
}

type InputResult struct {
	OK  bool
	Err error
}

type HostAction string

const (
	HostPause   HostAction = "pause"
	HostResume  HostAction = "resume"
	HostLobby   HostAction = "lobby"
	HostAdvance HostAction = "advance"
)

// HostCommand is a privileged session action.
type HostCommand struct {
	Action HostAction
	Reply  chan<- InputResult
}

// SnapshotRequest asks the match for a copy of its current state.
type SnapshotRequest struct {
	Reply chan<- Snapshot
}
