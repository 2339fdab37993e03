package game

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// SessionState is the match-wide phase of hole play.
type SessionState string

const (
	StateLobby     SessionState = "LOBBY"
	StateTeeTime   SessionState = "TEE_TIME"
	StateCountdown SessionState = "COUNTDOWN"
	StatePlaying   SessionState = "PLAYING"
	StateShopping  SessionState = "SHOPPING"
	StateRoundEnd  SessionState = "ROUND_END"
	StateGameOver  SessionState = "GAME_OVER"
)

var validTransitions = map[SessionState][]SessionState{
	StateLobby:     {StateTeeTime},
	StateTeeTime:   {StateCountdown},
	StateCountdown: {StatePlaying},
	StatePlaying:   {StateShopping, StateRoundEnd},
	StateShopping:  {StateTeeTime},
	StateRoundEnd:  {StateGameOver, StateTeeTime},
	StateGameOver:  {StateLobby},
}

// CanTransition reports whether from→to is an edge of the session graph.
func CanTransition(from, to SessionState) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type pauseSnapshot struct {
	state SessionState
	timer float64
}

// Session sequences hole play and gates the per-player engines.
type Session struct {
	state          SessionState
	phaseTimer     float64
	phaseStartTime time.Time
	paused         *pauseSnapshot
	currentHole    int
	totalHoles     int

	onEnter map[SessionState][]func()
	onExit  map[SessionState][]func()

	now    func() time.Time
	notify Notifier
	log    zerolog.Logger
}

// NewSession starts in the lobby on hole 1.
func NewSession(totalHoles int, notify Notifier, log zerolog.Logger) *Session {
	if totalHoles <= 0 {
		totalHoles = TotalHoles
	}
	if notify == nil {
		notify = nopNotifier{}
	}
	s := &Session{
		state:       StateLobby,
		phaseTimer:  LobbyWaitTime,
		currentHole: 1,
		totalHoles:  totalHoles,
		onEnter:     make(map[SessionState][]func()),
		onExit:      make(map[SessionState][]func()),
		now:         time.Now,
		notify:      notify,
		log:         log.With().Str("component", "session").Logger(),
	}
	s.phaseStartTime = s.now()
	return s
}

// OnEnter registers a hook run after the session enters state.
func (s *Session) OnEnter(state SessionState, fn func()) {
	s.onEnter[state] = append(s.onEnter[state], fn)
}

// OnExit registers a hook run before the session leaves state.
func (s *Session) OnExit(state SessionState, fn func()) {
	s.onExit[state] = append(s.onExit[state], fn)
}

// TransitionTo moves to target if the edge exists, or unconditionally when
// force is set. Rejections leave every field untouched.
func (s *Session) TransitionTo(target SessionState, force bool) bool {
	if !force && !CanTransition(s.state, target) {
		s.log.Warn().
			Str("from", string(s.state)).
			Str("to", string(target)).
			Msg("invalid transition")
		return false
	}

	from := s.state
	for _, fn := range s.onExit[from] {
		fn()
	}
	s.state = target
	s.phaseTimer = 0
	s.phaseStartTime = s.now()
	for _, fn := range s.onEnter[target] {
		fn()
	}

	s.log.Info().
		Str("from", string(from)).
		Str("to", string(target)).
		Int("hole", s.currentHole).
		Bool("forced", force).
		Msg("transition")
	return true
}

func (s *Session) StartTeeTime() bool {
	if !s.TransitionTo(StateTeeTime, false) {
		return false
	}
	s.phaseTimer = TeeTimeDuration
	s.notify.NotifyAll("Tee time for hole " + strconv.Itoa(s.currentHole))
	return true
}

func (s *Session) StartCountdown() bool {
	if !s.TransitionTo(StateCountdown, false) {
		return false
	}
	s.phaseTimer = HoleCountdown
	return true
}

func (s *Session) StartPlaying() bool {
	if !s.TransitionTo(StatePlaying, false) {
		return false
	}
	s.phaseTimer = 0
	s.notify.NotifyAll("Hole " + strconv.Itoa(s.currentHole) + " is live")
	return true
}

func (s *Session) OpenShop() bool {
	if !s.TransitionTo(StateShopping, false) {
		return false
	}
	s.phaseTimer = ShopDuration
	s.notify.NotifyAll("Shop is open")
	return true
}

// EndHole closes the current hole, ending the round after the last one.
func (s *Session) EndHole() bool {
	if s.currentHole >= s.totalHoles {
		return s.EndRound()
	}
	if !s.TransitionTo(StateRoundEnd, false) {
		return false
	}
	s.phaseTimer = RoundEndDelay
	return true
}

// EndRound moves to GameOver. The graph only reaches GameOver from
// RoundEnd, so a call during Playing passes through RoundEnd first.
func (s *Session) EndRound() bool {
	if s.state == StatePlaying {
		if !s.TransitionTo(StateRoundEnd, false) {
			return false
		}
	}
	if !s.TransitionTo(StateGameOver, false) {
		return false
	}
	s.phaseTimer = GameOverDelay
	s.notify.NotifyAll("Round complete")
	return true
}

// NextHole advances the hole index and tees it up, or ends the round when
// the course is exhausted.
func (s *Session) NextHole() bool {
	if s.currentHole+1 > s.totalHoles {
		return s.EndRound()
	}
	if !CanTransition(s.state, StateTeeTime) {
		s.log.Warn().Str("from", string(s.state)).Msg("next hole rejected")
		return false
	}
	s.currentHole++
	return s.StartTeeTime()
}

// ReturnToLobby is the only forced transition.
func (s *Session) ReturnToLobby() bool {
	s.paused = nil
	s.currentHole = 1
	s.TransitionTo(StateLobby, true)
	s.phaseTimer = LobbyWaitTime
	return true
}

// PauseGame freezes the phase timer. Pausing twice is a no-op.
func (s *Session) PauseGame() bool {
	if s.paused != nil {
		return false
	}
	s.paused = &pauseSnapshot{state: s.state, timer: s.phaseTimer}
	s.log.Info().Str("state", string(s.state)).Float64("timer", s.phaseTimer).Msg("paused")
	return true
}

// ResumeGame restores the timer captured at pause without running hooks.
func (s *Session) ResumeGame() bool {
	if s.paused == nil {
		return false
	}
	s.phaseTimer = s.paused.timer
	s.paused = nil
	s.log.Info().Str("state", string(s.state)).Float64("timer", s.phaseTimer).Msg("resumed")
	return true
}

// Tick counts the phase timer down by dt. It reports whether the timer
// reached zero on this tick.
func (s *Session) Tick(dt float64) bool {
	if s.paused != nil || s.phaseTimer <= 0 {
		return false
	}
	s.phaseTimer -= dt
	if s.phaseTimer <= 0 {
		s.phaseTimer = 0
		return true
	}
	return false
}

// SetPhaseTimer re-arms the current phase timer, e.g. an empty lobby.
func (s *Session) SetPhaseTimer(seconds float64) {
	s.phaseTimer = seconds
}

func (s *Session) State() SessionState { return s.state }
func (s *Session) StateName() string { return string(s.state) }
func (s *Session) PhaseTimer() float64 { return s.phaseTimer }
func (s *Session) PhaseStartTime() time.Time { return s.phaseStartTime }
func (s *Session) CurrentHole() int { return s.currentHole }
func (s *Session) TotalHoles() int { return s.totalHoles }

func (s *Session) IsInLobby() bool { return s.state == StateLobby }
func (s *Session) IsInTeeTime() bool { return s.state == StateTeeTime }
func (s *Session) IsInCountdown() bool { return s.state == StateCountdown }
func (s *Session) IsPlaying() bool { return s.state == StatePlaying }
func (s *Session) IsShopOpen() bool { return s.state == StateShopping }
func (s *Session) IsRoundEnd() bool { return s.state == StateRoundEnd }
func (s *Session) IsGameOver() bool { return s.state == StateGameOver }
func (s *Session) IsPaused() bool { return s.paused != nil }

// IsCombatActive is true while weapons are live: on the course or in the shop.
func (s *Session) IsCombatActive() bool {
	return s.state == StatePlaying || s.state == StateShopping
}

// CanTakeShots gates both per-player engines.
func (s *Session) CanTakeShots() bool {
	return s.state == StatePlaying && s.paused == nil
}
