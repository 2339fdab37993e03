package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrMatchClosed   = errors.New("match closed")
	ErrUnknownAction = errors.New("unknown action")
)

// MatchConfig fixes the rules of one match.
type MatchConfig struct {
	ID               string
	Course           *Course
	MaxPlayers       int
	MinPlayers       int
	ShopBetweenHoles bool
	// Seed pins hazard and putting randomness. Zero derives it from the clock.
	Seed int64
	// SnapshotEvery is the number of slow ticks between stored snapshots.
	SnapshotEvery int
}

// MatchDeps are the outside collaborators of a match. Nil fields fall
// back to no-ops.
type MatchDeps struct {
	Events    EventSink
	Recorder  Recorder
	Snapshots SnapshotSink
	Logger    zerolog.Logger
}

// MatchInfo is a lock-free summary readable from any goroutine.
type MatchInfo struct {
	ID           string       `json:"id"`
	Course       string       `json:"course"`
	State        SessionState `json:"state"`
	CurrentHole  int          `json:"current_hole"`
	Players      int          `json:"players"`
	Connected    int          `json:"connected"`
	CreatedAt    time.Time    `json:"created_at"`
	LastActivity time.Time    `json:"last_activity"`
}

// Match runs one golf-combat session. Everything below the exported
// channel fields is owned by the Run goroutine.
type Match struct {
	ID    string
	Inbox chan any

	cfg     MatchConfig
	course  *Course
	session *Session
	roster  *Roster
	sched   *Scheduler
	env     *Environment
	shots   *ShotEngine
	putts   *PuttingEngine

	events    EventSink
	recorder  Recorder
	snapshots SnapshotSink
	notify    Notifier
	spawn     Spawner
	spawnSeq  int
	slowTicks int
	now       func() time.Time
	log       zerolog.Logger

	createdAt    time.Time
	lastActivity atomic.Int64
	state        atomic.Value
	hole         atomic.Int32
	players      atomic.Int32
	connected    atomic.Int32

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewMatch(cfg MatchConfig, deps MatchDeps) *Match {
	if cfg.Course == nil {
		cfg.Course = DefaultCourse()
	}
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = MinPlayersToStart
	}
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = 5
	}
	if deps.Events == nil {
		deps.Events = nopEvents{}
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}

	m := &Match{
		ID:        cfg.ID,
		Inbox:     make(chan any, 256),
		cfg:       cfg,
		course:    cfg.Course,
		roster:    NewRoster(cfg.MaxPlayers),
		sched:     NewScheduler(),
		events:    deps.Events,
		recorder:  deps.Recorder,
		snapshots: deps.Snapshots,
		now:       time.Now,
		log:       deps.Logger.With().Str("match", cfg.ID).Logger(),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	m.notify = eventNotifier{matchID: m.ID, sink: m.events}
	m.spawn = eventSpawner{matchID: m.ID, sink: m.events, next: &m.spawnSeq}
	m.createdAt = m.now()
	m.lastActivity.Store(m.createdAt.UnixNano())

	seed := cfg.Seed
	var envOpts []EnvironmentOption
	if seed != 0 {
		envOpts = append(envOpts, WithSeed(seed))
	} else {
		seed = m.createdAt.UnixNano()
	}

	m.session = NewSession(m.course.HoleCount(), m.notify, m.log)
	m.env = NewEnvironment(m.spawn, m.log, envOpts...)
	m.shots = NewShotEngine(m.session, m.roster, m.course, m.env, m.sched, m.notify, m.spawn, m.log)
	m.putts = NewPuttingEngine(m.session, m.roster, m.course, m.env, m.sched, m.notify, m.spawn, rand.New(rand.NewSource(seed)), m.log)

	m.shots.OnExecute = m.recordShot
	m.putts.OnExecute = m.recordShot
	m.shots.OnResolve = m.onShotResolved
	m.putts.OnResolve = m.onPuttResolved
	m.installHooks()
	m.publishInfo()
	return m
}

func (m *Match) installHooks() {
	m.session.OnEnter(StateTeeTime, func() {
		hole, ok := m.course.Hole(m.session.CurrentHole())
		if !ok {
			return
		}
		if hole.Number == 1 {
			if err := m.recorder.RecordMatchStarted(m.ID, m.course.Name, m.roster.Len(), m.now()); err != nil {
				m.log.Error().Err(err).Msg("failed to record match start")
			}
		}
		m.roster.PrepareHole(hole)
	})
	m.session.OnEnter(StatePlaying, func() {
		m.resetEngines()
		if hole, ok := m.course.Hole(m.session.CurrentHole()); ok {
			m.env.InitializeHazardSystem(hole)
		}
	})
	m.session.OnExit(StatePlaying, func() {
		m.resetEngines()
		m.env.CleanupHazardSystem()
	})
	m.session.OnEnter(StateGameOver, func() {
		standings := m.roster.Leaderboard()
		if err := m.recorder.RecordMatchFinished(m.ID, standings, m.now()); err != nil {
			m.log.Error().Err(err).Msg("failed to record match finish")
		}
		if len(standings) > 0 {
			m.notify.NotifyAll(fmt.Sprintf("%s wins with %d strokes", standings[0].Name, standings[0].Strokes))
		}
	})
	m.session.OnEnter(StateLobby, func() {
		m.roster.Reset()
	})

	for _, s := range []SessionState{StateLobby, StateTeeTime, StateCountdown, StatePlaying, StateShopping, StateRoundEnd, StateGameOver} {
		m.session.OnEnter(s, func() {
			m.publishInfo()
			m.saveSnapshot()
		})
	}
}

func (m *Match) resetEngines() {
	m.sched.Reset()
	m.shots.Reset()
	m.putts.Reset()
}

// Run is the match loop. It returns when ctx is cancelled or Stop is called.
func (m *Match) Run(ctx context.Context) {
	defer close(m.done)

	fast := time.NewTicker(time.Duration(FastTickInterval * float64(time.Second)))
	defer fast.Stop()
	slow := time.NewTicker(time.Duration(SlowTickInterval * float64(time.Second)))
	defer slow.Stop()

	m.log.Info().Str("course", m.course.Name).Msg("match started")
	last := m.now()
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("match context cancelled")
			return
		case <-m.quit:
			m.log.Info().Msg("match stopped")
			return
		case cmd := <-m.Inbox:
			m.handleCommand(cmd)
		case now := <-fast.C:
			dt := now.Sub(last).Seconds()
			last = now
			m.FastTick(dt)
		case <-slow.C:
			m.SlowTick(SlowTickInterval)
		}
	}
}

// Stop ends the loop. Safe to call more than once.
func (m *Match) Stop() {
	m.stopOnce.Do(func() { close(m.quit) })
}

// Done is closed once Run has returned.
func (m *Match) Done() <-chan struct{} {
	return m.done
}

// FastTick advances scheduled tasks, swing meters, putt clocks and the
// environment by dt seconds of game time.
func (m *Match) FastTick(dt float64) {
	if dt <= 0 || m.session.IsPaused() || m.session.IsGameOver() {
		return
	}
	m.sched.Advance(dt)
	if !m.session.IsPlaying() {
		return
	}
	m.shots.UpdateShotTimers(dt)
	m.putts.UpdatePuttingTimers(dt)
	m.env.UpdateHazardSystem(dt)
}

// SlowTick counts down the phase timer and drives automatic transitions.
func (m *Match) SlowTick(dt float64) {
	if m.session.IsPaused() {
		return
	}
	expired := m.session.Tick(dt)
	switch m.session.State() {
	case StatePlaying:
		if m.roster.AllHoledOut() {
			m.advance()
		}
	default:
		if expired {
			m.advance()
		}
	}

	m.slowTicks++
	if m.slowTicks%m.cfg.SnapshotEvery == 0 {
		m.saveSnapshot()
	}
	m.publishInfo()
	m.events.Publish(m.ID, Event{Type: "state", Data: m.stateSummary()})
}

// advance performs the transition that follows the current phase.
func (m *Match) advance() bool {
	switch m.session.State() {
	case StateLobby:
		if m.roster.ConnectedCount() < m.cfg.MinPlayers {
			m.session.SetPhaseTimer(LobbyWaitTime)
			return false
		}
		return m.session.StartTeeTime()
	case StateTeeTime:
		return m.session.StartCountdown()
	case StateCountdown:
		return m.session.StartPlaying()
	case StatePlaying:
		if m.cfg.ShopBetweenHoles && m.session.CurrentHole() < m.session.TotalHoles() {
			return m.session.OpenShop()
		}
		return m.session.EndHole()
	case StateShopping, StateRoundEnd:
		return m.session.NextHole()
	case StateGameOver:
		return m.session.ReturnToLobby()
	}
	return false
}

func (m *Match) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		g, err := m.join(c.PlayerID, c.Name)
		m.publishInfo()
		if c.Reply != nil {
			c.Reply <- JoinResult{Golfer: g, Err: err}
		}
	case Leave:
		m.leave(c.PlayerID)
	case Connection:
		if m.roster.SetConnected(c.PlayerID, c.Connected) {
			if !c.Connected {
				m.dropEngines(c.PlayerID)
			}
			m.log.Info().Str("player", string(c.PlayerID)).Bool("connected", c.Connected).Msg("connection changed")
		}
	case Input:
		ok, err := m.input(c)
		m.publishInfo()
		if c.Reply != nil {
			c.Reply <- InputResult{OK: ok, Err: err}
		}
	case HostCommand:
		ok, err := m.host(c.Action)
		m.publishInfo()
		if c.Reply != nil {
			c.Reply <- InputResult{OK: ok, Err: err}
		}
	case SnapshotRequest:
		c.Reply <- m.snapshot()
	default:
		m.log.Warn().Str("type", fmt.Sprintf("%T", cmd)).Msg("unknown command")
	}
	m.touch()
	m.publishInfo()
}

func (m *Match) join(id PlayerID, name string) (Golfer, error) {
	g, err := m.roster.Add(id, name, m.now())
	if errors.Is(err, ErrPlayerExists) {
		g.Connected = true
		m.log.Info().Str("player", string(id)).Msg("golfer reconnected")
		return copyGolfer(g), nil
	}
	if err != nil {
		return Golfer{}, err
	}

	switch m.session.State() {
	case StateTeeTime, StateCountdown, StatePlaying:
		if hole, ok := m.course.Hole(m.session.CurrentHole()); ok {
			PrepareGolfer(g, hole)
		}
	}
	m.notify.NotifyAll(fmt.Sprintf("%s joined group %d", name, g.Group+1))
	m.log.Info().Str("player", string(id)).Str("name", name).Int("group", g.Group).Msg("golfer joined")
	return copyGolfer(g), nil
}

func (m *Match) leave(id PlayerID) {
	m.dropEngines(id)
	if m.roster.Remove(id) {
		m.log.Info().Str("player", string(id)).Msg("golfer left")
	}
}

// dropEngines abandons whatever the player had in progress: setups,
// meters, charges, flights and pending retries.
func (m *Match) dropEngines(id PlayerID) {
	m.sched.CancelOwner(id)
	m.shots.RemovePlayer(id)
	m.putts.RemovePlayer(id)
}

func (m *Match) input(in Input) (bool, error) {
	id := in.PlayerID
	if _, ok := m.roster.Golfer(id); !ok {
		return false, ErrPlayerUnknown
	}

	var ok bool
	switch in.Action {
	case ActionShotSetup:
		ok = m.shots.InitializeShotSetup(id)
	case ActionShotClick:
		ok = m.shots.HandleClick(id)
	case ActionShotCancel:
		ok = m.shots.CancelShotSetup(id)
	case ActionChangeClub:
		ok = m.shots.ChangeClub(id, in.Club)
	case ActionAdjustAim:
		ok = m.shots.AdjustAim(id, in.Delta)
	case ActionAdjustLaunchAngle:
		ok = m.shots.AdjustLaunchAngle(id, in.Delta)
	case ActionPuttSetup:
		ok = m.putts.InitializePuttingMode(id)
	case ActionPuttCharge:
		ok = m.putts.StartDartThrow(id)
	case ActionPuttRelease:
		ok = m.putts.ReleaseDartThrow(id)
	case ActionPuttCancel:
		ok = m.putts.CancelPuttingMode(id)
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownAction, in.Action)
	}

	if st, has := m.shots.State(id); has {
		m.events.Publish(m.ID, Event{Type: "shot_state", Player: id, Data: st})
	}
	if st, has := m.putts.State(id); has {
		m.events.Publish(m.ID, Event{Type: "putt_state", Player: id, Data: st})
	}
	return ok, nil
}

func (m *Match) host(action HostAction) (bool, error) {
	m.log.Info().Str("action", string(action)).Msg("host action")
	switch action {
	case HostPause:
		return m.session.PauseGame(), nil
	case HostResume:
		return m.session.ResumeGame(), nil
	case HostLobby:
		return m.session.ReturnToLobby(), nil
	case HostAdvance:
		if m.session.IsPaused() {
			return false, nil
		}
		return m.advance(), nil
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

func (m *Match) recordShot(rec ShotRecord) {
	rec.MatchID = m.ID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	if err := m.recorder.RecordShot(rec); err != nil {
		m.log.Error().Err(err).Str("player", string(rec.PlayerID)).Msg("failed to record shot")
	}
}

func (m *Match) onShotResolved(out ShotOutcome) {
	m.events.Publish(m.ID, Event{Type: "impact", Data: out})
	if out.Holed {
		m.completeHole(out.Player)
	}
}

func (m *Match) onPuttResolved(out PuttOutcome) {
	m.events.Publish(m.ID, Event{Type: "impact", Data: out})
	if out.Holed {
		m.completeHole(out.Player)
	}
}

// completeHole scores a golfer who just finished the current hole.
func (m *Match) completeHole(id PlayerID) {
	g, ok := m.roster.Golfer(id)
	if !ok {
		return
	}
	par := DefaultPar
	if hole, ok := m.course.Hole(g.CurrentHole); ok {
		par = hole.Par
	}
	result := ClassifyScore(g.Strokes, par)
	points := ScorePoints(result)
	g.Points += points
	g.HoleStrokes[g.CurrentHole] = g.Strokes

	res := HoleResult{
		MatchID:   m.ID,
		PlayerID:  id,
		Name:      g.Name,
		Hole:      g.CurrentHole,
		Par:       par,
		Strokes:   g.Strokes,
		Result:    string(result),
		Points:    points,
		CreatedAt: m.now(),
	}
	if err := m.recorder.RecordHoleResult(res); err != nil {
		m.log.Error().Err(err).Str("player", string(id)).Msg("failed to record hole result")
	}
	m.events.Publish(m.ID, Event{Type: "hole_complete", Data: res})
	m.notify.NotifyAll(fmt.Sprintf("%s finished hole %d: %s (%d strokes)", g.Name, g.CurrentHole, result, g.Strokes))
	if m.roster.GroupHoledOut(id) {
		m.notify.NotifyAll(fmt.Sprintf("Group %d has holed out", g.Group+1))
	}
	m.log.Info().
		Str("player", string(id)).
		Int("hole", g.CurrentHole).
		Int("strokes", g.Strokes).
		Str("result", string(result)).
		Msg("hole complete")
}

type stateSummary struct {
	State       SessionState `json:"state"`
	Paused      bool         `json:"paused"`
	PhaseTimer  float64      `json:"phase_timer"`
	CurrentHole int          `json:"current_hole"`
	TotalHoles  int          `json:"total_holes"`
	Leaderboard []Standing   `json:"leaderboard"`
}

func (m *Match) stateSummary() stateSummary {
	return stateSummary{
		State:       m.session.State(),
		Paused:      m.session.IsPaused(),
		PhaseTimer:  m.session.PhaseTimer(),
		CurrentHole: m.session.CurrentHole(),
		TotalHoles:  m.session.TotalHoles(),
		Leaderboard: m.roster.Leaderboard(),
	}
}

func (m *Match) saveSnapshot() {
	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.SaveSnapshot(m.snapshot()); err != nil {
		m.log.Warn().Err(err).Msg("failed to save snapshot")
	}
}

func (m *Match) touch() {
	m.lastActivity.Store(m.now().UnixNano())
}

func (m *Match) publishInfo() {
	m.state.Store(m.session.State())
	m.hole.Store(int32(m.session.CurrentHole()))
	m.players.Store(int32(m.roster.Len()))
	m.connected.Store(int32(m.roster.ConnectedCount()))
}

// Info reads the summary without going through the inbox.
func (m *Match) Info() MatchInfo {
	state, _ := m.state.Load().(SessionState)
	return MatchInfo{
		ID:           m.ID,
		Course:       m.course.Name,
		State:        state,
		CurrentHole:  int(m.hole.Load()),
		Players:      int(m.players.Load()),
		Connected:    int(m.connected.Load()),
		CreatedAt:    m.createdAt,
		LastActivity: time.Unix(0, m.lastActivity.Load()),
	}
}

// Course returns the course this match plays. Courses are never mutated.
func (m *Match) Course() *Course {
	return m.course
}

// Submit queues a command without waiting for it to run.
func (m *Match) Submit(ctx context.Context, cmd any) error {
	select {
	case m.Inbox <- cmd:
		return nil
	case <-m.done:
		return ErrMatchClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join adds a golfer and waits for the result.
func (m *Match) Join(ctx context.Context, id PlayerID, name string) (Golfer, error) {
	reply := make(chan JoinResult, 1)
	if err := m.Submit(ctx, Join{PlayerID: id, Name: name, Reply: reply}); err != nil {
		return Golfer{}, err
	}
	select {
	case r := <-reply:
		return r.Golfer, r.Err
	case <-m.done:
		return Golfer{}, ErrMatchClosed
	case <-ctx.Done():
		return Golfer{}, ctx.Err()
	}
}

// Do sends a player input and waits for whether it was accepted.
func (m *Match) Do(ctx context.Context, in Input) (bool, error) {
	reply := make(chan InputResult, 1)
	in.Reply = reply
	if err := m.Submit(ctx, in); err != nil {
		return false, err
	}
	return m.await(ctx, reply)
}

// Host runs a host action and waits for whether it took effect.
func (m *Match) Host(ctx context.Context, action HostAction) (bool, error) {
	reply := make(chan InputResult, 1)
	if err := m.Submit(ctx, HostCommand{Action: action, Reply: reply}); err != nil {
		return false, err
	}
	return m.await(ctx, reply)
}

func (m *Match) await(ctx context.Context, reply <-chan InputResult) (bool, error) {
	select {
	case r := <-reply:
		return r.OK, r.Err
	case <-m.done:
		return false, ErrMatchClosed
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Snapshot asks the loop for a copy of the match.
func (m *Match) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := m.Submit(ctx, SnapshotRequest{Reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-m.done:
		return Snapshot{}, ErrMatchClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}
