package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mortargolf/backend/internal/auth"
	"github.com/mortargolf/backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrMatchNotFound = errors.New("match not found")

const (
	liveMatchesKey = "matches:live"
	// EventsChannel carries notices between server instances.
	EventsChannel = "match_events"
)

func snapshotKey(matchID string) string {
	return "match:" + matchID + ":state"
}

// MatchManager is the registry of matches hosted by this process.
type MatchManager struct {
	matches    map[string]*hostedMatch
	rdb        *redis.Client
	db         *sqlx.DB
	config     *config.Config
	course     *Course
	events     EventSink
	instanceID string
	ctx        context.Context
	log        zerolog.Logger
	mu         sync.RWMutex
}

type hostedMatch struct {
	match   *Match
	hostKey []byte
	cancel  context.CancelFunc
}

// CreateOptions override per-match defaults from config.
type CreateOptions struct {
	MaxPlayers       int
	ShopBetweenHoles *bool
	Seed             int64
}

// RemoteEvent is the envelope published on EventsChannel.
type RemoteEvent struct {
	Origin  string `json:"origin"`
	MatchID string `json:"match_id"`
	Player  string `json:"player,omitempty"`
	Event   Event  `json:"event"`
}

var (
	// Global match manager instance
	Manager *MatchManager
)

// InitializeManager sets up the global manager. Matches run until ctx ends.
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config, course *Course, events EventSink, log zerolog.Logger) *MatchManager {
	Manager = NewMatchManager(ctx, db, rdb, cfg, course, events, log)
	return Manager
}

func NewMatchManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config, course *Course, events EventSink, log zerolog.Logger) *MatchManager {
	if course == nil {
		course = DefaultCourse()
	}
	if events == nil {
		events = nopEvents{}
	}
	return &MatchManager{
		matches:    make(map[string]*hostedMatch),
		rdb:        rdb,
		db:         db,
		config:     cfg,
		course:     course,
		events:     events,
		instanceID: generateToken(4),
		ctx:        ctx,
		log:        log.With().Str("component", "manager").Logger(),
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateMatchID() string {
	return "match_" + generateToken(6)
}

// GeneratePlayerID returns a fresh golfer id.
func GeneratePlayerID() PlayerID {
	return PlayerID("p_" + generateToken(6))
}

// InstanceID identifies this process on the events channel.
func (mm *MatchManager) InstanceID() string {
	return mm.instanceID
}

// Course is the course new matches are played on.
func (mm *MatchManager) Course() *Course {
	return mm.course
}

// CreateMatch starts a new match loop and returns it with its plain host
// key. Only a bcrypt hash of the key is retained.
func (mm *MatchManager) CreateMatch(opts CreateOptions) (*Match, string, error) {
	key, hash, err := auth.NewHostKey()
	if err != nil {
		return nil, "", err
	}

	cfg := MatchConfig{
		ID:     generateMatchID(),
		Course: mm.course,
		Seed:   opts.Seed,
	}
	if mm.config != nil {
		cfg.MaxPlayers = mm.config.MaxPlayersPerMatch
		cfg.MinPlayers = mm.config.MinPlayers
		cfg.ShopBetweenHoles = mm.config.ShopBetweenHoles
		cfg.SnapshotEvery = int(mm.config.SnapshotInterval / time.Second)
	}
	if opts.MaxPlayers > 0 && (cfg.MaxPlayers == 0 || opts.MaxPlayers < cfg.MaxPlayers) {
		cfg.MaxPlayers = opts.MaxPlayers
	}
	if opts.ShopBetweenHoles != nil {
		cfg.ShopBetweenHoles = *opts.ShopBetweenHoles
	}

	deps := MatchDeps{
		Events: mm.fanout(),
		Logger: mm.log,
	}
	if mm.db != nil {
		deps.Recorder = NewSQLRecorder(mm.db)
	}
	if mm.rdb != nil {
		deps.Snapshots = &redisSnapshots{rdb: mm.rdb, ttl: mm.snapshotTTL()}
	}

	m := NewMatch(cfg, deps)
	ctx, cancel := context.WithCancel(mm.ctx)

	mm.mu.Lock()
	mm.matches[m.ID] = &hostedMatch{match: m, hostKey: hash, cancel: cancel}
	mm.mu.Unlock()

	go m.Run(ctx)
	mm.touchLive(m.ID)

	mm.log.Info().
		Str("match", m.ID).
		Int("max_players", cfg.MaxPlayers).
		Bool("shop", cfg.ShopBetweenHoles).
		Msg("match created")
	return m, key, nil
}

// GetMatch returns a hosted match.
func (mm *MatchManager) GetMatch(id string) (*Match, error) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	h, ok := mm.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return h.match, nil
}

// VerifyHost checks a host key for match id.
func (mm *MatchManager) VerifyHost(id, key string) error {
	mm.mu.RLock()
	h, ok := mm.matches[id]
	mm.mu.RUnlock()
	if !ok {
		return ErrMatchNotFound
	}
	return auth.VerifyHostKey(h.hostKey, key)
}

// ListMatches summarizes hosted matches, newest first.
func (mm *MatchManager) ListMatches() []MatchInfo {
	mm.mu.RLock()
	out := make([]MatchInfo, 0, len(mm.matches))
	for _, h := range mm.matches {
		out = append(out, h.match.Info())
	}
	mm.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (mm *MatchManager) GetActiveMatchCount() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return len(mm.matches)
}

// EndMatch stops a match and forgets it.
func (mm *MatchManager) EndMatch(id string) error {
	mm.mu.Lock()
	h, ok := mm.matches[id]
	if ok {
		delete(mm.matches, id)
	}
	mm.mu.Unlock()
	if !ok {
		return ErrMatchNotFound
	}

	h.match.Stop()
	h.cancel()
	if mm.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		mm.rdb.ZRem(ctx, liveMatchesKey, id)
		mm.rdb.Del(ctx, snapshotKey(id))
	}
	mm.log.Info().Str("match", id).Msg("match ended")
	return nil
}

// CachedSnapshot reads the last stored snapshot from Redis, for matches
// hosted by another instance.
func (mm *MatchManager) CachedSnapshot(ctx context.Context, id string) (Snapshot, error) {
	if mm.rdb == nil {
		return Snapshot{}, ErrMatchNotFound
	}
	data, err := mm.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrMatchNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func (mm *MatchManager) snapshotTTL() time.Duration {
	if mm.config == nil || mm.config.SnapshotTTL <= 0 {
		return time.Hour
	}
	return mm.config.SnapshotTTL
}

func (mm *MatchManager) idleTimeout() time.Duration {
	if mm.config == nil || mm.config.MatchIdleTimeout <= 0 {
		return 10 * time.Minute
	}
	return mm.config.MatchIdleTimeout
}

func (mm *MatchManager) touchLive(id string) {
	if mm.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := mm.rdb.ZAdd(ctx, liveMatchesKey, redis.Z{Score: float64(time.Now().Unix()), Member: id}).Err(); err != nil {
		mm.log.Warn().Err(err).Str("match", id).Msg("failed to index live match")
	}
}

// StartReaper stops matches that have had nobody connected for longer than
// the idle timeout, and prunes stale entries from the live index.
func (mm *MatchManager) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	mm.log.Info().Dur("interval", interval).Msg("reaper started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				mm.log.Info().Msg("reaper stopping")
				return
			case now := <-ticker.C:
				mm.reap(ctx, now)
			}
		}
	}()
}

// reap runs one pass of the reaper and returns the ids it stopped.
func (mm *MatchManager) reap(ctx context.Context, now time.Time) []string {
	idle := mm.idleTimeout()

	mm.mu.RLock()
	var stale []string
	for id, h := range mm.matches {
		info := h.match.Info()
		if info.Connected == 0 && now.Sub(info.LastActivity) >= idle {
			stale = append(stale, id)
		}
	}
	mm.mu.RUnlock()

	for _, id := range stale {
		mm.log.Info().Str("match", id).Dur("idle", idle).Msg("reaping idle match")
		_ = mm.EndMatch(id)
	}

	if mm.rdb != nil {
		max := fmt.Sprintf("%d", now.Add(-idle).Unix())
		members, err := mm.rdb.ZRangeByScore(ctx, liveMatchesKey, &redis.ZRangeBy{Min: "-inf", Max: max}).Result()
		if err != nil {
			mm.log.Warn().Err(err).Msg("failed to scan live matches")
		}
		for _, id := range members {
			if _, err := mm.GetMatch(id); err == nil {
				// still hosted here, refresh its score instead
				mm.touchLive(id)
				continue
			}
			mm.rdb.ZRem(ctx, liveMatchesKey, id)
		}
	}
	return stale
}

// fanout delivers events to local clients and forwards notices to other
// instances over Redis.
func (mm *MatchManager) fanout() EventSink {
	if mm.rdb == nil {
		return mm.events
	}
	return &redisFanout{local: mm.events, rdb: mm.rdb, origin: mm.instanceID, log: mm.log}
}

type redisFanout struct {
	local  EventSink
	rdb    *redis.Client
	origin string
	log    zerolog.Logger
}

func (f *redisFanout) Publish(matchID string, ev Event) {
	f.local.Publish(matchID, ev)
	if ev.Type != "notice" {
		return
	}
	b, err := json.Marshal(RemoteEvent{Origin: f.origin, MatchID: matchID, Player: string(ev.Player), Event: ev})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.rdb.Publish(ctx, EventsChannel, b).Err(); err != nil {
		f.log.Warn().Err(err).Str("match", matchID).Msg("publish event failed")
	}
}

type redisSnapshots struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s *redisSnapshots) SaveSnapshot(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pipe := s.rdb.TxPipeline()
	pipe.SetEx(ctx, snapshotKey(snap.MatchID), data, s.ttl)
	pipe.ZAdd(ctx, liveMatchesKey, redis.Z{Score: float64(snap.UpdatedAt.Unix()), Member: snap.MatchID})
	_, err = pipe.Exec(ctx)
	return err
}
