package ws

import (
	"context"
	"encoding/json"

	"github.com/mortargolf/backend/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// StartEventSubscriber relays notices published by other instances to
// clients connected here. Events this instance published are skipped.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, instanceID string) {
	if rdb == nil {
		log.Warn().Msg("redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Info().Str("channel", game.EventsChannel).Msg("event subscriber started")
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				relayRemoteEvent(MatchHub, instanceID, []byte(msg.Payload))
			}
		}
	}()
}

func relayRemoteEvent(h *Hub, instanceID string, payload []byte) bool {
	var re game.RemoteEvent
	if err := json.Unmarshal(payload, &re); err != nil {
		log.Warn().Err(err).Msg("invalid event payload")
		return false
	}
	if re.Origin == instanceID || re.MatchID == "" {
		return false
	}
	ev := re.Event
	ev.Player = game.PlayerID(re.Player)
	h.Publish(re.MatchID, ev)
	return true
}
