package server

import (
	"context"

	"snakepit/server/logging"
)

const (
	eventPlayerJoined       logging.EventType = "player_joined"
	eventPlayerLeft         logging.EventType = "player_left"
	eventPlayerDied         logging.EventType = "player_died"
	eventPlayerKilled       logging.EventType = "player_killed"
	eventPlayerRespawned    logging.EventType = "player_respawned"
	eventFoodConsumed       logging.EventType = "food_consumed"
	eventInvariantViolation logging.EventType = "invariant_violation"
)

func playerRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer}
}

func foodRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindFood}
}

func (r *Room) publish(eventType logging.EventType, severity logging.Severity, actor logging.EntityRef, targets []logging.EntityRef, payload any) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(context.Background(), logging.Event{
		Type:     eventType,
		Tick:     r.world.tick,
		Actor:    actor,
		Targets:  targets,
		Severity: severity,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
