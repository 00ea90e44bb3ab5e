package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jamroom/internal/repository/room"
)

const (
	keyPrefix        = "room:"
	maxUpdateRetries = 16
)

type repo struct {
	rc     *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRepo stores every room as one JSON document whose expiry is pushed
// back to ttl on each write.
func NewRepo(rc *redis.Client, ttl time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		ttl:    ttl,
		logger: logger,
	}
}

func (r repo) getRoomKey(roomId string) string {
	return keyPrefix + roomId
}

func (r repo) decode(data []byte) (room.Room, error) {
	var rm room.Room
	if err := json.Unmarshal(data, &rm); err != nil {
		return room.Room{}, fmt.Errorf("failed to decode room: %w", err)
	}

	return rm, nil
}

func (r repo) CreateRoom(ctx context.Context, rm *room.Room) error {
	r.logger.DebugContext(ctx, "called", "room_id", rm.Id)
	rm.Version = 1
	data, err := json.Marshal(rm)
	if err != nil {
		return fmt.Errorf("failed to encode room: %w", err)
	}

	ok, err := r.rc.SetNX(ctx, r.getRoomKey(rm.Id), data, r.ttl).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to set room: %w", err)
	}

	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomAlreadyExists)
		return room.ErrRoomAlreadyExists
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	data, err := r.rc.Get(ctx, r.getRoomKey(roomId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
			return room.Room{}, room.ErrRoomNotFound
		}

		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	return r.decode(data)
}

// UpdateRoom runs fn against the current document inside a WATCH/MULTI
// transaction and retries when another writer got there first.
func (r repo) UpdateRoom(ctx context.Context, roomId string, fn room.UpdateFunc) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	key := r.getRoomKey(roomId)

	var updated room.Room
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return room.ErrRoomNotFound
			}
			return fmt.Errorf("failed to get room: %w", err)
		}

		rm, err := r.decode(data)
		if err != nil {
			return err
		}

		if err := fn(&rm); err != nil {
			return err
		}
		rm.Id = roomId
		rm.Version++

		encoded, err := json.Marshal(rm)
		if err != nil {
			return fmt.Errorf("failed to encode room: %w", err)
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		}); err != nil {
			return err
		}

		updated = rm
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.rc.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			r.logger.DebugContext(ctx, "optimistic lock lost, retrying", "attempt", i+1)
			continue
		}

		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	r.logger.InfoContext(ctx, "update retries exhausted", "room_id", roomId)
	return room.Room{}, room.ErrUpdateConflict
}

func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	res, err := r.rc.Del(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to remove room: %w", err)
	}

	if res == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.ErrRoomNotFound
	}

	return nil
}

// GetRoomIds lists every room currently present in the store.
func (r repo) GetRoomIds(ctx context.Context) ([]string, error) {
	r.logger.DebugContext(ctx, "called")
	var roomIds []string
	seen := make(map[string]struct{})
	iter := r.rc.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		roomId := iter.Val()[len(keyPrefix):]
		// SCAN may return a key more than once
		if _, ok := seen[roomId]; ok {
			continue
		}
		seen[roomId] = struct{}{}
		roomIds = append(roomIds, roomId)
	}

	if err := iter.Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, fmt.Errorf("failed to scan rooms: %w", err)
	}

	return roomIds, nil
}
