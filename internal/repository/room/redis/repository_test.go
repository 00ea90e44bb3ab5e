package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jamroom/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, 24*time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil))), s, rc
}

func TestCreateAndGetRoom(t *testing.T) {
	r, s, _ := newTestRepo(t)
	ctx := context.Background()

	rm := room.Room{
		Id:      "ABC123",
		OwnerId: "owner",
		Members: []room.Member{},
		History: []room.Event{},
		Token:   room.Token{Type: "SPOTIFY", Authorization: "Bearer x"},
	}
	require.NoError(t, r.CreateRoom(ctx, &rm))

	assert.True(t, s.Exists("room:ABC123"))
	assert.Equal(t, 24*time.Hour, s.TTL("room:ABC123"))

	got, err := r.GetRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "owner", got.OwnerId)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "Bearer x", got.Token.Authorization)
}

func TestCreateRoomRefusesOverwrite(t *testing.T) {
	r, _, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateRoom(ctx, &room.Room{Id: "ABC123", OwnerId: "a"}))
	err := r.CreateRoom(ctx, &room.Room{Id: "ABC123", OwnerId: "b"})
	assert.ErrorIs(t, err, room.ErrRoomAlreadyExists)

	got, err := r.GetRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "a", got.OwnerId)
}

func TestGetRoomNotFound(t *testing.T) {
	r, _, _ := newTestRepo(t)

	_, err := r.GetRoom(context.Background(), "missing")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestUpdateRoomRefreshesTTL(t *testing.T) {
	r, s, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateRoom(ctx, &room.Room{Id: "ABC123"}))
	s.FastForward(20 * time.Hour)

	updated, err := r.UpdateRoom(ctx, "ABC123", func(rm *room.Room) error {
		rm.Members = append(rm.Members, room.Member{Id: "m1", DisplayName: "m1", IsConnected: true})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Len(t, updated.Members, 1)
	assert.Equal(t, 24*time.Hour, s.TTL("room:ABC123"))
}

func TestUpdateRoomNotFound(t *testing.T) {
	r, _, _ := newTestRepo(t)

	called := false
	_, err := r.UpdateRoom(context.Background(), "missing", func(rm *room.Room) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
	assert.False(t, called)
}

func TestUpdateRoomAbortsOnCallbackError(t *testing.T) {
	r, _, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.CreateRoom(ctx, &room.Room{Id: "ABC123"}))

	errStop := errors.New("stop")
	_, err := r.UpdateRoom(ctx, "ABC123", func(rm *room.Room) error {
		rm.OwnerId = "changed"
		return errStop
	})
	assert.ErrorIs(t, err, errStop)

	got, err := r.GetRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "", got.OwnerId)
	assert.Equal(t, int64(1), got.Version)
}

func TestUpdateRoomRetriesOnConcurrentWrite(t *testing.T) {
	r, _, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.CreateRoom(ctx, &room.Room{Id: "ABC123"}))

	attempts := 0
	updated, err := r.UpdateRoom(ctx, "ABC123", func(rm *room.Room) error {
		attempts++
		if attempts == 1 {
			// another writer appends an event between our read and our write
			_, err := r.UpdateRoom(ctx, "ABC123", func(other *room.Room) error {
				other.History = append(other.History, room.Event{Type: "MUSIC_PAUSED"})
				return nil
			})
			require.NoError(t, err)
		}
		rm.History = append(rm.History, room.Event{Type: "MEMBER_JOINED"})
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, attempts)
	require.Len(t, updated.History, 2)
	assert.Equal(t, "MUSIC_PAUSED", updated.History[0].Type)
	assert.Equal(t, "MEMBER_JOINED", updated.History[1].Type)
	assert.Equal(t, int64(3), updated.Version)
}

func TestRemoveRoom(t *testing.T) {
	r, _, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.CreateRoom(ctx, &room.Room{Id: "ABC123"}))

	require.NoError(t, r.RemoveRoom(ctx, "ABC123"))
	assert.ErrorIs(t, r.RemoveRoom(ctx, "ABC123"), room.ErrRoomNotFound)

	_, err := r.GetRoom(ctx, "ABC123")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestGetRoomIds(t *testing.T) {
	r, _, rc := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"AAA111", "BBB222", "CCC333"} {
		require.NoError(t, r.CreateRoom(ctx, &room.Room{Id: id}))
	}
	require.NoError(t, rc.Set(ctx, "unrelated", "x", 0).Err())

	ids, err := r.GetRoomIds(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AAA111", "BBB222", "CCC333"}, ids)
}

func TestRoomExpires(t *testing.T) {
	r, s, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.CreateRoom(ctx, &room.Room{Id: "ABC123"}))

	s.FastForward(24*time.Hour + time.Second)

	_, err := r.GetRoom(ctx, "ABC123")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}
