package reconciler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/provider/mock"
	"github.com/sharetube/jamroom/internal/service/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type broadcast struct {
	roomId    string
	eventType string
	data      any
}

type stubRooms struct {
	mu         sync.Mutex
	rooms      map[string]room.Room
	broadcasts []broadcast
	deleted    []string
	failing    map[string]bool
}

func newStubRooms(ids ...string) *stubRooms {
	s := &stubRooms{
		rooms:   make(map[string]room.Room),
		failing: make(map[string]bool),
	}
	for _, id := range ids {
		s.rooms[id] = room.Room{
			Id:        id,
			Members:   []room.Member{{Id: "a", IsConnected: true}},
			CreatedAt: time.Now().Add(-time.Hour),
		}
	}

	return s
}

func (s *stubRooms) GetRoomIds(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}

	return ids, nil
}

func (s *stubRooms) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[roomId]
	if !ok {
		return room.Room{}, room.ErrRoomNotFound
	}

	return rm, nil
}

func (s *stubRooms) DeleteRoom(ctx context.Context, roomId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomId)
	s.deleted = append(s.deleted, roomId)
	return nil
}

func (s *stubRooms) Authorize(ctx context.Context, roomId string) (string, error) {
	return "Bearer " + roomId, nil
}

func (s *stubRooms) Broadcast(ctx context.Context, roomId string, eventType string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[eventType] {
		return errors.New("store unavailable")
	}
	s.broadcasts = append(s.broadcasts, broadcast{roomId: roomId, eventType: eventType, data: data})
	return nil
}

// take returns the event types broadcast to roomId since the last call.
func (s *stubRooms) take(roomId string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var types []string
	var rest []broadcast
	for _, b := range s.broadcasts {
		if b.roomId == roomId {
			types = append(types, b.eventType)
		} else {
			rest = append(rest, b)
		}
	}
	s.broadcasts = rest

	return types
}

func newTestReconciler(t *testing.T, rooms *stubRooms) (*Reconciler, *mock.MockProvider) {
	t.Helper()
	prov := mock.NewMockProvider(gomock.NewController(t))
	r := New(rooms, prov, slog.New(slog.NewTextHandler(io.Discard, nil)), &Config{
		Interval:    10 * time.Second,
		Concurrency: 4,
	})

	return r, prov
}

// state makes the provider report the given snapshot for authorization.
func state(prov *mock.MockProvider, authorization, songId string, playing bool, device string) {
	queue := provider.Queue{Queue: []provider.Track{}}
	if songId != "" {
		queue.CurrentlyPlaying = &provider.Track{ID: songId}
	}
	prov.EXPECT().GetQueue(gomock.Any(), authorization).Return(queue, nil)
	prov.EXPECT().GetPlayer(gomock.Any(), authorization).Return(provider.Player{IsPlaying: playing, DeviceName: device}, nil)
}

func TestFirstPollAnnouncesEveryField(t *testing.T) {
	rooms := newStubRooms("R1")
	r, prov := newTestReconciler(t, rooms)
	ctx := context.Background()

	state(prov, "Bearer R1", "t1", true, "Kitchen")
	require.NoError(t, r.Cycle(ctx))

	assert.Equal(t, []string{room.EventMusicSwitched, room.EventMusicPlayed, room.EventNewDevice}, rooms.take("R1"))
}

func TestIdlePollEmitsNothing(t *testing.T) {
	rooms := newStubRooms("R1")
	r, prov := newTestReconciler(t, rooms)
	ctx := context.Background()

	state(prov, "Bearer R1", "", false, "")
	require.NoError(t, r.Cycle(ctx))
	assert.Empty(t, rooms.take("R1"))
}

func TestUnchangedSnapshotIsIdempotent(t *testing.T) {
	rooms := newStubRooms("R1")
	r, prov := newTestReconciler(t, rooms)
	ctx := context.Background()

	state(prov, "Bearer R1", "t1", true, "Kitchen")
	require.NoError(t, r.Cycle(ctx))
	rooms.take("R1")

	for range 3 {
		state(prov, "Bearer R1", "t1", true, "Kitchen")
		require.NoError(t, r.Cycle(ctx))
		assert.Empty(t, rooms.take("R1"))
	}
}

func TestSingleChangeEmitsSingleEvent(t *testing.T) {
	tests := []struct {
		name    string
		songId  string
		playing bool
		device  string
		want    string
	}{
		{name: "track", songId: "t2", playing: true, device: "Kitchen", want: room.EventMusicSwitched},
		{name: "pause", songId: "t1", playing: false, device: "Kitchen", want: room.EventMusicPaused},
		{name: "device", songId: "t1", playing: true, device: "Phone", want: room.EventNewDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rooms := newStubRooms("R1")
			r, prov := newTestReconciler(t, rooms)
			ctx := context.Background()

			state(prov, "Bearer R1", "t1", true, "Kitchen")
			require.NoError(t, r.Cycle(ctx))
			rooms.take("R1")

			state(prov, "Bearer R1", tt.songId, tt.playing, tt.device)
			require.NoError(t, r.Cycle(ctx))
			assert.Equal(t, []string{tt.want}, rooms.take("R1"))

			state(prov, "Bearer R1", tt.songId, tt.playing, tt.device)
			require.NoError(t, r.Cycle(ctx))
			assert.Empty(t, rooms.take("R1"))
		})
	}
}

func TestPlaybackEventCarriesQueue(t *testing.T) {
	rooms := newStubRooms("R1")
	r, prov := newTestReconciler(t, rooms)

	state(prov, "Bearer R1", "t1", false, "")
	require.NoError(t, r.Cycle(context.Background()))

	require.Len(t, rooms.broadcasts, 1)
	data, ok := rooms.broadcasts[0].data.(room.PlaybackData)
	require.True(t, ok)
	require.NotNil(t, data.NewTrack)
	assert.Equal(t, "t1", data.NewTrack.ID)
	assert.NotNil(t, data.NewQueue)
	assert.Nil(t, data.By)
}

func TestFailedBroadcastIsRetried(t *testing.T) {
	rooms := newStubRooms("R1")
	r, prov := newTestReconciler(t, rooms)
	ctx := context.Background()

	rooms.failing[room.EventMusicPlayed] = true
	state(prov, "Bearer R1", "t1", true, "")
	require.NoError(t, r.Cycle(ctx))
	assert.Equal(t, []string{room.EventMusicSwitched}, rooms.take("R1"))

	rooms.failing[room.EventMusicPlayed] = false
	state(prov, "Bearer R1", "t1", true, "")
	require.NoError(t, r.Cycle(ctx))
	assert.Equal(t, []string{room.EventMusicPlayed}, rooms.take("R1"))
}

func TestProviderErrorIsScopedToRoom(t *testing.T) {
	rooms := newStubRooms("R1", "R2")
	r, prov := newTestReconciler(t, rooms)

	prov.EXPECT().GetQueue(gomock.Any(), "Bearer R1").
		Return(provider.Queue{}, &provider.StatusError{StatusCode: 502, Message: "bad gateway"})
	state(prov, "Bearer R2", "t1", false, "")

	require.NoError(t, r.Cycle(context.Background()))
	assert.Empty(t, rooms.take("R1"))
	assert.Equal(t, []string{room.EventMusicSwitched}, rooms.take("R2"))
}

func TestDormantRoomIsDeleted(t *testing.T) {
	rooms := newStubRooms("R1")
	rooms.rooms["R1"] = room.Room{
		Id:        "R1",
		Members:   []room.Member{{Id: "a", IsConnected: false}},
		CreatedAt: time.Now().Add(-time.Hour),
	}
	r, _ := newTestReconciler(t, rooms)

	require.NoError(t, r.Cycle(context.Background()))
	assert.Equal(t, []string{"R1"}, rooms.deleted)
}

func TestFreshRoomIsNotDeleted(t *testing.T) {
	rooms := newStubRooms()
	rooms.rooms["R1"] = room.Room{
		Id:        "R1",
		Members:   []room.Member{},
		CreatedAt: time.Now(),
	}
	r, _ := newTestReconciler(t, rooms)

	require.NoError(t, r.Cycle(context.Background()))
	assert.Empty(t, rooms.deleted)
}

func TestCacheIsPrunedForGoneRooms(t *testing.T) {
	rooms := newStubRooms("R1")
	r, prov := newTestReconciler(t, rooms)
	ctx := context.Background()

	state(prov, "Bearer R1", "t1", true, "Kitchen")
	require.NoError(t, r.Cycle(ctx))
	require.Len(t, r.cache, 1)

	delete(rooms.rooms, "R1")
	require.NoError(t, r.Cycle(ctx))
	assert.Empty(t, r.cache)
}

func TestInstancesDoNotShareCache(t *testing.T) {
	rooms := newStubRooms("R1")
	first, prov1 := newTestReconciler(t, rooms)
	second, prov2 := newTestReconciler(t, rooms)
	ctx := context.Background()

	state(prov1, "Bearer R1", "t1", false, "")
	require.NoError(t, first.Cycle(ctx))
	state(prov2, "Bearer R1", "t1", false, "")
	require.NoError(t, second.Cycle(ctx))

	assert.Equal(t, []string{room.EventMusicSwitched, room.EventMusicSwitched}, rooms.take("R1"))
}

func TestTickSkipsWhileRunning(t *testing.T) {
	rooms := newStubRooms("R1")
	r, prov := newTestReconciler(t, rooms)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	prov.EXPECT().GetQueue(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) (provider.Queue, error) {
		close(started)
		<-release
		return provider.Queue{}, nil
	})
	prov.EXPECT().GetPlayer(gomock.Any(), gomock.Any()).Return(provider.Player{}, nil)

	done := make(chan bool)
	go func() { done <- r.Tick(ctx) }()

	<-started
	assert.False(t, r.Tick(ctx), "overlapping cycle must be skipped")
	close(release)
	assert.True(t, <-done)
}

func TestRunStopsOnCancel(t *testing.T) {
	rooms := newStubRooms()
	r, _ := newTestReconciler(t, rooms)
	r.interval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, r.Run(ctx), context.DeadlineExceeded)
}

func TestRunWaitsForCycleInFlight(t *testing.T) {
	rooms := newStubRooms("R1")
	r, prov := newTestReconciler(t, rooms)
	r.interval = time.Millisecond

	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	prov.EXPECT().GetQueue(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) (provider.Queue, error) {
		once.Do(func() { close(started) })
		<-release
		return provider.Queue{}, nil
	})
	prov.EXPECT().GetPlayer(gomock.Any(), gomock.Any()).Return(provider.Player{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan error)
	go func() { result <- r.Run(ctx) }()

	<-started
	cancel()
	select {
	case <-result:
		t.Fatal("Run returned before the running cycle finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.ErrorIs(t, <-result, context.Canceled)
}
