package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/provider/mock"
	"github.com/sharetube/jamroom/internal/provider/spotify"
	"github.com/sharetube/jamroom/internal/service/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type stubAccounts struct{}

func (stubAccounts) AuthorizationURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (stubAccounts) ExchangeCode(context.Context, string) (spotify.Credentials, error) {
	return spotify.Credentials{}, nil
}

func testConfig() *AppConfig {
	return &AppConfig{
		Secret:               "secret",
		Host:                 "127.0.0.1",
		Port:                 8080,
		LogLevel:             "debug",
		RoomTTL:              24 * time.Hour,
		ReconcileInterval:    10 * time.Second,
		ReconcileConcurrency: 4,
		SpotifyClientId:      "id",
		SpotifyClientSecret:  "secret",
		AccessTokenTTL:       time.Hour,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, testConfig().Validate())

	cfg := testConfig()
	cfg.Secret = ""
	cfg.LogLevel = "LOUD"
	cfg.ReconcileConcurrency = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "log level")
	assert.Contains(t, err.Error(), "concurrency")
}

// playback is the state of the external device.
type playback struct {
	mu     sync.Mutex
	queue  provider.Queue
	player provider.Player
}

func (p *playback) set(fn func(p *playback)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *playback) getQueue(context.Context, string) (provider.Queue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue, nil
}

func (p *playback) getPlayer(context.Context, string) (provider.Player, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player, nil
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func (c *client) read() room.Event {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev room.Event
	require.NoError(c.t, c.conn.ReadJSON(&ev))
	return ev
}

// sync asks for the room state and returns the domain events pushed before
// the answer arrived.
func (c *client) sync() []string {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(map[string]any{"type": "GET_ROOM"}))

	types := []string{}
	for {
		ev := c.read()
		switch ev.Type {
		case room.EventRoomState:
			return types
		case room.EventHistoryModified:
		default:
			types = append(types, ev.Type)
		}
	}
}

func (c *client) waitFor(eventType string) room.Event {
	c.t.Helper()
	for {
		if ev := c.read(); ev.Type == eventType {
			return ev
		}
	}
}

// waitClosed reads until the server closes the connection.
func (c *client) waitClosed() {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			assert.True(c.t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
			return
		}
	}
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out))
	}

	return resp.StatusCode, out
}

func dial(t *testing.T, srv *httptest.Server, token string) *client {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &client{t: t, conn: conn}
}

func TestSharedRoomScenario(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	device := &playback{
		queue: provider.Queue{
			CurrentlyPlaying: &provider.Track{ID: "spotify:track:s0", Name: "S0"},
			Queue:            []provider.Track{},
		},
		player: provider.Player{IsPlaying: true, DeviceName: "Kitchen"},
	}
	prov := mock.NewMockProvider(gomock.NewController(t))
	prov.EXPECT().GetQueue(gomock.Any(), "Bearer valid").DoAndReturn(device.getQueue).AnyTimes()
	prov.EXPECT().GetPlayer(gomock.Any(), "Bearer valid").DoAndReturn(device.getPlayer).AnyTimes()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := newApp(testConfig(), rc, prov, stubAccounts{}, logger)
	srv := httptest.NewServer(a.handler)
	t.Cleanup(srv.Close)
	ctx := context.Background()

	// A creates R1
	status, out := do(t, srv, http.MethodPost, "/api/v1/rooms", "", map[string]any{
		"token": map[string]any{
			"type":          provider.TypeSpotify,
			"authorization": "Bearer valid",
			"expires_at":    time.Now().Add(time.Hour),
			"refresh_token": "refresh",
		},
	})
	require.Equal(t, http.StatusCreated, status)
	created := out["data"].(map[string]any)
	roomId := created["room"].(map[string]any)["id"].(string)
	tokenA := created["access_token"].(string)
	clientA := dial(t, srv, tokenA)
	// an answer proves the connection is registered
	require.Empty(t, clientA.sync())

	// B joins, both are told
	status, out = do(t, srv, http.MethodGet, "/api/v1/rooms/"+roomId, "", nil)
	require.Equal(t, http.StatusOK, status)
	tokenB := out["data"].(map[string]any)["access_token"].(string)
	status, _ = do(t, srv, http.MethodPost, "/api/v1/rooms/"+roomId+"/join", tokenB, map[string]any{"display_name": "B"})
	require.Equal(t, http.StatusOK, status)
	clientB := dial(t, srv, tokenB)

	assert.Equal(t, []string{room.EventMemberJoined}, clientA.sync())
	assert.Empty(t, clientB.sync())

	// first poll announces what the device is already doing
	require.NoError(t, a.reconciler.Cycle(ctx))
	want := []string{room.EventMusicSwitched, room.EventMusicPlayed, room.EventNewDevice}
	assert.Equal(t, want, clientA.sync())
	assert.Equal(t, want, clientB.sync())

	// B adds T
	track := provider.Track{ID: "spotify:track:t", Name: "T", Artists: []string{"Artist"}}
	prov.EXPECT().AddToQueue(gomock.Any(), "Bearer valid", track.ID).DoAndReturn(func(context.Context, string, string) (provider.Queue, error) {
		device.set(func(p *playback) { p.queue.Queue = []provider.Track{track} })
		return device.getQueue(ctx, "")
	})
	status, _ = do(t, srv, http.MethodPost, "/api/v1/rooms/"+roomId+"/actions/add-to-queue", tokenB, map[string]any{"track": track})
	require.Equal(t, http.StatusOK, status)

	for _, c := range []*client{clientA, clientB} {
		assert.Equal(t, []string{room.EventMusicAdded}, c.sync())
	}

	// nothing changed on the device
	require.NoError(t, a.reconciler.Cycle(ctx))
	assert.Empty(t, clientA.sync())
	assert.Empty(t, clientB.sync())

	// paused on the device itself
	device.set(func(p *playback) { p.player.IsPlaying = false })
	require.NoError(t, a.reconciler.Cycle(ctx))
	assert.Equal(t, []string{room.EventMusicPaused}, clientA.sync())
	assert.Equal(t, []string{room.EventMusicPaused}, clientB.sync())

	require.NoError(t, a.reconciler.Cycle(ctx))
	assert.Empty(t, clientA.sync())
	assert.Empty(t, clientB.sync())

	// A owns the room, leaving closes it
	status, _ = do(t, srv, http.MethodPost, "/api/v1/rooms/"+roomId+"/leave", tokenA, nil)
	require.Equal(t, http.StatusNoContent, status)
	clientB.waitFor(room.EventDisconnected)
	clientB.waitClosed()

	status, _ = do(t, srv, http.MethodGet, "/api/v1/rooms/"+roomId, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
