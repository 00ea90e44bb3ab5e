// Package spotify implements the playback provider on top of the Spotify Web API.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sharetube/jamroom/internal/provider"
)

const (
	DefaultAPIURL = "https://api.spotify.com/v1"

	searchLimit = 10
)

type Config struct {
	APIURL string
	// SettleDelay is how long to wait after a playback command before the
	// queue is read back.
	SettleDelay time.Duration
	HTTPClient  *http.Client
}

type Client struct {
	apiURL      string
	settleDelay time.Duration
	httpClient  *http.Client
	accounts    *Accounts
	logger      *slog.Logger
}

func NewClient(cfg *Config, accounts *Accounts, logger *slog.Logger) *Client {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		apiURL:      strings.TrimSuffix(apiURL, "/"),
		settleDelay: cfg.SettleDelay,
		httpClient:  httpClient,
		accounts:    accounts,
		logger:      logger,
	}
}

// request performs an API call and decodes the response into dst when it has
// a body. It reports whether a body was present.
func (c *Client) request(ctx context.Context, authorization, method, endpoint string, query url.Values, dst any) (bool, error) {
	u := c.apiURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", authorization)

	c.logger.DebugContext(ctx, "spotify request", "method", method, "endpoint", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", provider.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: failed to read body: %w", provider.ErrProvider, err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		return false, statusError(resp, body)
	}

	if len(bytes.TrimSpace(body)) == 0 || dst == nil {
		return false, nil
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return false, fmt.Errorf("%w: failed to decode %s: %w", provider.ErrProvider, endpoint, err)
	}

	return true, nil
}

func statusError(resp *http.Response, body []byte) error {
	message := resp.Status
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		message = e.Error.Message
	}

	return &provider.StatusError{StatusCode: resp.StatusCode, Message: message}
}

func (c *Client) settle(ctx context.Context) error {
	if c.settleDelay <= 0 {
		return nil
	}

	t := time.NewTimer(c.settleDelay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) GetQueue(ctx context.Context, authorization string) (provider.Queue, error) {
	var resp queueResponse
	found, err := c.request(ctx, authorization, http.MethodGet, "/me/player/queue", nil, &resp)
	if err != nil {
		return provider.Queue{}, err
	}

	if !found {
		return provider.Queue{Queue: []provider.Track{}}, nil
	}

	return resp.toQueue(), nil
}

func (c *Client) GetPlayer(ctx context.Context, authorization string) (provider.Player, error) {
	var resp playerResponse
	found, err := c.request(ctx, authorization, http.MethodGet, "/me/player", nil, &resp)
	if err != nil {
		return provider.Player{}, err
	}

	if !found {
		return provider.Player{IsPlaying: false, DeviceName: "unknown"}, nil
	}

	return provider.Player{
		IsPlaying:  resp.IsPlaying,
		DeviceName: resp.Device.Name,
	}, nil
}

func (c *Client) command(ctx context.Context, authorization, method, endpoint string, query url.Values) (provider.Queue, error) {
	if _, err := c.request(ctx, authorization, method, endpoint, query, nil); err != nil {
		return provider.Queue{}, err
	}

	if err := c.settle(ctx); err != nil {
		return provider.Queue{}, err
	}

	return c.GetQueue(ctx, authorization)
}

func (c *Client) Play(ctx context.Context, authorization string) (provider.Queue, error) {
	return c.command(ctx, authorization, http.MethodPut, "/me/player/play", nil)
}

func (c *Client) Pause(ctx context.Context, authorization string) (provider.Queue, error) {
	return c.command(ctx, authorization, http.MethodPut, "/me/player/pause", nil)
}

func (c *Client) SkipNext(ctx context.Context, authorization string) (provider.Queue, error) {
	return c.command(ctx, authorization, http.MethodPost, "/me/player/next", nil)
}

func (c *Client) SkipPrevious(ctx context.Context, authorization string) (provider.Queue, error) {
	return c.command(ctx, authorization, http.MethodPost, "/me/player/previous", nil)
}

func (c *Client) AddToQueue(ctx context.Context, authorization string, trackID string) (provider.Queue, error) {
	if _, err := c.request(ctx, authorization, http.MethodPost, "/me/player/queue", url.Values{"uri": {trackID}}, nil); err != nil {
		return provider.Queue{}, err
	}

	return c.GetQueue(ctx, authorization)
}

// Search returns up to ten playable tracks matching query.
func (c *Client) Search(ctx context.Context, authorization string, query string) ([]provider.Track, error) {
	var resp searchResponse
	found, err := c.request(ctx, authorization, http.MethodGet, "/search", url.Values{
		"type":  {"track"},
		"q":     {query},
		"limit": {fmt.Sprint(searchLimit)},
	}, &resp)
	if err != nil {
		return nil, err
	}

	tracks := make([]provider.Track, 0, len(resp.Tracks.Items))
	if !found {
		return tracks, nil
	}

	for _, item := range resp.Tracks.Items {
		if !item.playable() {
			continue
		}
		tracks = append(tracks, item.toTrack())
	}

	return tracks, nil
}

func (c *Client) GetPlaylists(ctx context.Context, authorization string) ([]provider.Playlist, error) {
	var resp playlistsResponse
	if _, err := c.request(ctx, authorization, http.MethodGet, "/me/playlists", nil, &resp); err != nil {
		return nil, err
	}

	playlists := make([]provider.Playlist, 0, len(resp.Items))
	for _, item := range resp.Items {
		playlists = append(playlists, item.toPlaylist())
	}

	return playlists, nil
}

func (c *Client) GetPlaylist(ctx context.Context, authorization string, playlistID string) (*provider.Playlist, error) {
	var resp playlistObject
	found, err := c.request(ctx, authorization, http.MethodGet, "/playlists/"+url.PathEscape(playlistID), nil, &resp)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	playlist := resp.toPlaylist()
	return &playlist, nil
}

func (c *Client) GetUserProfile(ctx context.Context, authorization string) (*provider.UserProfile, error) {
	var resp profileResponse
	found, err := c.request(ctx, authorization, http.MethodGet, "/me", nil, &resp)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return &provider.UserProfile{
		ID:          resp.ID,
		DisplayName: resp.DisplayName,
		IsPremium:   resp.Product == "premium",
	}, nil
}

func (c *Client) RefreshToken(ctx context.Context, old provider.Token) (provider.Token, error) {
	return c.accounts.RefreshToken(ctx, old)
}
