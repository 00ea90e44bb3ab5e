package room

import (
	"context"
	"fmt"
	"strings"

	"github.com/sharetube/jamroom/internal/provider"
)

// memberAuthorization checks membership and returns the room's provider
// authorization.
func (s *service) memberAuthorization(ctx context.Context, params *ActionParams) (string, error) {
	rm, _, err := s.getMember(ctx, params.RoomId, params.MemberId)
	if err != nil {
		return "", err
	}

	return s.authorize(ctx, rm)
}

// Search returns playable tracks matching query. A blank query matches
// nothing and does not reach the provider.
func (s *service) Search(ctx context.Context, params *ActionParams, query string) ([]provider.Track, error) {
	if strings.TrimSpace(query) == "" {
		return []provider.Track{}, nil
	}

	authorization, err := s.memberAuthorization(ctx, params)
	if err != nil {
		return nil, err
	}

	tracks, err := s.provider.Search(ctx, authorization, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	return tracks, nil
}

func (s *service) GetPlaylists(ctx context.Context, params *ActionParams) ([]provider.Playlist, error) {
	authorization, err := s.memberAuthorization(ctx, params)
	if err != nil {
		return nil, err
	}

	playlists, err := s.provider.GetPlaylists(ctx, authorization)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlists: %w", err)
	}

	return playlists, nil
}

func (s *service) GetPlaylist(ctx context.Context, params *ActionParams, playlistId string) (*provider.Playlist, error) {
	authorization, err := s.memberAuthorization(ctx, params)
	if err != nil {
		return nil, err
	}

	playlist, err := s.provider.GetPlaylist(ctx, authorization, playlistId)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	return playlist, nil
}

func (s *service) GetUserProfile(ctx context.Context, params *ActionParams) (*provider.UserProfile, error) {
	authorization, err := s.memberAuthorization(ctx, params)
	if err != nil {
		return nil, err
	}

	profile, err := s.provider.GetUserProfile(ctx, authorization)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return profile, nil
}
