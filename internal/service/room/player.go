package room

import (
	"context"
	"fmt"

	"github.com/sharetube/jamroom/internal/provider"
)

type ActionParams struct {
	RoomId   string
	MemberId string
}

type AddToQueueParams struct {
	ActionParams
	Track provider.Track
}

func (s *service) AddToQueue(ctx context.Context, params *AddToQueueParams) (provider.Queue, error) {
	s.logger.DebugContext(ctx, "called", "room_id", params.RoomId, "track_id", params.Track.ID)
	rm, by, err := s.getMember(ctx, params.RoomId, params.MemberId)
	if err != nil {
		return provider.Queue{}, err
	}

	authorization, err := s.authorize(ctx, rm)
	if err != nil {
		return provider.Queue{}, err
	}

	queue, err := s.provider.AddToQueue(ctx, authorization, params.Track.ID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to add to queue", "error", err)
		return provider.Queue{}, fmt.Errorf("failed to add to queue: %w", err)
	}

	data := MusicAddedData{
		Track:    params.Track,
		NewQueue: PlaybackFromQueue(queue, nil).NewQueue,
		By:       &by,
	}
	if err := s.Broadcast(ctx, params.RoomId, EventMusicAdded, data); err != nil {
		return provider.Queue{}, err
	}

	return queue, nil
}

type playbackCommand func(ctx context.Context, authorization string) (provider.Queue, error)

// playback runs cmd against the room's account and broadcasts eventType with
// the queue the provider reports afterwards.
func (s *service) playback(ctx context.Context, params *ActionParams, eventType string, cmd playbackCommand) (provider.Queue, error) {
	s.logger.DebugContext(ctx, "called", "room_id", params.RoomId, "type", eventType)
	rm, by, err := s.getMember(ctx, params.RoomId, params.MemberId)
	if err != nil {
		return provider.Queue{}, err
	}

	authorization, err := s.authorize(ctx, rm)
	if err != nil {
		return provider.Queue{}, err
	}

	queue, err := cmd(ctx, authorization)
	if err != nil {
		s.logger.InfoContext(ctx, "playback command failed", "type", eventType, "error", err)
		return provider.Queue{}, fmt.Errorf("playback command failed: %w", err)
	}

	if err := s.Broadcast(ctx, params.RoomId, eventType, PlaybackFromQueue(queue, &by)); err != nil {
		return provider.Queue{}, err
	}

	return queue, nil
}

func (s *service) SkipNext(ctx context.Context, params *ActionParams) (provider.Queue, error) {
	return s.playback(ctx, params, EventMusicSwitched, s.provider.SkipNext)
}

func (s *service) SkipPrevious(ctx context.Context, params *ActionParams) (provider.Queue, error) {
	return s.playback(ctx, params, EventMusicSwitched, s.provider.SkipPrevious)
}

func (s *service) Play(ctx context.Context, params *ActionParams) (provider.Queue, error) {
	return s.playback(ctx, params, EventMusicPlayed, s.provider.Play)
}

func (s *service) Pause(ctx context.Context, params *ActionParams) (provider.Queue, error) {
	return s.playback(ctx, params, EventMusicPaused, s.provider.Pause)
}
