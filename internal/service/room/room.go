package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/repository/room"
)

type CreateRoomParams struct {
	Token provider.Token
}

type CreateRoomResponse struct {
	Room        Room
	OwnerId     string
	AccessToken string
}

// CreateRoom stores a new empty room owned by a freshly generated member id.
// It does not touch the provider.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	s.logger.DebugContext(ctx, "called")
	rm := room.Room{
		Id:        s.generator.GenerateRandomString(roomIdLength),
		OwnerId:   uuid.NewString(),
		Members:   []room.Member{},
		History:   []room.Event{},
		Token:     room.Token(params.Token),
		CreatedAt: s.now().UTC(),
	}

	if err := s.roomRepo.CreateRoom(ctx, &rm); err != nil {
		s.logger.InfoContext(ctx, "failed to create room", "error", err)
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	accessToken, err := s.GenerateAccessToken(rm.Id, rm.OwnerId, RoleOwner, RoleUser)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	return CreateRoomResponse{
		Room:        mapRoom(rm),
		OwnerId:     rm.OwnerId,
		AccessToken: accessToken,
	}, nil
}

func (s *service) GetRoom(ctx context.Context, roomId string) (Room, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return Room{}, err
	}

	return mapRoom(rm), nil
}

func (s *service) GetRoomIds(ctx context.Context) ([]string, error) {
	return s.roomRepo.GetRoomIds(ctx)
}

// UpdateRoomParams holds the fields to overwrite. Nil fields are kept.
type UpdateRoomParams struct {
	Token   *provider.Token
	Members []Member
}

func (s *service) UpdateRoom(ctx context.Context, roomId string, params *UpdateRoomParams) (Room, error) {
	s.logger.DebugContext(ctx, "called", "room_id", roomId)
	rm, err := s.roomRepo.UpdateRoom(ctx, roomId, func(r *room.Room) error {
		if params.Token != nil {
			r.Token = room.Token(*params.Token)
		}

		if params.Members != nil {
			members := make([]room.Member, 0, len(params.Members))
			for _, m := range params.Members {
				members = append(members, room.Member{
					Id:          m.Id,
					DisplayName: m.DisplayName,
					IsConnected: m.IsConnected,
				})
			}
			r.Members = members
		}

		return nil
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to update room", "error", err)
		return Room{}, err
	}

	return mapRoom(rm), nil
}

// DeleteRoom tells connected members the room is closing, removes it and
// closes every member's push channel.
func (s *service) DeleteRoom(ctx context.Context, roomId string) error {
	s.logger.DebugContext(ctx, "called", "room_id", roomId)
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil && !errors.Is(err, room.ErrRoomNotFound) {
		return err
	}

	if err := s.Broadcast(ctx, roomId, EventDisconnected, nil); err != nil {
		s.logger.InfoContext(ctx, "failed to broadcast disconnect", "error", err)
	}

	err = s.roomRepo.RemoveRoom(ctx, roomId)
	if err != nil && !errors.Is(err, room.ErrRoomNotFound) {
		s.logger.InfoContext(ctx, "failed to remove room", "error", err)
		return err
	}

	// queued DISCONNECTED messages are still written before the close
	for _, m := range rm.Members {
		s.closeConn(m.Id)
	}

	s.roomDeleted(roomId)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "room deleted", "room_id", roomId)
	return nil
}

// Authorize returns a usable provider authorization for the room, refreshing
// and persisting the token when it has expired.
func (s *service) Authorize(ctx context.Context, roomId string) (string, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return "", err
	}

	return s.authorize(ctx, rm)
}

func (s *service) authorize(ctx context.Context, rm room.Room) (string, error) {
	tok, refreshed, err := s.authorizer.Authorize(ctx, provider.Token(rm.Token))
	if err != nil {
		s.logger.InfoContext(ctx, "failed to authorize", "room_id", rm.Id, "error", err)
		return "", err
	}

	if refreshed {
		s.logger.DebugContext(ctx, "provider token refreshed", "room_id", rm.Id)
		if _, err := s.UpdateRoom(ctx, rm.Id, &UpdateRoomParams{Token: &tok}); err != nil {
			s.logger.WarnContext(ctx, "failed to persist refreshed token", "room_id", rm.Id, "error", err)
		}
	}

	return tok.Authorization, nil
}

// GetRoomState returns the room together with what the provider is playing.
func (s *service) GetRoomState(ctx context.Context, roomId string) (RoomState, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return RoomState{}, err
	}

	authorization, err := s.authorize(ctx, rm)
	if err != nil {
		return RoomState{}, err
	}

	queue, err := s.provider.GetQueue(ctx, authorization)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get queue: %w", err)
	}

	player, err := s.provider.GetPlayer(ctx, authorization)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get player: %w", err)
	}

	return RoomState{
		Room:   mapRoom(rm),
		Queue:  queue,
		Player: player,
	}, nil
}
