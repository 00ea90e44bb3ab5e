package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sharetube/jamroom/internal/repository/connection"
	"github.com/sharetube/jamroom/internal/repository/room"
)

type IssueAccessResponse struct {
	MemberId    string
	AccessToken string
}

// IssueAccess hands a newcomer an identity scoped to roomId. The member is
// added to the room only when it joins.
func (s *service) IssueAccess(ctx context.Context, roomId string) (IssueAccessResponse, error) {
	if _, err := s.roomRepo.GetRoom(ctx, roomId); err != nil {
		return IssueAccessResponse{}, err
	}

	memberId := uuid.NewString()
	accessToken, err := s.GenerateAccessToken(roomId, memberId, RoleUser)
	if err != nil {
		return IssueAccessResponse{}, err
	}

	return IssueAccessResponse{
		MemberId:    memberId,
		AccessToken: accessToken,
	}, nil
}

type JoinRoomParams struct {
	RoomId      string
	MemberId    string
	DisplayName string
}

type JoinRoomResponse struct {
	Room         Room
	JoinedMember Member
}

func addMember(r *room.Room, m room.Member) error {
	if _, ok := findMember(r, m.Id); ok {
		return ErrMemberAlreadyJoined
	}

	r.Members = append(r.Members, m)
	return nil
}

// JoinRoom adds the member, or reconnects it when it is already part of the
// room, and broadcasts MEMBER_JOINED either way.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	s.logger.DebugContext(ctx, "called", "params", params)
	displayName := params.DisplayName
	if displayName == "" {
		displayName = params.MemberId
	}

	var joined room.Member
	rm, err := s.roomRepo.UpdateRoom(ctx, params.RoomId, func(r *room.Room) error {
		joined = room.Member{
			Id:          params.MemberId,
			DisplayName: displayName,
			IsConnected: true,
		}

		err := addMember(r, joined)
		if errors.Is(err, ErrMemberAlreadyJoined) {
			i, _ := findMember(r, params.MemberId)
			r.Members[i].IsConnected = true
			joined = r.Members[i]
			return nil
		}

		return err
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to join room", "error", err)
		return JoinRoomResponse{}, err
	}

	member := mapMember(joined)
	if err := s.Broadcast(ctx, params.RoomId, EventMemberJoined, MemberEventData{Member: member}); err != nil {
		return JoinRoomResponse{}, err
	}

	return JoinRoomResponse{
		Room:         mapRoom(rm),
		JoinedMember: member,
	}, nil
}

type LeaveRoomParams struct {
	RoomId   string
	MemberId string
}

// LeaveRoom marks the member disconnected and closes its channel. The owner
// leaving deletes the room.
func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) error {
	s.logger.DebugContext(ctx, "called", "params", params)
	rm, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		return err
	}

	if rm.OwnerId == params.MemberId {
		return s.DeleteRoom(ctx, params.RoomId)
	}

	var (
		left         room.Member
		wasConnected bool
	)
	if _, err := s.roomRepo.UpdateRoom(ctx, params.RoomId, func(r *room.Room) error {
		i, ok := findMember(r, params.MemberId)
		if !ok {
			return ErrMemberNotFound
		}

		wasConnected = r.Members[i].IsConnected
		r.Members[i].IsConnected = false
		left = r.Members[i]
		return nil
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to leave room", "error", err)
		return err
	}

	if !wasConnected {
		s.logger.DebugContext(ctx, "member already left", "member_id", params.MemberId)
		s.closeConn(params.MemberId)
		return nil
	}

	if err := s.Broadcast(ctx, params.RoomId, EventMemberLeaved, MemberEventData{Member: mapMember(left)}); err != nil {
		return err
	}

	s.closeConn(params.MemberId)
	return nil
}

// closeConn drops the member's push channel, if any, and closes it.
func (s *service) closeConn(memberId string) {
	if conn, err := s.connRepo.RemoveByMemberId(memberId); err == nil {
		conn.Close()
	}
}

type ConnectMemberParams struct {
	Conn     connection.Conn
	RoomId   string
	MemberId string
}

// ConnectMember registers the push channel of a member present in the room.
// A previous channel of the same member is closed.
func (s *service) ConnectMember(ctx context.Context, params *ConnectMemberParams) error {
	s.logger.DebugContext(ctx, "called", "room_id", params.RoomId, "member_id", params.MemberId)
	_, member, err := s.getMember(ctx, params.RoomId, params.MemberId)
	if err != nil {
		return err
	}

	if !member.IsConnected {
		s.logger.InfoContext(ctx, "member has left the room", "member_id", params.MemberId)
		return ErrMemberNotFound
	}

	if err := s.connRepo.Add(params.Conn, params.MemberId); err != nil {
		return fmt.Errorf("failed to register connection: %w", err)
	}

	return nil
}

// DisconnectMember forgets conn. Membership is left as is.
func (s *service) DisconnectMember(ctx context.Context, conn connection.Conn) {
	memberId, err := s.connRepo.RemoveByConn(conn)
	if err != nil {
		s.logger.DebugContext(ctx, "connection already replaced or removed")
		return
	}

	s.logger.DebugContext(ctx, "member disconnected", "member_id", memberId)
}

// getMember resolves the acting member of a room action.
func (s *service) getMember(ctx context.Context, roomId, memberId string) (room.Room, Member, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return room.Room{}, Member{}, err
	}

	i, ok := findMember(&rm, memberId)
	if !ok {
		s.logger.InfoContext(ctx, "member is not in room", "member_id", memberId)
		return room.Room{}, Member{}, ErrMemberNotFound
	}

	return rm, mapMember(rm.Members[i]), nil
}
