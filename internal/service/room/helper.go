package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sharetube/jamroom/internal/metrics"
	"github.com/sharetube/jamroom/internal/repository/room"
)

// Broadcast appends an event to the room history and pushes it, followed by
// the full history, to every connected member. Members without a live
// connection miss the push; the history keeps the event. A room that no
// longer exists is ignored.
func (s *service) Broadcast(ctx context.Context, roomId string, eventType string, data any) error {
	s.logger.DebugContext(ctx, "called", "room_id", roomId, "type", eventType)
	ev := room.Event{
		Date: s.now().UTC(),
		Type: eventType,
	}
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode event data: %w", err)
		}
		ev.Data = payload
	}

	rm, err := s.roomRepo.UpdateRoom(ctx, roomId, func(r *room.Room) error {
		r.History = append(r.History, ev)
		return nil
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			s.logger.DebugContext(ctx, "room is gone, broadcast dropped", "room_id", roomId)
			return nil
		}

		s.logger.InfoContext(ctx, "failed to append event", "error", err)
		return fmt.Errorf("failed to append event: %w", err)
	}
	metrics.BroadcastsTotal.WithLabelValues(eventType).Inc()

	msg, err := json.Marshal(mapEvent(ev))
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	history := mapRoom(rm).History
	historyMsg, err := s.message(EventHistoryModified, HistoryData{History: history})
	if err != nil {
		return err
	}

	s.push(ctx, rm.Members, msg, historyMsg)
	return nil
}

func (s *service) message(eventType string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s data: %w", eventType, err)
	}

	msg, err := json.Marshal(Event{
		Type: eventType,
		Date: s.now().UTC(),
		Data: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", eventType, err)
	}

	return msg, nil
}

func (s *service) push(ctx context.Context, members []room.Member, msgs ...[]byte) {
	for _, m := range members {
		if !m.IsConnected {
			continue
		}

		conn, err := s.connRepo.GetConn(m.Id)
		if err != nil {
			s.logger.DebugContext(ctx, "member has no connection", "member_id", m.Id)
			continue
		}

		for _, msg := range msgs {
			if err := conn.Send(msg); err != nil {
				metrics.PushDroppedTotal.Inc()
				s.logger.DebugContext(ctx, "failed to push message", "member_id", m.Id, "error", err)
			}
		}
	}
}
