package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sharetube/jamroom/internal/service/room"
	"github.com/sharetube/jamroom/pkg/ctxlogger"
	"github.com/sharetube/jamroom/pkg/rest"
	"github.com/sharetube/jamroom/pkg/wsrouter"
)

type EmptyInput struct{}

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw())
	mux.OnError(c.handleWSError)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "GET_ROOM", c.handleGetRoom)

	return mux
}

// serveWS registers the connection for the member the token was issued to
// and serves its inbound messages until it goes away.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	claims, err := c.roomService.ParseAccessToken(r.URL.Query().Get("token"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rm, err := c.roomService.GetRoom(r.Context(), claims.RoomId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	if !isPresent(rm, claims.MemberId) {
		c.writeError(w, r, room.ErrMemberNotFound)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	ctx := context.WithValue(r.Context(), roomIdCtxKey, claims.RoomId)
	ctx = context.WithValue(ctx, memberIdCtxKey, claims.MemberId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_id", claims.RoomId))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("member_id", claims.MemberId))

	client := newWSClient(conn, c.sendBuffer, c.logger)
	go client.writePump()
	defer client.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := c.roomService.ConnectMember(ctx, &room.ConnectMemberParams{
		Conn:     client,
		RoomId:   claims.RoomId,
		MemberId: claims.MemberId,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to connect member", "error", err)
		return
	}
	defer c.roomService.DisconnectMember(ctx, client)

	if err := c.wsmux.ServeConn(ctx, client); err != nil {
		c.logger.InfoContext(ctx, "connection closed", "error", err)
	}
}

// isPresent reports whether memberId joined rm and has not left since.
func isPresent(rm room.Room, memberId string) bool {
	for _, m := range rm.Members {
		if m.Id == memberId {
			return m.IsConnected
		}
	}

	return false
}

func (c controller) reply(conn wsrouter.Conn, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	msg, err := json.Marshal(room.Event{
		Type: eventType,
		Date: time.Now().UTC(),
		Data: payload,
	})
	if err != nil {
		return err
	}

	return conn.Send(msg)
}

func (c controller) handleAlive(_ context.Context, _ wsrouter.Conn, _ EmptyInput) error {
	return nil
}

func (c controller) handleGetRoom(ctx context.Context, conn wsrouter.Conn, _ EmptyInput) error {
	rm, err := c.roomService.GetRoom(ctx, c.getRoomIdFromCtx(ctx))
	if err != nil {
		return err
	}

	return c.reply(conn, room.EventRoomState, map[string]any{"room": rm})
}

func (c controller) handleWSError(ctx context.Context, conn wsrouter.Conn, err error) {
	c.logger.InfoContext(ctx, "websocket message failed", "error", err)
	if err := c.reply(conn, "ERROR", rest.Envelope{"error": err.Error()}); err != nil {
		c.logger.DebugContext(ctx, "failed to reply with error", "error", err)
	}
}
