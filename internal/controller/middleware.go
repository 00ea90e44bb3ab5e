package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sharetube/jamroom/internal/service/room"
	"github.com/sharetube/jamroom/pkg/ctxlogger"
	"github.com/sharetube/jamroom/pkg/rest"
)

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.generateTimeBasedId()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}

// authMw requires an access token issued for the room in the path.
func (c controller) authMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "missing access token"})
			return
		}

		claims, err := c.roomService.ParseAccessToken(token)
		if err != nil {
			c.logger.DebugContext(r.Context(), "failed to parse access token", "error", err)
			c.writeError(w, r, err)
			return
		}

		if claims.RoomId != chi.URLParam(r, "room-id") {
			c.writeError(w, r, room.ErrPermissionDenied)
			return
		}

		ctx := context.WithValue(r.Context(), roomIdCtxKey, claims.RoomId)
		ctx = context.WithValue(ctx, memberIdCtxKey, claims.MemberId)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("room_id", claims.RoomId))
		ctx = ctxlogger.AppendCtx(ctx, slog.String("member_id", claims.MemberId))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
