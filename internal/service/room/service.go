package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/repository/connection"
	"github.com/sharetube/jamroom/internal/repository/room"
	"github.com/sharetube/jamroom/pkg/randstr"
)

const roomIdLength = 6

var (
	ErrRoomNotFound        = room.ErrRoomNotFound
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyJoined = errors.New("member already joined")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidToken        = errors.New("invalid access token")
)

type iRoomRepo interface {
	CreateRoom(ctx context.Context, rm *room.Room) error
	GetRoom(ctx context.Context, roomId string) (room.Room, error)
	UpdateRoom(ctx context.Context, roomId string, fn room.UpdateFunc) (room.Room, error)
	RemoveRoom(ctx context.Context, roomId string) error
	GetRoomIds(ctx context.Context) ([]string, error)
}

type iConnRepo interface {
	Add(conn connection.Conn, memberId string) error
	RemoveByConn(conn connection.Conn) (string, error)
	RemoveByMemberId(memberId string) (connection.Conn, error)
	GetConn(memberId string) (connection.Conn, error)
}

type iAuthorizer interface {
	Authorize(ctx context.Context, tok provider.Token) (provider.Token, bool, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type service struct {
	roomRepo       iRoomRepo
	connRepo       iConnRepo
	provider       provider.Provider
	authorizer     iAuthorizer
	generator      iGenerator
	logger         *slog.Logger
	secret         string
	accessTokenTTL time.Duration
	now            func() time.Time

	hooksMu       sync.RWMutex
	onRoomDeleted []func(roomId string)
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, prov provider.Provider, authorizer iAuthorizer, logger *slog.Logger, cfg *Config) *service {
	letterBytes := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

	return &service{
		roomRepo:       roomRepo,
		connRepo:       connRepo,
		provider:       prov,
		authorizer:     authorizer,
		generator:      randstr.New(letterBytes),
		logger:         logger,
		secret:         cfg.Secret,
		accessTokenTTL: cfg.AccessTokenTTL,
		now:            time.Now,
	}
}

// OnRoomDeleted registers fn to run after a room was removed from the store.
func (s *service) OnRoomDeleted(fn func(roomId string)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()

	s.onRoomDeleted = append(s.onRoomDeleted, fn)
}

func (s *service) roomDeleted(roomId string) {
	s.hooksMu.RLock()
	defer s.hooksMu.RUnlock()

	for _, fn := range s.onRoomDeleted {
		fn(roomId)
	}
}
