package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/provider/spotify"
	"github.com/sharetube/jamroom/internal/repository/connection"
	"github.com/sharetube/jamroom/internal/service/room"
	"github.com/sharetube/jamroom/pkg/validator"
	"github.com/sharetube/jamroom/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoom(context.Context, string) (room.Room, error)
	GetRoomState(context.Context, string) (room.RoomState, error)
	IssueAccess(context.Context, string) (room.IssueAccessResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) error
	ConnectMember(context.Context, *room.ConnectMemberParams) error
	DisconnectMember(context.Context, connection.Conn)
	ParseAccessToken(string) (*room.Claims, error)
	// actions
	AddToQueue(context.Context, *room.AddToQueueParams) (provider.Queue, error)
	SkipNext(context.Context, *room.ActionParams) (provider.Queue, error)
	SkipPrevious(context.Context, *room.ActionParams) (provider.Queue, error)
	Play(context.Context, *room.ActionParams) (provider.Queue, error)
	Pause(context.Context, *room.ActionParams) (provider.Queue, error)
	Search(context.Context, *room.ActionParams, string) ([]provider.Track, error)
	GetPlaylists(context.Context, *room.ActionParams) ([]provider.Playlist, error)
	GetPlaylist(context.Context, *room.ActionParams, string) (*provider.Playlist, error)
	GetUserProfile(context.Context, *room.ActionParams) (*provider.UserProfile, error)
}

type iAccounts interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (spotify.Credentials, error)
}

type Config struct {
	// SendBuffer is the number of messages queued per connection before
	// pushes are dropped.
	SendBuffer int
}

type controller struct {
	roomService iRoomService
	accounts    iAccounts
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
	wsmux       *wsrouter.WSRouter
	sendBuffer  int
}

func NewController(roomService iRoomService, accounts iAccounts, logger *slog.Logger, cfg *Config) *controller {
	sendBuffer := cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = 64
	}

	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		accounts:    accounts,
		validate:    validator.NewValidator(),
		logger:      logger,
		sendBuffer:  sendBuffer,
	}
	c.wsmux = c.getWSRouter()

	return c
}
