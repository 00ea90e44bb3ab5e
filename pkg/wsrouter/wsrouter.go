package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownMessageType = errors.New("unknown message type")

// Conn is the connection a router reads requests from and answers on.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Send(msg []byte) error
}

type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type HandlerFunc[T any] func(ctx context.Context, conn Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

type ErrorHandler func(ctx context.Context, conn Conn, err error)

type route struct {
	decode  func(data json.RawMessage) (any, error)
	handler HandlerFunc[any]
}

type WSRouter struct {
	routes       map[string]route
	middlewares  []Middleware
	errorHandler ErrorHandler
}

func New() *WSRouter {
	return &WSRouter{
		routes:       make(map[string]route),
		errorHandler: func(context.Context, Conn, error) {},
	}
}

func (r *WSRouter) Use(mws ...Middleware) {
	r.middlewares = append(r.middlewares, mws...)
}

// OnError sets the handler called when a message cannot be decoded, has no
// route, or its handler fails.
func (r *WSRouter) OnError(h ErrorHandler) {
	r.errorHandler = h
}

// Handle registers handler for messageType. The message data is decoded
// into T; a message without data yields the zero T.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = route{
		decode: func(data json.RawMessage) (any, error) {
			var payload T
			if len(data) == 0 || string(data) == "null" {
				return payload, nil
			}

			if err := json.Unmarshal(data, &payload); err != nil {
				return nil, err
			}

			return payload, nil
		},
		handler: func(ctx context.Context, conn Conn, payload any) error {
			return handler(ctx, conn, payload.(T))
		},
	}
}

func (r *WSRouter) chain(h HandlerFunc[any]) HandlerFunc[any] {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}

	return h
}

// ServeConn dispatches messages read from conn until reading fails.
func (r *WSRouter) ServeConn(ctx context.Context, conn Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		r.dispatch(ctx, conn, data)
	}
}

func (r *WSRouter) dispatch(ctx context.Context, conn Conn, data []byte) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		r.errorHandler(ctx, conn, fmt.Errorf("failed to decode message: %w", err))
		return
	}

	rt, ok := r.routes[msg.Type]
	if !ok {
		r.errorHandler(ctx, conn, fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type))
		return
	}

	payload, err := rt.decode(msg.Data)
	if err != nil {
		r.errorHandler(ctx, conn, fmt.Errorf("failed to decode %s data: %w", msg.Type, err))
		return
	}

	ctx = context.WithValue(ctx, messageTypeKey, msg.Type)
	if err := r.chain(rt.handler)(ctx, conn, payload); err != nil {
		r.errorHandler(ctx, conn, err)
	}
}
