package connection

import "errors"

var (
	ErrNotFound      = errors.New("connection not found")
	ErrAlreadyExists = errors.New("connection already exists")
	ErrClosed        = errors.New("connection closed")
	ErrBufferFull    = errors.New("connection send buffer full")
)

// Conn is a member's live push channel. Send must not block: it either
// queues msg for delivery or fails.
type Conn interface {
	Send(msg []byte) error
	Close() error
}
