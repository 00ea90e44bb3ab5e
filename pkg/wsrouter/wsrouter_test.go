package wsrouter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	in   [][]byte
	sent [][]byte
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	if len(c.in) == 0 {
		return 0, nil, io.EOF
	}
	msg := c.in[0]
	c.in = c.in[1:]
	return 1, msg, nil
}

func (c *fakeConn) Send(msg []byte) error {
	c.sent = append(c.sent, msg)
	return nil
}

type greeting struct {
	Name string `json:"name"`
}

func TestServeConn(t *testing.T) {
	r := New()

	var got []string
	var types []string
	var errs []error
	r.Use(func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn Conn, payload any) error {
			types = append(types, GetMessageTypeFromCtx(ctx))
			return next(ctx, conn, payload)
		}
	})
	r.OnError(func(_ context.Context, _ Conn, err error) {
		errs = append(errs, err)
	})
	Handle(r, "HELLO", func(_ context.Context, conn Conn, p greeting) error {
		got = append(got, p.Name)
		return conn.Send([]byte("hi " + p.Name))
	})
	Handle(r, "FAIL", func(context.Context, Conn, struct{}) error {
		return errors.New("boom")
	})

	conn := &fakeConn{in: [][]byte{
		[]byte(`{"type":"HELLO","data":{"name":"a"}}`),
		[]byte(`{"type":"HELLO"}`),
		[]byte(`{"type":"NOPE"}`),
		[]byte(`not json`),
		[]byte(`{"type":"HELLO","data":{"name":1}}`),
		[]byte(`{"type":"FAIL"}`),
	}}

	err := r.ServeConn(context.Background(), conn)
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, []string{"a", ""}, got)
	assert.Equal(t, []string{"HELLO", "HELLO", "FAIL"}, types)
	require.Len(t, conn.sent, 2)
	assert.Equal(t, "hi a", string(conn.sent[0]))

	require.Len(t, errs, 4)
	assert.ErrorIs(t, errs[0], ErrUnknownMessageType)
	assert.EqualError(t, errs[3], "boom")
}
