package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// TextMessage is the websocket text frame type.
const TextMessage = websocket.TextMessage

// Conn is the subset of a websocket connection the channel uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer establishes websocket connections.
type Dialer interface {
	DialContext(ctx context.Context, url string) (Conn, error)
}

// gorillaDialer adapts the gorilla websocket dialer.
type gorillaDialer struct {
	dialer *websocket.Dialer
}

func defaultDialer() Dialer {
	return &gorillaDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

func (d *gorillaDialer) DialContext(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}

		return nil, err
	}

	return conn, nil
}
