// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pushconn

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
)

// Frame is one message received on the push channel.
type Frame struct {
	// Binary is true for binary messages, false for text.
	Binary bool

	// Data is the message payload.
	Data []byte
}

// Conn is an established push connection.
type Conn interface {
	// Read blocks until the next frame arrives, the connection fails,
	// or ctx is cancelled.
	Read(ctx context.Context) (Frame, error)

	// Close tears the connection down. Safe to call concurrently with
	// Read, and more than once.
	Close() error
}

// Dialer opens push connections.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

// WebSocketDialer dials push connections over WebSocket.
type WebSocketDialer struct {
	// HTTPClient performs the opening handshake. Nil uses
	// http.DefaultClient.
	HTTPClient *http.Client

	// ReadLimit caps the size of one message in bytes. Zero keeps the
	// library default (32 KiB).
	ReadLimit int64
}

// Dial performs the WebSocket handshake against url.
func (dialer WebSocketDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPClient: dialer.HTTPClient,
		HTTPHeader: header,
	})
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	if dialer.ReadLimit > 0 {
		conn.SetReadLimit(dialer.ReadLimit)
	}
	return &webSocketConn{conn: conn}, nil
}

type webSocketConn struct {
	conn *websocket.Conn
}

func (wrapped *webSocketConn) Read(ctx context.Context) (Frame, error) {
	messageType, data, err := wrapped.conn.Read(ctx)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Binary: messageType == websocket.MessageBinary, Data: data}, nil
}

func (wrapped *webSocketConn) Close() error {
	return wrapped.conn.Close(websocket.StatusNormalClosure, "")
}

// closeReason describes why a read loop ended, for logging.
func closeReason(err error) string {
	switch status := websocket.CloseStatus(err); status {
	case -1:
		return err.Error()
	default:
		return fmt.Sprintf("closed by peer: %s", status)
	}
}
