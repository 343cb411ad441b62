// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/bureau-foundation/qaboard/lib/questionevent"
)

const (
	// sendBuffer is the number of frames queued per client before
	// further broadcasts to it are dropped.
	sendBuffer = 256

	// writeTimeout bounds one frame write to a client.
	writeTimeout = 10 * time.Second
)

// pushClient is one connected push channel subscriber.
type pushClient struct {
	id   string
	send chan []byte
}

// hub fans broadcast events out to every connected push client.
type hub struct {
	format         questionevent.Format
	originPatterns []string
	metrics        *metrics
	logger         *slog.Logger

	mutex   sync.Mutex
	clients map[string]*pushClient
	closed  bool
}

func newHub(format questionevent.Format, originPatterns []string, collector *metrics, logger *slog.Logger) *hub {
	return &hub{
		format:         format,
		originPatterns: originPatterns,
		metrics:        collector,
		logger:         logger,
		clients:        make(map[string]*pushClient),
	}
}

// serve upgrades the request and streams broadcasts to the client
// until it disconnects or the hub closes. Clients send nothing; any
// message they do send is discarded.
func (hub *hub) serve(writer http.ResponseWriter, request *http.Request) {
	conn, err := websocket.Accept(writer, request, &websocket.AcceptOptions{
		OriginPatterns: hub.originPatterns,
	})
	if err != nil {
		hub.logger.Warn("push upgrade failed",
			"remote_addr", request.RemoteAddr,
			"error", err,
		)
		return
	}

	client := &pushClient{id: uuid.NewString(), send: make(chan []byte, sendBuffer)}
	if !hub.register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer hub.unregister(client)

	logger := hub.logger.With("connection_id", client.id, "remote_addr", request.RemoteAddr)
	logger.Info("push client connected")

	messageType := websocket.MessageText
	if hub.format == questionevent.FormatCBOR {
		messageType = websocket.MessageBinary
	}

	ctx := conn.CloseRead(request.Context())
	for {
		select {
		case frame, ok := <-client.send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, messageType, frame)
			cancel()
			if err != nil {
				logger.Info("push client write failed", "error", err)
				conn.CloseNow()
				return
			}
		case <-ctx.Done():
			logger.Info("push client disconnected")
			conn.CloseNow()
			return
		}
	}
}

func (hub *hub) register(client *pushClient) bool {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if hub.closed {
		return false
	}
	hub.clients[client.id] = client
	hub.metrics.pushClients.Set(float64(len(hub.clients)))
	return true
}

func (hub *hub) unregister(client *pushClient) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if _, ok := hub.clients[client.id]; !ok {
		return
	}
	delete(hub.clients, client.id)
	close(client.send)
	hub.metrics.pushClients.Set(float64(len(hub.clients)))
}

// broadcast encodes event once and queues it for every client. A
// client whose buffer is full misses the frame.
func (hub *hub) broadcast(event questionevent.Event) {
	frame, err := questionevent.Encode(event, hub.format)
	if err != nil {
		hub.logger.Error("encoding push event",
			"type", questionevent.Type(event),
			"error", err,
		)
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	hub.metrics.pushBroadcasts.WithLabelValues(questionevent.Type(event)).Inc()
	for _, client := range hub.clients {
		select {
		case client.send <- frame:
		default:
			hub.metrics.pushDroppedSends.Inc()
			hub.logger.Warn("push client send buffer full, dropping frame",
				"connection_id", client.id,
				"type", questionevent.Type(event),
			)
		}
	}
	hub.logger.Debug("broadcast push event",
		"type", questionevent.Type(event),
		"question_id", event.QuestionID(),
		"clients", len(hub.clients),
	)
}

func (hub *hub) clientCount() int {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	return len(hub.clients)
}

// close disconnects every client and refuses new ones.
func (hub *hub) close() {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if hub.closed {
		return
	}
	hub.closed = true
	for id, client := range hub.clients {
		delete(hub.clients, id)
		close(client.send)
	}
	hub.metrics.pushClients.Set(0)
}
