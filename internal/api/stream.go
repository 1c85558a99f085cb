package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/portfolio-intel/internal/events"
)

const streamWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMessage is a frame sent to dashboard clients over the stream
type StreamMessage struct {
	Type  string        `json:"type"`
	Event *events.Event `json:"event,omitempty"`
	Data  string        `json:"data,omitempty"`
}

// Stream message types
const (
	StreamConnected = "connected"
	StreamEvent     = "event"
	StreamError     = "error"
)

// handleStream pushes dataset reload events to a websocket client until
// either side goes away
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		respondError(w, http.StatusServiceUnavailable, "stream_unavailable", "event stream is not configured")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	// Ends with the server's base context as well as with either peer
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := s.bus.Subscribe(ctx)
	if err != nil {
		slog.Error("failed to subscribe to events", "error", err)
		s.sendStreamMessage(conn, StreamMessage{Type: StreamError, Data: "event stream unavailable"})
		return
	}

	hello := StreamMessage{Type: StreamConnected}
	if ds, err := s.dashboard.Current(); err == nil {
		hello.Data = ds.Info.Version
	}
	if err := s.sendStreamMessage(conn, hello); err != nil {
		return
	}

	slog.Info("stream client connected", "remote_addr", r.RemoteAddr)

	var wg sync.WaitGroup

	// Bus -> websocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sub:
				if !ok {
					return
				}
				if err := s.sendStreamMessage(conn, StreamMessage{Type: StreamEvent, Event: &event}); err != nil {
					return
				}
			}
		}
	}()

	// Clients never send data; reading only surfaces the close frame
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	<-ctx.Done()
	// Unblock the reader if the bus side ended first
	conn.Close()
	wg.Wait()

	slog.Info("stream client disconnected", "remote_addr", r.RemoteAddr)
}

func (s *Server) sendStreamMessage(conn *websocket.Conn, msg StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal stream message", "error", err)
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send stream message", "error", err)
		return err
	}
	return nil
}
