package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/planforge/planforge/internal/cache"
	"github.com/planforge/planforge/internal/model"
	"github.com/planforge/planforge/internal/notify"
	"github.com/planforge/planforge/internal/queue"
	"github.com/planforge/planforge/pkg/streaming"
)

const (
	outboxMax    = 10_000
	subBuffer    = 256
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsClient pushes change events to one WebSocket peer. A single write
// goroutine drains the outbox; overflow drops the oldest pending messages.
type wsClient struct {
	conn      *ws.Conn
	outbox    *queue.Queue[[]byte]
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	dropped   cache.SafeCounter
	logger    zerolog.Logger
}

// handleWebsocket upgrades the connection and streams change events for
// one document (documentId query) or a whole collection (collection query).
func (s *Server) handleWebsocket(c *gin.Context) {
	documentID := c.Query("documentId")
	collection := c.Query("collection")
	if documentID == "" && collection == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "documentId or collection query required"})
		return
	}
	if collection != "" && !model.ValidCollection(collection) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}

	var events <-chan notify.Event
	var cancel func()
	if documentID != "" {
		events, cancel = s.deps.Hub.SubscribeDocument(documentID, subBuffer)
	} else {
		events, cancel = s.deps.Hub.SubscribeCollection(collection, subBuffer)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		s.deps.Logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &wsClient{
		conn:   conn,
		outbox: queue.New[[]byte](),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: s.deps.Logger,
	}

	go client.writeLoop()
	go client.readLoop(cancel)
	client.forward(events)
}

// forward marshals hub events into envelopes and queues them for the
// write loop. Returns when the subscription channel closes.
func (c *wsClient) forward(events <-chan notify.Event) {
	for e := range events {
		payload, err := json.Marshal(streaming.ChangePayload{
			DocumentID: e.DocumentID,
			Collection: e.Collection,
			VersionID:  e.VersionID,
			Delta:      e.Delta,
			Timestamp:  e.Timestamp,
		})
		if err != nil {
			c.logger.Error().Err(err).Msg("Error marshaling change payload")
			continue
		}
		data, err := json.Marshal(streaming.Envelope{
			Type:    envelopeType(e.Kind),
			Payload: payload,
		})
		if err != nil {
			c.logger.Error().Err(err).Msg("Error marshaling envelope")
			continue
		}

		if c.outbox.Len() >= outboxMax {
			c.outbox.Pop()
			c.dropped.Inc()
			c.logger.Warn().Msg("WebSocket outbox full, dropping oldest message")
		}
		c.outbox.Push(data)
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
	c.shutdown()
}

// writeLoop drains the outbox and writes messages to the WebSocket.
// Only one writeLoop runs per client; it returns on error or shutdown.
func (c *wsClient) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteMessage(
				ws.CloseMessage,
				ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			)
			return
		case <-ticker.C:
			if err := c.write(ws.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("WebSocket ping failed")
				c.shutdown()
				return
			}
		case <-c.wake:
			for _, data := range c.outbox.GetAndEmpty() {
				if err := c.write(ws.TextMessage, data); err != nil {
					c.logger.Debug().Err(err).Msg("WebSocket write error")
					c.shutdown()
					return
				}
			}
		}
	}
}

func (c *wsClient) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// readLoop consumes client frames to keep pong handling alive and tears
// the client down when the peer goes away. Ack frames are logged, anything
// else is discarded.
func (c *wsClient) readLoop(cancel func()) {
	defer cancel()
	defer c.shutdown()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var ack streaming.AckMessage
		if json.Unmarshal(data, &ack) == nil && ack.Type == streaming.TypeAck {
			c.logger.Debug().Str("for", ack.For).Msg("WebSocket ack received")
		}
	}
}

func (c *wsClient) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
		if n := c.dropped.Value(); n > 0 {
			c.logger.Warn().Int("dropped", n).Msg("WebSocket client closed with dropped messages")
		}
	})
}

func envelopeType(kind notify.EventKind) string {
	switch kind {
	case notify.KindDocumentCreated:
		return streaming.TypeDocumentCreated
	case notify.KindDocumentUpdated:
		return streaming.TypeDocumentUpdated
	case notify.KindDocumentTouched:
		return streaming.TypeDocumentTouched
	case notify.KindDocumentDeleted:
		return streaming.TypeDocumentDeleted
	case notify.KindVersionUpdated:
		return streaming.TypeVersionUpdated
	case notify.KindVersionLocked:
		return streaming.TypeVersionLocked
	case notify.KindVersionDeleted:
		return streaming.TypeVersionDeleted
	default:
		return string(kind)
	}
}
