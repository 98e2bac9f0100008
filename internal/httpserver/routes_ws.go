// internal/httpserver/routes_ws.go
//
// WebSocket keyboard channel for one round: GET /rounds/{id}/ws.
//
// Client → server:
//   {"type":"key","key":"A"}      one keystroke (letters, BACKSPACE, ENTER)
//   {"type":"new_round"}          start a new round in place
//   {"type":"ping"}
//
// Server → client:
//   {"type":"state","payload":<round>}   after connect and after every move
//   {"type":"result","payload":<result>} when a submission ends the round
//   {"type":"error","payload":{"error":..,"message":..}}
//   {"type":"pong"}
//
// Each connection runs a read pump (this goroutine) and a write pump; only
// the write pump touches the socket for writing.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/wordle/apps/round-server/internal/store"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024
	sendBufferSize = 32
)

const (
	msgKey      = "key"
	msgNewRound = "new_round"
	msgPing     = "ping"

	msgState  = "state"
	msgResult = "result"
	msgError  = "error"
	msgPong   = "pong"
)

type wsIn struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}

type wsOut struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == s.cfg.ClientOrigin || origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	owner, ok := s.existingOwner(r)
	sess, err := s.store.Get(r.Context(), id)
	if err == nil && (!ok || sess.Owner.Key() != owner.Key()) {
		err = store.ErrNotFound
	}
	if err != nil {
		writeMoveError(w, r, err)
		return
	}

	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	// The request context ends with the handshake; keep the logger only.
	logger := hlog.FromRequest(r).With().Str("round", id).Logger()
	c := &wsClient{
		s:     s,
		conn:  conn,
		id:    id,
		owner: owner,
		send:  make(chan []byte, sendBufferSize),
		ctx:   logger.WithContext(context.Background()),
		log:   logger,
	}
	logger.Info().Msg("websocket connected")
	c.push(wsOut{Type: msgState, Payload: viewOf(sess)})

	go c.writePump()
	c.readPump()
	logger.Info().Msg("websocket disconnected")
}

// existingOwner resolves the owner without issuing a new anonymous cookie.
func (s *Server) existingOwner(r *http.Request) (store.Owner, bool) {
	if me := userFrom(r.Context()); me != nil {
		return store.Owner{UserID: me.ID}, true
	}
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return store.Owner{AnonID: c.Value}, true
	}
	return store.Owner{}, false
}

type wsClient struct {
	s     *Server
	conn  *websocket.Conn
	id    string
	owner store.Owner
	send  chan []byte
	ctx   context.Context
	log   zerolog.Logger
}

// push queues a message for the write pump. It drops the message when the
// peer is not keeping up.
func (c *wsClient) push(m wsOut) {
	data, err := json.Marshal(m)
	if err != nil {
		c.log.Error().Err(err).Msg("marshal ws message")
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn().Str("type", m.Type).Msg("send buffer full, message dropped")
	}
}

func (c *wsClient) readPump() {
	defer func() {
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
		c.handle(data)
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) handle(data []byte) {
	var in wsIn
	if err := json.Unmarshal(data, &in); err != nil {
		c.push(wsOut{Type: msgError, Payload: errorRes{"bad_json", err.Error()}})
		return
	}

	switch in.Type {
	case msgKey:
		sess, sub, err := c.s.apply(c.ctx, c.id, c.owner, isEnter(in.Key), c.s.keyMove(in.Key))
		if err != nil {
			c.fail(err)
			return
		}
		c.push(wsOut{Type: msgState, Payload: viewOf(sess)})
		if sub != nil && sub.Outcome.Finished() {
			c.push(wsOut{Type: msgResult, Payload: sub.Result})
		}
	case msgNewRound:
		sess, err := c.s.restart(c.ctx, c.id, c.owner)
		if err != nil {
			c.fail(err)
			return
		}
		c.push(wsOut{Type: msgState, Payload: viewOf(sess)})
	case msgPing:
		c.push(wsOut{Type: msgPong})
	default:
		c.push(wsOut{Type: msgError, Payload: errorRes{"unknown_type", in.Type}})
	}
}

func (c *wsClient) fail(err error) {
	status, body := moveError(err)
	if status == http.StatusInternalServerError {
		c.log.Error().Err(err).Msg("round move failed")
	} else if !errors.Is(err, store.ErrNotFound) {
		c.log.Debug().Err(err).Msg("move rejected")
	}
	c.push(wsOut{Type: msgError, Payload: body})
}
