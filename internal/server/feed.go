package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/orbitdash/pokercore/internal/lobby"
	"github.com/orbitdash/pokercore/internal/table"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	replyBuffer    = 8
)

// Message types sent on the feed.
const (
	msgUpdate = "update"
	msgError  = "error"
)

type updateMessage struct {
	Type string `json:"type"`
	table.Update
}

type errorMessage struct {
	Type string `json:"type"`
	ErrorBody
}

// feedConn is one websocket subscription. Only writePump writes to ws.
type feedConn struct {
	s       *Server
	ws      *websocket.Conn
	gameID  string
	user    lobby.User
	replies chan errorMessage
	done    chan struct{}
	logger  zerolog.Logger
}

// feedUser identifies a websocket client. Browsers cannot set headers on
// the upgrade request, so the query string is accepted too. An empty id
// subscribes as a spectator.
func feedUser(r *http.Request) lobby.User {
	if user, err := userFrom(r); err == nil {
		return user
	}
	q := r.URL.Query()
	user := lobby.User{ID: q.Get("user_id"), Name: q.Get("user_name")}
	if user.Name == "" {
		user.Name = user.ID
	}
	return user
}

// handleFeed streams table updates. The first message is a full snapshot;
// a client whose connection closes resubscribes to resync. Action messages
// from seated players are applied like POST /games/{id}/actions.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	g, err := s.lobby.Game(gameID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	user := feedUser(r)
	updates, cancel, err := g.Runner().Subscribe(user.ID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	defer cancel()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("game_id", gameID).Msg("Failed to upgrade connection")
		return
	}
	c := &feedConn{
		s:       s,
		ws:      ws,
		gameID:  gameID,
		user:    user,
		replies: make(chan errorMessage, replyBuffer),
		done:    make(chan struct{}),
		logger:  s.logger.With().Str("game_id", gameID).Str("user_id", user.ID).Logger(),
	}
	c.logger.Debug().Msg("Feed connected")

	go c.writePump(updates)
	c.readPump()
	c.logger.Debug().Msg("Feed disconnected")
}

func (c *feedConn) readPump() {
	defer func() {
		close(c.done)
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("Unexpected websocket close")
			}
			return
		}
		if err := c.handleMessage(data); err != nil {
			_, body := errorBody(err)
			c.reply(errorMessage{Type: msgError, ErrorBody: body})
		}
	}
}

func (c *feedConn) handleMessage(data []byte) error {
	if c.user.ID == "" {
		return errUnauthorized
	}
	var req actionRequest
	if err := c.s.validate.decode(schemaAction, data, &req); err != nil {
		return err
	}
	_, err := c.s.lobby.SubmitAction(c.gameID, c.user.ID, req.action())
	return err
}

// reply queues an error for the client, dropping it if the writer is
// backed up.
func (c *feedConn) reply(msg errorMessage) {
	select {
	case c.replies <- msg:
	default:
		c.logger.Warn().Str("code", msg.Code).Msg("Dropping feed reply")
	}
}

func (c *feedConn) writePump(updates <-chan table.Update) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				// Dropped for falling behind, or the table closed.
				_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "resubscribe"))
				return
			}
			if err := c.write(updateMessage{Type: msgUpdate, Update: u}); err != nil {
				return
			}
		case msg := <-c.replies:
			if err := c.write(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *feedConn) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to encode feed message")
		return err
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}
