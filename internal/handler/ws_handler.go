package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/service"
	ws "github.com/stationgames/trivia-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live leaderboard updates over WebSocket.
type WSHandler struct {
	rdb            *redis.Client
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:            rdb,
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// LeaderboardStream godoc
// WS /ws/v1/leaderboard
// Upgrades to WebSocket, sends the current top scores once, then pushes an
// update every time a session completes.
func (h *WSHandler) LeaderboardStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	scores, err := h.sessionService.TopScores(ctx, 10, time.Time{})
	if err != nil {
		h.log.Error().Err(err).Msg("Leaderboard snapshot failed")
		ws.WriteError(conn, "snapshot failed")
		return
	}
	if err := ws.WriteTyped(conn, ws.SnapshotResponse{Event: ws.EventSnapshot, Scores: scores}); err != nil {
		return
	}

	sub := h.rdb.Subscribe(ctx, config.CacheKey.LeaderboardChannel())
	defer sub.Close()

	// Reader goroutine: answers pings and notices the client going away.
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				return
			}
			if msg.Action == ws.ActionPing {
				_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("Leaderboard client connected")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var update service.LeaderboardUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				h.log.Warn().Err(err).Msg("Invalid leaderboard payload")
				continue
			}
			if err := ws.WriteTyped(conn, ws.UpdateResponse{Event: ws.EventUpdate, Update: update}); err != nil {
				return
			}
		}
	}
}
