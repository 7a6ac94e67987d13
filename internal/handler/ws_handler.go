package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/blueskyzii/Latihan-PPKN/internal/catalog"
	"github.com/blueskyzii/Latihan-PPKN/internal/exam"
	"github.com/blueskyzii/Latihan-PPKN/internal/middleware"
	"github.com/blueskyzii/Latihan-PPKN/internal/response"
	"github.com/blueskyzii/Latihan-PPKN/internal/service"
	ws "github.com/blueskyzii/Latihan-PPKN/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// WSHandler streams the exam clock and accepts exam commands over one
// WebSocket, so the runner needs no polling while a session is active.
type WSHandler struct {
	sessionService *service.ExamSessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.ExamSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exam/stream?client_id=...
// Pushes a tick event every second; on deadline expiry pushes the forced
// finish result and closes. Accepts answer/navigate/violation/finish/ping
// commands on the same socket.
func (h *WSHandler) ExamStream(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	wconn := ws.NewConn(conn)
	defer wconn.Close()

	if !h.sessionService.Active(clientID) {
		_ = wconn.WriteError(string(response.ErrNoActiveSession), response.GetMessage(response.ErrNoActiveSession))
		return
	}

	wsLog := h.log.With().Str("client_id", clientID).Logger()
	wsLog.Info().Msg("Exam stream connected")

	// The request context is unreliable after the hijack; the ticker and
	// the command loop share this one instead.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.streamTicks(ctx, cancel, wconn, clientID, wsLog)

	for {
		var cmd ws.Command
		if err := wconn.ReadCommand(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		if done := h.handleCommand(ctx, cancel, wconn, clientID, &cmd, wsLog); done {
			return
		}
	}
}

// streamTicks drives the 1 Hz clock. The ticker stops as soon as the session
// leaves the active state, so a dangling callback can never fire a second
// finish.
func (h *WSHandler) streamTicks(ctx context.Context, cancel context.CancelFunc, conn *ws.Conn, clientID string, log zerolog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tick, result, err := h.sessionService.Tick(ctx, clientID, now)
			if err != nil {
				// Session ended through the command loop or another tab.
				cancel()
				_ = conn.Close()
				return
			}

			if result != nil {
				log.Info().Int("score", result.ScorePercent).Msg("Time expired, forced finish")
				_ = conn.Write(ws.FinishedEvent{Event: ws.EventFinished, Forced: true, Result: result})
				cancel()
				_ = conn.Close()
				return
			}

			if err := conn.Write(ws.TickEvent{
				Event:            ws.EventTick,
				RemainingSeconds: int(tick.Remaining.Seconds()),
				Display:          tick.Display,
				LowTime:          tick.LowTime,
			}); err != nil {
				cancel()
				return
			}
		}
	}
}

// handleCommand dispatches one client command. Returns true when the
// connection should close (terminal transition).
func (h *WSHandler) handleCommand(ctx context.Context, cancel context.CancelFunc, conn *ws.Conn, clientID string, cmd *ws.Command, log zerolog.Logger) bool {
	switch cmd.Action {
	case ws.ActionAnswer:
		if cmd.Index == nil || cmd.Option == "" {
			_ = conn.WriteError(string(response.ErrInvalidPayload), "index and option are required")
			return false
		}
		if err := h.sessionService.SelectAnswer(ctx, clientID, *cmd.Index, cmd.Option); err != nil {
			_ = conn.WriteError(string(wsErrCode(err)), err.Error())
			return false
		}
		_ = conn.Write(ws.SavedEvent{Event: ws.EventSaved, Index: *cmd.Index})

	case ws.ActionNavigate:
		if cmd.Index == nil {
			_ = conn.WriteError(string(response.ErrInvalidPayload), "index is required")
			return false
		}
		if err := h.sessionService.Navigate(ctx, clientID, *cmd.Index); err != nil {
			_ = conn.WriteError(string(wsErrCode(err)), err.Error())
			return false
		}
		_ = conn.Write(ws.SavedEvent{Event: ws.EventSaved, Index: *cmd.Index})

	case ws.ActionViolation:
		res, err := h.sessionService.RecordViolation(ctx, clientID)
		if err != nil {
			_ = conn.WriteError(string(wsErrCode(err)), err.Error())
			return false
		}
		if res.ThresholdReached {
			_ = conn.Write(ws.ResetEvent{
				Event:   ws.EventReset,
				Message: response.GetMessage(response.ErrViolationLimit),
			})
			cancel()
			return true
		}
		_ = conn.Write(ws.WarningEvent{Event: ws.EventWarning, Count: res.Count, Max: res.Max})

	case ws.ActionFinish:
		result, err := h.sessionService.Finish(ctx, clientID, cmd.Forced)
		if err != nil {
			var incomplete *exam.IncompleteError
			if errors.As(err, &incomplete) {
				_ = conn.WriteError(string(response.ErrIncomplete),
					fmt.Sprintf("%d soal belum dijawab", incomplete.Unanswered))
				return false
			}
			_ = conn.WriteError(string(wsErrCode(err)), err.Error())
			return false
		}
		log.Info().Int("score", result.ScorePercent).Bool("forced", cmd.Forced).Msg("Finished via stream")
		_ = conn.Write(ws.FinishedEvent{Event: ws.EventFinished, Forced: cmd.Forced, Result: result})
		cancel()
		return true

	case ws.ActionPing:
		_ = conn.Write(ws.PongEvent{Event: ws.EventPong})

	default:
		log.Warn().Str("action", string(cmd.Action)).Msg("Unknown action")
		_ = conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(cmd.Action))
	}
	return false
}

// wsErrCode maps domain errors onto response codes for stream errors.
func wsErrCode(err error) response.ErrCode {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		return response.ErrNoActiveSession
	case errors.Is(err, exam.ErrNotActive):
		return response.ErrSessionNotActive
	case errors.Is(err, exam.ErrIndexOutOfRange):
		return response.ErrInvalidIndex
	case errors.Is(err, exam.ErrUnknownOption):
		return response.ErrUnknownOption
	case errors.Is(err, catalog.ErrUnavailable):
		return response.ErrDataUnavailable
	default:
		return response.ErrInternal
	}
}
