package http

import (
	"context"
	"time"

	authhttp "job-portal/internal/auth/adapter/http"
	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/usecase"
	"job-portal/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultSendBuffer = 16
	pingInterval      = 30 * time.Second
	writeWait         = 10 * time.Second
)

// WebSocket message types.
const (
	MessageSubscribed       = "subscription_confirmed"
	MessageApplicationEvent = "application_event"
	MessageError            = "error"
)

// WebSocketMessage is the envelope of every frame sent to a listener.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ErrorResponse is the payload of an error frame.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WebSocketHandler streams application events of one job to a client.
type WebSocketHandler struct {
	realtime   usecase.RealtimeUsecase
	jobs       usecase.JobUsecaseInterface
	mw         *authhttp.AuthMiddleware
	restrict   bool
	sendBuffer int
	log        logger.Logger
}

// NewWebSocketHandler creates a WebSocketHandler. The feed is admitted by the
// same gate as the applicant listing of the job.
func NewWebSocketHandler(
	rt usecase.RealtimeUsecase,
	jobs usecase.JobUsecaseInterface,
	mw *authhttp.AuthMiddleware,
	restrictApplicants bool,
	sendBuffer int,
	log logger.Logger,
) *WebSocketHandler {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	if log == nil {
		log = logger.NewLogger()
	}
	return &WebSocketHandler{
		realtime:   rt,
		jobs:       jobs,
		mw:         mw,
		restrict:   restrictApplicants,
		sendBuffer: sendBuffer,
		log:        log.WithComponent("ws_handler"),
	}
}

// RegisterRoutes mounts GET /ws/jobs/:job_id/applications.
func (h *WebSocketHandler) RegisterRoutes(router fiber.Router) {
	chain := []fiber.Handler{requireUpgrade}
	chain = append(chain, ApplicantsGate(h.mw, h.jobs, h.restrict)...)
	chain = append(chain, websocket.New(h.serve))
	router.Get("/ws/jobs/:job_id/applications", chain...)
}

func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// serve owns the connection: it is the only writer. A reader goroutine
// detects the client going away.
func (h *WebSocketHandler) serve(conn *websocket.Conn) {
	jobID := conn.Params("job_id")
	subscriberID := uuid.NewString()
	log := h.log.WithFields(map[string]interface{}{
		"subscriber_id": subscriberID,
		"job_id":        jobID,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan *model.ApplicationEvent, h.sendBuffer)
	if err := h.realtime.Subscribe(ctx, subscriberID, jobID, events); err != nil {
		log.Errorf("subscribe: %v", err)
		h.sendError(conn, "subscription_failed", "Failed to subscribe to job")
		return
	}
	defer func() {
		if err := h.realtime.Unsubscribe(ctx, subscriberID, jobID); err != nil {
			log.Errorf("unsubscribe: %v", err)
		}
		close(events)
		log.Info("listener disconnected")
	}()
	log.Info("listener connected")

	go h.readUntilClosed(conn, cancel, log)

	if err := h.write(conn, WebSocketMessage{
		Type: MessageSubscribed,
		Data: map[string]interface{}{"jobId": jobID},
	}); err != nil {
		return
	}

	if since := conn.Query("since"); since != "" {
		if err := h.replay(ctx, conn, jobID, since); err != nil {
			log.Warnf("replay from %s: %v", since, err)
			return
		}
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if err := h.write(conn, WebSocketMessage{Type: MessageApplicationEvent, Data: ev}); err != nil {
				log.Debugf("write event: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) replay(ctx context.Context, conn *websocket.Conn, jobID, since string) error {
	stored, err := h.realtime.Replay(ctx, jobID, since)
	if err != nil {
		h.sendError(conn, "replay_failed", "Failed to replay stored events")
		return err
	}
	for _, ev := range stored {
		if err := h.write(conn, WebSocketMessage{Type: MessageApplicationEvent, Data: ev}); err != nil {
			return err
		}
	}
	return nil
}

// readUntilClosed discards client frames. Listeners only receive.
func (h *WebSocketHandler) readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc, log logger.Logger) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("read: %v", err)
			}
			return
		}
	}
}

func (h *WebSocketHandler) write(conn *websocket.Conn, msg WebSocketMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, errorType, message string) {
	_ = h.write(conn, WebSocketMessage{
		Type: MessageError,
		Data: ErrorResponse{Error: errorType, Message: message},
	})
}
