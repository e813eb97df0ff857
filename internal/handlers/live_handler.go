package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/auth"
	"github.com/adityavardhansharma/ai-mock-interview/internal/live"
	"github.com/adityavardhansharma/ai-mock-interview/internal/metrics"
)

const pingPeriod = 30 * time.Second

// Subscriber opens a live event subscription for one topic.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (*live.Subscription, error)
}

type liveFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type snapshotFunc func(ctx context.Context) (interface{}, error)

// LiveHandler pushes a fresh snapshot of a view whenever its data changes.
type LiveHandler struct {
	views    *FeedbackHandler
	bus      Subscriber
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewLiveHandler accepts a nil bus; the endpoints then report live updates
// as unavailable.
func NewLiveHandler(views *FeedbackHandler, bus Subscriber, upgrader websocket.Upgrader, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{views: views, bus: bus, upgrader: upgrader, logger: logger}
}

func (h *LiveHandler) Interviews(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserID(r.Context())
	h.stream(w, r, live.InterviewsTopic(ownerID), func(ctx context.Context) (interface{}, error) {
		return h.views.dashboard(ctx, ownerID)
	})
}

func (h *LiveHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserID(r.Context())
	interviewID := chi.URLParam(r, "id")
	h.stream(w, r, live.AnswersTopic(ownerID, interviewID), func(ctx context.Context) (interface{}, error) {
		return h.views.summary(ctx, ownerID, interviewID)
	})
}

func (h *LiveHandler) stream(w http.ResponseWriter, r *http.Request, topic string, snapshot snapshotFunc) {
	reqID := requestID(r)
	if h.bus == nil {
		writeError(w, h.logger, apperrors.Unavailable("Live updates are disabled", nil), reqID)
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	// subscribe before the first snapshot so no change can fall in between
	sub, err := h.bus.Subscribe(ctx, topic)
	if err != nil {
		writeError(w, h.logger, apperrors.Unavailable("Live updates are unavailable", err), reqID)
		return
	}
	defer sub.Close()

	first, err := snapshot(ctx)
	if err != nil {
		writeError(w, h.logger, err, reqID)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	untrack := metrics.TrackSubscriber()
	defer untrack()

	ws := &socket{conn: conn, logger: h.logger, reqID: reqID}
	if err := ws.send(liveFrame{Type: "snapshot", Data: first}); err != nil {
		return
	}

	// the client never sends; reading only notices the close
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ws.mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			ws.mu.Unlock()
			if err != nil {
				return
			}
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			deleted := endsTopic(event, topic)
			if coalesce(sub.Events(), topic) {
				deleted = true
			}
			if deleted {
				ws.send(liveFrame{Type: "deleted"})
				return
			}

			data, err := snapshot(ctx)
			if err != nil {
				if ctx.Err() == nil {
					ws.noticeErr(err)
				}
				return
			}
			if err := ws.send(liveFrame{Type: "snapshot", Data: data}); err != nil {
				return
			}
		}
	}
}

// endsTopic reports whether event removes the interview a feedback topic follows.
func endsTopic(event live.Event, topic string) bool {
	return event.Kind == live.InterviewDeleted && event.InterviewID != "" &&
		topic == live.AnswersTopic(event.OwnerID, event.InterviewID)
}

// coalesce drains events already queued, since one snapshot covers them all,
// and reports whether any of them ended the topic.
func coalesce(events <-chan live.Event, topic string) bool {
	ended := false
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return ended
			}
			if endsTopic(event, topic) {
				ended = true
			}
		default:
			return ended
		}
	}
}
