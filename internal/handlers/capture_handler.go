package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
	"github.com/adityavardhansharma/ai-mock-interview/internal/auth"
	"github.com/adityavardhansharma/ai-mock-interview/internal/metrics"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/speech"
)

const writeWait = 10 * time.Second

// CaptureHandler runs recording sessions over a WebSocket. The browser
// streams its speech recognition results; on stop the transcript is graded
// and stored like a typed answer.
type CaptureHandler struct {
	interviews InterviewService
	answers    AnswerService
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func NewCaptureHandler(interviews InterviewService, answers AnswerService, upgrader websocket.Upgrader, logger *zap.Logger) *CaptureHandler {
	return &CaptureHandler{
		interviews: interviews,
		answers:    answers,
		upgrader:   upgrader,
		logger:     logger,
	}
}

// socket serializes writes; gorilla allows one concurrent writer.
type socket struct {
	conn   *websocket.Conn
	logger *zap.Logger
	reqID  string
	mu     sync.Mutex
}

func (s *socket) send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

func (s *socket) notice(code, message string) error {
	return s.send(models.CaptureEvent{Type: models.CaptureNotice, Code: code, Message: message})
}

// noticeErr reports err to the client; server-side failures are logged too.
func (s *socket) noticeErr(err error) error {
	if apperrors.HTTPStatus(err) >= http.StatusInternalServerError && s.logger != nil {
		logFailure(s.logger, "Socket operation failed", err, s.reqID)
	}
	return s.notice(strings.ToLower(string(apperrors.TypeOf(err))), apperrors.PublicMessage(err))
}

// capture is the state of one connection.
type capture struct {
	h           *CaptureHandler
	ws          *socket
	ctx         context.Context
	ownerID     string
	interviewID string

	session    *speech.Session
	recognizer *speech.StreamRecognizer
	index      int
	forwarded  chan struct{}
	grading    sync.WaitGroup
}

func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserID(r.Context())
	interviewID := chi.URLParam(r, "id")

	// fail before the upgrade so the client gets a plain HTTP status
	if _, err := h.interviews.Get(r.Context(), ownerID, interviewID); err != nil {
		writeError(w, h.logger, err, requestID(r))
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

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &capture{
		h:           h,
		ws:          &socket{conn: conn, logger: h.logger, reqID: requestID(r)},
		ctx:         ctx,
		ownerID:     ownerID,
		interviewID: interviewID,
	}
	defer func() {
		// a grade still in flight for a closed socket is dropped unsaved
		cancel()
		c.discard()
		c.grading.Wait()
	}()

	h.logger.Info("Capture connected",
		zap.String("user_id", ownerID),
		zap.String("interview_id", interviewID))

	for {
		var msg models.CaptureMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("Capture read ended", zap.Error(err))
			}
			return
		}

		var werr error
		switch msg.Type {
		case models.CaptureStart:
			werr = c.start(msg)
		case models.CaptureResult:
			werr = c.result(msg)
		case models.CaptureError:
			werr = c.fail(msg.Error)
		case models.CaptureStop:
			werr = c.stop()
		default:
			werr = c.ws.notice("unknown_message", "Unknown message type: "+msg.Type)
		}
		if werr != nil {
			h.logger.Debug("Capture write failed", zap.Error(werr))
			return
		}
	}
}

func (c *capture) start(msg models.CaptureMessage) error {
	if c.session != nil {
		return c.ws.noticeErr(apperrors.InvalidInput("Recording is already in progress", speech.ErrSessionStarted))
	}

	interview, err := c.h.interviews.Get(c.ctx, c.ownerID, c.interviewID)
	if err != nil {
		return c.ws.noticeErr(err)
	}
	if _, ok := interview.QuestionAt(msg.QuestionIndex); !ok {
		return c.ws.noticeErr(apperrors.InvalidInput("Question index is out of range", nil))
	}

	var rec speech.Recognizer
	var stream *speech.StreamRecognizer
	if msg.SpeechSupported {
		stream = speech.NewStreamRecognizer()
		rec = stream
	}
	session, err := speech.NewSession(rec)
	if err != nil {
		return c.ws.noticeErr(err)
	}
	if err := session.Start(c.ctx); err != nil {
		return c.ws.noticeErr(apperrors.Internal("Failed to start recording", err))
	}

	c.session = session
	c.recognizer = stream
	c.index = msg.QuestionIndex
	c.forwarded = make(chan struct{})
	go c.forward(session, c.forwarded)

	return c.ws.send(models.CaptureEvent{Type: models.CaptureStarted})
}

func (c *capture) forward(session *speech.Session, done chan struct{}) {
	defer close(done)
	for delta := range session.Deltas() {
		if err := c.ws.send(models.CaptureEvent{
			Type:       models.CaptureTranscript,
			Interim:    delta.Interim,
			Final:      delta.Final,
			Transcript: delta.Transcript,
		}); err != nil {
			return
		}
	}
}

func (c *capture) result(msg models.CaptureMessage) error {
	if c.session == nil {
		return c.ws.noticeErr(apperrors.InvalidInput("Recording has not started", speech.ErrSessionNotStarted))
	}
	c.recognizer.Push(speech.Segment{Text: msg.Text, Final: msg.IsFinal})
	return nil
}

// fail ends the recording without saving; aborted is a silent stop.
func (c *capture) fail(code string) error {
	if c.session == nil {
		return nil
	}
	c.recognizer.Fail(code)
	_, err := c.end()
	if err != nil {
		return c.ws.noticeErr(err)
	}
	return nil
}

func (c *capture) stop() error {
	if c.session == nil {
		return c.ws.noticeErr(apperrors.InvalidInput("Recording has not started", speech.ErrSessionNotStarted))
	}
	index := c.index
	transcript, err := c.end()
	if err != nil {
		return c.ws.noticeErr(err)
	}
	if strings.TrimSpace(transcript) == "" {
		return c.ws.noticeErr(apperrors.InvalidInput("No speech was detected. Please try speaking again.", speech.ErrNoSpeech))
	}

	c.grading.Add(1)
	go func() {
		defer c.grading.Done()
		c.grade(index, transcript)
	}()
	return nil
}

func (c *capture) grade(index int, transcript string) {
	reqID := uuid.New().String()
	answer, err := c.h.answers.Submit(c.ctx, c.ownerID, c.interviewID, index, transcript, reqID)
	if err != nil {
		if c.ctx.Err() == nil {
			c.ws.noticeErr(err)
		}
		return
	}
	c.ws.send(models.CaptureEvent{
		Type:       models.CaptureGraded,
		Transcript: transcript,
		Answer:     answer,
		Message:    answerMessage(answer),
	})
}

// end stops the session and waits until every transcript frame is written.
func (c *capture) end() (string, error) {
	transcript, err := c.session.Stop()
	<-c.forwarded
	c.session = nil
	c.recognizer = nil
	return transcript, err
}

func (c *capture) discard() {
	if c.session != nil {
		c.end()
	}
}
