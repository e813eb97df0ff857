package speech

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
)

// Segment is one recognition result. Interim segments replace each other;
// final segments are appended to the transcript.
type Segment struct {
	Text  string
	Final bool
}

// Recognizer is a continuous speech-to-text capability. Recognize blocks
// until ctx is done or the stream ends and calls emit for every segment.
type Recognizer interface {
	Recognize(ctx context.Context, emit func(Segment)) error
}

// Delta is one step of the transcript as seen by the subscriber.
type Delta struct {
	Interim    string `json:"interim,omitempty"`
	Final      string `json:"final,omitempty"`
	Transcript string `json:"transcript"`
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateRunning
	stateStopped
)

const deltaBuffer = 32

// Session owns one capture from Start to Stop. It cannot be restarted; a new
// capture needs a new Session.
type Session struct {
	rec Recognizer

	mu     sync.Mutex
	state  sessionState
	finals []string
	err    error
	cancel context.CancelFunc

	deltas chan Delta
	done   chan struct{}
}

// NewSession fails with a CAPABILITY_UNAVAILABLE error when rec is nil.
func NewSession(rec Recognizer) (*Session, error) {
	if rec == nil {
		return nil, apperrors.CapabilityUnavailable(
			"Speech recognition is not supported in your browser. Please try Chrome, Edge, or Safari.",
			ErrCapabilityUnavailable,
		)
	}
	return &Session{
		rec:    rec,
		deltas: make(chan Delta, deltaBuffer),
		done:   make(chan struct{}),
	}, nil
}

func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateRunning:
		return ErrSessionStarted
	case stateStopped:
		return ErrSessionClosed
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = stateRunning
	go s.run(runCtx)
	return nil
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.deltas)

	err := s.rec.Recognize(ctx, func(seg Segment) { s.apply(ctx, seg) })
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Session) apply(ctx context.Context, seg Segment) {
	text := strings.TrimSpace(seg.Text)

	s.mu.Lock()
	var delta Delta
	if seg.Final {
		if text != "" {
			s.finals = append(s.finals, text)
		}
		delta.Final = text
	} else {
		delta.Interim = text
	}
	delta.Transcript = strings.Join(s.finals, " ")
	s.mu.Unlock()

	// the transcript is already updated; a delta nobody reads is dropped on stop
	select {
	case s.deltas <- delta:
	case <-ctx.Done():
	}
}

// Deltas yields transcript deltas to a single consumer and is closed when
// recognition ends.
func (s *Session) Deltas() <-chan Delta {
	return s.deltas
}

// Done is closed once recognition has ended, by Stop or on its own.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Transcript is the concatenation of finalized segments so far.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.finals, " ")
}

// Stop ends recognition, waits for pending segments to be applied and
// returns the canonical transcript with any recognition error. Calling it
// again returns the same result.
func (s *Session) Stop() (string, error) {
	s.mu.Lock()
	if s.state == stateIdle {
		s.mu.Unlock()
		return "", ErrSessionNotStarted
	}
	s.state = stateStopped
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.finals, " "), s.err
}
