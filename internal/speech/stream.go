package speech

import (
	"context"
	"sync"
)

const streamBuffer = 64

type streamItem struct {
	seg  Segment
	code string
	fail bool
}

// StreamRecognizer is a Recognizer fed by a transport, such as results
// forwarded from the browser's speech engine over a socket.
type StreamRecognizer struct {
	items  chan streamItem
	closed chan struct{}
	once   sync.Once
}

func NewStreamRecognizer() *StreamRecognizer {
	return &StreamRecognizer{
		items:  make(chan streamItem, streamBuffer),
		closed: make(chan struct{}),
	}
}

// Push queues a segment. It returns false once recognition has ended.
func (r *StreamRecognizer) Push(seg Segment) bool {
	return r.send(streamItem{seg: seg})
}

// Fail ends recognition with the classified error for code.
func (r *StreamRecognizer) Fail(code string) bool {
	return r.send(streamItem{code: code, fail: true})
}

func (r *StreamRecognizer) send(item streamItem) bool {
	select {
	case <-r.closed:
		return false
	default:
	}
	select {
	case r.items <- item:
		return true
	case <-r.closed:
		return false
	}
}

func (r *StreamRecognizer) Recognize(ctx context.Context, emit func(Segment)) error {
	defer r.once.Do(func() { close(r.closed) })

	for {
		select {
		case item := <-r.items:
			if item.fail {
				return ClassifyError(item.code)
			}
			emit(item.seg)
		case <-ctx.Done():
			return r.drain(emit)
		}
	}
}

// drain applies everything queued before the stop so no final result is lost.
func (r *StreamRecognizer) drain(emit func(Segment)) error {
	for {
		select {
		case item := <-r.items:
			if item.fail {
				return ClassifyError(item.code)
			}
			emit(item.seg)
		default:
			return nil
		}
	}
}
