package models

// capture socket frame types
const (
	CaptureStart  = "start"
	CaptureResult = "result"
	CaptureError  = "error"
	CaptureStop   = "stop"

	CaptureStarted    = "started"
	CaptureTranscript = "transcript"
	CaptureGraded     = "graded"
	CaptureNotice     = "notice"
)

// CaptureMessage is a frame sent by the client over the capture socket.
type CaptureMessage struct {
	Type            string `json:"type"`
	QuestionIndex   int    `json:"questionIndex,omitempty"`
	SpeechSupported bool   `json:"speechSupported,omitempty"`
	Text            string `json:"text,omitempty"`
	IsFinal         bool   `json:"isFinal,omitempty"`
	Error           string `json:"error,omitempty"`
}

// CaptureEvent is a frame sent by the server over the capture socket.
type CaptureEvent struct {
	Type       string      `json:"type"`
	Interim    string      `json:"interim,omitempty"`
	Final      string      `json:"final,omitempty"`
	Transcript string      `json:"transcript,omitempty"`
	Answer     *UserAnswer `json:"answer,omitempty"`
	Code       string      `json:"code,omitempty"`
	Message    string      `json:"message,omitempty"`
}
