package speech

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adityavardhansharma/ai-mock-interview/internal/apperrors"
)

var (
	ErrCapabilityUnavailable = errors.New("speech recognition unavailable")
	ErrPermissionDenied      = errors.New("microphone permission denied")
	ErrNoSpeech              = errors.New("no speech detected")
	ErrRecognitionFailed     = errors.New("speech recognition failed")

	ErrSessionStarted    = errors.New("capture session already started")
	ErrSessionClosed     = errors.New("capture session already stopped")
	ErrSessionNotStarted = errors.New("capture session not started")
)

// ClassifyError maps a recognition error code reported by the client's
// speech engine onto a domain error. "aborted" is a user stop and yields nil.
func ClassifyError(code string) error {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "", "aborted":
		return nil
	case "not-allowed", "permission-denied", "service-not-allowed":
		return apperrors.PermissionDenied("Please allow microphone access in your browser settings.", ErrPermissionDenied)
	case "audio-capture":
		return apperrors.CapabilityUnavailable("No microphone was found. Check that one is connected.", ErrCapabilityUnavailable)
	case "no-speech":
		return apperrors.InvalidInput("No speech was detected. Please try speaking again.", ErrNoSpeech)
	case "network":
		return apperrors.Unavailable("Speech recognition encountered a network error. Check your internet connection.", ErrRecognitionFailed)
	default:
		return apperrors.Unavailable(fmt.Sprintf("Error: %s. Please try again.", code), ErrRecognitionFailed)
	}
}
