package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/utils"
)

type validatedKey struct{}

const maxBodyBytes = 1 << 20

// Validator is implemented by request payloads. T is expected to be a
// pointer type; Validate may normalize fields in place.
type Validator interface {
	Validate() error
}

// ValidateRequest decodes the body into T, validates it and hands it to the
// next handler through the request context.
func ValidateRequest[T Validator]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					reject(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large")
					return
				}
				reject(w, http.StatusBadRequest, "invalid_json", "Could not read request body")
				return
			}

			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 {
				reject(w, http.StatusBadRequest, "empty_body", "Request body is required")
				return
			}

			// a nil pointer T is allocated by Unmarshal; a literal null leaves it nil
			var req T
			if bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &req) != nil {
				reject(w, http.StatusBadRequest, "invalid_json", "Invalid JSON in request body")
				return
			}

			if err := req.Validate(); err != nil {
				var errResp *models.ErrorResponse
				if errors.As(err, &errResp) {
					utils.JSON(w, http.StatusBadRequest, errResp)
					return
				}
				reject(w, http.StatusBadRequest, "validation_error", err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), validatedKey{}, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter, status int, code, message string) {
	utils.JSON(w, status, models.ErrorResponse{Code: code, Message: message})
}

// GetValidatedRequest returns the payload stored by ValidateRequest.
func GetValidatedRequest[T any](r *http.Request) T {
	return r.Context().Value(validatedKey{}).(T)
}
