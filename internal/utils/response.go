package utils

import (
	"encoding/json"
	"net/http"
)

const encodeFailure = `{"code":"internal","message":"An unexpected error occurred."}`

// JSON writes data with status. The body is encoded before the header goes
// out so an unencodable value still produces a well-formed 500.
func JSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(encodeFailure)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// NoContent answers 204 with no body.
func NoContent(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}
