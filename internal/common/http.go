package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// RespondJSON writes v as a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError maps err to an HTTP status and writes a JSON error body.
// Internal details of storage failures never reach the client.
func RespondError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	message := "internal server error"
	code := "INTERNAL"
	var appErr *AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		if appErr.Code == ErrStorageUnavailable {
			message = "storage unavailable"
		}
	}
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}

	RespondJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}
