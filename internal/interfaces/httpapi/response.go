package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// AppError carries the status and user-facing message of a failed request.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

func WrapError(err error, message string, code int) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WriteJSON encodes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("encode json response failed")
	}
}

// WriteError writes {"error": message}. Errors that are not *AppError become
// a 500 with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		log.Error().Err(appErr.Err).Int("status", appErr.Code).Msg(appErr.Message)
		WriteJSON(w, appErr.Code, map[string]string{"error": appErr.Message})
		return
	}

	log.Error().Err(err).Msg("unhandled request error")
	WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
}
