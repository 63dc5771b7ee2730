package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mdreplay/engine/internal/log"
	"github.com/mdreplay/engine/internal/session/model"
)

// APIError is the structured error body returned to clients, carrying a
// machine-readable code alongside the human-readable message.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (e *APIError) Error() string { return e.Message }

// RespondError maps a domain error to its HTTP status and writes a
// structured JSON body. Unrecognized errors are treated as internal (500)
// and logged; they never leak implementation detail.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.L().Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
	}

	resp := &APIError{
		Code:      code,
		Message:   err.Error(),
		RequestID: log.RequestIDFromContext(r.Context()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func classify(err error) (int, string) {
	var unknownSession *model.UnknownSessionError
	var unknownEvent *model.UnknownEventError
	var invalidArg *model.InvalidArgumentError
	var terminal *model.TerminalSessionError
	var alreadySub *model.AlreadySubscribedError

	switch {
	case errors.As(err, &unknownSession):
		return http.StatusNotFound, "UNKNOWN_SESSION"
	case errors.As(err, &unknownEvent):
		return http.StatusNotFound, "UNKNOWN_EVENT"
	case errors.As(err, &invalidArg):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.As(err, &terminal):
		return http.StatusConflict, "TERMINAL_SESSION"
	case errors.As(err, &alreadySub):
		return http.StatusConflict, "ALREADY_SUBSCRIBED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
