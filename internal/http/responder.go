package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-hub/internal/application"
	"github.com/example/conference-hub/internal/conflict"
	"github.com/example/conference-hub/internal/logging"
)

var (
	errBadRequestBody      = errors.New("the request body is malformed")
	errMissingSessionToken = errors.New("an authentication token is required")
)

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// conflictResponse is the 409 payload for blocked session creation. It
// carries the structured conflict list so the client can offer an override,
// and the ids of batch siblings already committed before the halt.
type conflictResponse struct {
	ErrorCode           string        `json:"error_code"`
	Message             string        `json:"message"`
	SessionTitle        string        `json:"session_title,omitempty"`
	Conflicts           []conflictDTO `json:"conflicts"`
	CommittedSessionIDs []string      `json:"committed_session_ids,omitempty"`
}

type conflictDTO struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Start     string `json:"start_time"`
	End       string `json:"end_time"`
	Message   string `json:"message"`
}

func conflictDTOs(conflicts []conflict.Conflict) []conflictDTO {
	out := make([]conflictDTO, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, conflictDTO{
			Type:      string(c.Type),
			SessionID: c.SessionID,
			Title:     c.Title,
			Start:     c.Start.UTC().Format(timeLayout),
			End:       c.End.UTC().Format(timeLayout),
			Message:   c.Message,
		})
	}
	return out
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application errors to transport responses in one
// place so every handler reports failures the same way.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var cErr *application.ConflictError
	var vErr *application.ValidationError

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "You do not have permission to perform this operation.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "The requested resource was not found."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "DUPLICATE_RECORD",
			Message:   "A record with the same identity already exists.",
		})
	case errors.As(err, &cErr):
		r.writeJSON(ctx, w, http.StatusConflict, conflictResponse{
			ErrorCode:           "SCHEDULING_CONFLICT",
			Message:             "The requested time overlaps an existing booking.",
			SessionTitle:        cErr.SessionTitle,
			Conflicts:           conflictDTOs(cErr.Conflicts),
			CommittedSessionIDs: cErr.CommittedIDs,
		})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "The submitted data is invalid.",
			Errors:  vErr.FieldErrors,
		})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err, "error_kind", application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "An internal server error occurred."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is malformed."
	case http.StatusUnauthorized:
		return "Authentication is required."
	case http.StatusForbidden:
		return "You do not have permission to perform this operation."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusConflict:
		return "The request conflicts with the current state of the resource."
	case http.StatusUnprocessableEntity:
		return "The submitted data is invalid."
	default:
		return "An internal server error occurred."
	}
}
