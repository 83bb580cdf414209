package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
)

var (
	errBadRequestBody    = errors.New("request body is not valid JSON")
	errInvalidBookingID  = errors.New("invalid booking id")
	errInvalidResourceID = errors.New("invalid resource id")
	errInvalidEntryID    = errors.New("invalid id")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
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
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps the application error taxonomy onto the HTTP
// contract: validation failures are 400, missing records 404, timeline
// conflicts 409 with the colliding entry attached.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var conflict *application.ConflictError
	if errors.As(err, &conflict) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TIMELINE_CONFLICT",
			Message:   "the requested interval overlaps an existing timeline entry",
			Conflict: &conflictDetail{
				Kind:   conflict.Kind,
				WithID: conflict.WithID,
			},
		})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			Message: "invalid request",
			Errors:  vErr.FieldErrors,
		})
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested record was not found"})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "a record with this id already exists"})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflict  *conflictDetail   `json:"conflict,omitempty"`
}

type conflictDetail struct {
	Kind   string `json:"kind"`
	WithID string `json:"with_id"`
}
