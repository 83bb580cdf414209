package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
)

type suggestionService interface {
	FreeSlots(ctx context.Context, params application.FreeSlotsParams) ([]application.FreeSlot, error)
	AlternativeResource(ctx context.Context, params application.AlternativeResourceParams) (application.Resource, bool, error)
}

type SuggestionHandler struct {
	service   suggestionService
	responder responder
}

func NewSuggestionHandler(service suggestionService, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{service: service, responder: newResponder(logger)}
}

// FreeSlots lists the open 1-hour working-hours slots for a resource on the
// requested day.
func (h *SuggestionHandler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	query := r.URL.Query()

	day, err := time.Parse("2006-01-02", strings.TrimSpace(query.Get("day")))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("day must be a yyyy-mm-dd date"))
		return
	}

	slots, err := h.service.FreeSlots(r.Context(), application.FreeSlotsParams{
		Scope:      scope,
		ResourceID: strings.TrimSpace(query.Get("resource_id")),
		Day:        day,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]freeSlotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, freeSlotDTO{
			Start: slot.Start.UTC().Format(time.RFC3339Nano),
			End:   slot.End.UTC().Format(time.RFC3339Nano),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, freeSlotsResponse{Slots: out})
}

// AlternativeResource proposes a substitute resource free over the requested
// interval, or reports that none exists.
func (h *SuggestionHandler) AlternativeResource(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	query := r.URL.Query()

	alternative, found, err := h.service.AlternativeResource(r.Context(), application.AlternativeResourceParams{
		Scope:      scope,
		ResourceID: strings.TrimSpace(query.Get("resource_id")),
		Start:      parseTime(query.Get("start")),
		End:        parseTime(query.Get("end")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := alternativeResponse{Found: found}
	if found {
		dto := toResourceDTO(alternative)
		response.Resource = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

type freeSlotsResponse struct {
	Slots []freeSlotDTO `json:"slots"`
}

type freeSlotDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type alternativeResponse struct {
	Found    bool         `json:"found"`
	Resource *resourceDTO `json:"resource,omitempty"`
}
