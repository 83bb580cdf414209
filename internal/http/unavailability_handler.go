package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
)

type unavailabilityService interface {
	CreateSpan(ctx context.Context, params application.CreateSpanParams) (application.UnavailabilitySpan, error)
	DeleteSpan(ctx context.Context, scope application.Scope, spanID string) error
	CreateRule(ctx context.Context, params application.CreateRuleParams) (application.RecurringRule, error)
	ListRules(ctx context.Context, scope application.Scope, resourceID string) ([]application.RecurringRule, error)
	DeleteRule(ctx context.Context, scope application.Scope, ruleID string) error
	ListWindows(ctx context.Context, params application.ListWindowsParams) ([]application.UnavailabilityWindow, error)
}

type UnavailabilityHandler struct {
	service   unavailabilityService
	responder responder
}

func NewUnavailabilityHandler(service unavailabilityService, logger *slog.Logger) *UnavailabilityHandler {
	return &UnavailabilityHandler{service: service, responder: newResponder(logger)}
}

func (h *UnavailabilityHandler) CreateSpan(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req spanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	span, err := h.service.CreateSpan(r.Context(), application.CreateSpanParams{
		Scope: scope,
		Input: application.UnavailabilityInput{
			ResourceID: strings.TrimSpace(req.ResourceID),
			Start:      parseTime(req.Start),
			End:        parseTime(req.End),
			Reason:     strings.TrimSpace(req.Reason),
		},
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, spanResponse{Span: toSpanDTO(span)})
}

func (h *UnavailabilityHandler) DeleteSpan(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	spanID, ok := EntryIDFromContext(r.Context())
	if !ok || strings.TrimSpace(spanID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEntryID)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	if err := h.service.DeleteSpan(r.Context(), scope, spanID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *UnavailabilityHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	rule, err := h.service.CreateRule(r.Context(), application.CreateRuleParams{
		Scope: scope,
		Input: application.RecurringRuleInput{
			ResourceID:  strings.TrimSpace(req.ResourceID),
			Weekday:     time.Weekday(req.Weekday),
			StartMinute: req.StartMinute,
			EndMinute:   req.EndMinute,
			Reason:      strings.TrimSpace(req.Reason),
		},
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, ruleResponse{Rule: toRuleDTO(rule)})
}

func (h *UnavailabilityHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	rules, err := h.service.ListRules(r.Context(), scope, strings.TrimSpace(r.URL.Query().Get("resource_id")))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]ruleDTO, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleDTO(rule))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRulesResponse{Rules: out})
}

func (h *UnavailabilityHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ruleID, ok := EntryIDFromContext(r.Context())
	if !ok || strings.TrimSpace(ruleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEntryID)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	if err := h.service.DeleteRule(r.Context(), scope, ruleID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListWindows returns the merged blocked-time view: stored spans plus
// recurring occurrences materialised over the requested window.
func (h *UnavailabilityHandler) ListWindows(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	query := r.URL.Query()

	from := parseTime(query.Get("from"))
	to := parseTime(query.Get("to"))
	if from.IsZero() || to.IsZero() {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("from and to are required RFC 3339 timestamps"))
		return
	}

	windows, err := h.service.ListWindows(r.Context(), application.ListWindowsParams{
		Scope:      scope,
		ResourceID: strings.TrimSpace(query.Get("resource_id")),
		From:       from,
		To:         to,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]windowDTO, 0, len(windows))
	for _, window := range windows {
		out = append(out, windowDTO{
			ID:         window.ID,
			ResourceID: window.ResourceID,
			Start:      window.Start.UTC().Format(time.RFC3339Nano),
			End:        window.End.UTC().Format(time.RFC3339Nano),
			Reason:     window.Reason,
			Recurring:  window.Recurring,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listWindowsResponse{Windows: out})
}

type spanRequest struct {
	ResourceID string `json:"resource_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Reason     string `json:"reason"`
}

type spanResponse struct {
	Span spanDTO `json:"span"`
}

type spanDTO struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Reason     string `json:"reason,omitempty"`
}

func toSpanDTO(span application.UnavailabilitySpan) spanDTO {
	return spanDTO{
		ID:         span.ID,
		ResourceID: span.ResourceID,
		Start:      span.Start.UTC().Format(time.RFC3339Nano),
		End:        span.End.UTC().Format(time.RFC3339Nano),
		Reason:     span.Reason,
	}
}

type ruleRequest struct {
	ResourceID  string `json:"resource_id"`
	Weekday     int    `json:"weekday"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Reason      string `json:"reason"`
}

type ruleResponse struct {
	Rule ruleDTO `json:"rule"`
}

type listRulesResponse struct {
	Rules []ruleDTO `json:"rules"`
}

type ruleDTO struct {
	ID          string `json:"id"`
	ResourceID  string `json:"resource_id"`
	Weekday     int    `json:"weekday"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Reason      string `json:"reason,omitempty"`
}

func toRuleDTO(rule application.RecurringRule) ruleDTO {
	return ruleDTO{
		ID:          rule.ID,
		ResourceID:  rule.ResourceID,
		Weekday:     int(rule.Weekday),
		StartMinute: rule.StartMinute,
		EndMinute:   rule.EndMinute,
		Reason:      rule.Reason,
	}
}

type listWindowsResponse struct {
	Windows []windowDTO `json:"windows"`
}

type windowDTO struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Reason     string `json:"reason,omitempty"`
	Recurring  bool   `json:"recurring"`
}
