package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (application.Booking, error)
	GetBooking(ctx context.Context, scope application.Scope, bookingID string) (application.Booking, error)
	DeleteBooking(ctx context.Context, scope application.Scope, bookingID string) error
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, []application.ConflictWarning, error)
	EditBooking(ctx context.Context, params application.EditBookingParams) (application.EditResult, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger)}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	scope, _ := ScopeFromContext(r.Context())

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Scope: scope,
		Input: req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	scope, _ := ScopeFromContext(r.Context())

	booking, err := h.service.UpdateBooking(r.Context(), application.UpdateBookingParams{
		Scope:     scope,
		BookingID: bookingID,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	booking, err := h.service.GetBooking(r.Context(), scope, bookingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	if err := h.service.DeleteBooking(r.Context(), scope, bookingID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	params := buildListBookingsParams(r.URL.Query(), scope)

	bookings, warnings, err := h.service.ListBookings(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{
		Bookings: toBookingDTOs(bookings),
		Warnings: toWarningDTOs(warnings),
	})
}

// Edit applies a scheduling board gesture. A collision is a normal outcome
// here, not an error: the response reports the untouched booking with the
// conflict attached and still returns 200.
func (h *BookingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	scope, _ := ScopeFromContext(r.Context())

	result, err := h.service.EditBooking(r.Context(), application.EditBookingParams{
		Scope:         scope,
		BookingID:     bookingID,
		Action:        application.EditAction(strings.TrimSpace(req.Action)),
		Delta:         time.Duration(req.DeltaMinutes) * time.Minute,
		NewTime:       parseTime(req.NewTime),
		NewResourceID: strings.TrimSpace(req.NewResourceID),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := editResponse{
		Applied: result.Applied,
		Booking: toBookingDTO(result.Booking),
	}
	if result.Conflict != nil {
		response.Conflict = &conflictDetail{Kind: result.Conflict.Kind, WithID: result.Conflict.WithID}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

type bookingRequest struct {
	ResourceID string  `json:"resource_id"`
	ClientID   string  `json:"client_id"`
	DriverID   *string `json:"driver_id"`
	Title      string  `json:"title"`
	Notes      *string `json:"notes"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		ResourceID: strings.TrimSpace(r.ResourceID),
		ClientID:   strings.TrimSpace(r.ClientID),
		DriverID:   r.DriverID,
		Title:      strings.TrimSpace(r.Title),
		Notes:      r.Notes,
		Start:      parseTime(r.Start),
		End:        parseTime(r.End),
	}
}

type editRequest struct {
	Action        string `json:"action"`
	DeltaMinutes  int    `json:"delta_minutes"`
	NewTime       string `json:"new_time"`
	NewResourceID string `json:"new_resource_id"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO         `json:"bookings"`
	Warnings []conflictWarningDTO `json:"warnings,omitempty"`
}

type editResponse struct {
	Applied  bool            `json:"applied"`
	Booking  bookingDTO      `json:"booking"`
	Conflict *conflictDetail `json:"conflict,omitempty"`
}

type bookingDTO struct {
	ID         string  `json:"id"`
	ResourceID string  `json:"resource_id"`
	ClientID   string  `json:"client_id"`
	DriverID   *string `json:"driver_id,omitempty"`
	Title      string  `json:"title"`
	Notes      *string `json:"notes,omitempty"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
		ID:         booking.ID,
		ResourceID: booking.ResourceID,
		ClientID:   booking.ClientID,
		DriverID:   booking.DriverID,
		Title:      booking.Title,
		Notes:      booking.Notes,
		Start:      booking.Start.UTC().Format(time.RFC3339Nano),
		End:        booking.End.UTC().Format(time.RFC3339Nano),
		CreatedAt:  booking.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  booking.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toBookingDTO(booking))
	}
	return out
}

type conflictWarningDTO struct {
	BookingID     string `json:"booking_id"`
	WithBookingID string `json:"with_booking_id"`
	ResourceID    string `json:"resource_id"`
}

func toWarningDTOs(warnings []application.ConflictWarning) []conflictWarningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]conflictWarningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, conflictWarningDTO{
			BookingID:     warning.BookingID,
			WithBookingID: warning.WithBookingID,
			ResourceID:    warning.ResourceID,
		})
	}
	return out
}

func buildListBookingsParams(values url.Values, scope application.Scope) application.ListBookingsParams {
	params := application.ListBookingsParams{Scope: scope}

	if resourceID := strings.TrimSpace(values.Get("resource_id")); resourceID != "" {
		params.ResourceID = resourceID
	}
	if from := parseTime(values.Get("from")); !from.IsZero() {
		params.From = &from
	}
	if to := parseTime(values.Get("to")); !to.IsZero() {
		params.To = &to
	}
	return params
}
