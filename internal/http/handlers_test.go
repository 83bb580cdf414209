package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
)

type bookingServiceStub struct {
	booking    application.Booking
	bookings   []application.Booking
	warnings   []application.ConflictWarning
	editResult application.EditResult
	err        error

	createParams application.CreateBookingParams
	editParams   application.EditBookingParams
}

func (s *bookingServiceStub) CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error) {
	s.createParams = params
	if s.err != nil {
		return application.Booking{}, s.err
	}
	return s.booking, nil
}

func (s *bookingServiceStub) UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (application.Booking, error) {
	if s.err != nil {
		return application.Booking{}, s.err
	}
	return s.booking, nil
}

func (s *bookingServiceStub) GetBooking(ctx context.Context, scope application.Scope, bookingID string) (application.Booking, error) {
	if s.err != nil {
		return application.Booking{}, s.err
	}
	return s.booking, nil
}

func (s *bookingServiceStub) DeleteBooking(ctx context.Context, scope application.Scope, bookingID string) error {
	return s.err
}

func (s *bookingServiceStub) ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, []application.ConflictWarning, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.bookings, s.warnings, nil
}

func (s *bookingServiceStub) EditBooking(ctx context.Context, params application.EditBookingParams) (application.EditResult, error) {
	s.editParams = params
	if s.err != nil {
		return application.EditResult{}, s.err
	}
	return s.editResult, nil
}

func newTestRouter(bookings *bookingServiceStub) http.Handler {
	return NewRouter(RouterConfig{
		Bookings:   NewBookingHandler(bookings, nil),
		Middleware: []func(http.Handler) http.Handler{AgencyScope("agency-default")},
	})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestBookingHandler_Create(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	t.Run("returns 201 with the created booking", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{booking: application.Booking{
			ID: "b1", AgencyID: "agency-1", ResourceID: "R1", ClientID: "c1",
			Title: "Site works", Start: start, End: start.Add(2 * time.Hour),
		}}
		router := newTestRouter(stub)

		body := `{"resource_id":"R1","client_id":"c1","title":"Site works","start":"2025-03-10T09:00:00Z","end":"2025-03-10T11:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		req.Header.Set("X-Agency-ID", "agency-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
		if stub.createParams.Scope.AgencyID != "agency-1" {
			t.Fatalf("scope = %+v", stub.createParams.Scope)
		}
		if !stub.createParams.Input.Start.Equal(start) {
			t.Fatalf("parsed start = %v", stub.createParams.Input.Start)
		}

		var resp bookingResponse
		decodeBody(t, rec, &resp)
		if resp.Booking.ID != "b1" {
			t.Fatalf("response = %+v", resp)
		}
	})

	t.Run("falls back to the default agency scope", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{}
		router := newTestRouter(stub)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if stub.createParams.Scope.AgencyID != "agency-default" {
			t.Fatalf("scope = %+v", stub.createParams.Scope)
		}
	})

	t.Run("maps conflicts to 409 with the colliding entry", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{err: &application.ConflictError{Kind: "recurring-unavailability", WithID: "ru:rule-1:2025-03-10"}}
		router := newTestRouter(stub)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.Conflict == nil || resp.Conflict.Kind != "recurring-unavailability" || resp.Conflict.WithID != "ru:rule-1:2025-03-10" {
			t.Fatalf("conflict = %+v", resp.Conflict)
		}
	})

	t.Run("maps validation failures to 400 with field errors", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string]string{"title": "title is required"}}
		stub := &bookingServiceStub{err: vErr}
		router := newTestRouter(stub)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.Errors["title"] != "title is required" {
			t.Fatalf("errors = %+v", resp.Errors)
		}
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&bookingServiceStub{})
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestBookingHandler_GetAndDelete(t *testing.T) {
	t.Parallel()

	t.Run("missing booking maps to 404", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{err: application.ErrNotFound}
		router := newTestRouter(stub)

		req := httptest.NewRequest(http.MethodGet, "/bookings/missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("delete returns 204", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&bookingServiceStub{})
		req := httptest.NewRequest(http.MethodDelete, "/bookings/b1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("unsupported method is 405", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&bookingServiceStub{})
		req := httptest.NewRequest(http.MethodPatch, "/bookings/b1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestBookingHandler_List(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	stub := &bookingServiceStub{
		bookings: []application.Booking{
			{ID: "b1", ResourceID: "R1", Start: start, End: start.Add(2 * time.Hour)},
			{ID: "b2", ResourceID: "R1", Start: start.Add(time.Hour), End: start.Add(3 * time.Hour)},
		},
		warnings: []application.ConflictWarning{{BookingID: "b1", WithBookingID: "b2", ResourceID: "R1"}},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/bookings?resource_id=R1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp listBookingsResponse
	decodeBody(t, rec, &resp)
	if len(resp.Bookings) != 2 || len(resp.Warnings) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Warnings[0].WithBookingID != "b2" {
		t.Fatalf("warning = %+v", resp.Warnings[0])
	}
}

func TestBookingHandler_Edit(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	t.Run("routes the edit action with its parameters", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{editResult: application.EditResult{
			Applied: true,
			Booking: application.Booking{ID: "b1", ResourceID: "R1", Start: start, End: start.Add(time.Hour)},
		}}
		router := newTestRouter(stub)

		body := `{"action":"move","delta_minutes":37}`
		req := httptest.NewRequest(http.MethodPost, "/bookings/b1/edit", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
		if stub.editParams.BookingID != "b1" || stub.editParams.Action != application.EditActionMove {
			t.Fatalf("params = %+v", stub.editParams)
		}
		if stub.editParams.Delta != 37*time.Minute {
			t.Fatalf("delta = %v", stub.editParams.Delta)
		}
	})

	t.Run("a rejected gesture is still a 200 with the conflict attached", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{editResult: application.EditResult{
			Applied:  false,
			Booking:  application.Booking{ID: "b1", ResourceID: "R1", Start: start, End: start.Add(time.Hour)},
			Conflict: &application.ConflictError{Kind: "booking", WithID: "b2"},
		}}
		router := newTestRouter(stub)

		body := `{"action":"resize-end","new_time":"2025-03-10T10:30:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings/b1/edit", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp editResponse
		decodeBody(t, rec, &resp)
		if resp.Applied {
			t.Fatalf("response = %+v", resp)
		}
		if resp.Conflict == nil || resp.Conflict.WithID != "b2" {
			t.Fatalf("conflict = %+v", resp.Conflict)
		}
	})
}
