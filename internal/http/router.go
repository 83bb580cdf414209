package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Bookings       *BookingHandler
	Unavailability *UnavailabilityHandler
	Resources      *ResourceHandler
	Suggestions    *SuggestionHandler
	Middleware     []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Bookings != nil {
		mux.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Bookings.List(w, r)
			case http.MethodPost:
				cfg.Bookings.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/bookings/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/bookings/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}
			if id, ok := strings.CutSuffix(rest, "/edit"); ok {
				if id == "" {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Bookings.Edit(w, r.WithContext(ContextWithBookingID(r.Context(), id)))
				return
			}
			r = r.WithContext(ContextWithBookingID(r.Context(), rest))
			switch r.Method {
			case http.MethodGet:
				cfg.Bookings.Get(w, r)
			case http.MethodPut:
				cfg.Bookings.Update(w, r)
			case http.MethodDelete:
				cfg.Bookings.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Unavailability != nil {
		mux.HandleFunc("/unavailability/windows", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Unavailability.ListWindows(w, r)
		})
		mux.HandleFunc("/unavailability/spans", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Unavailability.CreateSpan(w, r)
		})
		mux.HandleFunc("/unavailability/spans/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/unavailability/spans/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Unavailability.DeleteSpan(w, r.WithContext(ContextWithEntryID(r.Context(), id)))
		})
		mux.HandleFunc("/unavailability/rules", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Unavailability.ListRules(w, r)
			case http.MethodPost:
				cfg.Unavailability.CreateRule(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/unavailability/rules/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/unavailability/rules/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Unavailability.DeleteRule(w, r.WithContext(ContextWithEntryID(r.Context(), id)))
		})
	}

	if cfg.Resources != nil {
		mux.HandleFunc("/resources", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Resources.List(w, r)
			case http.MethodPost:
				cfg.Resources.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/resources/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/resources/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Resources.Get(w, r)
			case http.MethodPut:
				cfg.Resources.Update(w, r)
			case http.MethodDelete:
				cfg.Resources.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Suggestions != nil {
		mux.HandleFunc("/suggestions/free-slots", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Suggestions.FreeSlots(w, r)
		})
		mux.HandleFunc("/suggestions/alternative", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Suggestions.AlternativeResource(w, r)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
