package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/config"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/editor"
	httptransport "github.com/jmgilet-svg/LOCATION-sub000/internal/http"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/logging"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/persistence/sqlite"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/recurrence"
)

func main() {
	configPath := flag.String("config", os.Getenv("PLANNER_CONFIG"), "path to the YAML configuration file")
	flag.Parse()

	logger := logging.NewLogger("info")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.NewLogger(cfg.LogLevel)

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	idGenerator := uuid.NewString
	now := time.Now
	expander := recurrence.NewEngine(cfg.Location())
	grid := editor.Grid{SlotMinutes: cfg.SlotMinutes}

	bookingRepo := newBookingRepositoryAdapter(sqlite.NewBookingRepository(pool))
	unavailabilityRepo := newUnavailabilityRepositoryAdapter(sqlite.NewUnavailabilityRepository(pool))
	resourceRepo := newResourceRepositoryAdapter(sqlite.NewResourceRepository(pool))

	bookingService := application.NewBookingService(bookingRepo, unavailabilityRepo, resourceRepo, expander, grid, idGenerator, now)
	unavailabilityService := application.NewUnavailabilityService(unavailabilityRepo, bookingRepo, resourceRepo, expander, idGenerator, now)
	resourceService := application.NewResourceService(resourceRepo, idGenerator, now)
	suggestionService := application.NewSuggestionService(bookingRepo, unavailabilityRepo, resourceRepo, expander, cfg.WorkDayStartHour, cfg.WorkDayEndHour)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings:       httptransport.NewBookingHandler(bookingService, logger),
		Unavailability: httptransport.NewUnavailabilityHandler(unavailabilityService, logger),
		Resources:      httptransport.NewResourceHandler(resourceService, logger),
		Suggestions:    httptransport.NewSuggestionHandler(suggestionService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.AgencyScope(cfg.DefaultAgencyID),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("planner API listening", "addr", server.Addr, "agency", cfg.DefaultAgencyID)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
