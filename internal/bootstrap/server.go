package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avoronov/eventbooking/api"
	"github.com/avoronov/eventbooking/config"
	"github.com/avoronov/eventbooking/internal/repository"
	"github.com/avoronov/eventbooking/internal/service/booking"
	"github.com/avoronov/eventbooking/internal/service/events"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Run starts the HTTP server and blocks until ctx is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, eventSvc events.EventUseCase, bookingSvc booking.BookingUseCase, users repository.UserRepository) error {
	router := gin.New()
	router.Use(gin.Recovery())

	eventsGroup := router.Group("/events")
	api.NewEventHandler(eventSvc).Register(eventsGroup)
	api.NewBookingHandler(bookingSvc, eventSvc, users).Register(eventsGroup)
	api.NewUserBookingsHandler(bookingSvc).Register(router.Group("/users"))

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
