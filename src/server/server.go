package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/auth"
	"papertrader/src/engine"
	"papertrader/src/handler"
	"papertrader/src/repository"
)

// NewRouter builds the API router around the engine. All trading routes sit
// behind the bearer token middleware; the healthcheck stays public.
func NewRouter(e *engine.Engine) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken(auth.GetConfig().APITokenHash))

		r.Get("/portfolio", handler.PortfolioHandler(e))
		r.Get("/positions", handler.PositionsHandler(e))
		r.Get("/trades", handler.TradesHandler(e))
		r.Post("/orders", handler.CreateOrderHandler(e))
		r.Delete("/orders/{id}", handler.CancelOrderHandler(e))
		r.Post("/decisions", handler.CreateDecisionHandler(repository.NewDecisionRepository()))
	})

	return r
}

func StartServer(port string, e *engine.Engine) {
	// Graceful server
	// Server setup
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(e),
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
