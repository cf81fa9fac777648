package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evote/internal/config"
	"evote/internal/container"
	"evote/internal/middleware"
	"evote/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize application")
		os.Exit(1)
	}

	// The gate record must exist before any submission is evaluated.
	if err := c.ElectionService.EnsureSettings(ctx); err != nil {
		log.WithError(err).Error("Failed to initialize election settings")
		c.Close(context.Background())
		os.Exit(1)
	}

	if err := c.Hub.Start(ctx); err != nil {
		log.WithError(err).Error("Failed to start notifier hub")
		c.Close(context.Background())
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      setupRouter(c),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	c.Close(shutdownCtx)

	log.Info("Shutdown complete")
}

func setupRouter(c *container.Container) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID(c.Logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(c.Config.AllowedOrigins)))

	authRequired := middleware.Auth(c.AuthService, c.Logger)
	adminRequired := middleware.Admin(lookupAdmissionNumber(c), c.Config.IsAdmin, c.Logger)
	resultsGate := middleware.ResultsGate(c.ElectionService, c.Logger)

	r.Get("/health", c.HealthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", c.AuthHandler.Register)
			r.Post("/registerBulk", c.AuthHandler.RegisterBulk)
			r.Post("/login", c.AuthHandler.Login)
			r.Post("/forgot-password", c.AuthHandler.ForgotPassword)
			r.Post("/reset-password", c.AuthHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authRequired)
				r.Get("/me", c.AuthHandler.Me)
			})
		})

		r.Route("/votes", func(r chi.Router) {
			r.Get("/candidates", c.VotingHandler.GetCandidates)
			r.Get("/events", c.EventsHandler.Stream)

			r.Group(func(r chi.Router) {
				r.Use(resultsGate)
				r.Get("/voteResults", c.VotingHandler.GetVoteResults)
			})

			r.Group(func(r chi.Router) {
				r.Use(authRequired)
				r.Post("/submitVote", c.VotingHandler.SubmitVote)

				r.Group(func(r chi.Router) {
					r.Use(adminRequired)
					r.Post("/admin/closeVoting", c.VotingHandler.CloseVoting)
				})
			})
		})
	})

	return r
}

func lookupAdmissionNumber(c *container.Container) middleware.AdmissionNumberLookup {
	return func(ctx context.Context, voterID string) (string, error) {
		voter, err := c.VoterRepo.GetByID(ctx, voterID)
		if err != nil {
			return "", err
		}
		if voter == nil {
			return "", errors.New("voter not found")
		}
		return voter.AdmissionNumber, nil
	}
}
