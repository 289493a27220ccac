package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raushankrgupta/media-muse/api"
	"github.com/raushankrgupta/media-muse/config"
	"github.com/raushankrgupta/media-muse/suggest"
	"github.com/raushankrgupta/media-muse/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.LoadConfig()
	utils.InitLogger(config.LogLevel, config.LogFormat)
	log := utils.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gemini, err := utils.NewGeminiClient(ctx, config.GeminiAPIKey, config.GeminiModel, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize Gemini")
		return 1
	}
	defer gemini.Close()

	catalog := utils.NewSpotifyCatalog(utils.SpotifyOptions{
		ClientID:     config.SpotifyClientID,
		ClientSecret: config.SpotifyClientSecret,
	}, log)

	router := api.NewRouter(api.Dependencies{
		Resolver:      suggest.NewResolver(gemini, catalog, log),
		Captioner:     gemini,
		Geocoder:      utils.NewGeocoder(),
		AllowedOrigin: config.AllowedOrigin,
		RateLimiter:   api.NewClientRateLimiter(config.RateLimitRPS, config.RateLimitBurst),
		TrustProxy:    config.TrustProxy,
	})

	server := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.WithField("model", config.GeminiModel).Infof("Server starting on port %s...", config.Port)
	if err := serve(ctx, server, log); err != nil {
		log.WithError(err).Error("Server failed")
		return 1
	}
	log.Info("Server stopped")
	return 0
}

// serve runs server until ctx is cancelled, then shuts it down gracefully.
// A listener failure is returned to the caller instead of exiting the process.
func serve(ctx context.Context, server *http.Server, log logrus.FieldLogger) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
