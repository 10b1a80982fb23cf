// ABOUTME: Entry point for the pypiserver capacity planning service
// ABOUTME: Serves the planning HTTP API over the instance type catalog

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markalston/pypiserver-capacity/backend/cache"
	"github.com/markalston/pypiserver-capacity/backend/config"
	"github.com/markalston/pypiserver-capacity/backend/handlers"
	"github.com/markalston/pypiserver-capacity/backend/logger"
	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/markalston/pypiserver-capacity/backend/services"
)

func main() {
	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting pypiserver capacity planner")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize cache for provider-resolved instance types
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New[models.InstanceType](cacheTTL)
	defer c.Close()
	slog.Info("Cache initialized", "ttl", cacheTTL)

	var providers []services.InstanceTypeProvider
	if cfg.CatalogEC2Enabled {
		ec2Provider, err := services.NewEC2ProviderFromConfig(ctx, cfg.AWSRegion)
		if err != nil {
			slog.Error("Failed to initialize EC2 catalog", "error", err)
			os.Exit(1)
		}
		providers = append(providers, ec2Provider)
		slog.Info("EC2 catalog enabled", "region", cfg.AWSRegion)
	}

	var vsphereClient *services.VSphereClient
	if cfg.VSphereConfigured() {
		vsphereClient = services.NewVSphereClient(services.VSphereCredentials{
			Host:       cfg.VSphereHost,
			Username:   cfg.VSphereUsername,
			Password:   cfg.VSpherePassword,
			Datacenter: cfg.VSphereDatacenter,
			Insecure:   cfg.VSphereInsecure,
		})
		providers = append(providers, services.NewVSphereProvider(vsphereClient))
		slog.Info("vSphere catalog configured", "host", cfg.VSphereHost, "datacenter", cfg.VSphereDatacenter)
	} else {
		slog.Info("vSphere not configured, static and EC2 catalog only")
	}

	catalog := services.NewCatalog(c, providers...)
	h := handlers.NewHandler(cfg, catalog)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr, "sources", catalog.Sources())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	if vsphereClient != nil {
		if err := vsphereClient.Disconnect(shutdownCtx); err != nil {
			slog.Warn("vSphere logout failed", "error", err)
		}
	}
}
