package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sebastiankruger/motorfleet-simulator/internal/api"
	"github.com/sebastiankruger/motorfleet-simulator/internal/config"
	"github.com/sebastiankruger/motorfleet-simulator/internal/factory"
	"github.com/sebastiankruger/motorfleet-simulator/internal/health"
	"github.com/sebastiankruger/motorfleet-simulator/internal/opcua"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the simulator as a live service (OPC UA + REST)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	log.Info().Msg("Starting Motor Fleet Simulator")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("name", cfg.SimulatorName).
		Int("motors", cfg.NumMotors).
		Int64("seed", cfg.Seed).
		Int("opcua_port", cfg.OPCUAPort).
		Int("api_port", cfg.APIPort).
		Dur("publish_interval", cfg.PublishInterval).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim, err := factory.New(factory.Options{
		NumMotors:        cfg.NumMotors,
		Seed:             cfg.Seed,
		DegradationSpeed: cfg.DegradationSpeed,
		NoiseLevel:       cfg.NoiseLevel,
		LoadLevel:        cfg.LoadLevel,
		AlertThreshold:   cfg.AlertThreshold,
		MaxHistory:       cfg.MaxHistory,
		Workers:          cfg.Workers,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create fleet")
	}
	defer sim.Stop()

	runtimeCfg := config.NewRuntimeConfig(cfg)
	healthHandler := health.NewHandler()

	opcuaServer, err := opcua.NewServer(cfg.OPCUAPort, cfg.SimulatorName, cfg.NumMotors)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create OPC UA server")
	}

	if err := opcuaServer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start OPC UA server")
	}
	healthHandler.SetOPCUAReady(true)

	// HTTP server: health probes and the control API on one mux.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/health/live", healthHandler.HandleLive)
	mux.HandleFunc("/health/ready", healthHandler.HandleReady)

	apiHandler := api.NewHandler(cfg.SimulatorName, sim, runtimeCfg)
	apiHandler.Register(mux)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.APIPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.APIPort).Msg("Starting HTTP server (health + API)")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Main simulation loop: one simulated timestep per publish interval.
	ticker := time.NewTicker(cfg.PublishInterval)
	defer ticker.Stop()

	healthHandler.SetSimulationRunning(true)
	log.Info().
		Dur("interval", cfg.PublishInterval).
		Msg("Starting simulation loop")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutdown signal received")
			goto shutdown

		case <-ticker.C:
			records := sim.Advance(1)
			opcuaServer.UpdateFromRecords(records)
			healthHandler.ReportTimestep(sim.Clock())

			if sim.Clock()%12 == 0 {
				alerts := 0
				for _, s := range sim.Status() {
					if s.Alert {
						alerts++
					}
				}
				log.Debug().
					Int64("timestep", sim.Clock()).
					Int("alerts", alerts).
					Msg("Simulation tick")
			}
		}
	}

shutdown:
	log.Info().Msg("Shutting down...")
	healthHandler.SetSimulationRunning(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if err := opcuaServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("OPC UA server shutdown error")
	}

	log.Info().Msg("Simulator stopped")
	return nil
}
