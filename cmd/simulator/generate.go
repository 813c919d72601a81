package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sebastiankruger/motorfleet-simulator/internal/config"
	"github.com/sebastiankruger/motorfleet-simulator/internal/export"
	"github.com/sebastiankruger/motorfleet-simulator/internal/factory"
)

const (
	// generateBatchTicks is how many ticks are advanced between sink writes.
	generateBatchTicks = 500

	// maxGenerateTicks caps cycle-targeted runs. A slow-degrading fleet can
	// take a long time to complete cycles; the cap keeps batch jobs bounded.
	maxGenerateTicks = 2_000_000
)

func newGenerateCmd() *cobra.Command {
	var (
		ticks      int
		cycles     int
		outDir     string
		sqlitePath string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a telemetry dataset in batch mode",
		Long: `Runs the fleet without the live endpoints and exports the record
stream. Either a fixed number of ticks (--ticks) or until every motor has
completed a number of maintenance cycles (--cycles).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ticks <= 0 && cycles <= 0 {
				return fmt.Errorf("one of --ticks or --cycles must be positive")
			}
			return runGenerate(ticks, cycles, outDir, sqlitePath)
		},
	}

	cmd.Flags().IntVar(&ticks, "ticks", 0, "fixed number of ticks to simulate")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "run until every motor completed this many maintenance cycles")
	cmd.Flags().StringVar(&outDir, "out", "./data", "output directory for CSV export")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "also write to this SQLite database")

	return cmd
}

func runGenerate(ticks, cycles int, outDir, sqlitePath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	sim, err := factory.New(factory.Options{
		NumMotors:        cfg.NumMotors,
		Seed:             cfg.Seed,
		DegradationSpeed: cfg.DegradationSpeed,
		NoiseLevel:       cfg.NoiseLevel,
		LoadLevel:        cfg.LoadLevel,
		AlertThreshold:   cfg.AlertThreshold,
		MaxHistory:       1, // sinks consume the stream, no history needed
		Workers:          cfg.Workers,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create fleet")
	}
	defer sim.Stop()

	csvWriter, err := export.NewCSVWriter(outDir, "telemetry")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create CSV writer")
	}
	defer csvWriter.Close()

	var sqliteWriter *export.SQLiteWriter
	if sqlitePath != "" {
		sqliteWriter, err = export.NewSQLiteWriter(sqlitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create SQLite writer")
		}
		defer sqliteWriter.Close()
	}

	log.Info().
		Int("motors", cfg.NumMotors).
		Int64("seed", cfg.Seed).
		Int("ticks", ticks).
		Int("cycles", cycles).
		Str("csv", csvWriter.Path()).
		Msg("Starting batch generation")

	write := func(records []factory.Record) error {
		if err := csvWriter.Write(records); err != nil {
			return err
		}
		if sqliteWriter != nil {
			return sqliteWriter.Write(records)
		}
		return nil
	}

	if ticks > 0 {
		for done := 0; done < ticks; {
			batch := generateBatchTicks
			if remaining := ticks - done; remaining < batch {
				batch = remaining
			}
			if err := write(sim.Advance(batch)); err != nil {
				return err
			}
			done += batch
		}
	} else {
		if err := generateUntilCycles(sim, cycles, write); err != nil {
			return err
		}
	}

	if sqliteWriter != nil {
		if err := sqliteWriter.WriteMaintenanceLog(sim.MaintenanceLog()); err != nil {
			return err
		}
	}

	log.Info().
		Int64("timesteps", sim.Clock()).
		Int("maintenance_events", len(sim.MaintenanceLog())).
		Msg("Batch generation finished")
	return nil
}

// generateUntilCycles advances until every motor has logged at least the
// target number of maintenance events, bounded by maxGenerateTicks.
func generateUntilCycles(sim *factory.Simulator, target int, write func([]factory.Record) error) error {
	for int(sim.Clock()) < maxGenerateTicks {
		if err := write(sim.Advance(generateBatchTicks)); err != nil {
			return err
		}

		counts := make(map[int]int)
		for _, e := range sim.MaintenanceLog() {
			counts[e.MotorID]++
		}
		complete := true
		for id := 0; id < sim.NumMotors(); id++ {
			if counts[id] < target {
				complete = false
				break
			}
		}
		if complete {
			return nil
		}
	}

	log.Warn().
		Int("cap", maxGenerateTicks).
		Int("target_cycles", target).
		Msg("Tick cap reached before all motors completed the cycle target")
	return nil
}
