package export

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/sebastiankruger/motorfleet-simulator/internal/factory"
)

const telemetrySchema = `
CREATE TABLE IF NOT EXISTS telemetry (
	time                    INTEGER NOT NULL,
	motor_id                INTEGER NOT NULL,
	temperature             REAL,
	vibration               REAL,
	current                 REAL,
	rpm                     REAL,
	motor_health            REAL    NOT NULL,
	health_state            TEXT    NOT NULL,
	hours_since_maintenance REAL    NOT NULL,
	degradation_stage       TEXT    NOT NULL,
	operating_regime        TEXT    NOT NULL,
	maintenance_event       TEXT,
	PRIMARY KEY (time, motor_id)
);

CREATE TABLE IF NOT EXISTS maintenance_events (
	time        INTEGER NOT NULL,
	motor_id    INTEGER NOT NULL,
	type        TEXT    NOT NULL,
	pre_health  REAL    NOT NULL,
	post_health REAL    NOT NULL
);
`

// SQLiteWriter persists telemetry to a SQLite database. Each Write runs in a
// single transaction so large batches stay fast.
type SQLiteWriter struct {
	db   *sql.DB
	path string
	rows int
}

// NewSQLiteWriter opens (or creates) the database and ensures the schema.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if _, err := db.Exec(telemetrySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating telemetry schema: %w", err)
	}
	return &SQLiteWriter{db: db, path: path}, nil
}

// Path returns the database file path.
func (w *SQLiteWriter) Path() string {
	return w.path
}

// Write inserts a batch of records in one transaction.
func (w *SQLiteWriter) Write(records []factory.Record) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO telemetry
		(time, motor_id, temperature, vibration, current, rpm,
		 motor_health, health_state, hours_since_maintenance,
		 degradation_stage, operating_regime, maintenance_event)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.Time, r.MotorID,
			nullable(r.Temperature), nullable(r.Vibration),
			nullable(r.Current), nullable(r.RPM),
			r.MotorHealth, r.HealthState, r.HoursSinceMaintenance,
			r.DegradationStage, r.OperatingRegime, r.MaintenanceEvent,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	w.rows += len(records)
	return nil
}

// WriteMaintenanceLog inserts the fleet's maintenance event log.
func (w *SQLiteWriter) WriteMaintenanceLog(entries []factory.MaintenanceLogEntry) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	for _, e := range entries {
		_, err := tx.Exec(
			`INSERT INTO maintenance_events (time, motor_id, type, pre_health, post_health)
			 VALUES (?, ?, ?, ?, ?)`,
			e.Time, e.MotorID, e.Type, e.PreHealth, e.PostHealth,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting maintenance event: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	log.Info().Str("path", w.path).Int("rows", w.rows).Msg("SQLite export finished")
	return w.db.Close()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
