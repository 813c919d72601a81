package export

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/motorfleet-simulator/internal/factory"
)

func sampleRecords() []factory.Record {
	temp := 62.5
	vib := 1.82
	return []factory.Record{
		{
			Time: 0, MotorID: 0,
			Temperature: &temp, Vibration: &vib,
			MotorHealth: 0.94, HealthState: "Healthy",
			HoursSinceMaintenance: 0.0833,
			DegradationStage:      "STAGE_0", OperatingRegime: "normal",
		},
		{
			// Dropped current and rpm samples.
			Time: 0, MotorID: 1,
			MotorHealth: 0.35, HealthState: "Critical",
			HoursSinceMaintenance: 1820.5,
			DegradationStage:      "STAGE_2", OperatingRegime: "peak",
			MaintenanceEvent: "bearing_replacement",
		},
	}
}

func TestCSVWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, "telemetry")
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleRecords()))
	require.NoError(t, w.Close())

	f, err := os.Open(w.Path())
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, factory.RecordColumns, rows[0])

	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, "62.5000", rows[1][2])
	assert.Equal(t, "STAGE_0", rows[1][9])

	// Missing sensor samples stay empty rather than zero-filled.
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "bearing_replacement", rows[2][11])
}

func TestCSVFilenamesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	a, err := NewCSVWriter(dir, "telemetry")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewCSVWriter(dir, "telemetry")
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Path(), b.Path())
}
