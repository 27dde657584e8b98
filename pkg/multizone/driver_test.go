package multizone

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodubay/galactic-dtd-paper/pkg/migration"
)

func newTestDriver(t *testing.T, params Params) (*Driver, *migration.Scheme) {
	t.Helper()
	scheme, err := migration.NewScheme(params.ZoneWidth, params.EndTime,
		migration.ModeDiffusion, params.Seed)
	require.NoError(t, err)
	d, err := New(params, scheme)
	require.NoError(t, err)
	return d, scheme
}

func TestNewValidation(t *testing.T) {
	scheme, err := migration.NewScheme(0.1, 1, migration.ModeLinear, 1)
	require.NoError(t, err)

	_, err = New(Params{ZoneWidth: 0.1, MaxRadius: 1, EndTime: 1, Timestep: 0}, scheme)
	assert.Error(t, err)
	_, err = New(Params{ZoneWidth: 0.1, MaxRadius: 0, EndTime: 1, Timestep: 0.1}, scheme)
	assert.Error(t, err)
}

// TestRunFormsOnePopulationPerZonePerStep: with Z zones and N steps
// the run forms exactly Z*N populations (no formation on the final,
// finalizing step).
func TestRunFormsOnePopulationPerZonePerStep(t *testing.T) {
	params := Params{
		ZoneWidth: 0.5,
		MaxRadius: 2.0, // 4 zones
		EndTime:   1.0,
		Timestep:  0.25, // 4 steps
		Seed:      9,
	}
	d, scheme := newTestDriver(t, params)
	require.Equal(t, 4, d.Zones())

	result, err := d.Run()
	require.NoError(t, err)
	assert.Equal(t, 16, result.Summary.Populations)
	assert.Equal(t, 4, result.Summary.Timesteps)
	assert.Len(t, scheme.Populations(), 16)
	assert.Equal(t, "completed", result.Status)
}

// TestRunSummaryStatistics: every final radius is positive, and the
// mean of a diffusion run stays within the disk.
func TestRunSummaryStatistics(t *testing.T) {
	params := Params{
		ZoneWidth: 0.2,
		MaxRadius: 3.0,
		EndTime:   2.0,
		Timestep:  0.1,
		Seed:      21,
	}
	d, scheme := newTestDriver(t, params)
	result, err := d.Run()
	require.NoError(t, err)

	for _, p := range scheme.Populations() {
		require.Greater(t, p.RadiusFinal, 0.0)
	}
	assert.Greater(t, result.Summary.MeanRadiusFinal, 0.0)
	assert.Greater(t, result.Summary.StdRadiusFinal, 0.0)
	assert.GreaterOrEqual(t, result.Summary.OutwardFraction, 0.0)
	assert.LessOrEqual(t, result.Summary.OutwardFraction, 1.0)
	assert.Equal(t, 0.0, result.Summary.LinkedFraction)
}

// TestRunWritesAlignedOutputs: the stars table and the analog record
// file have the same rows in the same (formation) order.
func TestRunWritesAlignedOutputs(t *testing.T) {
	dir := t.TempDir()
	analogFile := filepath.Join(dir, "analogdata.out")
	starsFile := filepath.Join(dir, "stars.out")

	params := Params{
		ZoneWidth: 0.5,
		MaxRadius: 1.5, // 3 zones
		EndTime:   0.6,
		Timestep:  0.2, // 3 steps
		Seed:      4,
		StarsFile: starsFile,
	}
	d, scheme := newTestDriver(t, params)
	require.NoError(t, scheme.EnableOutput(analogFile))
	require.NoError(t, scheme.SetWrite(true))

	_, err := d.Run()
	require.NoError(t, err)

	analogLines := readLines(t, analogFile)
	starsLines := readLines(t, starsFile)
	require.Equal(t, len(analogLines), len(starsLines))
	require.Equal(t, 1+3*3, len(analogLines))
	assert.Equal(t, migration.AnalogHeader, analogLines[0])

	// Row i of both files describes the same population.
	for i := 1; i < len(analogLines); i++ {
		analogFields := strings.Split(analogLines[i], "\t")
		starsFields := strings.Split(starsLines[i], "\t")
		assert.Equal(t, analogFields[0], starsFields[0], "zone_origin mismatch at row %d", i)
		assert.Equal(t, analogFields[1], starsFields[2], "time_origin mismatch at row %d", i)
	}
}

// TestRunDeterminism: equal seeds reproduce the run exactly.
func TestRunDeterminism(t *testing.T) {
	params := Params{
		ZoneWidth: 0.5,
		MaxRadius: 2.0,
		EndTime:   1.0,
		Timestep:  0.25,
		Seed:      123,
	}
	da, sa := newTestDriver(t, params)
	db, sb := newTestDriver(t, params)

	_, err := da.Run()
	require.NoError(t, err)
	_, err = db.Run()
	require.NoError(t, err)

	assert.Equal(t, sa.Populations(), sb.Populations())
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
