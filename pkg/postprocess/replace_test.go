package postprocess

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStarsHeader = "zone_origin\tzone_final\ttime_origin\tage\tgalr_origin\tgalr_final\tanalog_id\tzfinal"

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestReplace(t *testing.T) {
	dir := t.TempDir()
	analogPath := writeFile(t, dir, "analogdata.out",
		"zone_origin\ttime_origin\tanalog_id\tzfinal\n"+
			"4\t0.00\t1234\t0.00\n"+
			"17\t6.60\t-1\t0.00\n")
	starsPath := writeFile(t, dir, "stars.out",
		testStarsHeader+"\n"+
			"4\t24\t0.00\t13.20\t0.450\t2.450\t1234\t0.00\n"+
			"17\t12\t6.60\t6.60\t1.750\t1.210\t-1\t0.00\n")

	require.NoError(t, Replace(analogPath, starsPath, 42))

	lines := readLines(t, analogPath)
	require.Len(t, lines, 3)
	assert.Equal(t, "zone_origin\ttime_origin\tanalog_id\tzfinal", lines[0])

	// Identity columns survive the rewrite; zfinal is replaced.
	first := strings.Split(lines[1], "\t")
	require.Len(t, first, 4)
	assert.Equal(t, []string{"4", "0.00", "1234"}, first[:3])
	second := strings.Split(lines[2], "\t")
	assert.Equal(t, []string{"17", "6.60", "-1"}, second[:3])
}

// TestReplaceDeterminism: the pass is reproducible for a fixed seed.
func TestReplaceDeterminism(t *testing.T) {
	build := func(dir string) (string, string) {
		analogPath := writeFile(t, dir, "analogdata.out",
			"zone_origin\ttime_origin\tanalog_id\tzfinal\n"+
				"4\t0.00\t1234\t0.00\n")
		starsPath := writeFile(t, dir, "stars.out",
			testStarsHeader+"\n"+
				"4\t24\t0.00\t13.20\t0.450\t2.450\t1234\t0.00\n")
		return analogPath, starsPath
	}

	aAnalog, aStars := build(t.TempDir())
	bAnalog, bStars := build(t.TempDir())
	require.NoError(t, Replace(aAnalog, aStars, 7))
	require.NoError(t, Replace(bAnalog, bStars, 7))

	aData, err := os.ReadFile(aAnalog)
	require.NoError(t, err)
	bData, err := os.ReadFile(bAnalog)
	require.NoError(t, err)
	assert.Equal(t, string(aData), string(bData))
}

// TestReplaceRowMismatch: misaligned tables abort rather than corrupt
// the join, and the analog file is left untouched.
func TestReplaceRowMismatch(t *testing.T) {
	dir := t.TempDir()
	original := "zone_origin\ttime_origin\tanalog_id\tzfinal\n" +
		"4\t0.00\t1234\t0.35\n" +
		"17\t6.60\t-1\t0.00\n"
	analogPath := writeFile(t, dir, "analogdata.out", original)
	starsPath := writeFile(t, dir, "stars.out",
		testStarsHeader+"\n"+
			"4\t24\t0.00\t13.20\t0.450\t2.450\t1234\t0.00\n")

	err := Replace(analogPath, starsPath, 1)
	require.ErrorIs(t, err, ErrRowMismatch)

	data, readErr := os.ReadFile(analogPath)
	require.NoError(t, readErr)
	assert.Equal(t, original, string(data))
}

// TestReplaceMalformedRowKeepsOriginal: a bad field anywhere in the
// analog table fails the pass before any byte of the original file is
// replaced.
func TestReplaceMalformedRowKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	original := "zone_origin\ttime_origin\tanalog_id\tzfinal\n" +
		"4\t0.00\t1234\t0.35\n" +
		"oops\t6.60\t-1\t0.00\n"
	analogPath := writeFile(t, dir, "analogdata.out", original)
	starsPath := writeFile(t, dir, "stars.out",
		testStarsHeader+"\n"+
			"4\t24\t0.00\t13.20\t0.450\t2.450\t1234\t0.00\n"+
			"17\t12\t6.60\t6.60\t1.750\t1.210\t-1\t0.00\n")

	err := Replace(analogPath, starsPath, 1)
	require.Error(t, err)

	data, readErr := os.ReadFile(analogPath)
	require.NoError(t, readErr)
	assert.Equal(t, original, string(data))

	// No stray temp file left behind either.
	_, statErr := os.Stat(analogPath + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestReplaceMissingColumn(t *testing.T) {
	dir := t.TempDir()
	analogPath := writeFile(t, dir, "analogdata.out",
		"zone_origin\ttime_origin\tanalog_id\tzfinal\n"+
			"4\t0.00\t1234\t0.00\n")
	starsPath := writeFile(t, dir, "stars.out",
		"zone_origin\tzfinal\n4\t0.00\n")

	assert.Error(t, Replace(analogPath, starsPath, 1))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
