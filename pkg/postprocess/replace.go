// Package postprocess implements the after-run pass that replaces the
// final vertical heights in an existing analog record file with fresh
// draws from the sech^2 profile, using each star particle's age and
// final radius from the run's stars table.
package postprocess

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/lodubay/galactic-dtd-paper/pkg/migration"
)

// ErrRowMismatch reports misaligned analog and stars tables. The pass
// aborts rather than proceed: a misaligned join corrupts every
// downstream attribute.
var ErrRowMismatch = errors.New("analog record count does not match star particle count")

// table is a tab-separated file with named columns.
type table struct {
	header []string
	rows   [][]string
}

// analogRecord is one fully parsed row of the analog file, joined with
// the age and final radius of the matching star particle.
type analogRecord struct {
	zone        int
	tform       float64
	id          int
	age         float64
	radiusFinal float64
}

// Replace rewrites analogPath with re-sampled zfinal values. starsPath
// must be the stars summary table of the same run, row-aligned with
// the analog records. Both tables are parsed in full before anything
// is written, and the rewrite lands via a rename, so a malformed row
// or a mid-pass failure leaves the original file untouched.
func Replace(analogPath, starsPath string, seed uint64) error {
	records, err := parseJoined(analogPath, starsPath)
	if err != nil {
		return err
	}

	log.Printf("Replacing zfinal for %d populations in %s", len(records), analogPath)
	sampler := migration.NewVerticalSampler(rand.NewSource(seed))

	tmpPath := analogPath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create replacement analog file: %w", err)
	}
	buf := bufio.NewWriter(file)
	if _, err := buf.WriteString(migration.AnalogHeader + "\n"); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write analog header: %w", err)
	}
	for i, rec := range records {
		zFinal := sampler.Sample(rec.age, rec.radiusFinal)
		if _, err := fmt.Fprintf(buf, "%d\t%.2f\t%d\t%.2f\n", rec.zone, rec.tform, rec.id, zFinal); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to write analog record %d: %w", i+1, err)
		}
	}
	if err := buf.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush analog file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close analog file: %w", err)
	}
	if err := os.Rename(tmpPath, analogPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace analog file: %w", err)
	}
	return nil
}

// parseJoined loads and validates both tables up front, returning the
// row-aligned join of analog identity fields with star ages and final
// radii.
func parseJoined(analogPath, starsPath string) ([]analogRecord, error) {
	analogs, err := readTable(analogPath)
	if err != nil {
		return nil, err
	}
	stars, err := readTable(starsPath)
	if err != nil {
		return nil, err
	}
	if len(analogs.rows) != len(stars.rows) {
		return nil, fmt.Errorf("%w: %d analog records vs %d star particles",
			ErrRowMismatch, len(analogs.rows), len(stars.rows))
	}

	zoneCol, err := analogs.column("zone_origin")
	if err != nil {
		return nil, err
	}
	timeCol, err := analogs.column("time_origin")
	if err != nil {
		return nil, err
	}
	idCol, err := analogs.column("analog_id")
	if err != nil {
		return nil, err
	}
	ageCol, err := stars.column("age")
	if err != nil {
		return nil, err
	}
	radiusCol, err := stars.column("galr_final")
	if err != nil {
		return nil, err
	}

	records := make([]analogRecord, len(analogs.rows))
	for i, row := range analogs.rows {
		rec := &records[i]
		if rec.zone, err = strconv.Atoi(row[zoneCol]); err != nil {
			return nil, fmt.Errorf("bad zone_origin in analog record %d: %w", i+1, err)
		}
		if rec.tform, err = strconv.ParseFloat(row[timeCol], 64); err != nil {
			return nil, fmt.Errorf("bad time_origin in analog record %d: %w", i+1, err)
		}
		if rec.id, err = strconv.Atoi(row[idCol]); err != nil {
			return nil, fmt.Errorf("bad analog_id in analog record %d: %w", i+1, err)
		}
		if rec.age, err = strconv.ParseFloat(stars.rows[i][ageCol], 64); err != nil {
			return nil, fmt.Errorf("bad age in star particle %d: %w", i+1, err)
		}
		if rec.radiusFinal, err = strconv.ParseFloat(stars.rows[i][radiusCol], 64); err != nil {
			return nil, fmt.Errorf("bad galr_final in star particle %d: %w", i+1, err)
		}
	}
	return records, nil
}

// readTable loads a headered tab-separated file.
func readTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return nil, fmt.Errorf("%s is empty", path)
	}
	t := &table{header: strings.Split(scanner.Text(), "\t")}
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		row := strings.Split(line, "\t")
		if len(row) != len(t.header) {
			return nil, fmt.Errorf("%s: record %d has %d fields, want %d",
				path, len(t.rows)+1, len(row), len(t.header))
		}
		t.rows = append(t.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// column resolves a named column to its index.
func (t *table) column(name string) (int, error) {
	for i, h := range t.header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing column %q (header: %s)", name, strings.Join(t.header, ", "))
}
