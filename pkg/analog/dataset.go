// Package analog provides the observational analog dataset that lends
// kinematic realism to simulated stellar populations. Each record is
// one observed star with a measured final vertical height; populations
// link to records by integer index, with -1 meaning "no analog".
package analog

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	"golang.org/x/exp/rand"
)

// NoAnalog is the sentinel index and id meaning "no backing analog".
const NoAnalog = -1

// Record is one observational analog star.
type Record struct {
	ID     int
	ZFinal float64 // kpc above the midplane
}

// Dataset is an integer-indexed, read-only table of analog records.
type Dataset struct {
	records []Record
}

// Load reads a headered CSV file with at least "id" and "zfinal"
// columns. Malformed records are skipped with a warning.
func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open analog dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read analog dataset: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("insufficient data in analog dataset %s", path)
	}

	idCol, zCol := -1, -1
	for i, name := range rows[0] {
		switch name {
		case "id":
			idCol = i
		case "zfinal":
			zCol = i
		}
	}
	if idCol < 0 || zCol < 0 {
		return nil, fmt.Errorf("analog dataset %s is missing id/zfinal columns", path)
	}

	ds := &Dataset{records: make([]Record, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		if len(row) <= idCol || len(row) <= zCol {
			log.Printf("Warning: skipping incomplete analog record %d", i+1)
			continue
		}
		id, err := strconv.Atoi(row[idCol])
		if err != nil {
			log.Printf("Warning: failed to parse analog record %d: %v", i+1, err)
			continue
		}
		z, err := strconv.ParseFloat(row[zCol], 64)
		if err != nil {
			log.Printf("Warning: failed to parse analog record %d: %v", i+1, err)
			continue
		}
		ds.records = append(ds.records, Record{ID: id, ZFinal: z})
	}
	return ds, nil
}

// Len returns the number of analog records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Record returns the analog at index i. The sentinel index NoAnalog,
// or any index outside the table, reports false and callers fall back
// to defaults.
func (d *Dataset) Record(i int) (Record, bool) {
	if i < 0 || i >= len(d.records) {
		return Record{}, false
	}
	return d.records[i], true
}

// Pick draws a uniform analog index for formation-time linkage, or
// NoAnalog if the dataset is empty.
func (d *Dataset) Pick(rnd *rand.Rand) int {
	if len(d.records) == 0 {
		return NoAnalog
	}
	return rnd.Intn(len(d.records))
}
