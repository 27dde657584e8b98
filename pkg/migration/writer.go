package migration

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// AnalogHeader is the column header of the analog record file. The
// post-process pass reads it back as named columns.
const AnalogHeader = "zone_origin\ttime_origin\tanalog_id\tzfinal"

// ErrWriterClosed reports an append after Close.
var ErrWriterClosed = errors.New("analog writer is closed")

// AnalogWriter persists one tab-separated record per formed stellar
// population for later reconstruction. Writes are buffered; the driver
// must call Close after the run to flush them.
type AnalogWriter struct {
	file   *os.File
	buf    *bufio.Writer
	closed bool
}

// NewAnalogWriter creates the output file and writes the header row.
func NewAnalogWriter(path string) (*AnalogWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("analog output path cannot be empty")
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create analog output file: %w", err)
	}
	buf := bufio.NewWriter(file)
	if _, err := buf.WriteString(AnalogHeader + "\n"); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write analog header: %w", err)
	}
	return &AnalogWriter{file: file, buf: buf}, nil
}

// Append writes one population record. The sentinel analog id -1 pairs
// with a zero final height.
func (w *AnalogWriter) Append(zoneOrigin int, timeOrigin float64, analogID int, zFinal float64) error {
	if w.closed {
		return ErrWriterClosed
	}
	if _, err := fmt.Fprintf(w.buf, "%d\t%.2f\t%d\t%.2f\n", zoneOrigin, timeOrigin, analogID, zFinal); err != nil {
		return fmt.Errorf("failed to append analog record: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the stream. Closing twice
// is a no-op.
func (w *AnalogWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush analog records: %w", err)
	}
	return w.file.Close()
}
