package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir       string
	statsFile *os.File
	perfFile  *os.File

	statsHeaderWritten bool
	perfHeaderWritten  bool
}

// NewOutputManager creates a new output manager and initializes the
// output directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.statsFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteStats appends one window to stats.csv.
func (om *OutputManager) WriteStats(ws WindowStats) error {
	if om == nil {
		return nil
	}
	records := []WindowStats{ws}
	if !om.statsHeaderWritten {
		om.statsHeaderWritten = true
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats row: %w", err)
		}
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
		return fmt.Errorf("writing stats row: %w", err)
	}
	return nil
}

// WritePerf appends one perf window to perf.csv.
func (om *OutputManager) WritePerf(rec PerfRecord) error {
	if om == nil {
		return nil
	}
	records := []PerfRecord{rec}
	if !om.perfHeaderWritten {
		om.perfHeaderWritten = true
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf row: %w", err)
		}
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
		return fmt.Errorf("writing perf row: %w", err)
	}
	return nil
}

// Close flushes and closes the output files.
func (om *OutputManager) Close() {
	if om == nil {
		return
	}
	if om.statsFile != nil {
		om.statsFile.Close()
	}
	if om.perfFile != nil {
		om.perfFile.Close()
	}
}
