package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	TimesFile   = "execution_times.txt"
	MetricsFile = "conformance_metrics.csv"
)

// Timing is the wall time of one miner, model conversion included.
type Timing struct {
	Miner   string
	Elapsed time.Duration
}

// Row holds the metric values of one model. A nil value is absent.
type Row struct {
	Algorithm string
	Values    []*float64
}

func WriteTimes(w io.Writer, times []Timing) error {
	for _, t := range times {
		if _, err := fmt.Fprintf(w, "%s: %.3f\n", t.Miner, t.Elapsed.Seconds()); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteMetrics writes one CSV row per model under the header
// "algorithm" followed by the metric names.
func WriteMetrics(w io.Writer, names []string, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"algorithm"}, names...)); err != nil {
		return err
	}
	for _, r := range rows {
		rec := make([]string, 0, len(names)+1)
		rec = append(rec, r.Algorithm)
		for i := range names {
			var v *float64
			if i < len(r.Values) {
				v = r.Values[i]
			}
			rec = append(rec, formatValue(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeFile creates or truncates path and hands it to write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
