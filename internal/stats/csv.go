package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/studiowebux/liftload/internal/config"
	"github.com/studiowebux/liftload/internal/types"
)

// CSVHeader is the first row written by WriteCSV
var CSVHeader = []string{"startTime", "latency", "requestType", "responseCode"}

// WriteCSV writes samples to w, one row per attempt
func WriteCSV(w io.Writer, samples []types.Sample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, s := range samples {
		row := []string{
			strconv.FormatInt(s.StartTime.UnixMilli(), 10),
			strconv.FormatInt(s.Latency.Milliseconds(), 10),
			string(s.RequestType),
			strconv.Itoa(s.ResponseCode),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes samples to the file at path, replacing it
func WriteCSVFile(path string, samples []types.Sample) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, config.FilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteCSV(f, samples); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
