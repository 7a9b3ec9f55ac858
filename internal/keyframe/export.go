package keyframe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

var csvHeader = []string{"percent", "strength", "step"}

// WriteCSV writes seq as rows of percent, strength and step index.
func WriteCSV(w io.Writer, seq *Sequence) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := 0; i < seq.Len(); i++ {
		kf := seq.Keyframes[i]
		row := []string{
			fmt.Sprintf("%.6f", kf.Position),
			fmt.Sprintf("%.6f", kf.Value),
			strconv.Itoa(i),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes seq to path, creating parent directories as needed.
func ExportCSV(path string, seq *Sequence) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := WriteCSV(f, seq); err != nil {
		f.Close()
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return f.Close()
}
