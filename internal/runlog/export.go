package runlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Export writes all runs as indented JSON, newest first.
func (s *Store) Export(w io.Writer) error {
	runs, err := s.ListRuns(0)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*Run{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

// ExportFile writes the run history to path. A .gz suffix selects
// gzip-compressed output.
func (s *Store) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := s.Export(w); err != nil {
		_ = f.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}
	return f.Close()
}
