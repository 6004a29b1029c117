package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"csvclean/internal/table"
)

// WriteOptions configures Write.
type WriteOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Write serializes t to path as UTF-8 CSV with a header row and no index
// column. Missing parent directories are created. The file is written next
// to its destination and renamed over it, so an existing file is replaced
// only after the new content is complete.
func Write(path string, t *table.Table, opt WriteOptions) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	cw := csv.NewWriter(tmp)
	if opt.Comma != 0 {
		cw.Comma = opt.Comma
	}
	if err = cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, t.NumCols())
	for r := 0; r < t.NumRows(); r++ {
		for c := range t.Columns {
			// Missing cells are written as empty fields.
			rec[c] = t.Columns[c].Values[r].S
		}
		if err = cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	cw.Flush()
	if err = cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
