package report

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"feetrack/internal/core"
)

// WriteTree materializes rendered files under dir, creating class
// directories as needed.
func WriteTree(dir string, files []File) error {
	for _, f := range files {
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
		if err := os.WriteFile(target, f.Data, 0o644); err != nil {
			return fmt.Errorf("write report file: %w", err)
		}
	}
	return nil
}

// Zip writes the rendered files as a deflated archive with tree-relative
// entry names.
func Zip(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		entry, err := zw.Create(f.Path)
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", f.Path, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			return fmt.Errorf("write zip entry %s: %w", f.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

// ZipName returns the dated download name for a run archive.
func ZipName(asOf core.Date) string {
	return "fee_defaulter_reports_" + asOf.Format("20060102") + ".zip"
}
