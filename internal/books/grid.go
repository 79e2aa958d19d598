// Package books loads the billing exports into typed rows.
//
// Inputs arrive as column-name-addressed grids, CSV or XLSX, with no
// guaranteed column order. The parsers here locate columns through a
// normalized header lookup, so renamed-but-recognizable headers and
// reordered exports both load fine.
package books

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadGrid reads one tabular file into rows of cells. The format comes from
// the file extension: .csv or .xlsx.
func ReadGrid(name string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", filepath.Base(name), err)
		}
		return rows, nil
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(name), err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("read workbook %s: %w", filepath.Base(name), err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%s: unsupported file type, want .csv or .xlsx", filepath.Base(name))
	}
}

// ReadGridFile reads a tabular file from disk.
func ReadGridFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGrid(path, f)
}
