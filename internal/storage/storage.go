// Package storage reads edit batches from CSV and XLSX files and writes
// computed values back out as reports. Only what the user typed is read and
// only display values are written; engine state itself is never saved.
package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sheetcalc/internal/grid"
)

// Edit is one cell's raw input.
type Edit struct {
	Label string
	Raw   string
}

// Load reads edits from path, choosing the format by extension.
func Load(path string) ([]Edit, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, "")
	default:
		return LoadCSV(path)
	}
}

// Save writes values to path, choosing the format by extension.
func Save(path string, values map[string]string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return SaveXLSX(path, values)
	default:
		return SaveCSV(path, values)
	}
}

// LoadCSV returns the non-empty cells of a CSV file in row-major order.
// Row 1 of the file is sheet row 1, the first field is column A.
func LoadCSV(path string) ([]Edit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	var edits []Edit
	for rIdx, row := range records {
		for cIdx, val := range row {
			if val == "" {
				continue
			}
			addr := grid.Address{Col: cIdx, Row: rIdx + 1}
			edits = append(edits, Edit{Label: addr.String(), Raw: val})
		}
	}
	return edits, nil
}

// SaveCSV lays values out on the smallest rectangle starting at A1.
func SaveCSV(path string, values map[string]string) error {
	out, err := layout(values)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(out); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

func layout(values map[string]string) ([][]string, error) {
	maxR, maxC := 0, -1
	addrs := make(map[grid.Address]string, len(values))
	for label, v := range values {
		a, err := grid.ParseAddress(label)
		if err != nil {
			return nil, err
		}
		addrs[a] = v
		if a.Row > maxR {
			maxR = a.Row
		}
		if a.Col > maxC {
			maxC = a.Col
		}
	}
	out := make([][]string, maxR)
	for r := 1; r <= maxR; r++ {
		row := make([]string, maxC+1)
		for c := 0; c <= maxC; c++ {
			row[c] = addrs[grid.Address{Col: c, Row: r}]
		}
		out[r-1] = row
	}
	return out, nil
}
