package storage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetcalc/internal/grid"
)

// LoadXLSX reads one worksheet (the first when sheet is empty). Formula
// cells come back with their "=" prefix.
func LoadXLSX(path, sheet string) ([]Edit, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var edits []Edit
	for rIdx, row := range rows {
		for cIdx := range row {
			label := grid.Address{Col: cIdx, Row: rIdx + 1}.String()
			formula, err := f.GetCellFormula(sheet, label)
			if err != nil {
				return nil, fmt.Errorf("read formula %s: %w", label, err)
			}
			raw := row[cIdx]
			if formula != "" {
				raw = "=" + strings.TrimPrefix(formula, "=")
			}
			if raw == "" {
				continue
			}
			edits = append(edits, Edit{Label: label, Raw: raw})
		}
	}
	return edits, nil
}

// SaveXLSX writes values to the first sheet of a new workbook. Text that
// reads fully as a number is stored as a number.
func SaveXLSX(path string, values map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	labels := make([]string, 0, len(values))
	for label := range values {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		if _, err := grid.ParseAddress(label); err != nil {
			return err
		}
		v := values[label]
		var err error
		if n, perr := strconv.ParseFloat(v, 64); perr == nil {
			err = f.SetCellValue(sheet, label, n)
		} else {
			err = f.SetCellValue(sheet, label, v)
		}
		if err != nil {
			return fmt.Errorf("set %s: %w", label, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
