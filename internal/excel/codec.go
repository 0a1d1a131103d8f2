// Package excel reads and writes payment lists as xlsx workbooks. Import
// column matching is heuristic: several known header spellings are tried
// per field, with a default when none match.
package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one spreadsheet row keyed by its header cell text.
type Row map[string]string

// Read parses the first sheet of a workbook. The first row is taken as
// the header row.
func Read(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return []Row{}, nil
	}

	headers := rows[0]
	out := make([]Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(Row, len(headers))
		empty := true
		for i, h := range headers {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			var val string
			if i < len(cells) {
				val = strings.TrimSpace(cells[i])
			}
			if val != "" {
				empty = false
			}
			row[h] = val
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out, nil
}

// Write builds a single-sheet workbook from header-ordered rows and writes
// it to w.
func Write(w io.Writer, headers []string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Ödemeler"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, row := range rows {
		for col, h := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, row[h]); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
