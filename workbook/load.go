package workbook

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Load reads a workbook from disk, picking the decoder from the file
// extension. Modern .xlsx/.xlsm files carry cached formula values and
// formulas; legacy binary .xls files carry values only.
func Load(path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
		defer file.Close()
		return loadExcelize(file)
	case ".xls":
		return loadXLS(path)
	default:
		return nil, fmt.Errorf("unsupported workbook format %q", filepath.Ext(path))
	}
}

// LoadXLSX reads an .xlsx workbook from a stream, for uploads and
// in-memory fixtures.
func LoadXLSX(r io.Reader) (*Workbook, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()
	return loadExcelize(file)
}

func loadExcelize(file *excelize.File) (*Workbook, error) {
	names := file.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	wb := newWorkbook()
	for _, name := range names {
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}

		cells := make([][]Cell, len(rows))
		for r, row := range rows {
			line := make([]Cell, len(row))
			for c, value := range row {
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					continue
				}
				formula, _ := file.GetCellFormula(name, ref)
				line[c] = Cell{Value: value, Formula: formula}
			}
			cells[r] = line
		}
		wb.addSheet(&Sheet{Name: name, Rows: cells})
	}
	return wb, nil
}

func loadXLS(path string) (*Workbook, error) {
	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	if book.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	wb := newWorkbook()
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}

		rows := make([][]Cell, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cols := row.LastCol()
			line := make([]Cell, cols)
			for c := 0; c < cols; c++ {
				line[c] = Cell{Value: strings.TrimSpace(row.Col(c))}
			}
			rows = append(rows, line)
		}
		wb.addSheet(&Sheet{Name: sheet.Name, Rows: rows})
	}

	if len(wb.SheetNames) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return wb, nil
}
