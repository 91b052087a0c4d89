// Package workbook holds an in-memory model of a spreadsheet workbook and
// the cell/value extraction rules shared by every report parser: A1-style
// addressing, one-hop cross-sheet formula resolution and tolerant numeric
// parsing. Both .xlsx and legacy binary .xls files load into the same model.
package workbook

import "strings"

// Cell is a single cell as loaded from a workbook. Value is the cached
// display value; Formula is the cell formula when the source format
// exposes one, without the leading "=".
type Cell struct {
	Value   string
	Formula string
}

type Sheet struct {
	Name string
	Rows [][]Cell
}

// Workbook keeps sheets in file order and addressable by name.
type Workbook struct {
	SheetNames []string

	sheets map[string]*Sheet
}

func newWorkbook() *Workbook {
	return &Workbook{sheets: make(map[string]*Sheet)}
}

func (wb *Workbook) addSheet(sheet *Sheet) {
	wb.SheetNames = append(wb.SheetNames, sheet.Name)
	wb.sheets[sheet.Name] = sheet
}

// Sheet looks a sheet up by exact name first, then case-insensitively.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	if sheet, ok := wb.sheets[name]; ok {
		return sheet, true
	}
	for _, candidate := range wb.SheetNames {
		if strings.EqualFold(candidate, name) {
			return wb.sheets[candidate], true
		}
	}
	return nil, false
}

// FirstSheet returns the first sheet in file order. Loaders reject
// workbooks without sheets, so callers always get a sheet back.
func (wb *Workbook) FirstSheet() *Sheet {
	if len(wb.SheetNames) == 0 {
		return nil
	}
	return wb.sheets[wb.SheetNames[0]]
}

// CellAt returns the cell at the 1-based column/row position. Positions
// outside the loaded grid yield an empty cell, never an error.
func (s *Sheet) CellAt(col, row int) Cell {
	if col < 1 || row < 1 || row > len(s.Rows) {
		return Cell{}
	}
	cells := s.Rows[row-1]
	if col > len(cells) {
		return Cell{}
	}
	return cells[col-1]
}

// Cell resolves an A1-style reference. Malformed references yield an
// empty cell.
func (s *Sheet) Cell(ref string) Cell {
	col, row, err := ParseRef(ref)
	if err != nil {
		return Cell{}
	}
	return s.CellAt(col, row)
}

// Values flattens the sheet to display strings for the row-oriented
// report heuristics.
func (s *Sheet) Values() [][]string {
	rows := make([][]string, len(s.Rows))
	for i, cells := range s.Rows {
		row := make([]string, len(cells))
		for j, cell := range cells {
			row[j] = cell.Value
		}
		rows[i] = row
	}
	return rows
}

// Resolve returns the effective raw value of the referenced cell. When the
// cell carries a simple cross-sheet formula ('Other Sheet'!D6) the cached
// value of the target cell is returned instead, following exactly one hop.
// Broken links and out-of-grid references resolve to the empty string.
func (wb *Workbook) Resolve(sheet *Sheet, ref string) string {
	col, row, err := ParseRef(ref)
	if err != nil {
		return ""
	}
	cell := sheet.CellAt(col, row)
	target, ok := parseSheetRef(cell.Formula)
	if !ok {
		return cell.Value
	}
	hop, ok := wb.Sheet(target.sheet)
	if !ok {
		return ""
	}
	return hop.Cell(target.ref).Value
}
