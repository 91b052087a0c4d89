package report

import "fmt"

// Diagnostic records one skipped or unparsable item encountered during a
// parse. Parses collect diagnostics instead of logging so callers decide
// whether to log, display or return them.
type Diagnostic struct {
	Sheet    string `json:"sheet"`
	Location string `json:"location"`
	Reason   string `json:"reason"`
}

type Diagnostics []Diagnostic

func (d *Diagnostics) Add(sheet, location, format string, args ...any) {
	*d = append(*d, Diagnostic{
		Sheet:    sheet,
		Location: location,
		Reason:   fmt.Sprintf(format, args...),
	})
}

func rowLocation(row int) string {
	return fmt.Sprintf("row %d", row+1)
}
