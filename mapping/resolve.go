package mapping

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"dealerops/finance"
	"dealerops/internal/timeutil"
	"dealerops/report"
	"dealerops/workbook"
)

type Resolver struct {
	log *zap.Logger
}

func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log}
}

// Resolve extracts a monthly statement from the workbook using the given
// mappings. Value-level gaps (empty or non-numeric cells) become
// diagnostics and missing values, never errors; having no mappings at
// all is a structural failure.
func (r *Resolver) Resolve(wb *workbook.Workbook, mappings []CellMapping, brand, month string) (*finance.Statement, report.Diagnostics, error) {
	if len(mappings) == 0 {
		return nil, nil, fmt.Errorf("no cell mappings configured for brand %s", brand)
	}
	when, err := timeutil.ParseMonth(month)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid month %q: %w", month, err)
	}

	statement := finance.NewStatement(brand, month)
	var diagnostics report.Diagnostics

	for _, m := range Select(mappings, when.Year()) {
		sheet, ok := wb.Sheet(m.SheetName)
		if !ok {
			sheet = wb.FirstSheet()
			r.log.Warn("mapped sheet not found, using first sheet",
				zap.String("sheet", m.SheetName),
				zap.String("fallback", sheet.Name),
				zap.String("department", m.Department),
				zap.String("metric", m.MetricKey))
			diagnostics.Add(m.SheetName, m.CellRef, "sheet not found, used %q instead", sheet.Name)
		}

		if _, _, err := workbook.ParseRef(m.CellRef); err != nil {
			diagnostics.Add(sheet.Name, m.CellRef, "invalid cell reference for %s", m.MetricKey)
			continue
		}

		raw := wb.Resolve(sheet, m.CellRef)
		value, ok := workbook.ParseDecimal(raw)
		if !ok {
			diagnostics.Add(sheet.Name, m.CellRef, "no numeric value for %s", m.MetricKey)
			continue
		}

		dept := statement.Department(m.Department)
		key, isSub := ParseSubMetricKey(m.MetricKey)
		if !isSub && m.ParentMetric == "" {
			dept.Metrics[m.MetricKey] = value
			continue
		}

		parent := m.ParentMetric
		if parent == "" {
			parent = key.Parent
		}
		name := key.Name
		if m.NameCellRef != "" {
			if live := strings.TrimSpace(wb.Resolve(sheet, m.NameCellRef)); live != "" {
				name = live
			}
		}
		if name == "" {
			name = m.MetricKey
		}
		order := key.Order
		if !isSub {
			// Plain keys promoted to sub-metrics by parent_metric carry no
			// embedded order; fall back to the cell row so sheet order is
			// preserved.
			_, row, _ := workbook.ParseRef(m.CellRef)
			order = row
		}
		dept.AddSubMetric(parent, finance.SubMetric{Name: name, Order: order, Value: value})
	}

	return statement, diagnostics, nil
}

// Select picks one mapping per (department, metric) pair: a mapping for
// the exact year wins over a universal one (effective_year 0), which wins
// over mappings for other years; among equals the first in input order
// stays. The cross-year fallback keeps old statements resolvable when
// only a newer year's mapping set exists.
func Select(mappings []CellMapping, year int) []CellMapping {
	type pairKey struct {
		department string
		metric     string
	}
	rank := func(m CellMapping) int {
		switch m.EffectiveYear {
		case year:
			return 2
		case 0:
			return 1
		default:
			return 0
		}
	}

	byPair := make(map[pairKey]CellMapping)
	for _, m := range mappings {
		key := pairKey{m.Department, m.MetricKey}
		current, seen := byPair[key]
		if !seen || rank(m) > rank(current) {
			byPair[key] = m
		}
	}

	selected := make([]CellMapping, 0, len(byPair))
	for _, m := range byPair {
		selected = append(selected, m)
	}
	sort.Slice(selected, func(i, j int) bool {
		if selected[i].Department != selected[j].Department {
			return selected[i].Department < selected[j].Department
		}
		return selected[i].MetricKey < selected[j].MetricKey
	})
	return selected
}
