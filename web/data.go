package web

import (
	"sort"

	"github.com/shopspring/decimal"

	"dealerops/mapping"
	"dealerops/storage"
)

// EntryRow is one metric line in the entries view, with sub-metric keys
// decoded for display.
type EntryRow struct {
	Metric  string          `json:"metric"`
	Parent  string          `json:"parent,omitempty"`
	Order   int             `json:"order,omitempty"`
	Sub     bool            `json:"sub,omitempty"`
	Value   decimal.Decimal `json:"value"`
	BatchID string          `json:"batchId,omitempty"`
}

// DepartmentGroup collects one department's stored rows for a month.
type DepartmentGroup struct {
	Brand      string     `json:"brand"`
	Department string     `json:"department"`
	Rows       []EntryRow `json:"rows"`
}

// BuildEntryGroups shapes stored entries into per-department groups:
// plain metrics alphabetical, each followed by its sub-metrics in their
// configured order. Parents that only have stored components trail the
// plain metrics.
func BuildEntryGroups(entries []storage.DepartmentEntry) []DepartmentGroup {
	type bucket struct {
		brand      string
		department string
		plain      map[string]EntryRow
		subs       map[string][]EntryRow
	}

	index := make(map[string]*bucket)
	var order []string

	for _, entry := range entries {
		key := entry.Brand + "\x00" + entry.Department
		group, ok := index[key]
		if !ok {
			group = &bucket{
				brand:      entry.Brand,
				department: entry.Department,
				plain:      make(map[string]EntryRow),
				subs:       make(map[string][]EntryRow),
			}
			index[key] = group
			order = append(order, key)
		}

		if sub, ok := mapping.ParseSubMetricKey(entry.MetricName); ok {
			group.subs[sub.Parent] = append(group.subs[sub.Parent], EntryRow{
				Metric:  sub.Name,
				Parent:  sub.Parent,
				Order:   sub.Order,
				Sub:     true,
				Value:   entry.Value,
				BatchID: entry.BatchID,
			})
			continue
		}
		group.plain[entry.MetricName] = EntryRow{
			Metric:  entry.MetricName,
			Value:   entry.Value,
			BatchID: entry.BatchID,
		}
	}

	out := make([]DepartmentGroup, 0, len(order))
	for _, key := range order {
		b := index[key]
		group := DepartmentGroup{Brand: b.brand, Department: b.department}

		names := make([]string, 0, len(b.plain))
		for name := range b.plain {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			group.Rows = append(group.Rows, b.plain[name])
			group.Rows = append(group.Rows, sortedSubRows(b.subs[name])...)
		}

		orphans := make([]string, 0)
		for parent := range b.subs {
			if _, ok := b.plain[parent]; !ok {
				orphans = append(orphans, parent)
			}
		}
		sort.Strings(orphans)
		for _, parent := range orphans {
			group.Rows = append(group.Rows, sortedSubRows(b.subs[parent])...)
		}

		out = append(out, group)
	}
	return out
}

func sortedSubRows(rows []EntryRow) []EntryRow {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Order < rows[j].Order })
	return rows
}
