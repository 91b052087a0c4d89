package classify

import (
	"dealerops/finance"

	"github.com/shopspring/decimal"
)

// Change pairs a resolved entry with the stored value it replaces.
type Change struct {
	Entry    finance.Entry
	Previous decimal.Decimal
}

// ClassifyEntries splits resolved entries by import outcome against the
// rows already stored for the same department and month: metrics not
// stored yet, metrics whose value changed, and metrics stored with an
// equal value.
func ClassifyEntries(resolved, existing []finance.Entry) ([]finance.Entry, []Change, int) {
	stored := make(map[string]decimal.Decimal, len(existing))
	for _, entry := range existing {
		stored[entry.MetricName] = entry.Value
	}

	added := make([]finance.Entry, 0, len(resolved))
	changed := make([]Change, 0)
	unchanged := 0

	for _, candidate := range resolved {
		previous, ok := stored[candidate.MetricName]
		if !ok {
			added = append(added, candidate)
			continue
		}
		if previous.Equal(candidate.Value) {
			unchanged++
			continue
		}
		changed = append(changed, Change{Entry: candidate, Previous: previous})
	}

	return added, changed, unchanged
}
