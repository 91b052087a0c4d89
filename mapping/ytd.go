package mapping

import (
	"github.com/shopspring/decimal"

	"dealerops/finance"
	"dealerops/internal/timeutil"
)

// Snapshots holds year-to-date sub-metric values keyed by department
// name, then by SnapshotKey.
type Snapshots map[string]map[string]decimal.Decimal

// SnapshotKey identifies a sub-metric across months. Display names come
// from live cells, so the key pairs the parent metric with the name.
func SnapshotKey(parent, name string) string {
	return parent + ":" + name
}

func (s Snapshots) get(department, key string) (decimal.Decimal, bool) {
	metrics, ok := s[department]
	if !ok {
		return decimal.Decimal{}, false
	}
	value, ok := metrics[key]
	return value, ok
}

func (s Snapshots) put(department, key string, value decimal.Decimal) {
	metrics, ok := s[department]
	if !ok {
		metrics = make(map[string]decimal.Decimal)
		s[department] = metrics
	}
	metrics[key] = value
}

// ConvertSubMetricsYTD rewrites the statement's sub-metric values from
// year-to-date to monthly, in place: monthly = YTD minus the prior-month
// snapshot. January and months without a prior snapshot keep the YTD
// value unchanged. The returned snapshots carry the original YTD values
// for the statement's month and must be persisted so the next month can
// difference against them.
func ConvertSubMetricsYTD(statement *finance.Statement, prior Snapshots) Snapshots {
	current := make(Snapshots)
	yearStart := timeutil.IsYearStart(statement.Month)

	for deptName, values := range statement.Departments {
		for parent, subs := range values.SubMetrics {
			for i, sub := range subs {
				key := SnapshotKey(parent, sub.Name)
				current.put(deptName, key, sub.Value)
				if yearStart {
					continue
				}
				if prev, ok := prior.get(deptName, key); ok {
					subs[i].Value = sub.Value.Sub(prev)
				}
			}
		}
	}
	return current
}
