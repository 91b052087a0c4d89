package mapping

import (
	"sort"

	"github.com/shopspring/decimal"

	"dealerops/finance"
)

// Inconsistency flags a parent metric whose sub-metrics do not add up to
// it within the tolerance.
type Inconsistency struct {
	Department string          `json:"department"`
	Metric     string          `json:"metric"`
	Parent     decimal.Decimal `json:"parent"`
	SubSum     decimal.Decimal `json:"sub_sum"`
}

// VerifyStatement cross-checks every department's sub-metric groups
// against their parent metric values. Parents without a resolved plain
// value are skipped; there is nothing to compare them to.
func VerifyStatement(statement *finance.Statement, tolerance decimal.Decimal) []Inconsistency {
	var findings []Inconsistency
	for _, deptName := range statement.DepartmentNames() {
		values := statement.Departments[deptName]

		parents := make([]string, 0, len(values.SubMetrics))
		for parent := range values.SubMetrics {
			parents = append(parents, parent)
		}
		sort.Strings(parents)

		for _, parent := range parents {
			total, ok := values.Metrics[parent]
			if !ok {
				continue
			}
			sum := decimal.Decimal{}
			for _, sub := range values.SubMetrics[parent] {
				sum = sum.Add(sub.Value)
			}
			if total.Sub(sum).Abs().GreaterThan(tolerance) {
				findings = append(findings, Inconsistency{
					Department: deptName,
					Metric:     parent,
					Parent:     total,
					SubSum:     sum,
				})
			}
		}
	}
	return findings
}
