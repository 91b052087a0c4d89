// Package finance holds the normalized financial records shared by the
// mapping resolver, storage and outputs.
package finance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Department is a store department financial entries attach to.
type Department struct {
	ID    int64
	Brand string
	Name  string
}

// Entry is one metric value for a department and month, the unit stored
// in the scorecard database. Month uses the YYYY-MM key format.
type Entry struct {
	ID           int64
	DepartmentID int64
	Month        string
	MetricName   string
	Value        decimal.Decimal
	BatchID      string
}

// SubMetric is a named component of a parent metric, for example one
// revenue line under total sales. Order is the configured display order;
// it is never alphabetical.
type SubMetric struct {
	Name  string
	Order int
	Value decimal.Decimal
}

// DeptValues carries everything resolved for one department from a
// statement workbook.
type DeptValues struct {
	Metrics    map[string]decimal.Decimal
	SubMetrics map[string][]SubMetric
}

// Statement is the resolved content of one monthly financial statement:
// brand, month and per-department values.
type Statement struct {
	Brand       string
	Month       string
	Departments map[string]*DeptValues
}

func NewStatement(brand, month string) *Statement {
	return &Statement{
		Brand:       brand,
		Month:       month,
		Departments: make(map[string]*DeptValues),
	}
}

// Department returns the value set for a department, creating it on
// first use.
func (s *Statement) Department(name string) *DeptValues {
	values, ok := s.Departments[name]
	if !ok {
		values = &DeptValues{
			Metrics:    make(map[string]decimal.Decimal),
			SubMetrics: make(map[string][]SubMetric),
		}
		s.Departments[name] = values
	}
	return values
}

// DepartmentNames lists departments in stable alphabetical order for
// display and persistence.
func (s *Statement) DepartmentNames() []string {
	names := make([]string, 0, len(s.Departments))
	for name := range s.Departments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddSubMetric inserts a sub-metric keeping the slice sorted by Order.
func (d *DeptValues) AddSubMetric(parent string, sub SubMetric) {
	subs := append(d.SubMetrics[parent], sub)
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].Order < subs[j].Order })
	d.SubMetrics[parent] = subs
}
