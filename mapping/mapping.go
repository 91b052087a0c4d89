// Package mapping resolves monthly financial statements from workbooks
// using persisted cell mappings: per-brand rows naming which sheet and
// cell feed each department metric. Mappings are configuration data, so
// a new statement layout is onboarded by editing rows, not code.
package mapping

import (
	"fmt"
	"strconv"
	"strings"
)

// CellMapping is one extraction rule. MetricKey is either a plain metric
// name or a sub-metric key in the form sub:<parent>:<order>:<name>.
// NameCellRef optionally points at the cell whose live text labels the
// value (dynamic sub-metric names). EffectiveYear scopes the mapping to
// one calendar year; zero means universal.
type CellMapping struct {
	ID            int64  `json:"id"`
	Brand         string `json:"brand"`
	Department    string `json:"department"`
	MetricKey     string `json:"metric_key"`
	SheetName     string `json:"sheet_name"`
	CellRef       string `json:"cell_ref"`
	NameCellRef   string `json:"name_cell_ref,omitempty"`
	ParentMetric  string `json:"parent_metric,omitempty"`
	EffectiveYear int    `json:"effective_year,omitempty"`
}

// Validate checks the fields a mapping needs before it can resolve
// anything. Cell references are syntax-checked only.
func (m CellMapping) Validate() error {
	if strings.TrimSpace(m.Brand) == "" {
		return fmt.Errorf("brand is required")
	}
	if strings.TrimSpace(m.Department) == "" {
		return fmt.Errorf("department is required")
	}
	if strings.TrimSpace(m.MetricKey) == "" {
		return fmt.Errorf("metric key is required")
	}
	if strings.TrimSpace(m.SheetName) == "" {
		return fmt.Errorf("sheet name is required")
	}
	if strings.TrimSpace(m.CellRef) == "" {
		return fmt.Errorf("cell reference is required")
	}
	if key, ok := ParseSubMetricKey(m.MetricKey); ok && key.Parent == "" {
		return fmt.Errorf("sub-metric key %q has no parent", m.MetricKey)
	}
	return nil
}

const subMetricPrefix = "sub:"

// SubMetricKey is the decoded form of a sub:<parent>:<order>:<name>
// metric key. Order is the configured display position.
type SubMetricKey struct {
	Parent string
	Order  int
	Name   string
}

// ParseSubMetricKey decodes a sub-metric key. Plain metric names report
// ok=false. The name segment may itself contain colons.
func ParseSubMetricKey(key string) (SubMetricKey, bool) {
	if !strings.HasPrefix(key, subMetricPrefix) {
		return SubMetricKey{}, false
	}
	parts := strings.SplitN(key, ":", 4)
	if len(parts) != 4 {
		return SubMetricKey{}, false
	}
	order, err := strconv.Atoi(parts[2])
	if err != nil {
		return SubMetricKey{}, false
	}
	return SubMetricKey{Parent: parts[1], Order: order, Name: parts[3]}, true
}

func (k SubMetricKey) String() string {
	return fmt.Sprintf("sub:%s:%03d:%s", k.Parent, k.Order, k.Name)
}
