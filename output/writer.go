package output

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"dealerops/mapping"
	"dealerops/storage"
)

type Writer interface {
	Write(path string, entries []storage.DepartmentEntry) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// FormatForPath infers the output format from the file extension.
func FormatForPath(path string) (string, error) {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "xlsx", "xlsm":
		return "excel", nil
	default:
		return "", fmt.Errorf("unsupported output extension for %s", path)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

var entryHeaders = []string{"Brand", "Department", "Month", "Metric", "Parent", "Order", "Value", "BatchID"}

// entryRow flattens one stored entry for export. Sub-metric keys are
// decoded so the sheet shows the display name, parent and order instead
// of the packed key.
func entryRow(entry storage.DepartmentEntry) []string {
	metric := entry.MetricName
	parent := ""
	order := ""
	if key, ok := mapping.ParseSubMetricKey(entry.MetricName); ok {
		metric = key.Name
		parent = key.Parent
		order = strconv.Itoa(key.Order)
	}

	return []string{
		entry.Brand,
		entry.Department,
		entry.Month,
		metric,
		parent,
		order,
		entry.Value.String(),
		entry.BatchID,
	}
}
