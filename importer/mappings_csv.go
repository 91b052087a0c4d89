package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"dealerops/mapping"
)

// ReadMappingsCSV loads cell mappings from a CSV file. The header row
// names the columns; order does not matter and header spelling is
// normalized, so "Cell Reference", "cell_reference" and "cellreference"
// all match. Every row is validated before any is returned.
func ReadMappingsCSV(path string) ([]mapping.CellMapping, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mappings file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	normalized := make([]string, len(headers))
	for i, header := range headers {
		normalized[i] = normalizeHeader(header)
	}

	mappings := make([]mapping.CellMapping, 0, 64)
	rowNumber := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNumber+1, err)
		}
		rowNumber++

		values := make(map[string]string, len(normalized))
		for i := range normalized {
			if i < len(row) {
				values[normalized[i]] = row[i]
			}
		}
		record := mappingRecord{values: values}

		year := 0
		if raw := record.get("effective_year", "year"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid effective year %q", rowNumber, raw)
			}
			year = parsed
		}

		m := mapping.CellMapping{
			Brand:         record.get("brand"),
			Department:    record.get("department", "department_name"),
			MetricKey:     record.get("metric_key", "metric"),
			SheetName:     record.get("sheet_name", "sheet"),
			CellRef:       record.get("cell_reference", "cell_ref", "cell"),
			NameCellRef:   record.get("name_cell_reference", "name_cell_ref", "name_cell"),
			ParentMetric:  record.get("parent_metric", "parent"),
			EffectiveYear: year,
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNumber, err)
		}
		mappings = append(mappings, m)
	}

	return mappings, nil
}

type mappingRecord struct {
	values map[string]string
}

func (r mappingRecord) get(keys ...string) string {
	for _, key := range keys {
		if value, ok := r.values[normalizeHeader(key)]; ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func normalizeHeader(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}
