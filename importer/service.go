package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dealerops/finance"
	"dealerops/internal/classify"
	"dealerops/internal/timeutil"
	"dealerops/mapping"
	"dealerops/report"
	"dealerops/storage"
	"dealerops/workbook"
)

// ChangedMetric describes one stored value a re-import overwrites.
type ChangedMetric struct {
	Department string
	Metric     string
	Previous   decimal.Decimal
	Current    decimal.Decimal
}

type Result struct {
	BatchID        string
	Brand          string
	Month          string
	SourceFile     string
	DryRun         bool
	Departments    int
	Metrics        int
	SubMetrics     int
	EntriesWritten int
	New            int
	Changed        int
	Unchanged      int
	Changes        []ChangedMetric
	Diagnostics    report.Diagnostics
}

type RunOptions struct {
	Brand  string
	Month  string
	DryRun bool
	// ConvertYTD rewrites sub-metric values from year-to-date to monthly
	// using the prior month's stored snapshots.
	ConvertYTD bool
	Log        *zap.Logger
}

// ErrStorage marks failures that came from the scorecard database rather
// than the uploaded workbook, so transports can tell a bad upload from a
// broken store.
var ErrStorage = errors.New("storage failure")

func storageFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// Run imports one monthly financial statement: it resolves the workbook
// through the brand's cell mappings, classifies the result against
// stored entries and, unless DryRun is set, replaces each department's
// month in the store and records an import batch.
func Run(store *storage.SQLiteStore, path string, options RunOptions) (*Result, error) {
	if strings.TrimSpace(options.Brand) == "" {
		return nil, fmt.Errorf("brand is required")
	}
	if _, err := timeutil.ParseMonth(options.Month); err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", options.Month, err)
	}
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	mappings, err := store.ListCellMappings(options.Brand)
	if err != nil {
		return nil, storageFailed(err)
	}

	wb, err := workbook.Load(path)
	if err != nil {
		return nil, err
	}

	resolver := mapping.NewResolver(log)
	statement, diagnostics, err := resolver.Resolve(wb, mappings, options.Brand, options.Month)
	if err != nil {
		return nil, err
	}

	var snapshots mapping.Snapshots
	if options.ConvertYTD {
		prevMonth, err := timeutil.PrevMonthKey(options.Month)
		if err != nil {
			return nil, err
		}
		prior, err := store.GetSnapshots(options.Brand, prevMonth)
		if err != nil {
			return nil, storageFailed(err)
		}
		snapshots = mapping.ConvertSubMetricsYTD(statement, prior)
	}

	result := &Result{
		BatchID:     uuid.NewString(),
		Brand:       options.Brand,
		Month:       options.Month,
		SourceFile:  filepath.Base(path),
		DryRun:      options.DryRun,
		Changes:     make([]ChangedMetric, 0),
		Diagnostics: diagnostics,
	}

	// A dry run must not create department rows, so classification can
	// only see departments that already exist.
	knownIDs := make(map[string]int64)
	if options.DryRun {
		departments, err := store.ListDepartments(options.Brand)
		if err != nil {
			return nil, storageFailed(err)
		}
		for _, dept := range departments {
			knownIDs[dept.Name] = dept.ID
		}
	}

	for _, name := range statement.DepartmentNames() {
		values := statement.Departments[name]
		entries := buildEntries(options.Month, result.BatchID, values)

		result.Departments++
		result.Metrics += len(values.Metrics)
		for _, subs := range values.SubMetrics {
			result.SubMetrics += len(subs)
		}

		var departmentID int64
		if options.DryRun {
			departmentID = knownIDs[name]
		} else {
			dept, err := store.EnsureDepartment(options.Brand, name)
			if err != nil {
				return nil, storageFailed(err)
			}
			departmentID = dept.ID
		}

		var existing []finance.Entry
		if departmentID > 0 {
			existing, err = store.ListDepartmentEntries(departmentID, options.Month)
			if err != nil {
				return nil, storageFailed(err)
			}
		}

		added, changed, unchanged := classify.ClassifyEntries(entries, existing)
		result.New += len(added)
		result.Changed += len(changed)
		result.Unchanged += unchanged
		for _, change := range changed {
			result.Changes = append(result.Changes, ChangedMetric{
				Department: name,
				Metric:     change.Entry.MetricName,
				Previous:   change.Previous,
				Current:    change.Entry.Value,
			})
		}

		if options.DryRun {
			continue
		}

		written, err := store.ReplaceDepartmentMonth(departmentID, options.Month, entries, snapshots[name])
		if err != nil {
			return nil, storageFailed(err)
		}
		result.EntriesWritten += written
	}

	if !options.DryRun {
		if err := store.RecordImportBatch(storage.ImportBatch{
			ID:             result.BatchID,
			Brand:          options.Brand,
			Month:          options.Month,
			SourceFile:     result.SourceFile,
			EntriesWritten: result.EntriesWritten,
		}); err != nil {
			return nil, storageFailed(err)
		}
	}

	log.Info("statement import finished",
		zap.String("brand", options.Brand),
		zap.String("month", options.Month),
		zap.Bool("dry_run", options.DryRun),
		zap.Int("departments", result.Departments),
		zap.Int("entries_written", result.EntriesWritten),
		zap.Int("diagnostics", len(diagnostics)))

	return result, nil
}

// buildEntries flattens one department's resolved values into storable
// entries: plain metrics under their name, sub-metrics under the
// canonical sub:<parent>:<order>:<name> key so display order survives
// storage.
func buildEntries(month, batchID string, values *finance.DeptValues) []finance.Entry {
	metrics := make([]string, 0, len(values.Metrics))
	for metric := range values.Metrics {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	entries := make([]finance.Entry, 0, len(metrics))
	for _, metric := range metrics {
		entries = append(entries, finance.Entry{
			Month:      month,
			MetricName: metric,
			Value:      values.Metrics[metric],
			BatchID:    batchID,
		})
	}

	parents := make([]string, 0, len(values.SubMetrics))
	for parent := range values.SubMetrics {
		parents = append(parents, parent)
	}
	sort.Strings(parents)

	for _, parent := range parents {
		for _, sub := range values.SubMetrics[parent] {
			key := mapping.SubMetricKey{Parent: parent, Order: sub.Order, Name: sub.Name}
			entries = append(entries, finance.Entry{
				Month:      month,
				MetricName: key.String(),
				Value:      sub.Value,
				BatchID:    batchID,
			})
		}
	}

	return entries
}
