package storage

import (
	"dealerops/finance"
	"dealerops/mapping"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return parsed
}

func TestEnsureDepartment_ReusesRow(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "dealerops_test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	first, err := store.EnsureDepartment("nissan", "New Vehicle")
	if err != nil {
		t.Fatalf("ensure department: %v", err)
	}
	if first.ID <= 0 {
		t.Fatalf("expected positive id, got %d", first.ID)
	}

	again, err := store.EnsureDepartment("nissan", "New Vehicle")
	if err != nil {
		t.Fatalf("ensure department again: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected same id %d, got %d", first.ID, again.ID)
	}

	other, err := store.EnsureDepartment("nissan", "Used Vehicle")
	if err != nil {
		t.Fatalf("ensure other department: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("expected distinct id for distinct name")
	}

	departments, err := store.ListDepartments("nissan")
	if err != nil {
		t.Fatalf("list departments: %v", err)
	}
	if len(departments) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(departments))
	}

	brands, err := store.ListBrands()
	if err != nil {
		t.Fatalf("list brands: %v", err)
	}
	if len(brands) != 1 || brands[0] != "nissan" {
		t.Fatalf("unexpected brands: %v", brands)
	}
}

func TestCellMappings_InsertListDelete(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "dealerops_test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	id, err := store.InsertCellMapping(mapping.CellMapping{
		Brand:      "nissan",
		Department: "New Vehicle",
		MetricKey:  "total_sales",
		SheetName:  "Nissan 5",
		CellRef:    "B12",
	})
	if err != nil {
		t.Fatalf("insert cell mapping: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	_, err = store.InsertCellMapping(mapping.CellMapping{
		Brand:         "nissan",
		Department:    "New Vehicle",
		MetricKey:     "sub:total_sales:001:Retail",
		SheetName:     "Nissan 5",
		CellRef:       "B13",
		NameCellRef:   "A13",
		ParentMetric:  "total_sales",
		EffectiveYear: 2026,
	})
	if err != nil {
		t.Fatalf("insert sub-metric mapping: %v", err)
	}

	listed, err := store.ListCellMappings("nissan")
	if err != nil {
		t.Fatalf("list cell mappings: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(listed))
	}

	got, found, err := store.GetCellMappingByID(id)
	if err != nil {
		t.Fatalf("get cell mapping: %v", err)
	}
	if !found {
		t.Fatalf("expected found=true")
	}
	if got.MetricKey != "total_sales" || got.CellRef != "B12" || got.SheetName != "Nissan 5" {
		t.Fatalf("unexpected mapping: %+v", got)
	}

	removed, err := store.DeleteCellMapping(id)
	if err != nil {
		t.Fatalf("delete cell mapping: %v", err)
	}
	if !removed {
		t.Fatalf("expected removed=true")
	}

	listed, err = store.ListCellMappings("nissan")
	if err != nil {
		t.Fatalf("list cell mappings: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 mapping after delete, got %d", len(listed))
	}

	removed, err = store.DeleteCellMapping(9999)
	if err != nil {
		t.Fatalf("delete missing mapping: %v", err)
	}
	if removed {
		t.Fatalf("expected removed=false for missing id")
	}
}

func TestUpsertCellMappings_OverwritesByKey(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "dealerops_test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	written, err := store.UpsertCellMappings([]mapping.CellMapping{
		{Brand: "nissan", Department: "Service", MetricKey: "gross_profit", SheetName: "Nissan 7", CellRef: "C4"},
	})
	if err != nil {
		t.Fatalf("upsert cell mappings: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected 1 written row, got %d", written)
	}

	listed, err := store.ListCellMappings("nissan")
	if err != nil {
		t.Fatalf("list cell mappings: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 mapping, got %d", len(listed))
	}
	originalID := listed[0].ID

	written, err = store.UpsertCellMappings([]mapping.CellMapping{
		{Brand: "nissan", Department: "Service", MetricKey: "gross_profit", SheetName: "Nissan 7", CellRef: "D4"},
	})
	if err != nil {
		t.Fatalf("upsert cell mappings again: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected 1 written row, got %d", written)
	}

	listed, err = store.ListCellMappings("nissan")
	if err != nil {
		t.Fatalf("list cell mappings: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 mapping after overwrite, got %d", len(listed))
	}
	if listed[0].CellRef != "D4" {
		t.Fatalf("expected overwritten cell reference D4, got %q", listed[0].CellRef)
	}
	if listed[0].ID != originalID {
		t.Fatalf("expected stable id %d, got %d", originalID, listed[0].ID)
	}
}

func TestReplaceDepartmentMonth_Idempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "dealerops_test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	dept, err := store.EnsureDepartment("nissan", "New Vehicle")
	if err != nil {
		t.Fatalf("ensure department: %v", err)
	}

	inserted, err := store.ReplaceDepartmentMonth(dept.ID, "2026-02", []finance.Entry{
		{MetricName: "total_sales", Value: mustDecimal(t, "125000.50"), BatchID: "batch-1"},
		{MetricName: "gross_profit", Value: mustDecimal(t, "-3250.00"), BatchID: "batch-1"},
		{MetricName: "sub:total_sales:001:Retail", Value: mustDecimal(t, "90000"), BatchID: "batch-1"},
	}, map[string]decimal.Decimal{
		"total_sales:Retail": mustDecimal(t, "190000"),
	})
	if err != nil {
		t.Fatalf("replace department month: %v", err)
	}
	if inserted != 3 {
		t.Fatalf("expected 3 inserted entries, got %d", inserted)
	}

	entries, err := store.ListDepartmentEntries(dept.ID, "2026-02")
	if err != nil {
		t.Fatalf("list department entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 stored entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.MetricName == "gross_profit" && !entry.Value.Equal(mustDecimal(t, "-3250")) {
			t.Fatalf("unexpected gross_profit value: %s", entry.Value)
		}
		if entry.BatchID != "batch-1" {
			t.Fatalf("unexpected batch id: %q", entry.BatchID)
		}
	}

	inserted, err = store.ReplaceDepartmentMonth(dept.ID, "2026-02", []finance.Entry{
		{MetricName: "total_sales", Value: mustDecimal(t, "126000"), BatchID: "batch-2"},
		{MetricName: "gross_profit", Value: mustDecimal(t, "-3000"), BatchID: "batch-2"},
	}, map[string]decimal.Decimal{
		"total_sales:Retail": mustDecimal(t, "191000"),
	})
	if err != nil {
		t.Fatalf("replace department month again: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted entries, got %d", inserted)
	}

	entries, err = store.ListDepartmentEntries(dept.ID, "2026-02")
	if err != nil {
		t.Fatalf("list department entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 stored entries after replace, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.BatchID != "batch-2" {
			t.Fatalf("expected batch-2 rows only, got %q", entry.BatchID)
		}
	}

	snapshots, err := store.GetSnapshots("nissan", "2026-02")
	if err != nil {
		t.Fatalf("get snapshots: %v", err)
	}
	value, ok := snapshots["New Vehicle"]["total_sales:Retail"]
	if !ok {
		t.Fatalf("expected snapshot for New Vehicle, got %v", snapshots)
	}
	if !value.Equal(mustDecimal(t, "191000")) {
		t.Fatalf("expected replaced snapshot 191000, got %s", value)
	}
}

func TestListMonthEntries_FiltersByBrand(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "dealerops_test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	nissan, err := store.EnsureDepartment("nissan", "New Vehicle")
	if err != nil {
		t.Fatalf("ensure nissan department: %v", err)
	}
	honda, err := store.EnsureDepartment("honda", "New Vehicle")
	if err != nil {
		t.Fatalf("ensure honda department: %v", err)
	}

	if _, err := store.ReplaceDepartmentMonth(nissan.ID, "2026-02", []finance.Entry{
		{MetricName: "total_sales", Value: mustDecimal(t, "100"), BatchID: "b1"},
	}, nil); err != nil {
		t.Fatalf("replace nissan month: %v", err)
	}
	if _, err := store.ReplaceDepartmentMonth(honda.ID, "2026-02", []finance.Entry{
		{MetricName: "total_sales", Value: mustDecimal(t, "200"), BatchID: "b2"},
	}, nil); err != nil {
		t.Fatalf("replace honda month: %v", err)
	}

	all, err := store.ListMonthEntries("2026-02", "")
	if err != nil {
		t.Fatalf("list month entries: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries across brands, got %d", len(all))
	}

	nissanOnly, err := store.ListMonthEntries("2026-02", "nissan")
	if err != nil {
		t.Fatalf("list nissan entries: %v", err)
	}
	if len(nissanOnly) != 1 {
		t.Fatalf("expected 1 nissan entry, got %d", len(nissanOnly))
	}
	if nissanOnly[0].Brand != "nissan" || nissanOnly[0].Department != "New Vehicle" {
		t.Fatalf("unexpected joined entry: %+v", nissanOnly[0])
	}
	if !nissanOnly[0].Value.Equal(mustDecimal(t, "100")) {
		t.Fatalf("unexpected value: %s", nissanOnly[0].Value)
	}

	months, err := store.ListMonths()
	if err != nil {
		t.Fatalf("list months: %v", err)
	}
	if len(months) != 1 || months[0] != "2026-02" {
		t.Fatalf("unexpected months: %v", months)
	}
}

func TestStatementFromEntries_DecodesSubMetricKeys(t *testing.T) {
	t.Parallel()

	entries := []DepartmentEntry{
		{Entry: finance.Entry{MetricName: "total_sales", Value: mustDecimal(t, "125000.50")}, Brand: "nissan", Department: "New Vehicle"},
		{Entry: finance.Entry{MetricName: "sub:total_sales:002:Fleet", Value: mustDecimal(t, "35000.50")}, Brand: "nissan", Department: "New Vehicle"},
		{Entry: finance.Entry{MetricName: "sub:total_sales:001:Retail", Value: mustDecimal(t, "90000")}, Brand: "nissan", Department: "New Vehicle"},
		{Entry: finance.Entry{MetricName: "gross_profit", Value: mustDecimal(t, "15250.25")}, Brand: "nissan", Department: "Used Vehicle"},
	}

	statement := StatementFromEntries("nissan", "2026-02", entries)

	if statement.Brand != "nissan" || statement.Month != "2026-02" {
		t.Fatalf("unexpected statement identity: %s %s", statement.Brand, statement.Month)
	}
	if names := statement.DepartmentNames(); len(names) != 2 {
		t.Fatalf("expected 2 departments, got %v", names)
	}

	values := statement.Departments["New Vehicle"]
	if !values.Metrics["total_sales"].Equal(mustDecimal(t, "125000.50")) {
		t.Fatalf("unexpected parent value %s", values.Metrics["total_sales"])
	}
	subs := values.SubMetrics["total_sales"]
	if len(subs) != 2 || subs[0].Name != "Retail" || subs[1].Name != "Fleet" {
		t.Fatalf("expected subs ordered Retail then Fleet, got %+v", subs)
	}
	if subs[0].Order != 1 || subs[1].Order != 2 {
		t.Fatalf("unexpected sub orders: %+v", subs)
	}
}

func TestDeleteMonthEntries_KeepsSnapshots(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "dealerops_test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	nissan, err := store.EnsureDepartment("nissan", "Service")
	if err != nil {
		t.Fatalf("ensure nissan department: %v", err)
	}
	honda, err := store.EnsureDepartment("honda", "Service")
	if err != nil {
		t.Fatalf("ensure honda department: %v", err)
	}

	if _, err := store.ReplaceDepartmentMonth(nissan.ID, "2026-02", []finance.Entry{
		{MetricName: "labor_sales", Value: mustDecimal(t, "400"), BatchID: "b1"},
	}, map[string]decimal.Decimal{"labor_sales:Customer": mustDecimal(t, "900")}); err != nil {
		t.Fatalf("replace nissan month: %v", err)
	}
	if _, err := store.ReplaceDepartmentMonth(honda.ID, "2026-02", []finance.Entry{
		{MetricName: "labor_sales", Value: mustDecimal(t, "500"), BatchID: "b2"},
	}, nil); err != nil {
		t.Fatalf("replace honda month: %v", err)
	}

	deleted, err := store.DeleteMonthEntries("2026-02", "nissan")
	if err != nil {
		t.Fatalf("delete month entries: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted entry, got %d", deleted)
	}

	remaining, err := store.ListMonthEntries("2026-02", "")
	if err != nil {
		t.Fatalf("list month entries: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Brand != "honda" {
		t.Fatalf("expected only honda entries to remain, got %+v", remaining)
	}

	snapshots, err := store.GetSnapshots("nissan", "2026-02")
	if err != nil {
		t.Fatalf("get snapshots: %v", err)
	}
	if _, ok := snapshots["Service"]["labor_sales:Customer"]; !ok {
		t.Fatalf("expected snapshots to survive entry delete, got %v", snapshots)
	}
}

func TestImportBatches_RecordAndList(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "dealerops_test.db")
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	older := ImportBatch{
		ID:             "batch-old",
		Brand:          "nissan",
		Month:          "2026-01",
		SourceFile:     "january.xlsx",
		EntriesWritten: 42,
		CreatedAt:      time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	newer := ImportBatch{
		ID:             "batch-new",
		Brand:          "nissan",
		Month:          "2026-02",
		SourceFile:     "february.xlsx",
		EntriesWritten: 45,
		CreatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	if err := store.RecordImportBatch(older); err != nil {
		t.Fatalf("record older batch: %v", err)
	}
	if err := store.RecordImportBatch(newer); err != nil {
		t.Fatalf("record newer batch: %v", err)
	}

	batches, err := store.ListImportBatches(1)
	if err != nil {
		t.Fatalf("list import batches: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if batches[0].ID != "batch-new" {
		t.Fatalf("expected most recent batch first, got %q", batches[0].ID)
	}
	if batches[0].EntriesWritten != 45 || batches[0].Month != "2026-02" {
		t.Fatalf("unexpected batch fields: %+v", batches[0])
	}
	if !batches[0].CreatedAt.Equal(newer.CreatedAt) {
		t.Fatalf("unexpected created at: %v", batches[0].CreatedAt)
	}
}
