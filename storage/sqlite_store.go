package storage

import (
	"database/sql"
	"dealerops/finance"
	"dealerops/mapping"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	// NOTE: databases created before effective_year existed keep their
	// original UNIQUE(brand, department_name, metric_key) index after the
	// column is added, so year-scoped duplicates of a mapping need a
	// recreated database.
	const schema = `
CREATE TABLE IF NOT EXISTS departments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	brand TEXT NOT NULL,
	name TEXT NOT NULL,
	UNIQUE(brand, name)
);

CREATE TABLE IF NOT EXISTS cell_mappings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	brand TEXT NOT NULL,
	department_name TEXT NOT NULL,
	metric_key TEXT NOT NULL,
	sheet_name TEXT NOT NULL,
	cell_reference TEXT NOT NULL,
	name_cell_reference TEXT NOT NULL DEFAULT '',
	parent_metric TEXT NOT NULL DEFAULT '',
	effective_year INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(brand, department_name, metric_key, effective_year)
);

CREATE TABLE IF NOT EXISTS financial_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	department_id INTEGER NOT NULL REFERENCES departments(id),
	month TEXT NOT NULL,
	metric_name TEXT NOT NULL,
	value TEXT NOT NULL,
	batch_id TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(department_id, month, metric_name)
);

CREATE TABLE IF NOT EXISTS ytd_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	department_id INTEGER NOT NULL REFERENCES departments(id),
	month TEXT NOT NULL,
	metric_name TEXT NOT NULL,
	ytd_value TEXT NOT NULL,
	UNIQUE(department_id, month, metric_name)
);

CREATE TABLE IF NOT EXISTS import_batches (
	id TEXT PRIMARY KEY,
	brand TEXT NOT NULL,
	month TEXT NOT NULL,
	source_file TEXT NOT NULL,
	entries_written INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := s.ensureEffectiveYearColumn(); err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) ensureEffectiveYearColumn() error {
	rows, err := s.db.Query(`PRAGMA table_info(cell_mappings);`)
	if err != nil {
		return fmt.Errorf("query table info: %w", err)
	}
	defer rows.Close()

	hasEffectiveYear := false
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan table info: %w", err)
		}
		if strings.EqualFold(name, "effective_year") {
			hasEffectiveYear = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info: %w", err)
	}

	if hasEffectiveYear {
		return nil
	}

	if _, err := s.db.Exec(`ALTER TABLE cell_mappings ADD COLUMN effective_year INTEGER NOT NULL DEFAULT 0;`); err != nil {
		return fmt.Errorf("add effective_year column: %w", err)
	}

	return nil
}

// EnsureDepartment returns the department row for the brand and name,
// creating it on first use.
func (s *SQLiteStore) EnsureDepartment(brand, name string) (finance.Department, error) {
	if strings.TrimSpace(brand) == "" || strings.TrimSpace(name) == "" {
		return finance.Department{}, fmt.Errorf("brand and department name must not be empty")
	}

	if _, err := s.db.Exec(`INSERT OR IGNORE INTO departments (brand, name) VALUES (?, ?);`, brand, name); err != nil {
		return finance.Department{}, fmt.Errorf("insert department: %w", err)
	}

	var id int64
	err := s.db.QueryRow(`SELECT id FROM departments WHERE brand = ? AND name = ?;`, brand, name).Scan(&id)
	if err != nil {
		return finance.Department{}, fmt.Errorf("query department %s/%s: %w", brand, name, err)
	}

	return finance.Department{ID: id, Brand: brand, Name: name}, nil
}

func (s *SQLiteStore) ListDepartments(brand string) ([]finance.Department, error) {
	const query = `SELECT id, brand, name FROM departments ORDER BY brand, name;`
	const queryByBrand = `SELECT id, brand, name FROM departments WHERE brand = ? ORDER BY name;`

	var (
		rows *sql.Rows
		err  error
	)
	if brand == "" {
		rows, err = s.db.Query(query)
	} else {
		rows, err = s.db.Query(queryByBrand, brand)
	}
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	departments := make([]finance.Department, 0, 16)
	for rows.Next() {
		var dept finance.Department
		if err := rows.Scan(&dept.ID, &dept.Brand, &dept.Name); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, dept)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}

	return departments, nil
}

func (s *SQLiteStore) ListBrands() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT brand FROM departments ORDER BY brand;`)
	if err != nil {
		return nil, fmt.Errorf("query brands: %w", err)
	}
	defer rows.Close()

	brands := make([]string, 0, 4)
	for rows.Next() {
		var brand string
		if err := rows.Scan(&brand); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, brand)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brands: %w", err)
	}

	return brands, nil
}

// InsertCellMapping inserts one mapping and returns the new row ID. A
// mapping that collides on (brand, department, metric key, year) is an
// error; use UpsertCellMappings to overwrite.
func (s *SQLiteStore) InsertCellMapping(m mapping.CellMapping) (int64, error) {
	const insertStmt = `
INSERT INTO cell_mappings (
	brand,
	department_name,
	metric_key,
	sheet_name,
	cell_reference,
	name_cell_reference,
	parent_metric,
	effective_year
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := s.db.Exec(
		insertStmt,
		m.Brand,
		m.Department,
		m.MetricKey,
		m.SheetName,
		m.CellRef,
		m.NameCellRef,
		m.ParentMetric,
		m.EffectiveYear,
	)
	if err != nil {
		return 0, fmt.Errorf("insert cell mapping: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted row id: %w", err)
	}
	return id, nil
}

// UpsertCellMappings inserts or overwrites mappings in one transaction,
// matching on (brand, department, metric key, year). Row IDs of updated
// mappings are preserved. Returns the number of rows written.
func (s *SQLiteStore) UpsertCellMappings(mappings []mapping.CellMapping) (int, error) {
	if len(mappings) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	const upsertStmt = `
INSERT INTO cell_mappings (
	brand,
	department_name,
	metric_key,
	sheet_name,
	cell_reference,
	name_cell_reference,
	parent_metric,
	effective_year
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(brand, department_name, metric_key, effective_year) DO UPDATE SET
	sheet_name = excluded.sheet_name,
	cell_reference = excluded.cell_reference,
	name_cell_reference = excluded.name_cell_reference,
	parent_metric = excluded.parent_metric;`

	stmt, err := tx.Prepare(upsertStmt)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare upsert statement: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, m := range mappings {
		res, err := stmt.Exec(
			m.Brand,
			m.Department,
			m.MetricKey,
			m.SheetName,
			m.CellRef,
			m.NameCellRef,
			m.ParentMetric,
			m.EffectiveYear,
		)
		if err != nil {
			_ = tx.Rollback()
			return written, fmt.Errorf("upsert cell mapping %s/%s: %w", m.Department, m.MetricKey, err)
		}

		rows, err := res.RowsAffected()
		if err == nil && rows > 0 {
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return written, fmt.Errorf("commit transaction: %w", err)
	}

	return written, nil
}

func (s *SQLiteStore) ListCellMappings(brand string) ([]mapping.CellMapping, error) {
	const query = `
SELECT
	id,
	brand,
	department_name,
	metric_key,
	sheet_name,
	cell_reference,
	name_cell_reference,
	parent_metric,
	effective_year
FROM cell_mappings
ORDER BY brand, department_name, metric_key, effective_year;
`
	const queryByBrand = `
SELECT
	id,
	brand,
	department_name,
	metric_key,
	sheet_name,
	cell_reference,
	name_cell_reference,
	parent_metric,
	effective_year
FROM cell_mappings
WHERE brand = ?
ORDER BY department_name, metric_key, effective_year;
`

	var (
		rows *sql.Rows
		err  error
	)
	if brand == "" {
		rows, err = s.db.Query(query)
	} else {
		rows, err = s.db.Query(queryByBrand, brand)
	}
	if err != nil {
		return nil, fmt.Errorf("query cell mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]mapping.CellMapping, 0, 64)
	for rows.Next() {
		var m mapping.CellMapping
		if err := rows.Scan(
			&m.ID,
			&m.Brand,
			&m.Department,
			&m.MetricKey,
			&m.SheetName,
			&m.CellRef,
			&m.NameCellRef,
			&m.ParentMetric,
			&m.EffectiveYear,
		); err != nil {
			return nil, fmt.Errorf("scan cell mapping: %w", err)
		}
		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cell mappings: %w", err)
	}

	return mappings, nil
}

// GetCellMappingByID returns one mapping by ID.
func (s *SQLiteStore) GetCellMappingByID(id int64) (mapping.CellMapping, bool, error) {
	if id <= 0 {
		return mapping.CellMapping{}, false, fmt.Errorf("mapping id must be > 0")
	}

	const query = `
SELECT
	id,
	brand,
	department_name,
	metric_key,
	sheet_name,
	cell_reference,
	name_cell_reference,
	parent_metric,
	effective_year
FROM cell_mappings
WHERE id = ?;
`

	var m mapping.CellMapping
	err := s.db.QueryRow(query, id).Scan(
		&m.ID,
		&m.Brand,
		&m.Department,
		&m.MetricKey,
		&m.SheetName,
		&m.CellRef,
		&m.NameCellRef,
		&m.ParentMetric,
		&m.EffectiveYear,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mapping.CellMapping{}, false, nil
		}
		return mapping.CellMapping{}, false, fmt.Errorf("query cell mapping %d: %w", id, err)
	}

	return m, true, nil
}

// DeleteCellMapping removes the mapping with the given ID.
func (s *SQLiteStore) DeleteCellMapping(id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("mapping id must be > 0")
	}

	res, err := s.db.Exec(`DELETE FROM cell_mappings WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete cell mapping %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	return rowsAffected > 0, nil
}

// ReplaceDepartmentMonth replaces everything stored for one department
// and month in a single transaction: existing entries and snapshots for
// the month are deleted, then the given ones inserted. Re-importing a
// statement is therefore idempotent. Returns the number of entries
// written.
func (s *SQLiteStore) ReplaceDepartmentMonth(departmentID int64, month string, entries []finance.Entry, snapshots map[string]decimal.Decimal) (int, error) {
	if departmentID <= 0 {
		return 0, fmt.Errorf("department id must be > 0")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM financial_entries WHERE department_id = ? AND month = ?;`, departmentID, month); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("clear month entries: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM ytd_snapshots WHERE department_id = ? AND month = ?;`, departmentID, month); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("clear month snapshots: %w", err)
	}

	const insertEntryStmt = `
INSERT INTO financial_entries (
	department_id,
	month,
	metric_name,
	value,
	batch_id
) VALUES (?, ?, ?, ?, ?);`

	stmt, err := tx.Prepare(insertEntryStmt)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, entry := range entries {
		res, err := stmt.Exec(
			departmentID,
			month,
			entry.MetricName,
			entry.Value.String(),
			entry.BatchID,
		)
		if err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("insert entry %q: %w", entry.MetricName, err)
		}

		rows, err := res.RowsAffected()
		if err == nil && rows > 0 {
			inserted++
		}
	}

	const insertSnapshotStmt = `
INSERT INTO ytd_snapshots (
	department_id,
	month,
	metric_name,
	ytd_value
) VALUES (?, ?, ?, ?);`

	snapStmt, err := tx.Prepare(insertSnapshotStmt)
	if err != nil {
		_ = tx.Rollback()
		return inserted, fmt.Errorf("prepare snapshot statement: %w", err)
	}
	defer snapStmt.Close()

	for metric, value := range snapshots {
		if _, err := snapStmt.Exec(departmentID, month, metric, value.String()); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("insert snapshot %q: %w", metric, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit transaction: %w", err)
	}

	return inserted, nil
}

func (s *SQLiteStore) ListDepartmentEntries(departmentID int64, month string) ([]finance.Entry, error) {
	if departmentID <= 0 {
		return nil, fmt.Errorf("department id must be > 0")
	}

	const query = `
SELECT
	id,
	department_id,
	month,
	metric_name,
	value,
	batch_id
FROM financial_entries
WHERE department_id = ? AND month = ?
ORDER BY metric_name, id;
`

	rows, err := s.db.Query(query, departmentID, month)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]finance.Entry, 0, 32)
	for rows.Next() {
		var (
			entry    finance.Entry
			valueRaw string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.DepartmentID,
			&entry.Month,
			&entry.MetricName,
			&valueRaw,
			&entry.BatchID,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		entry.Value, err = decimal.NewFromString(valueRaw)
		if err != nil {
			return nil, fmt.Errorf("parse stored value %q: %w", valueRaw, err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// DepartmentEntry is a financial entry joined with its department row
// for display and export.
type DepartmentEntry struct {
	finance.Entry
	Brand      string
	Department string
}

// ListMonthEntries returns all entries for a month joined with their
// departments. An empty brand matches every brand.
func (s *SQLiteStore) ListMonthEntries(month, brand string) ([]DepartmentEntry, error) {
	const query = `
SELECT
	e.id,
	e.department_id,
	e.month,
	e.metric_name,
	e.value,
	e.batch_id,
	d.brand,
	d.name
FROM financial_entries e
JOIN departments d ON d.id = e.department_id
WHERE e.month = ?
ORDER BY d.brand, d.name, e.metric_name, e.id;
`
	const queryByBrand = `
SELECT
	e.id,
	e.department_id,
	e.month,
	e.metric_name,
	e.value,
	e.batch_id,
	d.brand,
	d.name
FROM financial_entries e
JOIN departments d ON d.id = e.department_id
WHERE e.month = ? AND d.brand = ?
ORDER BY d.name, e.metric_name, e.id;
`

	var (
		rows *sql.Rows
		err  error
	)
	if brand == "" {
		rows, err = s.db.Query(query, month)
	} else {
		rows, err = s.db.Query(queryByBrand, month, brand)
	}
	if err != nil {
		return nil, fmt.Errorf("query month entries: %w", err)
	}
	defer rows.Close()

	entries := make([]DepartmentEntry, 0, 128)
	for rows.Next() {
		var (
			entry    DepartmentEntry
			valueRaw string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.DepartmentID,
			&entry.Month,
			&entry.MetricName,
			&valueRaw,
			&entry.BatchID,
			&entry.Brand,
			&entry.Department,
		); err != nil {
			return nil, fmt.Errorf("scan month entry: %w", err)
		}

		entry.Value, err = decimal.NewFromString(valueRaw)
		if err != nil {
			return nil, fmt.Errorf("parse stored value %q: %w", valueRaw, err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month entries: %w", err)
	}

	return entries, nil
}

// StatementFromEntries folds stored rows back into the statement shape,
// decoding packed sub-metric keys into ordered components.
func StatementFromEntries(brand, month string, entries []DepartmentEntry) *finance.Statement {
	statement := finance.NewStatement(brand, month)
	for _, entry := range entries {
		values := statement.Department(entry.Department)
		if key, ok := mapping.ParseSubMetricKey(entry.MetricName); ok {
			values.AddSubMetric(key.Parent, finance.SubMetric{Name: key.Name, Order: key.Order, Value: entry.Value})
			continue
		}
		values.Metrics[entry.MetricName] = entry.Value
	}
	return statement
}

func (s *SQLiteStore) ListMonths() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT month FROM financial_entries ORDER BY month DESC;`)
	if err != nil {
		return nil, fmt.Errorf("query months: %w", err)
	}
	defer rows.Close()

	months := make([]string, 0, 12)
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		months = append(months, month)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate months: %w", err)
	}

	return months, nil
}

// DeleteMonthEntries removes all entries for a month, optionally scoped
// to one brand. Snapshots for the month are kept so later months can
// still convert year-to-date values.
func (s *SQLiteStore) DeleteMonthEntries(month, brand string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if brand == "" {
		res, err = s.db.Exec(`DELETE FROM financial_entries WHERE month = ?;`, month)
	} else {
		res, err = s.db.Exec(
			`DELETE FROM financial_entries WHERE month = ? AND department_id IN (SELECT id FROM departments WHERE brand = ?);`,
			month, brand,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("delete month entries: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	return rows, nil
}

// GetSnapshots returns the year-to-date snapshots stored for a brand and
// month, keyed by department name.
func (s *SQLiteStore) GetSnapshots(brand, month string) (mapping.Snapshots, error) {
	const query = `
SELECT d.name, y.metric_name, y.ytd_value
FROM ytd_snapshots y
JOIN departments d ON d.id = y.department_id
WHERE d.brand = ? AND y.month = ?;
`

	rows, err := s.db.Query(query, brand, month)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make(mapping.Snapshots)
	for rows.Next() {
		var department, metric, valueRaw string
		if err := rows.Scan(&department, &metric, &valueRaw); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		value, err := decimal.NewFromString(valueRaw)
		if err != nil {
			return nil, fmt.Errorf("parse stored snapshot %q: %w", valueRaw, err)
		}

		metrics, ok := snapshots[department]
		if !ok {
			metrics = make(map[string]decimal.Decimal)
			snapshots[department] = metrics
		}
		metrics[metric] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// ImportBatch records one statement import run.
type ImportBatch struct {
	ID             string
	Brand          string
	Month          string
	SourceFile     string
	EntriesWritten int
	CreatedAt      time.Time
}

func (s *SQLiteStore) RecordImportBatch(batch ImportBatch) error {
	if strings.TrimSpace(batch.ID) == "" {
		return fmt.Errorf("batch id must not be empty")
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	const insertStmt = `
INSERT INTO import_batches (
	id,
	brand,
	month,
	source_file,
	entries_written,
	created_at
) VALUES (?, ?, ?, ?, ?, ?);`

	_, err := s.db.Exec(
		insertStmt,
		batch.ID,
		batch.Brand,
		batch.Month,
		batch.SourceFile,
		batch.EntriesWritten,
		batch.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert import batch: %w", err)
	}

	return nil
}

func (s *SQLiteStore) ListImportBatches(limit int) ([]ImportBatch, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
SELECT
	id,
	brand,
	month,
	source_file,
	entries_written,
	created_at
FROM import_batches
ORDER BY created_at DESC, id
LIMIT ?;
`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("query import batches: %w", err)
	}
	defer rows.Close()

	batches := make([]ImportBatch, 0, limit)
	for rows.Next() {
		var (
			batch      ImportBatch
			createdRaw string
		)
		if err := rows.Scan(
			&batch.ID,
			&batch.Brand,
			&batch.Month,
			&batch.SourceFile,
			&batch.EntriesWritten,
			&createdRaw,
		); err != nil {
			return nil, fmt.Errorf("scan import batch: %w", err)
		}

		batch.CreatedAt, err = time.Parse(time.RFC3339, createdRaw)
		if err != nil {
			return nil, fmt.Errorf("parse created at %q: %w", createdRaw, err)
		}

		batches = append(batches, batch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import batches: %w", err)
	}

	return batches, nil
}
