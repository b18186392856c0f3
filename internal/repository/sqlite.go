package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/invoicevault/template-engine/internal/common"
	"github.com/invoicevault/template-engine/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS templates (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	vendor      TEXT NOT NULL DEFAULT '',
	version     TEXT NOT NULL DEFAULT '1.0',
	is_active   INTEGER NOT NULL DEFAULT 1,
	definition  TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS test_results (
	id             TEXT PRIMARY KEY,
	template_id    TEXT NOT NULL REFERENCES templates(id),
	success        INTEGER NOT NULL,
	match_score    REAL NOT NULL,
	fields_matched INTEGER NOT NULL,
	fields_total   INTEGER NOT NULL,
	notes          TEXT,
	extracted_json TEXT,
	tested_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_test_results_template ON test_results(template_id, tested_at);
`

// SQLiteStore is an embedded template + test-result store for local and CLI
// workflows.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the store at path and ensures the
// schema exists.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite store")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "apply sqlite schema")
	}
	logger.Info("sqlite store ready", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) ListActive(ctx context.Context) ([]*entity.TemplateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, vendor, version, is_active, definition, created_at, updated_at
		FROM templates WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, common.WrapError(err, "list active templates")
	}
	defer rows.Close()

	var records []*entity.TemplateRecord
	for rows.Next() {
		rec, err := scanTemplateRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.TemplateRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, vendor, version, is_active, definition, created_at, updated_at
		FROM templates WHERE id = ?`, id.String())
	rec, err := scanTemplateRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("TEMPLATE_NOT_FOUND", fmt.Sprintf("template %s", id), common.ErrNotFound)
	}
	return rec, err
}

func (s *SQLiteStore) Save(ctx context.Context, rec *entity.TemplateRecord) error {
	definition, err := json.Marshal(rec.Definition)
	if err != nil {
		return common.WrapError(err, "encode template definition")
	}
	now := time.Now().UTC()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, vendor, version, is_active, definition, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, vendor = excluded.vendor, version = excluded.version,
			is_active = excluded.is_active, definition = excluded.definition,
			updated_at = excluded.updated_at`,
		rec.ID.String(), rec.Name, rec.Vendor, rec.Version, boolToInt(rec.IsActive),
		string(definition), rec.CreatedAt.Format(time.RFC3339), rec.UpdatedAt.Format(time.RFC3339))
	return common.WrapError(err, "save template")
}

func (s *SQLiteStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE templates SET is_active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), time.Now().UTC().Format(time.RFC3339), id.String())
	if err != nil {
		return common.WrapError(err, "set template active")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NewAppError("TEMPLATE_NOT_FOUND", fmt.Sprintf("template %s", id), common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) SaveTestResult(ctx context.Context, res *entity.TestResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.TestedAt.IsZero() {
		res.TestedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO test_results (id, template_id, success, match_score, fields_matched, fields_total, notes, extracted_json, tested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID.String(), res.TemplateID.String(), boolToInt(res.Success), res.MatchScore,
		res.FieldsMatched, res.FieldsTotal, res.Notes, nullableBytes(res.ExtractedJSON),
		res.TestedAt.Format(time.RFC3339))
	return common.WrapError(err, "save test result")
}

func (s *SQLiteStore) ListByTemplate(ctx context.Context, templateID uuid.UUID, limit int) ([]*entity.TestResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_id, success, match_score, fields_matched, fields_total, notes, extracted_json, tested_at
		FROM test_results WHERE template_id = ? ORDER BY tested_at DESC LIMIT ?`,
		templateID.String(), limit)
	if err != nil {
		return nil, common.WrapError(err, "list test results")
	}
	defer rows.Close()

	var results []*entity.TestResult
	for rows.Next() {
		res, err := scanTestResultRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// scanTemplateRow decodes one templates row; shared between sqlite and
// postgres since both store the definition as a JSON document.
func scanTemplateRow(scan func(dest ...any) error) (*entity.TemplateRecord, error) {
	var (
		idStr, definition    string
		createdAt, updatedAt string
		rec                  entity.TemplateRecord
		active               int
	)
	if err := scan(&idStr, &rec.Name, &rec.Vendor, &rec.Version, &active, &definition, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, common.WrapError(err, "parse template id")
	}
	rec.ID = id
	rec.IsActive = active != 0
	if err := json.Unmarshal([]byte(definition), &rec.Definition); err != nil {
		return nil, common.WrapError(err, "decode template definition")
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		rec.UpdatedAt = t
	}
	return &rec, nil
}

func scanTestResultRow(scan func(dest ...any) error) (*entity.TestResult, error) {
	var (
		idStr, templateIDStr, testedAt string
		notes                          sql.NullString
		extracted                      sql.NullString
		success                        int
		res                            entity.TestResult
	)
	if err := scan(&idStr, &templateIDStr, &success, &res.MatchScore, &res.FieldsMatched, &res.FieldsTotal, &notes, &extracted, &testedAt); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, common.WrapError(err, "parse result id")
	}
	templateID, err := uuid.Parse(templateIDStr)
	if err != nil {
		return nil, common.WrapError(err, "parse result template id")
	}
	res.ID = id
	res.TemplateID = templateID
	res.Success = success != 0
	if notes.Valid {
		res.Notes = &notes.String
	}
	if extracted.Valid {
		res.ExtractedJSON = []byte(extracted.String)
	}
	if t, err := time.Parse(time.RFC3339, testedAt); err == nil {
		res.TestedAt = t
	}
	return &res, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
