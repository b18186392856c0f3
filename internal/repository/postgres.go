package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoicevault/template-engine/internal/common"
	"github.com/invoicevault/template-engine/internal/entity"
)

// PoolConfig mirrors the database section of the app config.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OpenPool creates a pgx pool for the postgres-backed store.
func OpenPool(ctx context.Context, cfg PoolConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "template-engine"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// PostgresStore is the server-side template + test-result store.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{pool: pool, logger: logger}
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*entity.TemplateRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, vendor, version, is_active, definition, created_at, updated_at
		FROM templates WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, common.WrapError(err, "list active templates")
	}
	defer rows.Close()

	var records []*entity.TemplateRecord
	for rows.Next() {
		rec, err := scanPGTemplate(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.TemplateRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, vendor, version, is_active, definition, created_at, updated_at
		FROM templates WHERE id = $1`, id)
	if err != nil {
		return nil, common.WrapError(err, "get template")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, common.WrapError(err, "get template")
		}
		return nil, common.NewAppError("TEMPLATE_NOT_FOUND", fmt.Sprintf("template %s", id), common.ErrNotFound)
	}
	return scanPGTemplate(rows)
}

func (s *PostgresStore) Save(ctx context.Context, rec *entity.TemplateRecord) error {
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

	_, err = s.pool.Exec(ctx, `
		INSERT INTO templates (id, name, vendor, version, is_active, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, vendor = EXCLUDED.vendor, version = EXCLUDED.version,
			is_active = EXCLUDED.is_active, definition = EXCLUDED.definition,
			updated_at = EXCLUDED.updated_at`,
		rec.ID, rec.Name, rec.Vendor, rec.Version, rec.IsActive, definition, rec.CreatedAt, rec.UpdatedAt)
	return common.WrapError(err, "save template")
}

func (s *PostgresStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE templates SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id)
	if err != nil {
		return common.WrapError(err, "set template active")
	}
	if tag.RowsAffected() == 0 {
		return common.NewAppError("TEMPLATE_NOT_FOUND", fmt.Sprintf("template %s", id), common.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) SaveTestResult(ctx context.Context, res *entity.TestResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.TestedAt.IsZero() {
		res.TestedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO test_results (id, template_id, success, match_score, fields_matched, fields_total, notes, extracted_json, tested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.ID, res.TemplateID, res.Success, res.MatchScore, res.FieldsMatched,
		res.FieldsTotal, res.Notes, res.ExtractedJSON, res.TestedAt)
	return common.WrapError(err, "save test result")
}

func (s *PostgresStore) ListByTemplate(ctx context.Context, templateID uuid.UUID, limit int) ([]*entity.TestResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, template_id, success, match_score, fields_matched, fields_total, notes, extracted_json, tested_at
		FROM test_results WHERE template_id = $1 ORDER BY tested_at DESC LIMIT $2`,
		templateID, limit)
	if err != nil {
		return nil, common.WrapError(err, "list test results")
	}
	defer rows.Close()

	var results []*entity.TestResult
	for rows.Next() {
		var res entity.TestResult
		if err := rows.Scan(&res.ID, &res.TemplateID, &res.Success, &res.MatchScore,
			&res.FieldsMatched, &res.FieldsTotal, &res.Notes, &res.ExtractedJSON, &res.TestedAt); err != nil {
			return nil, common.WrapError(err, "scan test result")
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}

func scanPGTemplate(rows pgx.Rows) (*entity.TemplateRecord, error) {
	var rec entity.TemplateRecord
	var definition []byte
	if err := rows.Scan(&rec.ID, &rec.Name, &rec.Vendor, &rec.Version, &rec.IsActive,
		&definition, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, common.WrapError(err, "scan template")
	}
	if err := json.Unmarshal(definition, &rec.Definition); err != nil {
		return nil, common.WrapError(err, "decode template definition")
	}
	return &rec, nil
}
