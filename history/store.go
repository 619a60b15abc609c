package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mlapp/folio/migrations"
	"github.com/rs/zerolog"
)

const table = "prompt_history"

var columns = []string{
	"id", "created_at", "prompt_type", "prompt", "provider", "model",
	"response", "tokens_used", "response_time_ms", "input_parameters",
}

// Store persists prompt history records.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	logger zerolog.Logger
}

// NewStore creates a Store over an already migrated database.
func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		now:    time.Now,
		logger: logger.With().Str("component", "historyStore").Logger(),
	}
}

// Open opens the SQLite database at path, applies migrations and returns a
// Store over it. Use ":memory:" for a throwaway database.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db, logger), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save validates req and inserts it with the current UTC timestamp.
func (s *Store) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var params any
	if len(req.InputParameters) > 0 {
		data, err := json.Marshal(req.InputParameters)
		if err != nil {
			return nil, &ValidationError{Field: "inputParameters", Message: fmt.Sprintf("inputParameters: %v", err)}
		}
		params = string(data)
	}

	created := s.now().UTC()
	query := sq.Insert(table).
		Columns("created_at", "prompt_type", "prompt", "provider", "model",
			"response", "tokens_used", "response_time_ms", "input_parameters").
		Values(created.UnixMilli(), req.PromptType, req.Prompt, req.Provider, req.Model,
			req.Response, req.TokensUsed, req.ResponseTimeMs, params)

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, queryStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to save prompt history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}

	s.logger.Debug().
		Int64("id", id).
		Str("promptType", req.PromptType).
		Str("provider", req.Provider).
		Msg("Saved prompt history")

	return &SaveResult{
		ID:        id,
		Timestamp: time.UnixMilli(created.UnixMilli()).UTC(),
		Message:   "Prompt saved successfully",
	}, nil
}

// List returns every record, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	return s.query(ctx, sq.Select(columns...).From(table).OrderBy(orderBy(SortDesc)...))
}

// ListByType returns the records with the given prompt type, newest first.
func (s *Store) ListByType(ctx context.Context, promptType string) ([]Record, error) {
	return s.query(ctx, sq.Select(columns...).
		From(table).
		Where(sq.Eq{"prompt_type": promptType}).
		OrderBy(orderBy(SortDesc)...))
}

// Page returns one page of records, optionally filtered by prompt type.
func (s *Store) Page(ctx context.Context, q PageQuery) (*Page, error) {
	offset, err := q.Offset()
	if err != nil {
		return nil, err
	}
	q = q.normalized()

	countQuery := sq.Select("COUNT(*)").From(table)
	selectQuery := sq.Select(columns...).From(table)
	if q.PromptType != "" {
		countQuery = countQuery.Where(sq.Eq{"prompt_type": q.PromptType})
		selectQuery = selectQuery.Where(sq.Eq{"prompt_type": q.PromptType})
	}

	queryStr, args, err := countQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, queryStr, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count prompt history: %w", err)
	}

	records, err := s.query(ctx, selectQuery.
		OrderBy(orderBy(q.Sort)...).
		Limit(uint64(q.Size)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, err
	}

	return &Page{
		Content:     records,
		CurrentPage: q.Page,
		TotalItems:  total,
		TotalPages:  int((total + int64(q.Size) - 1) / int64(q.Size)),
		PageSize:    q.Size,
	}, nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	records, err := s.query(ctx, sq.Select(columns...).From(table).Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFound(id)
	}
	return &records[0], nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	queryStr, args, err := sq.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, queryStr, args...)
	if err != nil {
		return fmt.Errorf("failed to delete prompt history %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *Store) query(ctx context.Context, query sq.SelectBuilder) ([]Record, error) {
	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompt history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // No remedy for rows close errors

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompt history: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec          Record
		createdAt    int64
		tokensUsed   sql.NullInt64
		responseTime sql.NullInt64
		params       sql.NullString
	)
	if err := rows.Scan(&rec.ID, &createdAt, &rec.PromptType, &rec.Prompt, &rec.Provider,
		&rec.Model, &rec.Response, &tokensUsed, &responseTime, &params); err != nil {
		return Record{}, fmt.Errorf("failed to scan prompt history: %w", err)
	}

	rec.Timestamp = time.UnixMilli(createdAt).UTC()
	if tokensUsed.Valid {
		n := int(tokensUsed.Int64)
		rec.TokensUsed = &n
	}
	if responseTime.Valid {
		ms := responseTime.Int64
		rec.ResponseTimeMs = &ms
	}
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &rec.InputParameters); err != nil {
			return Record{}, fmt.Errorf("failed to decode input parameters of record %d: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func orderBy(order SortOrder) []string {
	if order == SortAsc {
		return []string{"created_at ASC", "id ASC"}
	}
	return []string{"created_at DESC", "id DESC"}
}

func notFound(id int64) error {
	return &NotFoundError{ID: id}
}

// IsNotFound checks if an error reports a missing history record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
