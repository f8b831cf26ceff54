package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docmcp/internal/model"
	"docmcp/internal/repository"
)

// DB is the subset of database.PostgresGateway the repositories need.
type DB interface {
	DB() (*sql.DB, error)
}

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// Content is stored as JSONB. It uses parameterized queries and contains no business logic.
type DocumentPostgres struct {
	gw DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(gw DB) *DocumentPostgres {
	return &DocumentPostgres{gw: gw}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Insert stores a new document row under a freshly generated UUID.
func (r *DocumentPostgres) Insert(ctx context.Context, rec *model.DocumentRecord) (string, error) {
	db, err := r.gw.DB()
	if err != nil {
		return "", err
	}
	content, err := encodeContent(rec.Content)
	if err != nil {
		return "", err
	}

	const q = `
		INSERT INTO documents (id, path, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id string
	if err := db.QueryRowContext(ctx, q,
		uuid.NewString(),
		rec.Path,
		content,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// FindByID fetches a single document by its ID, optionally constrained to a path.
func (r *DocumentPostgres) FindByID(ctx context.Context, id, pathFilter string) (*model.DocumentRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	db, err := r.gw.DB()
	if err != nil {
		return nil, err
	}

	const (
		qByID = `
		SELECT id, path, content, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
		qByIDAndPath = `
		SELECT id, path, content, created_at, updated_at
		FROM documents
		WHERE id = $1 AND path = $2
	`
	)
	var row *sql.Row
	if pathFilter == "" {
		row = db.QueryRowContext(ctx, qByID, id)
	} else {
		row = db.QueryRowContext(ctx, qByIDAndPath, id, pathFilter)
	}

	var (
		d   model.DocumentRecord
		raw []byte
	)
	if err := row.Scan(&d.ID, &d.Path, &raw, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if d.Content, err = decodeContent(raw); err != nil {
		return nil, err
	}
	return &d, nil
}

// Update overwrites path, content and updated_at of an existing row.
func (r *DocumentPostgres) Update(ctx context.Context, id, path string, content map[string]any, updatedAt time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	db, err := r.gw.DB()
	if err != nil {
		return err
	}
	raw, err := encodeContent(content)
	if err != nil {
		return err
	}

	const q = `UPDATE documents SET path = $2, content = $3, updated_at = $4 WHERE id = $1`
	res, err := db.ExecContext(ctx, q, id, path, raw, updatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a document by ID and reports whether a row was removed.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	db, err := r.gw.DB()
	if err != nil {
		return false, err
	}

	const q = `DELETE FROM documents WHERE id = $1`
	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func encodeContent(content map[string]any) ([]byte, error) {
	if content == nil {
		content = map[string]any{}
	}
	b, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	return b, nil
}

func decodeContent(raw []byte) (map[string]any, error) {
	content := map[string]any{}
	if len(raw) == 0 {
		return content, nil
	}
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return content, nil
}
