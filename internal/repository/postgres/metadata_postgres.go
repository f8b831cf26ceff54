package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"docmcp/internal/model"
	"docmcp/internal/repository"
)

// MetadataPostgres is a PostgreSQL implementation of repository.MetadataRepository.
type MetadataPostgres struct {
	gw DB
}

// NewMetadataPostgres creates a new MetadataPostgres repository.
func NewMetadataPostgres(gw DB) *MetadataPostgres {
	return &MetadataPostgres{gw: gw}
}

var _ repository.MetadataRepository = (*MetadataPostgres)(nil)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListByPathPrefix returns rows whose path starts with the literal prefix.
func (r *MetadataPostgres) ListByPathPrefix(ctx context.Context, prefix string) ([]model.FileMetadata, error) {
	db, err := r.gw.DB()
	if err != nil {
		return nil, err
	}

	const q = `
		SELECT path, name, description, file_type, size, created_at, updated_at
		FROM file_metadata
		WHERE path LIKE $1 ESCAPE '\'
		ORDER BY path
	`
	rows, err := db.QueryContext(ctx, q, likeEscaper.Replace(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileMetadata, 0)
	for rows.Next() {
		m, err := scanMetadata(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByPath fetches the metadata row for path.
func (r *MetadataPostgres) FindByPath(ctx context.Context, path string) (*model.FileMetadata, error) {
	db, err := r.gw.DB()
	if err != nil {
		return nil, err
	}

	const q = `
		SELECT path, name, description, file_type, size, created_at, updated_at
		FROM file_metadata
		WHERE path = $1
	`
	m, err := scanMetadata(db.QueryRowContext(ctx, q, path))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// Insert adds a metadata row. A duplicate path violates the primary key.
func (r *MetadataPostgres) Insert(ctx context.Context, meta *model.FileMetadata) error {
	db, err := r.gw.DB()
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO file_metadata (path, name, description, file_type, size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = db.ExecContext(ctx, q, metadataArgs(meta)...)
	return err
}

// Upsert writes every column of the row keyed by path, replacing any previous values.
func (r *MetadataPostgres) Upsert(ctx context.Context, meta *model.FileMetadata) error {
	db, err := r.gw.DB()
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO file_metadata (path, name, description, file_type, size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (path) DO UPDATE SET
			name        = EXCLUDED.name,
			description = EXCLUDED.description,
			file_type   = EXCLUDED.file_type,
			size        = EXCLUDED.size,
			created_at  = EXCLUDED.created_at,
			updated_at  = EXCLUDED.updated_at
	`
	_, err = db.ExecContext(ctx, q, metadataArgs(meta)...)
	return err
}

// DeleteByPath removes the row for path and reports whether one existed.
func (r *MetadataPostgres) DeleteByPath(ctx context.Context, path string) (bool, error) {
	db, err := r.gw.DB()
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM file_metadata WHERE path = $1`, path)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMetadata(s scanner) (*model.FileMetadata, error) {
	var (
		m    model.FileMetadata
		desc sql.NullString
	)
	if err := s.Scan(&m.Path, &m.Name, &desc, &m.FileType, &m.Size, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Description = desc.String
	return &m, nil
}

func metadataArgs(m *model.FileMetadata) []any {
	return []any{
		m.Path,
		m.Name,
		sql.NullString{String: m.Description, Valid: m.Description != ""},
		m.FileType,
		m.Size,
		m.CreatedAt,
		m.UpdatedAt,
	}
}
