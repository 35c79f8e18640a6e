package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentInput holds the metadata of an uploaded file. StoragePath is the
// relative path the adapter wrote the bytes to.
type DocumentInput struct {
	Name        string
	ContentType string
	Size        int64
	ClientID    *string
	StoragePath string
}

// DocumentService stores uploaded-file metadata. The bytes themselves live on
// disk; callers resolve StoragePath against the configured upload directory.
type DocumentService interface {
	List(ctx context.Context) ([]Document, error)
	ListForClient(ctx context.Context, clientID string) ([]Document, error)
	Get(ctx context.Context, id string) (*Document, error)
	Create(ctx context.Context, input DocumentInput) (*Document, error)
	Delete(ctx context.Context, id string) (*Document, error)
}

type documentService struct {
	pool *pgxpool.Pool
}

// NewDocumentService constructs a DocumentService backed by PostgreSQL.
func NewDocumentService(pool *pgxpool.Pool) DocumentService {
	return &documentService{pool: pool}
}

const documentColumns = `id, name, content_type, size, client_id, storage_path, created_at`

func scanDocument(row pgx.Row) (*Document, error) {
	d := &Document{}
	err := row.Scan(&d.ID, &d.Name, &d.ContentType, &d.Size, &d.ClientID,
		&d.StoragePath, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *documentService) list(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (s *documentService) List(ctx context.Context) ([]Document, error) {
	return s.list(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY created_at DESC")
}

func (s *documentService) ListForClient(ctx context.Context, clientID string) ([]Document, error) {
	return s.list(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE client_id = $1 ORDER BY created_at DESC",
		clientID)
}

func (s *documentService) Get(ctx context.Context, id string) (*Document, error) {
	d, err := scanDocument(s.pool.QueryRow(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return d, nil
}

func (s *documentService) Create(ctx context.Context, input DocumentInput) (*Document, error) {
	d, err := scanDocument(s.pool.QueryRow(ctx, `
		INSERT INTO documents (id, name, content_type, size, client_id, storage_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING `+documentColumns,
		uuid.NewString(), input.Name, input.ContentType, input.Size,
		input.ClientID, input.StoragePath,
	))
	if err != nil {
		return nil, fmt.Errorf("create document %q: %w", input.Name, err)
	}
	return d, nil
}

// Delete removes the metadata row and returns it so the caller can remove
// the file from disk.
func (s *documentService) Delete(ctx context.Context, id string) (*Document, error) {
	d, err := scanDocument(s.pool.QueryRow(ctx,
		"DELETE FROM documents WHERE id = $1 RETURNING "+documentColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("delete document %s: %w", id, err)
	}
	return d, nil
}
