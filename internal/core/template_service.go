package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TemplateInput holds the writable template fields.
type TemplateInput struct {
	Name    string
	Type    TemplateType
	Content string
}

// TemplateService provides CRUD for reusable document templates.
type TemplateService interface {
	List(ctx context.Context) ([]Template, error)
	Get(ctx context.Context, id string) (*Template, error)
	Create(ctx context.Context, input TemplateInput) (*Template, error)
	Update(ctx context.Context, id string, input TemplateInput) (*Template, error)
	Delete(ctx context.Context, id string) error
}

type templateService struct {
	pool *pgxpool.Pool
}

// NewTemplateService constructs a TemplateService backed by PostgreSQL.
func NewTemplateService(pool *pgxpool.Pool) TemplateService {
	return &templateService{pool: pool}
}

const templateColumns = `id, name, type, content, created_at`

func scanTemplate(row pgx.Row) (*Template, error) {
	t := &Template{}
	if err := row.Scan(&t.ID, &t.Name, &t.Type, &t.Content, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *templateService) List(ctx context.Context) ([]Template, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+templateColumns+" FROM templates ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *templateService) Get(ctx context.Context, id string) (*Template, error) {
	t, err := scanTemplate(s.pool.QueryRow(ctx,
		"SELECT "+templateColumns+" FROM templates WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return t, nil
}

func (s *templateService) Create(ctx context.Context, input TemplateInput) (*Template, error) {
	t, err := scanTemplate(s.pool.QueryRow(ctx, `
		INSERT INTO templates (id, name, type, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING `+templateColumns,
		uuid.NewString(), input.Name, input.Type, input.Content,
	))
	if err != nil {
		return nil, fmt.Errorf("create template %q: %w", input.Name, err)
	}
	return t, nil
}

func (s *templateService) Update(ctx context.Context, id string, input TemplateInput) (*Template, error) {
	t, err := scanTemplate(s.pool.QueryRow(ctx, `
		UPDATE templates SET
			name    = COALESCE(NULLIF($2, ''), name),
			type    = COALESCE(NULLIF($3, ''), type),
			content = COALESCE(NULLIF($4, ''), content)
		WHERE id = $1
		RETURNING `+templateColumns,
		id, input.Name, string(input.Type), input.Content,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update template %s: %w", id, err)
	}
	return t, nil
}

func (s *templateService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return nil
}
