package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CostInput holds the writable fields of one cost entry. Absent sub-fields
// arrive here as zero after boundary coercion.
type CostInput struct {
	ProjectID   string
	LaborCost   decimal.Decimal
	ToolCost    decimal.Decimal
	HostingCost decimal.Decimal
	OtherCost   decimal.Decimal
}

// CostService provides the cost snapshot and entry creation.
type CostService interface {
	// ListAll returns the raw cost snapshot for the derivation engine.
	ListAll(ctx context.Context) ([]Cost, error)

	// ListForProject returns all cost entries for one project, oldest first.
	ListForProject(ctx context.Context, projectID string) ([]Cost, error)

	Add(ctx context.Context, input CostInput) (*Cost, error)
}

type costService struct {
	pool *pgxpool.Pool
}

// NewCostService constructs a CostService backed by PostgreSQL.
func NewCostService(pool *pgxpool.Pool) CostService {
	return &costService{pool: pool}
}

const costColumns = `id, project_id, labor_cost, tool_cost, hosting_cost, other_cost, created_at`

func scanCost(row pgx.Row) (*Cost, error) {
	c := &Cost{}
	err := row.Scan(&c.ID, &c.ProjectID, &c.LaborCost, &c.ToolCost,
		&c.HostingCost, &c.OtherCost, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func listCosts(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]Cost, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list costs: %w", err)
	}
	defer rows.Close()

	costs := []Cost{}
	for rows.Next() {
		c, err := scanCost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cost: %w", err)
		}
		costs = append(costs, *c)
	}
	return costs, rows.Err()
}

func (s *costService) ListAll(ctx context.Context) ([]Cost, error) {
	return listCosts(ctx, s.pool, "SELECT "+costColumns+" FROM costs")
}

func (s *costService) ListForProject(ctx context.Context, projectID string) ([]Cost, error) {
	return listCosts(ctx, s.pool,
		"SELECT "+costColumns+" FROM costs WHERE project_id = $1 ORDER BY created_at", projectID)
}

func (s *costService) Add(ctx context.Context, input CostInput) (*Cost, error) {
	c, err := scanCost(s.pool.QueryRow(ctx, `
		INSERT INTO costs (id, project_id, labor_cost, tool_cost, hosting_cost, other_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING `+costColumns,
		uuid.NewString(), input.ProjectID, input.LaborCost, input.ToolCost,
		input.HostingCost, input.OtherCost,
	))
	if err != nil {
		return nil, fmt.Errorf("add cost for project %s: %w", input.ProjectID, err)
	}
	return c, nil
}
