package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DefaultPaymentStructure is the advance/final split used when a client has
// no explicit structure configured: 40% advance, 60% final.
const DefaultPaymentStructure = "40/60"

// ProjectWithClient is a project enriched with its owner's display names and
// the project's payments, as listed on the projects view.
type ProjectWithClient struct {
	Project
	ClientName  string    `json:"client_name"`
	CompanyName string    `json:"company_name"`
	Payments    []Payment `json:"payments"`
}

// ProjectWithRelations is a project with its payments and cost entries, as
// shown on the project detail view.
type ProjectWithRelations struct {
	Project
	ClientName string    `json:"client_name"`
	Payments   []Payment `json:"payments"`
	Costs      []Cost    `json:"costs"`
}

// ProjectInput holds the writable project fields. Price uses decimal so the
// payment split never drifts.
type ProjectInput struct {
	ClientID    string
	Title       string
	ServiceType ServiceType
	Price       decimal.Decimal
	Status      ProjectStatus
	StartDate   *time.Time
	Deadline    *time.Time
}

// ProjectService provides project CRUD. Creation splits the quoted price into
// pending advance and final payments according to the client's payment
// structure; a status transition to completed backfills the final payment row
// when the project has none yet.
type ProjectService interface {
	// ListAll returns the raw project snapshot for the derivation engine.
	ListAll(ctx context.Context) ([]Project, error)

	// List returns all projects joined with client names and payments,
	// newest first.
	List(ctx context.Context) ([]ProjectWithClient, error)

	// Get returns one project with payments and costs. ErrNotFound if absent.
	Get(ctx context.Context, id string) (*ProjectWithRelations, error)

	// Create inserts the project and its two pending payments in one
	// transaction.
	Create(ctx context.Context, input ProjectInput) (*ProjectWithRelations, error)

	Update(ctx context.Context, id string, input ProjectInput) (*Project, error)
	Delete(ctx context.Context, id string) error
}

type projectService struct {
	pool *pgxpool.Pool
}

// NewProjectService constructs a ProjectService backed by PostgreSQL.
func NewProjectService(pool *pgxpool.Pool) ProjectService {
	return &projectService{pool: pool}
}

const projectColumns = `id, client_id, title, service_type, price, status,
	start_date, deadline, final_payment_date, created_at`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(
		&p.ID, &p.ClientID, &p.Title, &p.ServiceType, &p.Price, &p.Status,
		&p.StartDate, &p.Deadline, &p.FinalPaymentDate, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) ListAll(ctx context.Context) ([]Project, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+projectColumns+" FROM projects ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *projectService) List(ctx context.Context) ([]ProjectWithClient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.client_id, p.title, p.service_type, p.price, p.status,
		       p.start_date, p.deadline, p.final_payment_date, p.created_at,
		       COALESCE(c.name, 'Unknown'), COALESCE(c.company_name, '')
		FROM projects p
		LEFT JOIN clients c ON c.id = p.client_id
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []ProjectWithClient
	index := make(map[string]int)
	for rows.Next() {
		var pc ProjectWithClient
		if err := rows.Scan(
			&pc.ID, &pc.ClientID, &pc.Title, &pc.ServiceType, &pc.Price, &pc.Status,
			&pc.StartDate, &pc.Deadline, &pc.FinalPaymentDate, &pc.CreatedAt,
			&pc.ClientName, &pc.CompanyName,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		pc.Payments = []Payment{}
		index[pc.ID] = len(projects)
		projects = append(projects, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	payRows, err := s.pool.Query(ctx,
		"SELECT "+paymentColumns+" FROM payments ORDER BY type")
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer payRows.Close()

	for payRows.Next() {
		pay, err := scanPayment(payRows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if i, ok := index[pay.ProjectID]; ok {
			projects[i].Payments = append(projects[i].Payments, *pay)
		}
	}
	return projects, payRows.Err()
}

func (s *projectService) Get(ctx context.Context, id string) (*ProjectWithRelations, error) {
	pr := &ProjectWithRelations{}
	err := s.pool.QueryRow(ctx, `
		SELECT p.id, p.client_id, p.title, p.service_type, p.price, p.status,
		       p.start_date, p.deadline, p.final_payment_date, p.created_at,
		       COALESCE(c.name, 'Unknown')
		FROM projects p
		LEFT JOIN clients c ON c.id = p.client_id
		WHERE p.id = $1`, id,
	).Scan(
		&pr.ID, &pr.ClientID, &pr.Title, &pr.ServiceType, &pr.Price, &pr.Status,
		&pr.StartDate, &pr.Deadline, &pr.FinalPaymentDate, &pr.CreatedAt,
		&pr.ClientName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}

	pr.Payments, err = listPayments(ctx, s.pool,
		"SELECT "+paymentColumns+" FROM payments WHERE project_id = $1 ORDER BY type", id)
	if err != nil {
		return nil, err
	}
	pr.Costs, err = listCosts(ctx, s.pool,
		"SELECT "+costColumns+" FROM costs WHERE project_id = $1 ORDER BY created_at", id)
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (s *projectService) Create(ctx context.Context, input ProjectInput) (*ProjectWithRelations, error) {
	if input.Status == "" {
		input.Status = ProjectLead
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var structure string
	err = tx.QueryRow(ctx,
		"SELECT payment_structure FROM clients WHERE id = $1", input.ClientID,
	).Scan(&structure)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", input.ClientID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve client %s: %w", input.ClientID, err)
	}

	p, err := scanProject(tx.QueryRow(ctx, `
		INSERT INTO projects (id, client_id, title, service_type, price, status,
		                      start_date, deadline, final_payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, NOW())
		RETURNING `+projectColumns,
		uuid.NewString(), input.ClientID, input.Title, input.ServiceType,
		input.Price, input.Status, input.StartDate, input.Deadline,
	))
	if err != nil {
		return nil, fmt.Errorf("create project %q: %w", input.Title, err)
	}

	advance := input.Price.Mul(advanceShare(structure)).Round(2)
	final := input.Price.Sub(advance)

	payments := make([]Payment, 0, 2)
	for _, leg := range []struct {
		typ    PaymentType
		amount decimal.Decimal
	}{
		{PaymentAdvance, advance},
		{PaymentFinal, final},
	} {
		pay, err := scanPayment(tx.QueryRow(ctx, `
			INSERT INTO payments (id, project_id, type, amount, status, paid_date)
			VALUES ($1, $2, $3, $4, 'pending', NULL)
			RETURNING `+paymentColumns,
			uuid.NewString(), p.ID, leg.typ, leg.amount,
		))
		if err != nil {
			return nil, fmt.Errorf("create %s payment: %w", leg.typ, err)
		}
		payments = append(payments, *pay)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit project create: %w", err)
	}

	return &ProjectWithRelations{Project: *p, Payments: payments, Costs: []Cost{}}, nil
}

func (s *projectService) Update(ctx context.Context, id string, input ProjectInput) (*Project, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	prev, err := scanProject(tx.QueryRow(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = $1 FOR UPDATE", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}

	var price any
	if !input.Price.IsZero() {
		price = input.Price
	}

	p, err := scanProject(tx.QueryRow(ctx, `
		UPDATE projects SET
			client_id    = COALESCE(NULLIF($2, '')::uuid, client_id),
			title        = COALESCE(NULLIF($3, ''), title),
			service_type = COALESCE(NULLIF($4, ''), service_type),
			price        = COALESCE($5, price),
			status       = COALESCE(NULLIF($6, ''), status),
			start_date   = COALESCE($7, start_date),
			deadline     = COALESCE($8, deadline)
		WHERE id = $1
		RETURNING `+projectColumns,
		id, input.ClientID, input.Title, string(input.ServiceType), price,
		string(input.Status), input.StartDate, input.Deadline,
	))
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}

	if prev.Status != ProjectCompleted && p.Status == ProjectCompleted {
		if err := s.onProjectCompleted(ctx, tx, p); err != nil {
			return nil, err
		}
		// Re-read: the completion hook may have stamped final_payment_date.
		p, err = scanProject(tx.QueryRow(ctx,
			"SELECT "+projectColumns+" FROM projects WHERE id = $1", id))
		if err != nil {
			return nil, fmt.Errorf("reload project %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit project update: %w", err)
	}
	return p, nil
}

// onProjectCompleted enforces the completion rule: a project that finishes
// without a final payment row gets a pending one for the unpaid remainder;
// if the final payment is already paid, its paid date becomes the project's
// final_payment_date.
func (s *projectService) onProjectCompleted(ctx context.Context, tx pgx.Tx, p *Project) error {
	var (
		status   PaymentStatus
		paidDate *time.Time
	)
	err := tx.QueryRow(ctx,
		"SELECT status, paid_date FROM payments WHERE project_id = $1 AND type = 'final'",
		p.ID,
	).Scan(&status, &paidDate)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		var advance decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(amount), 0) FROM payments
			WHERE project_id = $1 AND type = 'advance'`, p.ID,
		).Scan(&advance)
		if err != nil {
			return fmt.Errorf("sum advance payments: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO payments (id, project_id, type, amount, status, paid_date)
			VALUES ($1, $2, 'final', $3, 'pending', NULL)`,
			uuid.NewString(), p.ID, p.Price.Sub(advance),
		)
		if err != nil {
			return fmt.Errorf("create final payment for %s: %w", p.ID, err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("check final payment for %s: %w", p.ID, err)

	case status == PaymentPaid && paidDate != nil && p.FinalPaymentDate == nil:
		if _, err := tx.Exec(ctx,
			"UPDATE projects SET final_payment_date = $2 WHERE id = $1",
			p.ID, paidDate,
		); err != nil {
			return fmt.Errorf("stamp final payment date for %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

// advanceShare parses a payment structure like "40/60" into the advance
// fraction. Malformed structures fall back to the default 40%.
func advanceShare(structure string) decimal.Decimal {
	parts := strings.SplitN(structure, "/", 2)
	if len(parts) == 2 {
		if pct, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil && pct >= 0 && pct <= 100 {
			return decimal.NewFromInt(int64(pct)).Div(decimal.NewFromInt(100))
		}
	}
	return decimal.NewFromFloat(0.4)
}
