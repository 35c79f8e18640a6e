package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ClientWithFinancials is a client together with the revenue/cost/profit
// rollup derived from its projects.
type ClientWithFinancials struct {
	Client
	ClientFinancials
}

// ClientInput holds the writable client fields.
type ClientInput struct {
	Name             string
	CompanyName      string
	Email            string
	Phone            *string
	Industry         *string
	PaymentStructure string
	Status           ClientStatus
	ContractStart    *time.Time
	RenewalDate      *time.Time
	Notes            *string
}

// ClientService provides client CRUD plus the financial listing used by the
// clients view. Financial fields are always derived fresh; nothing is stored.
type ClientService interface {
	// List returns all clients, newest first.
	List(ctx context.Context) ([]Client, error)

	// ListWithFinancials returns all clients with revenue/cost/profit/margin
	// aggregated from the current project and cost snapshot.
	ListWithFinancials(ctx context.Context) ([]ClientWithFinancials, error)

	// Get returns one client by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Client, error)

	// GetWithFinancials returns one client with its derived financials.
	GetWithFinancials(ctx context.Context, id string) (*ClientWithFinancials, error)

	Create(ctx context.Context, input ClientInput) (*Client, error)
	Update(ctx context.Context, id string, input ClientInput) (*Client, error)
	Delete(ctx context.Context, id string) error
}

type clientService struct {
	pool     *pgxpool.Pool
	projects ProjectService
	costs    CostService
}

// NewClientService constructs a ClientService backed by PostgreSQL. The
// project and cost services supply the snapshot for financial aggregation.
func NewClientService(pool *pgxpool.Pool, projects ProjectService, costs CostService) ClientService {
	return &clientService{pool: pool, projects: projects, costs: costs}
}

const clientColumns = `id, name, company_name, email, phone, industry,
	payment_structure, status, contract_start, renewal_date, notes, created_at`

func scanClient(row pgx.Row) (*Client, error) {
	c := &Client{}
	err := row.Scan(
		&c.ID, &c.Name, &c.CompanyName, &c.Email, &c.Phone, &c.Industry,
		&c.PaymentStructure, &c.Status, &c.ContractStart, &c.RenewalDate,
		&c.Notes, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *clientService) List(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+clientColumns+" FROM clients ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func (s *clientService) ListWithFinancials(ctx context.Context) ([]ClientWithFinancials, error) {
	clients, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	costs, err := s.costs.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ClientWithFinancials, 0, len(clients))
	for _, c := range clients {
		out = append(out, ClientWithFinancials{
			Client:           c,
			ClientFinancials: AggregateClientFinancials(c.ID, projects, costs),
		})
	}
	return out, nil
}

func (s *clientService) Get(ctx context.Context, id string) (*Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get client %s: %w", id, err)
	}
	return c, nil
}

func (s *clientService) GetWithFinancials(ctx context.Context, id string) (*ClientWithFinancials, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	costs, err := s.costs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ClientWithFinancials{
		Client:           *c,
		ClientFinancials: AggregateClientFinancials(c.ID, projects, costs),
	}, nil
}

func (s *clientService) Create(ctx context.Context, input ClientInput) (*Client, error) {
	if input.PaymentStructure == "" {
		input.PaymentStructure = DefaultPaymentStructure
	}
	if input.Status == "" {
		input.Status = ClientActive
	}

	c, err := scanClient(s.pool.QueryRow(ctx, `
		INSERT INTO clients (id, name, company_name, email, phone, industry,
		                     payment_structure, status, contract_start, renewal_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING `+clientColumns,
		uuid.NewString(), input.Name, input.CompanyName, input.Email, input.Phone,
		input.Industry, input.PaymentStructure, input.Status,
		input.ContractStart, input.RenewalDate, input.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("create client %q: %w", input.Name, err)
	}
	return c, nil
}

func (s *clientService) Update(ctx context.Context, id string, input ClientInput) (*Client, error) {
	// PATCH semantics: empty/nil input fields keep the stored value.
	c, err := scanClient(s.pool.QueryRow(ctx, `
		UPDATE clients SET
			name              = COALESCE(NULLIF($2, ''), name),
			company_name      = COALESCE(NULLIF($3, ''), company_name),
			email             = COALESCE(NULLIF($4, ''), email),
			phone             = COALESCE($5, phone),
			industry          = COALESCE($6, industry),
			payment_structure = COALESCE(NULLIF($7, ''), payment_structure),
			status            = COALESCE(NULLIF($8, ''), status),
			contract_start    = COALESCE($9, contract_start),
			renewal_date      = COALESCE($10, renewal_date),
			notes             = COALESCE($11, notes)
		WHERE id = $1
		RETURNING `+clientColumns,
		id, input.Name, input.CompanyName, input.Email, input.Phone,
		input.Industry, input.PaymentStructure, string(input.Status),
		input.ContractStart, input.RenewalDate, input.Notes,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update client %s: %w", id, err)
	}
	return c, nil
}

func (s *clientService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return nil
}
