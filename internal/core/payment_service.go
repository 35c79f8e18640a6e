package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentService provides the payment snapshot and the one write the console
// performs on payments: recording them paid.
type PaymentService interface {
	// ListAll returns the raw payment snapshot for the derivation engine.
	ListAll(ctx context.Context) ([]Payment, error)

	// MarkPaid records a payment as paid on the given date. For a final
	// payment the owning project's final_payment_date is stamped in the same
	// transaction — that date is what the cycle-time calculation reads.
	MarkPaid(ctx context.Context, id string, paidDate time.Time) (*Payment, error)
}

type paymentService struct {
	pool *pgxpool.Pool
}

// NewPaymentService constructs a PaymentService backed by PostgreSQL.
func NewPaymentService(pool *pgxpool.Pool) PaymentService {
	return &paymentService{pool: pool}
}

const paymentColumns = `id, project_id, type, amount, status, paid_date`

func scanPayment(row pgx.Row) (*Payment, error) {
	p := &Payment{}
	err := row.Scan(&p.ID, &p.ProjectID, &p.Type, &p.Amount, &p.Status, &p.PaidDate)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func listPayments(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]Payment, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := []Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (s *paymentService) ListAll(ctx context.Context) ([]Payment, error) {
	return listPayments(ctx, s.pool, "SELECT "+paymentColumns+" FROM payments")
}

func (s *paymentService) MarkPaid(ctx context.Context, id string, paidDate time.Time) (*Payment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := scanPayment(tx.QueryRow(ctx, `
		UPDATE payments SET status = 'paid', paid_date = $2
		WHERE id = $1
		RETURNING `+paymentColumns,
		id, paidDate,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mark payment %s paid: %w", id, err)
	}

	if p.Type == PaymentFinal {
		if _, err := tx.Exec(ctx,
			"UPDATE projects SET final_payment_date = $2 WHERE id = $1",
			p.ProjectID, paidDate,
		); err != nil {
			return nil, fmt.Errorf("stamp final payment date for %s: %w", p.ProjectID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment update: %w", err)
	}
	return p, nil
}
