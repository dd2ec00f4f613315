package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

func CreateDebt(ctx context.Context, pool *pgxpool.Pool, debt *models.Debt) (*models.Debt, error) {
	query := `
		INSERT INTO debts (id, user_id, name, type, total_amount, remaining_amount,
			interest_rate, minimum_payment, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7, $8, 'active')
		RETURNING id, user_id, name, type, total_amount, remaining_amount,
			interest_rate, minimum_payment, due_date, status, created_at
	`
	var d models.Debt
	err := pool.QueryRow(ctx, query,
		uuid.NewString(), debt.UserID, debt.Name, debt.Type, debt.TotalAmount,
		debt.InterestRate, debt.MinimumPayment, debt.DueDate,
	).Scan(
		&d.ID, &d.UserID, &d.Name, &d.Type, &d.TotalAmount, &d.RemainingAmount,
		&d.InterestRate, &d.MinimumPayment, &d.DueDate, &d.Status, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func GetDebt(ctx context.Context, pool *pgxpool.Pool, userID, debtID string) (*models.Debt, error) {
	query := `
		SELECT id, user_id, name, type, total_amount, remaining_amount,
			interest_rate, minimum_payment, due_date, status, created_at
		FROM debts WHERE id = $1 AND user_id = $2
	`
	var d models.Debt
	err := pool.QueryRow(ctx, query, debtID, userID).Scan(
		&d.ID, &d.UserID, &d.Name, &d.Type, &d.TotalAmount, &d.RemainingAmount,
		&d.InterestRate, &d.MinimumPayment, &d.DueDate, &d.Status, &d.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func RecordDebtPayment(ctx context.Context, pool *pgxpool.Pool, debtID string, amount float64, paymentDate time.Time, newRemaining float64, status string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO debt_payments (id, debt_id, amount, payment_date)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), debtID, amount, paymentDate)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE debts SET remaining_amount = $1, status = $2 WHERE id = $3
	`, newRemaining, status, debtID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func GetTotalActiveDebt(ctx context.Context, pool *pgxpool.Pool, userID string) (float64, error) {
	query := `SELECT COALESCE(SUM(remaining_amount), 0) FROM debts WHERE user_id = $1 AND status = 'active'`
	var total float64
	err := pool.QueryRow(ctx, query, userID).Scan(&total)
	return total, err
}

func GetActiveDebts(ctx context.Context, pool *pgxpool.Pool, userID string) ([]models.Debt, error) {
	query := `
		SELECT id, user_id, name, type, total_amount, remaining_amount,
			interest_rate, minimum_payment, due_date, status, created_at
		FROM debts WHERE user_id = $1 AND status = 'active'
		ORDER BY due_date ASC NULLS LAST
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []models.Debt
	for rows.Next() {
		var d models.Debt
		err := rows.Scan(
			&d.ID, &d.UserID, &d.Name, &d.Type, &d.TotalAmount, &d.RemainingAmount,
			&d.InterestRate, &d.MinimumPayment, &d.DueDate, &d.Status, &d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}
