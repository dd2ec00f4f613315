package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

const transactionColumns = `id, user_id, account_id, category_id, payment_method_id, type, amount,
		description, merchant, date, status, source, is_recurring, recurrence_pattern,
		is_reconciled, reconciled_with, receipt_image_url, external_id, created_at`

func scanTransaction(row interface{ Scan(dest ...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.PaymentMethodID, &t.Type, &t.Amount,
		&t.Description, &t.Merchant, &t.Date, &t.Status, &t.Source, &t.IsRecurring, &t.RecurrencePattern,
		&t.IsReconciled, &t.ReconciledWith, &t.ReceiptImageURL, &t.ExternalID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type CreateTransactionParams struct {
	UserID            string
	AccountID         string
	CategoryID        *string
	PaymentMethodID   *string
	Type              string
	Amount            float64
	Description       *string
	Merchant          *string
	Date              time.Time
	Source            string
	IsRecurring       bool
	RecurrencePattern *string
	ExternalID        *string
}

func CreateTransaction(ctx context.Context, pool *pgxpool.Pool, p CreateTransactionParams) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (id, user_id, account_id, category_id, payment_method_id, type, amount,
			description, merchant, date, status, source, is_recurring, recurrence_pattern, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'completed', $11, $12, $13, $14)
		RETURNING ` + transactionColumns
	row := pool.QueryRow(ctx, query,
		uuid.NewString(), p.UserID, p.AccountID, p.CategoryID, p.PaymentMethodID, p.Type, p.Amount,
		p.Description, p.Merchant, p.Date, p.Source, p.IsRecurring, p.RecurrencePattern, p.ExternalID,
	)
	return scanTransaction(row)
}

// InsertBankTransaction inserts a bank-imported transaction keyed by its
// aggregator id. Returns false when the external id was already present.
func InsertBankTransaction(ctx context.Context, pool *pgxpool.Pool, p CreateTransactionParams) (bool, error) {
	query := `
		INSERT INTO transactions (id, user_id, account_id, category_id, type, amount,
			description, merchant, date, status, source, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'completed', $10, $11)
		ON CONFLICT (external_id) DO NOTHING
	`
	cmd, err := pool.Exec(ctx, query,
		uuid.NewString(), p.UserID, p.AccountID, p.CategoryID, p.Type, p.Amount,
		p.Description, p.Merchant, p.Date, p.Source, p.ExternalID,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

type UpdateTransactionParams struct {
	Type              string
	Amount            float64
	CategoryID        *string
	PaymentMethodID   *string
	Description       *string
	Merchant          *string
	Date              time.Time
	IsRecurring       bool
	RecurrencePattern *string
}

func UpdateTransaction(ctx context.Context, pool *pgxpool.Pool, userID, transactionID string, p UpdateTransactionParams) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET type = $1, amount = $2, category_id = $3, payment_method_id = $4, description = $5,
			merchant = $6, date = $7, is_recurring = $8, recurrence_pattern = $9, updated_at = NOW()
		WHERE id = $10 AND user_id = $11
		RETURNING ` + transactionColumns
	row := pool.QueryRow(ctx, query,
		p.Type, p.Amount, p.CategoryID, p.PaymentMethodID, p.Description,
		p.Merchant, p.Date, p.IsRecurring, p.RecurrencePattern, transactionID, userID,
	)
	return scanTransaction(row)
}

func DeleteTransaction(ctx context.Context, pool *pgxpool.Pool, userID, transactionID string) error {
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, transactionID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found")
	}
	return nil
}

func GetTransactions(ctx context.Context, pool *pgxpool.Pool, userID string, limit int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2
	`
	rows, err := pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// SumTransactions totals amounts of one type since a date, optionally scoped
// to a category.
func SumTransactions(ctx context.Context, pool *pgxpool.Pool, userID, txType string, since time.Time, categoryID *string) (float64, error) {
	var total float64
	var err error
	if categoryID != nil {
		query := `
			SELECT COALESCE(SUM(amount), 0) FROM transactions
			WHERE user_id = $1 AND type = $2 AND date >= $3 AND category_id = $4
		`
		err = pool.QueryRow(ctx, query, userID, txType, since, *categoryID).Scan(&total)
	} else {
		query := `
			SELECT COALESCE(SUM(amount), 0) FROM transactions
			WHERE user_id = $1 AND type = $2 AND date >= $3
		`
		err = pool.QueryRow(ctx, query, userID, txType, since).Scan(&total)
	}
	return total, err
}
