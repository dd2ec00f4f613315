package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

func GetAccountByName(ctx context.Context, pool *pgxpool.Pool, userID, name string) (*models.Account, error) {
	query := `
		SELECT id, user_id, name, type, currency, balance, created_at
		FROM accounts WHERE user_id = $1 AND name = $2
	`
	var a models.Account
	err := pool.QueryRow(ctx, query, userID, name).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Currency, &a.Balance, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetOrCreateDefaultAccount returns the user's first account, creating the
// default checking account if they have none yet.
func GetOrCreateDefaultAccount(ctx context.Context, pool *pgxpool.Pool, userID string) (*models.Account, error) {
	query := `
		SELECT id, user_id, name, type, currency, balance, created_at
		FROM accounts WHERE user_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`
	var a models.Account
	err := pool.QueryRow(ctx, query, userID).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Currency, &a.Balance, &a.CreatedAt)
	if err == nil {
		return &a, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}
	return CreateAccount(ctx, pool, userID, "Cuenta Principal", "checking", "MXN", 0)
}

func CreateAccount(ctx context.Context, pool *pgxpool.Pool, userID, name, accountType, currency string, balance float64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, user_id, name, type, currency, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, name, type, currency, balance, created_at
	`
	var a models.Account
	err := pool.QueryRow(ctx, query, uuid.NewString(), userID, name, accountType, currency, balance).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Currency, &a.Balance, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func IncrementAccountBalance(ctx context.Context, pool *pgxpool.Pool, accountID string, delta float64) error {
	query := `UPDATE accounts SET balance = balance + $1 WHERE id = $2`
	_, err := pool.Exec(ctx, query, delta, accountID)
	return err
}

func GetTotalBalance(ctx context.Context, pool *pgxpool.Pool, userID string) (float64, error) {
	query := `SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE user_id = $1`
	var total float64
	err := pool.QueryRow(ctx, query, userID).Scan(&total)
	return total, err
}
