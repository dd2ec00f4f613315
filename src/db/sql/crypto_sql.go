package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

func CreateCryptoAccount(ctx context.Context, pool *pgxpool.Pool, userID, exchange, encodedCredentials string) (*models.CryptoAccount, error) {
	query := `
		INSERT INTO crypto_accounts (id, user_id, exchange, api_key_encrypted, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING id, user_id, exchange, api_key_encrypted, status, last_synced_at, created_at
	`
	var a models.CryptoAccount
	err := pool.QueryRow(ctx, query, uuid.NewString(), userID, exchange, encodedCredentials).Scan(
		&a.ID, &a.UserID, &a.Exchange, &a.APIKeyEncrypted, &a.Status, &a.LastSyncedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetActiveCryptoAccounts returns active exchange accounts across all users.
// Used by the scheduled sync pass.
func GetActiveCryptoAccounts(ctx context.Context, pool *pgxpool.Pool) ([]models.CryptoAccount, error) {
	query := `
		SELECT id, user_id, exchange, api_key_encrypted, status, last_synced_at, created_at
		FROM crypto_accounts WHERE status = 'active'
		ORDER BY created_at ASC
	`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.CryptoAccount
	for rows.Next() {
		var a models.CryptoAccount
		err := rows.Scan(&a.ID, &a.UserID, &a.Exchange, &a.APIKeyEncrypted, &a.Status, &a.LastSyncedAt, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func UpsertCryptoBalance(ctx context.Context, pool *pgxpool.Pool, userID, cryptoAccountID, asset string, free, locked, total float64) error {
	query := `
		INSERT INTO crypto_balances (id, user_id, crypto_account_id, asset, free, locked, total, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (crypto_account_id, asset)
		DO UPDATE SET free = $5, locked = $6, total = $7, updated_at = NOW()
	`
	_, err := pool.Exec(ctx, query, uuid.NewString(), userID, cryptoAccountID, asset, free, locked, total)
	return err
}

// InsertCryptoTransaction inserts an exchange trade keyed by its external id.
// Returns false when the trade was already imported.
func InsertCryptoTransaction(ctx context.Context, pool *pgxpool.Pool, t models.CryptoTransaction) (bool, error) {
	query := `
		INSERT INTO crypto_transactions (id, user_id, crypto_account_id, external_id, type,
			asset, amount, price_usd, total_usd, fee_asset, fee_amount, transaction_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (external_id) DO NOTHING
	`
	cmd, err := pool.Exec(ctx, query,
		uuid.NewString(), t.UserID, t.CryptoAccountID, t.ExternalID, t.Type,
		t.Asset, t.Amount, t.PriceUSD, t.TotalUSD, t.FeeAsset, t.FeeAmount, t.TransactionTime,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func UpdateCryptoLastSynced(ctx context.Context, pool *pgxpool.Pool, cryptoAccountID string) error {
	query := `UPDATE crypto_accounts SET last_synced_at = NOW() WHERE id = $1`
	_, err := pool.Exec(ctx, query, cryptoAccountID)
	return err
}

func GetCryptoBalances(ctx context.Context, pool *pgxpool.Pool, userID string) ([]models.CryptoBalance, error) {
	query := `
		SELECT id, user_id, crypto_account_id, asset, free, locked, total, updated_at
		FROM crypto_balances WHERE user_id = $1
		ORDER BY total DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []models.CryptoBalance
	for rows.Next() {
		var b models.CryptoBalance
		err := rows.Scan(&b.ID, &b.UserID, &b.CryptoAccountID, &b.Asset, &b.Free, &b.Locked, &b.Total, &b.UpdatedAt)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
