package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

func SaveBankLink(ctx context.Context, pool *pgxpool.Pool, userID, itemID, accessToken, institution string) (*models.BankLink, error) {
	query := `
		INSERT INTO bank_links (id, user_id, item_id, access_token, institution, status, sync_cursor)
		VALUES ($1, $2, $3, $4, $5, 'active', '')
		RETURNING id, user_id, item_id, access_token, institution, status, sync_cursor, last_synced_at, created_at
	`
	var l models.BankLink
	err := pool.QueryRow(ctx, query, uuid.NewString(), userID, itemID, accessToken, institution).Scan(
		&l.ID, &l.UserID, &l.ItemID, &l.AccessToken, &l.Institution, &l.Status,
		&l.SyncCursor, &l.LastSyncedAt, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetActiveBankLinks returns active links across all users. Used by the
// scheduled sync pass.
func GetActiveBankLinks(ctx context.Context, pool *pgxpool.Pool) ([]models.BankLink, error) {
	query := `
		SELECT id, user_id, item_id, access_token, institution, status, sync_cursor, last_synced_at, created_at
		FROM bank_links WHERE status = 'active'
		ORDER BY created_at ASC
	`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.BankLink
	for rows.Next() {
		var l models.BankLink
		err := rows.Scan(
			&l.ID, &l.UserID, &l.ItemID, &l.AccessToken, &l.Institution, &l.Status,
			&l.SyncCursor, &l.LastSyncedAt, &l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func GetBankLinks(ctx context.Context, pool *pgxpool.Pool, userID string) ([]models.BankLink, error) {
	query := `
		SELECT id, user_id, item_id, access_token, institution, status, sync_cursor, last_synced_at, created_at
		FROM bank_links WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.BankLink
	for rows.Next() {
		var l models.BankLink
		err := rows.Scan(
			&l.ID, &l.UserID, &l.ItemID, &l.AccessToken, &l.Institution, &l.Status,
			&l.SyncCursor, &l.LastSyncedAt, &l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func UpdateBankLinkCursor(ctx context.Context, pool *pgxpool.Pool, linkID, cursor string) error {
	query := `UPDATE bank_links SET sync_cursor = $1, last_synced_at = NOW() WHERE id = $2`
	_, err := pool.Exec(ctx, query, cursor, linkID)
	return err
}
