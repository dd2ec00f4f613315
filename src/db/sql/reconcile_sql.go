package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

// ErrAlreadyLinked reports that a concurrent pass claimed the document or the
// transaction first. Callers drop the pair and move on.
var ErrAlreadyLinked = errors.New("document or transaction already linked")

// GetUnmatchedDocuments returns the bulk-pass document pool. The explicit
// ordering makes the first-fit scan deterministic across runs.
func GetUnmatchedDocuments(ctx context.Context, pool *pgxpool.Pool, userID string) ([]models.Document, error) {
	query := `
		SELECT id, user_id, file_path, file_type, original_filename,
			extracted_amount, extracted_date, extracted_merchant, extracted_payment_method,
			has_line_items, processed, is_matched, transaction_id, created_at
		FROM documents
		WHERE user_id = $1 AND transaction_id IS NULL
		ORDER BY created_at ASC, id ASC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		err := rows.Scan(
			&d.ID, &d.UserID, &d.FilePath, &d.FileType, &d.OriginalFilename,
			&d.ExtractedAmount, &d.ExtractedDate, &d.ExtractedMerchant, &d.ExtractedPaymentMethod,
			&d.HasLineItems, &d.Processed, &d.IsMatched, &d.TransactionID, &d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetUnreconciledBankTransactions returns the bulk-pass transaction pool:
// bank imports only, unreconciled, inside the trailing window.
func GetUnreconciledBankTransactions(ctx context.Context, pool *pgxpool.Pool, userID string, since time.Time) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND source = 'bank_import' AND reconciled_with IS NULL AND date >= $2
		ORDER BY date ASC, id ASC
	`
	rows, err := pool.Query(ctx, query, userID, since)
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

// GetCandidateTransactions narrows the pool for the upload path: ±1% amount
// band, ±2 calendar days, still unreconciled.
func GetCandidateTransactions(ctx context.Context, pool *pgxpool.Pool, userID string, amount float64, date time.Time) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
			AND amount >= $2 AND amount <= $3
			AND date >= $4 AND date <= $5
			AND reconciled_with IS NULL
		ORDER BY date ASC, id ASC
	`
	rows, err := pool.Query(ctx, query, userID,
		amount*0.99, amount*1.01,
		date.AddDate(0, 0, -2), date.AddDate(0, 0, 2),
	)
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

// LinkDocumentToTransaction cross-links both records in one database
// transaction. The IS NULL predicates act as a compare-and-swap: if either
// side was claimed by a concurrent pass, nothing commits and ErrAlreadyLinked
// comes back.
func LinkDocumentToTransaction(ctx context.Context, pool *pgxpool.Pool, userID, documentID, transactionID string, receiptURL *string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE transactions
		SET reconciled_with = $1, is_reconciled = TRUE,
			receipt_image_url = COALESCE($2, receipt_image_url)
		WHERE id = $3 AND user_id = $4 AND reconciled_with IS NULL
	`, documentID, receiptURL, transactionID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyLinked
	}

	cmd, err = tx.Exec(ctx, `
		UPDATE documents
		SET transaction_id = $1, is_matched = TRUE, processed = TRUE
		WHERE id = $2 AND user_id = $3 AND transaction_id IS NULL
	`, transactionID, documentID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyLinked
	}

	return tx.Commit(ctx)
}
