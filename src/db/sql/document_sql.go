package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

type CreateDocumentParams struct {
	UserID                 string
	FilePath               *string
	FileType               *string
	OriginalFilename       *string
	ExtractedAmount        *float64
	ExtractedDate          *time.Time
	ExtractedMerchant      *string
	ExtractedPaymentMethod *string
	HasLineItems           bool
}

func CreateDocument(ctx context.Context, pool *pgxpool.Pool, p CreateDocumentParams) (*models.Document, error) {
	query := `
		INSERT INTO documents (id, user_id, file_path, file_type, original_filename,
			extracted_amount, extracted_date, extracted_merchant, extracted_payment_method,
			has_line_items, processed, is_matched)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, FALSE)
		RETURNING id, user_id, file_path, file_type, original_filename,
			extracted_amount, extracted_date, extracted_merchant, extracted_payment_method,
			has_line_items, processed, is_matched, transaction_id, created_at
	`
	var d models.Document
	err := pool.QueryRow(ctx, query,
		uuid.NewString(), p.UserID, p.FilePath, p.FileType, p.OriginalFilename,
		p.ExtractedAmount, p.ExtractedDate, p.ExtractedMerchant, p.ExtractedPaymentMethod,
		p.HasLineItems,
	).Scan(
		&d.ID, &d.UserID, &d.FilePath, &d.FileType, &d.OriginalFilename,
		&d.ExtractedAmount, &d.ExtractedDate, &d.ExtractedMerchant, &d.ExtractedPaymentMethod,
		&d.HasLineItems, &d.Processed, &d.IsMatched, &d.TransactionID, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func CreateLineItem(ctx context.Context, pool *pgxpool.Pool, documentID string, item models.ReceiptLineItem, productID *string) (*models.LineItem, error) {
	query := `
		INSERT INTO receipt_line_items (id, document_id, description, quantity, unit_price,
			total_price, product_id, is_classified, needs_clarification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, document_id, description, quantity, unit_price, total_price,
			product_id, is_classified, needs_clarification
	`
	var li models.LineItem
	err := pool.QueryRow(ctx, query,
		uuid.NewString(), documentID, item.Description, item.Quantity, item.UnitPrice,
		item.TotalPrice, productID, productID != nil, productID == nil,
	).Scan(
		&li.ID, &li.DocumentID, &li.Description, &li.Quantity, &li.UnitPrice, &li.TotalPrice,
		&li.ProductID, &li.IsClassified, &li.NeedsClarification,
	)
	if err != nil {
		return nil, err
	}
	return &li, nil
}

func GetLineItem(ctx context.Context, pool *pgxpool.Pool, lineItemID string) (*models.LineItem, error) {
	query := `
		SELECT id, document_id, description, quantity, unit_price, total_price,
			product_id, is_classified, needs_clarification
		FROM receipt_line_items WHERE id = $1
	`
	var li models.LineItem
	err := pool.QueryRow(ctx, query, lineItemID).Scan(
		&li.ID, &li.DocumentID, &li.Description, &li.Quantity, &li.UnitPrice, &li.TotalPrice,
		&li.ProductID, &li.IsClassified, &li.NeedsClarification,
	)
	if err != nil {
		return nil, err
	}
	return &li, nil
}

func ClassifyLineItem(ctx context.Context, pool *pgxpool.Pool, lineItemID, productID string) error {
	query := `
		UPDATE receipt_line_items
		SET product_id = $1, is_classified = TRUE, needs_clarification = FALSE
		WHERE id = $2
	`
	_, err := pool.Exec(ctx, query, productID, lineItemID)
	return err
}
