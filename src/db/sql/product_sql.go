package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

func FindProductByNormalizedName(ctx context.Context, pool *pgxpool.Pool, userID, normalizedName string) (*models.Product, error) {
	query := `
		SELECT id, user_id, name, normalized_names, category_id
		FROM products WHERE user_id = $1 AND $2 = ANY(normalized_names)
	`
	var p models.Product
	err := pool.QueryRow(ctx, query, userID, normalizedName).
		Scan(&p.ID, &p.UserID, &p.Name, &p.NormalizedNames, &p.CategoryID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func GetProductByName(ctx context.Context, pool *pgxpool.Pool, userID, name string) (*models.Product, error) {
	query := `
		SELECT id, user_id, name, normalized_names, category_id
		FROM products WHERE user_id = $1 AND name = $2
	`
	var p models.Product
	err := pool.QueryRow(ctx, query, userID, name).
		Scan(&p.ID, &p.UserID, &p.Name, &p.NormalizedNames, &p.CategoryID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func CreateProduct(ctx context.Context, pool *pgxpool.Pool, userID, name string, normalizedNames []string, categoryID *string) (*models.Product, error) {
	query := `
		INSERT INTO products (id, user_id, name, normalized_names, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, normalized_names, category_id
	`
	var p models.Product
	err := pool.QueryRow(ctx, query, uuid.NewString(), userID, name, normalizedNames, categoryID).
		Scan(&p.ID, &p.UserID, &p.Name, &p.NormalizedNames, &p.CategoryID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AppendNormalizedName records one more receipt spelling for a product,
// skipping duplicates.
func AppendNormalizedName(ctx context.Context, pool *pgxpool.Pool, productID, normalizedName string) error {
	query := `
		UPDATE products
		SET normalized_names = array_append(normalized_names, $1)
		WHERE id = $2 AND NOT ($1 = ANY(normalized_names))
	`
	_, err := pool.Exec(ctx, query, normalizedName, productID)
	return err
}

func InsertPriceRecord(ctx context.Context, pool *pgxpool.Pool, r models.PriceRecord) error {
	query := `
		INSERT INTO price_history (id, product_id, merchant, price, quantity, unit_price,
			receipt_line_item_id, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := pool.Exec(ctx, query,
		uuid.NewString(), r.ProductID, r.Merchant, r.Price, r.Quantity, r.UnitPrice,
		r.ReceiptLineItemID, r.PurchasedAt,
	)
	return err
}

// GetPriceHistory returns price records newer than the cutoff, oldest first,
// joined with product names. Product and merchant filters are optional.
func GetPriceHistory(ctx context.Context, pool *pgxpool.Pool, userID string, since time.Time, productName, merchant *string) ([]models.PriceRecord, error) {
	query := `
		SELECT ph.id, ph.product_id, p.name, ph.merchant, ph.price, ph.quantity, ph.unit_price,
			ph.receipt_line_item_id, ph.purchased_at
		FROM price_history ph
		JOIN products p ON ph.product_id = p.id
		WHERE p.user_id = $1 AND ph.purchased_at >= $2
			AND ($3::text IS NULL OR p.name ILIKE '%' || $3 || '%')
			AND ($4::text IS NULL OR ph.merchant ILIKE '%' || $4 || '%')
		ORDER BY ph.purchased_at ASC
	`
	rows, err := pool.Query(ctx, query, userID, since, productName, merchant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PriceRecord
	for rows.Next() {
		var r models.PriceRecord
		err := rows.Scan(
			&r.ID, &r.ProductID, &r.ProductName, &r.Merchant, &r.Price, &r.Quantity, &r.UnitPrice,
			&r.ReceiptLineItemID, &r.PurchasedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
