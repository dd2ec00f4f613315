package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

func GetCategory(ctx context.Context, pool *pgxpool.Pool, userID, name, categoryType string) (*models.Category, error) {
	query := `
		SELECT id, user_id, name, type, icon, color
		FROM categories WHERE user_id = $1 AND name = $2 AND type = $3
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, userID, name, categoryType).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func GetOrCreateCategory(ctx context.Context, pool *pgxpool.Pool, userID, name, categoryType string) (*models.Category, error) {
	existing, err := GetCategory(ctx, pool, userID, name, categoryType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	query := `
		INSERT INTO categories (id, user_id, name, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, name, type, icon, color
	`
	var c models.Category
	err = pool.QueryRow(ctx, query, uuid.NewString(), userID, name, categoryType).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func GetPaymentMethod(ctx context.Context, pool *pgxpool.Pool, userID, nameOrLastFour string) (*models.PaymentMethod, error) {
	query := `
		SELECT id, user_id, name, last_four_digits
		FROM payment_methods
		WHERE user_id = $1 AND (name = $2 OR last_four_digits = $2)
	`
	var pm models.PaymentMethod
	err := pool.QueryRow(ctx, query, userID, nameOrLastFour).
		Scan(&pm.ID, &pm.UserID, &pm.Name, &pm.LastFourDigits)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &pm, nil
}
