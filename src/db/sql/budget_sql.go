package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintracker-server/src/models"
)

func GetCurrentBudget(ctx context.Context, pool *pgxpool.Pool, userID, categoryID, period string, today time.Time) (*models.Budget, error) {
	query := `
		SELECT id, user_id, category_id, amount, period, start_date, end_date, created_at
		FROM budgets
		WHERE user_id = $1 AND category_id = $2 AND period = $3 AND end_date >= $4
	`
	var b models.Budget
	err := pool.QueryRow(ctx, query, userID, categoryID, period, today).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Period, &b.StartDate, &b.EndDate, &b.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func CreateBudget(ctx context.Context, pool *pgxpool.Pool, budget *models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (id, user_id, category_id, amount, period, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, category_id, amount, period, start_date, end_date, created_at
	`
	var b models.Budget
	err := pool.QueryRow(ctx, query,
		uuid.NewString(), budget.UserID, budget.CategoryID, budget.Amount,
		budget.Period, budget.StartDate, budget.EndDate,
	).Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Period, &b.StartDate, &b.EndDate, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func UpdateBudgetAmount(ctx context.Context, pool *pgxpool.Pool, budgetID string, amount float64) (*models.Budget, error) {
	query := `
		UPDATE budgets SET amount = $1
		WHERE id = $2
		RETURNING id, user_id, category_id, amount, period, start_date, end_date, created_at
	`
	var b models.Budget
	err := pool.QueryRow(ctx, query, amount, budgetID).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Period, &b.StartDate, &b.EndDate, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BudgetWithCategory carries a budget row joined with its category metadata
// for the status report.
type BudgetWithCategory struct {
	models.Budget
	CategoryName  string
	CategoryIcon  *string
	CategoryColor *string
}

func GetActiveBudgets(ctx context.Context, pool *pgxpool.Pool, userID, period string, today time.Time) ([]BudgetWithCategory, error) {
	query := `
		SELECT b.id, b.user_id, b.category_id, b.amount, b.period, b.start_date, b.end_date, b.created_at,
			c.name, c.icon, c.color
		FROM budgets b
		JOIN categories c ON b.category_id = c.id
		WHERE b.user_id = $1 AND b.period = $2 AND b.end_date >= $3
		ORDER BY c.name ASC
	`
	rows, err := pool.Query(ctx, query, userID, period, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []BudgetWithCategory
	for rows.Next() {
		var b BudgetWithCategory
		err := rows.Scan(
			&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Period, &b.StartDate, &b.EndDate, &b.CreatedAt,
			&b.CategoryName, &b.CategoryIcon, &b.CategoryColor,
		)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}
