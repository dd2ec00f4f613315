package handlers

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	cache "fintracker-server/src/db"
	db "fintracker-server/src/db/sql"
	"fintracker-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// periodRange returns the calendar window containing now: the current month
// for "monthly", the current year for "yearly".
func periodRange(period string, now time.Time) (time.Time, time.Time) {
	if period == "yearly" {
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, now.Location())
		return start, end
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)
	return start, end
}

func budgetStatusFor(amount, spent float64) (int, string) {
	raw := 0.0
	if amount > 0 {
		raw = spent / amount * 100
	}
	status := "ok"
	if raw >= 100 {
		status = "exceeded"
	} else if raw >= 80 {
		status = "warning"
	}
	percentage := int(math.Round(math.Min(raw, 100)))
	return percentage, status
}

func UpsertBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req struct {
			Category string  `json:"category"`
			Amount   float64 `json:"amount"`
			Period   string  `json:"period"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode budget request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.Category == "" || req.Amount <= 0 {
			http.Error(w, "category and a positive amount are required", http.StatusBadRequest)
			return
		}
		if req.Period == "" {
			req.Period = "monthly"
		}
		if req.Period != "monthly" && req.Period != "yearly" {
			http.Error(w, "period must be monthly or yearly", http.StatusBadRequest)
			return
		}

		category, err := db.GetOrCreateCategory(r.Context(), pool, userID, req.Category, "expense")
		if err != nil {
			log.Printf("ERROR: Failed to resolve category %s for user %s: %v", req.Category, userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		now := time.Now()
		existing, err := db.GetCurrentBudget(r.Context(), pool, userID, category.ID, req.Period, now)
		if err != nil {
			log.Printf("ERROR: Failed to look up current budget for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var budget *models.Budget
		message := "Presupuesto creado exitosamente"
		if existing != nil {
			budget, err = db.UpdateBudgetAmount(r.Context(), pool, existing.ID, req.Amount)
			message = "Presupuesto actualizado exitosamente"
		} else {
			start, end := periodRange(req.Period, now)
			budget, err = db.CreateBudget(r.Context(), pool, &models.Budget{
				UserID:     userID,
				CategoryID: category.ID,
				Amount:     req.Amount,
				Period:     req.Period,
				StartDate:  start,
				EndDate:    end,
			})
		}
		if err != nil {
			log.Printf("ERROR: Failed to save budget for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.ClearUserCaches(userID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": message,
			"budget":  budget,
		})
	}
}

type budgetStatusResponse struct {
	Budgets []models.BudgetStatus `json:"budgets"`
	Totals  models.BudgetTotals   `json:"totals"`
}

// currentBudgetStatuses builds the monthly budget report: actual spending per
// budgeted category since the start of the current month.
func currentBudgetStatuses(r *http.Request, pool *pgxpool.Pool, userID string) (budgetStatusResponse, error) {
	now := time.Now()
	budgets, err := db.GetActiveBudgets(r.Context(), pool, userID, "monthly", now)
	if err != nil {
		return budgetStatusResponse{}, err
	}

	monthStart, _ := periodRange("monthly", now)
	resp := budgetStatusResponse{Budgets: []models.BudgetStatus{}}
	for _, b := range budgets {
		spent, err := db.SumTransactions(r.Context(), pool, userID, "expense", monthStart, &b.CategoryID)
		if err != nil {
			return budgetStatusResponse{}, err
		}

		percentage, status := budgetStatusFor(b.Amount, spent)
		resp.Budgets = append(resp.Budgets, models.BudgetStatus{
			Category:   b.CategoryName,
			Icon:       b.CategoryIcon,
			Color:      b.CategoryColor,
			Budget:     b.Amount,
			Spent:      spent,
			Remaining:  b.Amount - spent,
			Percentage: percentage,
			Status:     status,
		})
		resp.Totals.Budget += b.Amount
		resp.Totals.Spent += spent
	}

	resp.Totals.Remaining = resp.Totals.Budget - resp.Totals.Spent
	totalPct, _ := budgetStatusFor(resp.Totals.Budget, resp.Totals.Spent)
	resp.Totals.Percentage = totalPct
	return resp, nil
}

func GetBudgetStatus(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		cacheKey := cache.BudgetStatusCacheKey(userID)
		if cached, found := cache.Cache.Get(cacheKey); found {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cached)
			return
		}

		resp, err := currentBudgetStatuses(r, pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to build budget status for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.SetBudgetStatusCache(cacheKey, resp)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
