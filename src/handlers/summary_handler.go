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

type financialSummary struct {
	Period       string                `json:"period"`
	TotalBalance float64               `json:"total_balance"`
	Income       float64               `json:"income"`
	Expenses     float64               `json:"expenses"`
	Net          float64               `json:"net"`
	SavingsRate  float64               `json:"savings_rate"`
	TotalDebt    float64               `json:"total_debt"`
	ActiveDebts  []models.Debt         `json:"active_debts"`
	Budgets      []models.BudgetStatus `json:"budgets"`
}

func GetFinancialSummary(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		period := r.URL.Query().Get("period")
		if period != "yearly" && period != "all" {
			period = "monthly"
		}

		cacheKey := cache.SummaryCacheKey(userID, period)
		if cached, found := cache.Cache.Get(cacheKey); found {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cached)
			return
		}

		now := time.Now()
		var since time.Time
		switch period {
		case "monthly":
			since = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		case "yearly":
			since = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		}

		totalBalance, err := db.GetTotalBalance(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to compute total balance for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		income, err := db.SumTransactions(r.Context(), pool, userID, "income", since, nil)
		if err != nil {
			log.Printf("ERROR: Failed to sum income for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		expenses, err := db.SumTransactions(r.Context(), pool, userID, "expense", since, nil)
		if err != nil {
			log.Printf("ERROR: Failed to sum expenses for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		totalDebt, err := db.GetTotalActiveDebt(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to compute total debt for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		debts, err := db.GetActiveDebts(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to fetch active debts for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if debts == nil {
			debts = []models.Debt{}
		}

		budgetStatuses, err := currentBudgetStatuses(r, pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to build budget statuses for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		savingsRate := 0.0
		if income > 0 {
			savingsRate = math.Round((income-expenses)/income*10000) / 100
		}

		summary := financialSummary{
			Period:       period,
			TotalBalance: totalBalance,
			Income:       income,
			Expenses:     expenses,
			Net:          income - expenses,
			SavingsRate:  savingsRate,
			TotalDebt:    totalDebt,
			ActiveDebts:  debts,
			Budgets:      budgetStatuses.Budgets,
		}

		cache.SetSummaryCache(cacheKey, summary)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summary)
	}
}
