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

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateDebt(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req struct {
			Name           string     `json:"name"`
			Type           string     `json:"type"`
			TotalAmount    float64    `json:"total_amount"`
			InterestRate   *float64   `json:"interest_rate,omitempty"`
			MinimumPayment *float64   `json:"minimum_payment,omitempty"`
			DueDate        *time.Time `json:"due_date,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode debt request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.Name == "" || req.TotalAmount <= 0 {
			http.Error(w, "name and a positive total_amount are required", http.StatusBadRequest)
			return
		}
		if req.Type == "" {
			req.Type = "loan"
		}

		debt, err := db.CreateDebt(r.Context(), pool, &models.Debt{
			UserID:         userID,
			Name:           req.Name,
			Type:           req.Type,
			TotalAmount:    req.TotalAmount,
			InterestRate:   req.InterestRate,
			MinimumPayment: req.MinimumPayment,
			DueDate:        req.DueDate,
		})
		if err != nil {
			log.Printf("ERROR: Failed to create debt for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.ClearUserCaches(userID)

		log.Printf("INFO: Debt created - User: %s, ID: %s", userID, debt.ID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "Deuda registrada exitosamente",
			"debt":    debt,
		})
	}
}

func RecordDebtPayment(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		debtID := chi.URLParam(r, "debt_id")

		var req struct {
			Amount float64 `json:"amount"`
			Date   *string `json:"date,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode debt payment body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "amount must be positive", http.StatusBadRequest)
			return
		}

		debt, err := db.GetDebt(r.Context(), pool, userID, debtID)
		if err != nil {
			log.Printf("ERROR: Failed to look up debt %s for user %s: %v", debtID, userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if debt == nil {
			http.Error(w, "debt not found", http.StatusNotFound)
			return
		}

		paymentDate := time.Now()
		if req.Date != nil {
			if parsed, err := time.Parse("2006-01-02", *req.Date); err == nil {
				paymentDate = parsed
			}
		}

		// A payment can never push the remaining balance below zero.
		newRemaining := math.Max(0, debt.RemainingAmount-req.Amount)
		status := "active"
		if newRemaining <= 0 {
			status = "paid_off"
		}

		err = db.RecordDebtPayment(r.Context(), pool, debtID, req.Amount, paymentDate, newRemaining, status)
		if err != nil {
			log.Printf("ERROR: Failed to record payment on debt %s: %v", debtID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.ClearUserCaches(userID)

		log.Printf("INFO: Debt payment recorded - User: %s, Debt: %s, Remaining: %.2f", userID, debtID, newRemaining)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"message":   "Pago registrado exitosamente",
			"remaining": newRemaining,
			"paid_off":  status == "paid_off",
		})
	}
}

func GetDebts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		debts, err := db.GetActiveDebts(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to fetch debts for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if debts == nil {
			debts = []models.Debt{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(debts)
	}
}
