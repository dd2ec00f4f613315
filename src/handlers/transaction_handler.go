package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	cache "fintracker-server/src/db"
	db "fintracker-server/src/db/sql"
	"fintracker-server/src/models"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func userIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value("user_id").(string)
	return id
}

type transactionRequest struct {
	Type              string  `json:"type"`
	Amount            float64 `json:"amount"`
	Category          *string `json:"category,omitempty"`
	Description       *string `json:"description,omitempty"`
	Merchant          *string `json:"merchant,omitempty"`
	Date              string  `json:"date"`
	PaymentMethod     *string `json:"payment_method,omitempty"`
	Account           *string `json:"account,omitempty"`
	IsRecurring       bool    `json:"is_recurring"`
	RecurrencePattern *string `json:"recurrence_pattern,omitempty"`
}

func CreateTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req transactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode transaction request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.Type != "income" && req.Type != "expense" {
			http.Error(w, "type must be income or expense", http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "amount must be positive", http.StatusBadRequest)
			return
		}

		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		var categoryID *string
		if req.Category != nil && *req.Category != "" {
			category, err := db.GetOrCreateCategory(r.Context(), pool, userID, *req.Category, req.Type)
			if err != nil {
				log.Printf("ERROR: Failed to resolve category %s for user %s: %v", *req.Category, userID, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			categoryID = &category.ID
		}

		var account *models.Account
		if req.Account != nil && *req.Account != "" {
			account, err = db.GetAccountByName(r.Context(), pool, userID, *req.Account)
			if err != nil {
				log.Printf("ERROR: Failed to look up account %s for user %s: %v", *req.Account, userID, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}
		if account == nil {
			account, err = db.GetOrCreateDefaultAccount(r.Context(), pool, userID)
			if err != nil {
				log.Printf("ERROR: Failed to resolve default account for user %s: %v", userID, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		var paymentMethodID *string
		if req.PaymentMethod != nil && *req.PaymentMethod != "" {
			pm, err := db.GetPaymentMethod(r.Context(), pool, userID, *req.PaymentMethod)
			if err != nil {
				log.Printf("ERROR: Failed to look up payment method for user %s: %v", userID, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if pm != nil {
				paymentMethodID = &pm.ID
			}
		}

		transaction, err := db.CreateTransaction(r.Context(), pool, db.CreateTransactionParams{
			UserID:            userID,
			AccountID:         account.ID,
			CategoryID:        categoryID,
			PaymentMethodID:   paymentMethodID,
			Type:              req.Type,
			Amount:            req.Amount,
			Description:       req.Description,
			Merchant:          req.Merchant,
			Date:              date,
			Source:            models.SourceManual,
			IsRecurring:       req.IsRecurring,
			RecurrencePattern: req.RecurrencePattern,
		})
		if err != nil {
			log.Printf("ERROR: Failed to create transaction for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Balance moves on creation only. Deleting a transaction does not put
		// the money back.
		delta := req.Amount
		if req.Type == "expense" {
			delta = -req.Amount
		}
		if err := db.IncrementAccountBalance(r.Context(), pool, account.ID, delta); err != nil {
			log.Printf("ERROR: Failed to update balance for account %s: %v", account.ID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.ClearUserCaches(userID)

		message := "Ingreso registrado exitosamente"
		if req.Type == "expense" {
			message = "Gasto registrado exitosamente"
		}

		log.Printf("INFO: Transaction created - User: %s, ID: %s, Type: %s", userID, transaction.ID, transaction.Type)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"message":     message,
			"transaction": transaction,
		})
	}
}

func UpdateTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		transactionID := chi.URLParam(r, "transaction_id")

		var req transactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode transaction update body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.Type != "income" && req.Type != "expense" {
			http.Error(w, "type must be income or expense", http.StatusBadRequest)
			return
		}

		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		var categoryID *string
		if req.Category != nil && *req.Category != "" {
			category, err := db.GetOrCreateCategory(r.Context(), pool, userID, *req.Category, req.Type)
			if err != nil {
				log.Printf("ERROR: Failed to resolve category %s for user %s: %v", *req.Category, userID, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			categoryID = &category.ID
		}

		var paymentMethodID *string
		if req.PaymentMethod != nil && *req.PaymentMethod != "" {
			pm, err := db.GetPaymentMethod(r.Context(), pool, userID, *req.PaymentMethod)
			if err != nil {
				log.Printf("ERROR: Failed to look up payment method for user %s: %v", userID, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if pm != nil {
				paymentMethodID = &pm.ID
			}
		}

		transaction, err := db.UpdateTransaction(r.Context(), pool, userID, transactionID, db.UpdateTransactionParams{
			Type:              req.Type,
			Amount:            req.Amount,
			CategoryID:        categoryID,
			PaymentMethodID:   paymentMethodID,
			Description:       req.Description,
			Merchant:          req.Merchant,
			Date:              date,
			IsRecurring:       req.IsRecurring,
			RecurrencePattern: req.RecurrencePattern,
		})
		if err != nil {
			log.Printf("ERROR: Failed to update transaction %s for user %s: %v", transactionID, userID, err)
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		cache.ClearUserCaches(userID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"message":     "Transacción actualizada exitosamente",
			"transaction": transaction,
		})
	}
}

func DeleteTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		transactionID := chi.URLParam(r, "transaction_id")

		if err := db.DeleteTransaction(r.Context(), pool, userID, transactionID); err != nil {
			log.Printf("ERROR: Failed to delete transaction %s for user %s: %v", transactionID, userID, err)
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		cache.ClearUserCaches(userID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "Transacción eliminada exitosamente",
		})
	}
}

func GetTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}

		transactions, err := db.GetTransactions(r.Context(), pool, userID, limit)
		if err != nil {
			log.Printf("ERROR: Failed to fetch transactions for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if transactions == nil {
			transactions = []models.Transaction{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(transactions)
	}
}
