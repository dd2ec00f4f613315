package api

import (
	"net/http"

	"fintracker-server/src/binance"
	"fintracker-server/src/handlers"
	"fintracker-server/src/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
)

func NewRouter(pool *pgxpool.Pool, plaidClient *plaid.APIClient, binanceClient *binance.Client, syncSecret string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool))
		r.Post("/register", handlers.Register(pool))

		// Scheduled jobs authenticate with the shared sync secret, not a user
		// token.
		r.With(middleware.SyncSecretMiddleware(syncSecret)).Group(func(r chi.Router) {
			r.Post("/sync/bank", handlers.SyncBankTransactions(plaidClient, pool))
			r.Post("/sync/crypto", handlers.SyncCryptoAccounts(binanceClient, pool))
		})

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// Transactions
			r.Post("/transactions", handlers.CreateTransaction(pool))
			r.Get("/transactions", handlers.GetTransactions(pool))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(pool))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(pool))

			// Budgets
			r.Post("/budgets", handlers.UpsertBudget(pool))
			r.Get("/budgets/status", handlers.GetBudgetStatus(pool))

			// Debts
			r.Post("/debts", handlers.CreateDebt(pool))
			r.Get("/debts", handlers.GetDebts(pool))
			r.Post("/debts/{debt_id}/payments", handlers.RecordDebtPayment(pool))

			// Summary
			r.Get("/summary", handlers.GetFinancialSummary(pool))

			// Receipts and products
			r.Post("/receipts", handlers.UploadReceipt(pool))
			r.Post("/products/classify", handlers.ClassifyProducts(pool))
			r.Get("/products/insights", handlers.GetPriceInsights(pool))

			// Bank links
			r.Post("/bank/link-token", handlers.CreateLinkToken(plaidClient, pool))
			r.Post("/bank/links", handlers.ExchangePublicToken(plaidClient, pool))
			r.Get("/bank/links", handlers.GetBankLinks(pool))

			// Crypto
			r.Post("/crypto/accounts", handlers.SaveCryptoAccount(pool))
			r.Get("/crypto/balances", handlers.GetCryptoBalances(pool))
		})
	})

	return r
}
