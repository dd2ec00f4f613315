package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	cache "fintracker-server/src/db"
	db "fintracker-server/src/db/sql"
	"fintracker-server/src/models"
	"fintracker-server/src/reconcile"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
)

// reconcileWindowDays bounds how far back the bulk pass looks for
// unreconciled bank transactions.
const reconcileWindowDays = 60

func CreateLinkToken(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		user := plaid.LinkTokenCreateRequestUser{
			ClientUserId: userID,
		}
		request := plaid.NewLinkTokenCreateRequest(
			"FinTracker",
			"es",
			[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		)
		request.SetUser(user)
		request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
		resp, _, err := plaidClient.PlaidApi.LinkTokenCreate(context.Background()).LinkTokenCreateRequest(*request).Execute()
		if err != nil {
			http.Error(w, "Failed to create link token", http.StatusInternalServerError)
			log.Printf("ERROR: Link token creation failed for user %s: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"link_token": resp.GetLinkToken(),
		})
	}
}

func ExchangePublicToken(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req struct {
			PublicToken string `json:"public_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode exchange public token request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		exchangeReq := plaid.NewItemPublicTokenExchangeRequest(req.PublicToken)
		exchangeResp, _, err := plaidClient.PlaidApi.ItemPublicTokenExchange(context.Background()).ItemPublicTokenExchangeRequest(
			*exchangeReq,
		).Execute()
		if err != nil {
			http.Error(w, "Failed to exchange public token", http.StatusInternalServerError)
			log.Printf("ERROR: Public token exchange failed for user %s: %v", userID, err)
			return
		}

		accessToken := exchangeResp.GetAccessToken()
		itemID := exchangeResp.GetItemId()

		institution := "Bank"
		itemReq := plaid.NewItemGetRequest(accessToken)
		itemResp, _, err := plaidClient.PlaidApi.ItemGet(context.Background()).ItemGetRequest(*itemReq).Execute()
		if err != nil {
			// Institution details are cosmetic, keep going without them.
			log.Printf("ERROR: Failed to fetch item details for user %s: %v", userID, err)
		} else if name, ok := itemResp.GetItem().AdditionalProperties["institution_name"].(string); ok && name != "" {
			institution = name
		}

		link, err := db.SaveBankLink(r.Context(), pool, userID, itemID, accessToken, institution)
		if err != nil {
			http.Error(w, "Failed to save bank link", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to save bank link for user %s: %v", userID, err)
			return
		}

		log.Printf("INFO: Bank link created - User: %s, Item: %s, Institution: %s", userID, itemID, institution)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(link)
	}
}

func GetBankLinks(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		links, err := db.GetBankLinks(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to fetch bank links for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if links == nil {
			links = []models.BankLink{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(links)
	}
}

// SyncBankTransactions runs the scheduled import: pull new transactions for
// every active link, then reconcile pending receipts against the imported
// pool. One failing link never aborts the rest of the run.
func SyncBankTransactions(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := db.GetActiveBankLinks(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to fetch active bank links: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var results []models.SyncResult
		syncedUsers := make(map[string]struct{})

		for _, link := range links {
			linkResults, err := syncLink(r.Context(), plaidClient, pool, link)
			if err != nil {
				log.Printf("ERROR: Sync failed for link %s (%s): %v", link.ID, link.Institution, err)
				results = append(results, models.SyncResult{
					Link:  link.Institution,
					Error: err.Error(),
				})
				continue
			}
			results = append(results, linkResults...)
			syncedUsers[link.UserID] = struct{}{}
		}

		for userID := range syncedUsers {
			reconciled, err := reconcileUser(r.Context(), pool, userID)
			if err != nil {
				log.Printf("ERROR: Reconciliation pass failed for user %s: %v", userID, err)
				results = append(results, models.SyncResult{
					Link:  "Reconciliation",
					Error: err.Error(),
				})
				continue
			}
			results = append(results, models.SyncResult{
				Account:            "Reconciliation",
				ReconciledReceipts: &reconciled,
			})
			cache.ClearUserCaches(userID)
		}

		if results == nil {
			results = []models.SyncResult{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"results": results,
		})
	}
}

func syncLink(ctx context.Context, plaidClient *plaid.APIClient, pool *pgxpool.Pool, link models.BankLink) ([]models.SyncResult, error) {
	accountsReq := plaid.NewAccountsGetRequest(link.AccessToken)
	accountsResp, _, err := plaidClient.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*accountsReq).Execute()
	if err != nil {
		return nil, err
	}

	// Remote account id -> local account, creating locals on first sight.
	localAccounts := make(map[string]*models.Account)
	newCounts := make(map[string]int)
	var accountOrder []string

	for _, remote := range accountsResp.GetAccounts() {
		name := link.Institution + " - " + remote.GetName()
		account, err := db.GetAccountByName(ctx, pool, link.UserID, name)
		if err != nil {
			return nil, err
		}
		if account == nil {
			balances := remote.GetBalances()
			currency := balances.GetIsoCurrencyCode()
			if currency == "" {
				currency = "MXN"
			}
			account, err = db.CreateAccount(ctx, pool, link.UserID, name, string(remote.GetType()), currency, 0)
			if err != nil {
				return nil, err
			}
		}
		localAccounts[remote.GetAccountId()] = account
		newCounts[account.Name] = 0
		accountOrder = append(accountOrder, account.Name)
	}

	cursor := link.SyncCursor
	for {
		syncReq := plaid.NewTransactionsSyncRequest(link.AccessToken)
		if cursor != "" {
			syncReq.SetCursor(cursor)
		}
		syncResp, _, err := plaidClient.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*syncReq).Execute()
		if err != nil {
			return nil, err
		}

		for _, tx := range syncResp.GetAdded() {
			account, ok := localAccounts[tx.GetAccountId()]
			if !ok {
				continue
			}

			date, err := time.Parse("2006-01-02", tx.GetDate())
			if err != nil {
				log.Printf("ERROR: Skipping transaction %s with unparseable date %q", tx.GetTransactionId(), tx.GetDate())
				continue
			}

			// Positive aggregator amounts are outflows.
			amount := tx.GetAmount()
			txType := "income"
			if amount > 0 {
				txType = "expense"
			} else {
				amount = -amount
			}

			merchant := tx.GetMerchantName()
			if merchant == "" {
				merchant = tx.GetName()
			}
			description := tx.GetName()
			externalID := tx.GetTransactionId()

			inserted, err := db.InsertBankTransaction(ctx, pool, db.CreateTransactionParams{
				UserID:      link.UserID,
				AccountID:   account.ID,
				Type:        txType,
				Amount:      amount,
				Description: &description,
				Merchant:    &merchant,
				Date:        date,
				Source:      models.SourceBankImport,
				ExternalID:  &externalID,
			})
			if err != nil {
				return nil, err
			}
			if inserted {
				newCounts[account.Name]++
			}
		}

		cursor = syncResp.GetNextCursor()
		if !syncResp.GetHasMore() {
			break
		}
	}

	if err := db.UpdateBankLinkCursor(ctx, pool, link.ID, cursor); err != nil {
		return nil, err
	}

	var results []models.SyncResult
	for _, name := range accountOrder {
		count := newCounts[name]
		results = append(results, models.SyncResult{
			Account:         name,
			NewTransactions: &count,
		})
	}
	return results, nil
}

// reconcileUser pairs every pending receipt it can against the user's
// unreconciled bank imports.
func reconcileUser(ctx context.Context, pool *pgxpool.Pool, userID string) (int, error) {
	docs, err := db.GetUnmatchedDocuments(ctx, pool, userID)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	since := time.Now().AddDate(0, 0, -reconcileWindowDays)
	transactions, err := db.GetUnreconciledBankTransactions(ctx, pool, userID, since)
	if err != nil {
		return 0, err
	}

	// The matched transaction inherits the receipt image from its document.
	receiptURLs := receiptURLsByDocument(docs)

	reconciled := 0
	for _, pair := range reconcile.MatchPools(docs, transactions) {
		err := db.LinkDocumentToTransaction(ctx, pool, userID, pair.DocumentID, pair.TransactionID, receiptURLs[pair.DocumentID])
		if errors.Is(err, db.ErrAlreadyLinked) {
			continue
		}
		if err != nil {
			return reconciled, err
		}
		reconciled++
	}
	return reconciled, nil
}

func receiptURLsByDocument(docs []models.Document) map[string]*string {
	urls := make(map[string]*string, len(docs))
	for i := range docs {
		urls[docs[i].ID] = docs[i].FilePath
	}
	return urls
}
