package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintracker-server/src/binance"
	db "fintracker-server/src/db/sql"
	"fintracker-server/src/models"
	"fintracker-server/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

const tradeLookbackDays = 7

func SaveCryptoAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req struct {
			Exchange  string `json:"exchange"`
			APIKey    string `json:"api_key"`
			APISecret string `json:"api_secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode crypto account body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.APIKey == "" || req.APISecret == "" {
			http.Error(w, "api_key and api_secret are required", http.StatusBadRequest)
			return
		}
		if req.Exchange == "" {
			req.Exchange = "binance"
		}

		encoded, err := util.EncodeCredentials(util.ExchangeCredentials{
			APIKey:    req.APIKey,
			APISecret: req.APISecret,
		})
		if err != nil {
			log.Printf("ERROR: Failed to encode exchange credentials: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		account, err := db.CreateCryptoAccount(r.Context(), pool, userID, req.Exchange, encoded)
		if err != nil {
			log.Printf("ERROR: Failed to save crypto account for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Crypto account saved - User: %s, Exchange: %s", userID, req.Exchange)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "Cuenta de exchange guardada exitosamente",
			"account": account,
		})
	}
}

func GetCryptoBalances(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		balances, err := db.GetCryptoBalances(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to fetch crypto balances for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if balances == nil {
			balances = []models.CryptoBalance{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(balances)
	}
}

// SyncCryptoAccounts runs the scheduled exchange import: refresh spot
// balances and pull the last week of trades on the major pairs. One failing
// account never aborts the rest of the run.
func SyncCryptoAccounts(client *binance.Client, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := db.GetActiveCryptoAccounts(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to fetch active crypto accounts: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var results []models.SyncResult
		for _, account := range accounts {
			updated, err := syncCryptoAccount(r.Context(), client, pool, account)
			if err != nil {
				log.Printf("ERROR: Sync failed for crypto account %s: %v", account.ID, err)
				results = append(results, models.SyncResult{
					Link:  account.Exchange,
					Error: err.Error(),
				})
				continue
			}
			results = append(results, models.SyncResult{
				Exchange:        account.Exchange,
				BalancesUpdated: &updated,
			})
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

func syncCryptoAccount(ctx context.Context, client *binance.Client, pool *pgxpool.Pool, account models.CryptoAccount) (int, error) {
	creds, err := util.DecodeCredentials(account.APIKeyEncrypted)
	if err != nil {
		return 0, err
	}

	remote, err := client.Account(ctx, creds.APIKey, creds.APISecret)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, balance := range remote.Balances {
		free, _ := strconv.ParseFloat(balance.Free, 64)
		locked, _ := strconv.ParseFloat(balance.Locked, 64)
		total := free + locked
		if total <= 0 {
			continue
		}
		err := db.UpsertCryptoBalance(ctx, pool, account.UserID, account.ID, balance.Asset, free, locked, total)
		if err != nil {
			return updated, err
		}
		updated++
	}

	end := time.Now()
	start := end.AddDate(0, 0, -tradeLookbackDays)
	for _, symbol := range binance.MajorPairs {
		trades, err := client.MyTrades(ctx, creds.APIKey, creds.APISecret, symbol, start, end, 100)
		if err != nil {
			// Trade history on a single pair is best-effort, balances already
			// landed.
			log.Printf("ERROR: Failed to fetch %s trades for crypto account %s: %v", symbol, account.ID, err)
			continue
		}
		for _, trade := range trades {
			price, _ := strconv.ParseFloat(trade.Price, 64)
			qty, _ := strconv.ParseFloat(trade.Qty, 64)
			quoteQty, _ := strconv.ParseFloat(trade.QuoteQty, 64)
			fee, _ := strconv.ParseFloat(trade.Commission, 64)

			tradeType := "sell"
			if trade.IsBuyer {
				tradeType = "buy"
			}

			_, err := db.InsertCryptoTransaction(ctx, pool, models.CryptoTransaction{
				UserID:          account.UserID,
				CryptoAccountID: account.ID,
				ExternalID:      "trade_" + strconv.FormatInt(trade.ID, 10),
				Type:            tradeType,
				Asset:           strings.TrimSuffix(symbol, "USDT"),
				Amount:          qty,
				PriceUSD:        price,
				TotalUSD:        quoteQty,
				FeeAsset:        trade.CommissionAsset,
				FeeAmount:       fee,
				TransactionTime: time.UnixMilli(trade.Time),
			})
			if err != nil {
				return updated, err
			}
		}
	}

	if err := db.UpdateCryptoLastSynced(ctx, pool, account.ID); err != nil {
		return updated, err
	}
	return updated, nil
}
