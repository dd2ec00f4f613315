package models

import "time"

// BankLink ties a user to one aggregator item (one linked institution).
type BankLink struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	ItemID       string     `json:"item_id"`
	AccessToken  string     `json:"-"`
	Institution  string     `json:"institution"`
	Status       string     `json:"status"`
	SyncCursor   string     `json:"-"`
	LastSyncedAt *time.Time `json:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SyncResult is one entry of the bulk-sync result list. Which fields are set
// depends on what happened: imported transactions per account, a
// reconciliation summary, or a per-link failure.
type SyncResult struct {
	Account            string `json:"account,omitempty"`
	NewTransactions    *int   `json:"new_transactions,omitempty"`
	ReconciledReceipts *int   `json:"reconciled_receipts,omitempty"`
	Exchange           string `json:"exchange,omitempty"`
	BalancesUpdated    *int   `json:"balances_updated,omitempty"`
	Link               string `json:"link,omitempty"`
	Error              string `json:"error,omitempty"`
}
