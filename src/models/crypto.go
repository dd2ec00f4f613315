package models

import "time"

type CryptoAccount struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Exchange        string     `json:"exchange"`
	APIKeyEncrypted string     `json:"-"`
	Status          string     `json:"status"`
	LastSyncedAt    *time.Time `json:"last_synced_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CryptoBalance struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CryptoAccountID string    `json:"crypto_account_id"`
	Asset           string    `json:"asset"`
	Free            float64   `json:"free"`
	Locked          float64   `json:"locked"`
	Total           float64   `json:"total"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CryptoTransaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CryptoAccountID string    `json:"crypto_account_id"`
	ExternalID      string    `json:"external_id"`
	Type            string    `json:"type"`
	Asset           string    `json:"asset"`
	Amount          float64   `json:"amount"`
	PriceUSD        float64   `json:"price_usd"`
	TotalUSD        float64   `json:"total_usd"`
	FeeAsset        string    `json:"fee_asset"`
	FeeAmount       float64   `json:"fee_amount"`
	TransactionTime time.Time `json:"transaction_time"`
}
