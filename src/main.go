package main

import (
	"log"
	"net/http"

	"fintracker-server/src/api"
	"fintracker-server/src/binance"
	"fintracker-server/src/config"
	"fintracker-server/src/db"
	"fintracker-server/src/plaid"
)

func main() {
	cfg := config.Load()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	db.InitCache()

	plaidClient := plaid.NewPlaidClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
	binanceClient := binance.NewClient(cfg.BinanceBaseURL)

	// Router
	router := api.NewRouter(pool, plaidClient, binanceClient, cfg.SyncSecret)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
