package models

import "time"

// Product is a learned grocery/retail product. NormalizedNames collects every
// receipt description the user has mapped onto it.
type Product struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	Name            string   `json:"name"`
	NormalizedNames []string `json:"normalized_names"`
	CategoryID      *string  `json:"category_id"`
}

type PriceRecord struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"product_id"`
	ProductName       string    `json:"product_name,omitempty"`
	Merchant          string    `json:"merchant"`
	Price             float64   `json:"price"`
	Quantity          float64   `json:"quantity"`
	UnitPrice         float64   `json:"unit_price"`
	ReceiptLineItemID *string   `json:"receipt_line_item_id"`
	PurchasedAt       time.Time `json:"purchased_at"`
}
