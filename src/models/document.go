package models

import "time"

// Document is a stored receipt. The extracted_* fields stay null until the
// caller's extraction step fills them in; a document missing amount or date
// is never considered for matching.
type Document struct {
	ID                     string     `json:"id"`
	UserID                 string     `json:"user_id"`
	FilePath               *string    `json:"file_path"`
	FileType               *string    `json:"file_type"`
	OriginalFilename       *string    `json:"original_filename"`
	ExtractedAmount        *float64   `json:"extracted_amount"`
	ExtractedDate          *time.Time `json:"extracted_date"`
	ExtractedMerchant      *string    `json:"extracted_merchant"`
	ExtractedPaymentMethod *string    `json:"extracted_payment_method"`
	HasLineItems           bool       `json:"has_line_items"`
	Processed              bool       `json:"processed"`
	IsMatched              bool       `json:"is_matched"`
	TransactionID          *string    `json:"transaction_id"`
	CreatedAt              time.Time  `json:"created_at"`
}

type LineItem struct {
	ID                 string   `json:"id"`
	DocumentID         string   `json:"document_id"`
	Description        string   `json:"description"`
	Quantity           float64  `json:"quantity"`
	UnitPrice          *float64 `json:"unit_price"`
	TotalPrice         float64  `json:"total_price"`
	ProductID          *string  `json:"product_id"`
	IsClassified       bool     `json:"is_classified"`
	NeedsClarification bool     `json:"needs_clarification"`
}
