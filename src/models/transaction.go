package models

import "time"

// Transaction source discriminators.
const (
	SourceManual     = "manual"
	SourceBankImport = "bank_import"
	SourceReceiptOCR = "receipt_ocr"
)

// Amounts are always positive; the cash-flow direction lives in Type
// ("expense" or "income").
type Transaction struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	AccountID         string     `json:"account_id"`
	CategoryID        *string    `json:"category_id"`
	PaymentMethodID   *string    `json:"payment_method_id"`
	Type              string     `json:"type"`
	Amount            float64    `json:"amount"`
	Description       *string    `json:"description"`
	Merchant          *string    `json:"merchant"`
	Date              time.Time  `json:"date"`
	Status            string     `json:"status"`
	Source            string     `json:"source"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrencePattern *string    `json:"recurrence_pattern"`
	IsReconciled      bool       `json:"is_reconciled"`
	ReconciledWith    *string    `json:"reconciled_with"`
	ReceiptImageURL   *string    `json:"receipt_image_url"`
	ExternalID        *string    `json:"external_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}
