package models

// ReceiptLineItem is one line of extracted receipt data as posted by the
// client (the extraction itself happens upstream, outside this server).
type ReceiptLineItem struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	TotalPrice  float64  `json:"total_price"`
}

type ExtractedReceiptData struct {
	Merchant          string            `json:"merchant"`
	Total             float64           `json:"total"`
	Date              string            `json:"date"`
	PaymentMethod     *string           `json:"payment_method,omitempty"`
	SuggestedCategory *string           `json:"suggested_category,omitempty"`
	Items             []ReceiptLineItem `json:"items,omitempty"`
}

type UploadReceiptRequest struct {
	FileURL       *string              `json:"file_url,omitempty"`
	ExtractedData ExtractedReceiptData `json:"extracted_data"`
}

type UnclassifiedProduct struct {
	LineItemID  string `json:"line_item_id"`
	Description string `json:"description"`
}

type MatchingInfo struct {
	FoundTransaction bool    `json:"found_transaction"`
	TransactionID    string  `json:"transaction_id,omitempty"`
	Confidence       float64 `json:"confidence"`
}

type UploadReceiptResponse struct {
	Success              bool                  `json:"success"`
	DocumentID           string                `json:"document_id"`
	FileURL              *string               `json:"file_url,omitempty"`
	LineItemsCreated     *int                  `json:"line_items_created,omitempty"`
	UnclassifiedProducts []UnclassifiedProduct `json:"unclassified_products,omitempty"`
	Matching             *MatchingInfo         `json:"matching,omitempty"`
}
