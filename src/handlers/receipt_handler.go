package handlers

import (
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
)

// UploadReceipt stores an extracted receipt, records its line items and
// product prices, and tries to pair it with an existing transaction.
func UploadReceipt(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req models.UploadReceiptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode receipt upload body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		data := req.ExtractedData
		if data.Merchant == "" || data.Total <= 0 {
			http.Error(w, "merchant and a positive total are required", http.StatusBadRequest)
			return
		}

		// A receipt without a parseable date is stored but never auto-matched.
		var extractedDate *time.Time
		if parsed, err := time.Parse("2006-01-02", data.Date); err == nil {
			extractedDate = &parsed
		}

		total := data.Total
		merchant := data.Merchant
		doc, err := db.CreateDocument(r.Context(), pool, db.CreateDocumentParams{
			UserID:                 userID,
			FilePath:               req.FileURL,
			ExtractedAmount:        &total,
			ExtractedDate:          extractedDate,
			ExtractedMerchant:      &merchant,
			ExtractedPaymentMethod: data.PaymentMethod,
			HasLineItems:           len(data.Items) > 0,
		})
		if err != nil {
			log.Printf("ERROR: Failed to create document for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		purchasedAt := time.Now()
		if extractedDate != nil {
			purchasedAt = *extractedDate
		}

		lineItemsCreated := 0
		var unclassified []models.UnclassifiedProduct
		for _, item := range data.Items {
			if item.Description == "" {
				continue
			}

			normalized := normalizeProductName(item.Description)
			product, err := db.FindProductByNormalizedName(r.Context(), pool, userID, normalized)
			if err != nil {
				log.Printf("ERROR: Failed to look up product %q for user %s: %v", normalized, userID, err)
				continue
			}

			var productID *string
			if product != nil {
				productID = &product.ID
			}

			lineItem, err := db.CreateLineItem(r.Context(), pool, doc.ID, item, productID)
			if err != nil {
				log.Printf("ERROR: Failed to create line item on document %s: %v", doc.ID, err)
				continue
			}
			lineItemsCreated++

			if product != nil {
				unitPrice := item.TotalPrice
				if item.UnitPrice != nil {
					unitPrice = *item.UnitPrice
				} else if item.Quantity > 0 {
					unitPrice = item.TotalPrice / item.Quantity
				}
				err = db.InsertPriceRecord(r.Context(), pool, models.PriceRecord{
					ProductID:         product.ID,
					Merchant:          merchant,
					Price:             item.TotalPrice,
					Quantity:          item.Quantity,
					UnitPrice:         unitPrice,
					ReceiptLineItemID: &lineItem.ID,
					PurchasedAt:       purchasedAt,
				})
				if err != nil {
					log.Printf("ERROR: Failed to record price for product %s: %v", product.ID, err)
				}
			} else {
				unclassified = append(unclassified, models.UnclassifiedProduct{
					LineItemID:  lineItem.ID,
					Description: item.Description,
				})
			}
		}

		// Matching info only appears in the response when a link was made;
		// its absence is how a no-match is communicated.
		var matching *models.MatchingInfo
		if extractedDate != nil {
			candidates, err := db.GetCandidateTransactions(r.Context(), pool, userID, total, *extractedDate)
			if err != nil {
				log.Printf("ERROR: Failed to fetch candidate transactions for document %s: %v", doc.ID, err)
			} else if pair := reconcile.MatchReceipt(*doc, candidates); pair != nil {
				err = db.LinkDocumentToTransaction(r.Context(), pool, userID, doc.ID, pair.TransactionID, req.FileURL)
				switch {
				case errors.Is(err, db.ErrAlreadyLinked):
					log.Printf("INFO: Candidate %s claimed concurrently, leaving document %s unmatched", pair.TransactionID, doc.ID)
				case err != nil:
					log.Printf("ERROR: Failed to link document %s to transaction %s: %v", doc.ID, pair.TransactionID, err)
				default:
					matching = &models.MatchingInfo{
						FoundTransaction: true,
						TransactionID:    pair.TransactionID,
						Confidence:       pair.Confidence,
					}
					cache.ClearUserCaches(userID)
				}
			}
		}

		log.Printf("INFO: Receipt uploaded - User: %s, Document: %s, Matched: %t", userID, doc.ID, matching != nil)

		resp := models.UploadReceiptResponse{
			Success:              true,
			DocumentID:           doc.ID,
			FileURL:              req.FileURL,
			Matching:             matching,
			UnclassifiedProducts: unclassified,
		}
		if len(data.Items) > 0 {
			resp.LineItemsCreated = &lineItemsCreated
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(resp)
	}
}
