// Package reconcile pairs uploaded receipt documents with bank-imported
// transactions.
//
// Two call sites use it: the bulk sync job matches every unmatched document
// of a user against the unreconciled bank-import pool (first-fit, merchant
// ignored), and the receipt-upload handler matches one fresh document against
// a pre-ranged candidate list (merchant used as a tie-break, never a filter).
package reconcile

import (
	"math"
	"strings"
	"time"

	"fintracker-server/src/models"
)

const (
	// A transaction amount counts as close when it differs by less than one
	// currency unit, or by less than 1% of the transaction amount. Either
	// condition alone is enough.
	AmountToleranceAbs = 1.00
	AmountToleranceRel = 0.01

	// Calendar-day distance between receipt date and transaction date.
	// Partial days round up, so 2 days is the last value that still matches.
	DateToleranceDays = 2

	ConfidenceExactMerchant = 0.95
	ConfidenceAmountDate    = 0.75

	merchantPrefixLen = 5
)

// Pair is one matching decision. Nothing is written here; callers apply the
// pair to the datastore and deal with write conflicts.
type Pair struct {
	DocumentID    string
	TransactionID string
	Confidence    float64
}

// MatchPools runs the bulk pass: for each document, in slice order, claim the
// first transaction that satisfies the amount and date gates. Documents
// missing an extracted amount or date are skipped, not errors. A claimed
// transaction goes into a consumed set so it cannot be claimed twice within
// the pass. Merchant names play no part here.
func MatchPools(docs []models.Document, txs []models.Transaction) []Pair {
	var pairs []Pair
	consumed := make(map[string]struct{}, len(txs))

	for i := range docs {
		doc := &docs[i]
		if doc.ExtractedAmount == nil || doc.ExtractedDate == nil {
			continue
		}
		for j := range txs {
			tx := &txs[j]
			if _, used := consumed[tx.ID]; used {
				continue
			}
			if !amountClose(tx.Amount, *doc.ExtractedAmount) || !dateClose(tx.Date, *doc.ExtractedDate) {
				continue
			}
			consumed[tx.ID] = struct{}{}
			pairs = append(pairs, Pair{
				DocumentID:    doc.ID,
				TransactionID: tx.ID,
				Confidence:    confidence(doc.ExtractedMerchant, tx.Merchant),
			})
			break
		}
	}
	return pairs
}

// MatchReceipt runs the upload pass over candidates already narrowed by the
// amount/date range query. A candidate whose normalized merchant contains the
// first 5 characters of the normalized receipt merchant wins; failing that,
// the first candidate does, regardless of merchant similarity.
func MatchReceipt(doc models.Document, candidates []models.Transaction) *Pair {
	if len(candidates) == 0 {
		return nil
	}

	prefix := merchantPrefix(doc.ExtractedMerchant)

	var chosen *models.Transaction
	for i := range candidates {
		c := &candidates[i]
		if c.Merchant != nil && strings.Contains(NormalizeMerchant(*c.Merchant), prefix) {
			chosen = c
			break
		}
	}
	if chosen == nil {
		chosen = &candidates[0]
	}

	return &Pair{
		DocumentID:    doc.ID,
		TransactionID: chosen.ID,
		Confidence:    confidence(doc.ExtractedMerchant, chosen.Merchant),
	}
}

// NormalizeMerchant lowercases, trims, and strips every rune outside
// [a-z0-9]. Accented characters are stripped, not transliterated, so
// "Café Listo" becomes "caflisto".
func NormalizeMerchant(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(strings.ToLower(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func merchantPrefix(merchant *string) string {
	if merchant == nil {
		return ""
	}
	norm := NormalizeMerchant(*merchant)
	if len(norm) > merchantPrefixLen {
		return norm[:merchantPrefixLen]
	}
	return norm
}

func amountClose(txAmount, docAmount float64) bool {
	diff := math.Abs(txAmount - docAmount)
	return diff < AmountToleranceAbs || diff/txAmount < AmountToleranceRel
}

func dateClose(a, b time.Time) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(float64(diff) / float64(24*time.Hour)))
	return days <= DateToleranceDays
}

func confidence(docMerchant, txMerchant *string) float64 {
	if docMerchant == nil || txMerchant == nil {
		return ConfidenceAmountDate
	}
	if n := NormalizeMerchant(*txMerchant); n != "" && n == NormalizeMerchant(*docMerchant) {
		return ConfidenceExactMerchant
	}
	return ConfidenceAmountDate
}
