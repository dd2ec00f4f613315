package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintracker-server/src/models"
)

func strPtr(s string) *string        { return &s }
func f64Ptr(f float64) *float64      { return &f }
func datePtr(t time.Time) *time.Time { return &t }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func makeDoc(id string, amount float64, date time.Time, merchant string) models.Document {
	doc := models.Document{
		ID:              id,
		ExtractedAmount: f64Ptr(amount),
		ExtractedDate:   datePtr(date),
	}
	if merchant != "" {
		doc.ExtractedMerchant = strPtr(merchant)
	}
	return doc
}

func makeTx(id string, amount float64, date time.Time, merchant string) models.Transaction {
	tx := models.Transaction{
		ID:     id,
		Amount: amount,
		Date:   date,
		Source: models.SourceBankImport,
	}
	if merchant != "" {
		tx.Merchant = strPtr(merchant)
	}
	return tx
}

func TestNormalizeMerchant(t *testing.T) {
	assert.Equal(t, "walmart123", NormalizeMerchant("Walmart #123!"))
	assert.Equal(t, "walmart123", NormalizeMerchant("walmart123"))
	// Accented runes are stripped, not transliterated.
	assert.Equal(t, "caflisto", NormalizeMerchant("Café Listo"))
	assert.Equal(t, "superdelmessa", NormalizeMerchant("  SUPER DEL MES SA "))
	assert.Equal(t, "", NormalizeMerchant("¡¿!?"))
}

func TestMatchPools_SkipsIncompleteDocuments(t *testing.T) {
	txs := []models.Transaction{makeTx("tx1", 50.00, day(2025, 11, 18), "")}
	docs := []models.Document{
		{ID: "no-amount", ExtractedDate: datePtr(day(2025, 11, 18))},
		{ID: "no-date", ExtractedAmount: f64Ptr(50.00)},
		{ID: "empty"},
	}

	pairs := MatchPools(docs, txs)

	assert.Empty(t, pairs)
}

func TestMatchPools_AmountTolerance(t *testing.T) {
	date := day(2025, 11, 18)

	tests := []struct {
		name      string
		docAmount float64
		txAmount  float64
		match     bool
	}{
		{"exact", 100.00, 100.00, true},
		{"under one unit", 100.00, 100.99, true},
		{"one unit and relative both out", 100.00, 99.00, false},
		{"relative within 1 percent", 500.00, 504.00, true},
		{"relative just over 1 percent", 500.00, 505.06, false},
		{"large absolute gap", 100.00, 200.00, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			docs := []models.Document{makeDoc("d1", tc.docAmount, date, "")}
			txs := []models.Transaction{makeTx("t1", tc.txAmount, date, "")}
			pairs := MatchPools(docs, txs)
			if tc.match {
				require.Len(t, pairs, 1)
			} else {
				assert.Empty(t, pairs)
			}
		})
	}
}

func TestMatchPools_DateToleranceRoundsUp(t *testing.T) {
	docDate := day(2025, 11, 18)

	tests := []struct {
		name   string
		txDate time.Time
		match  bool
	}{
		{"same day", docDate, true},
		{"one day later", day(2025, 11, 19), true},
		{"two days earlier", day(2025, 11, 16), true},
		{"three days later", day(2025, 11, 21), false},
		// 1 day + 1ms rounds up to 2 days, still inside the window.
		{"one day and a millisecond", docDate.Add(24*time.Hour + time.Millisecond), true},
		// 2 days + 1ms rounds up to 3 days, outside.
		{"two days and a millisecond", docDate.Add(48*time.Hour + time.Millisecond), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			docs := []models.Document{makeDoc("d1", 80.00, docDate, "")}
			txs := []models.Transaction{makeTx("t1", 80.00, tc.txDate, "")}
			pairs := MatchPools(docs, txs)
			if tc.match {
				require.Len(t, pairs, 1)
			} else {
				assert.Empty(t, pairs)
			}
		})
	}
}

func TestMatchPools_TransactionClaimedOnce(t *testing.T) {
	date := day(2025, 11, 18)
	docs := []models.Document{
		makeDoc("first", 25.00, date, ""),
		makeDoc("second", 25.00, date, ""),
	}
	txs := []models.Transaction{makeTx("only", 25.00, date, "")}

	pairs := MatchPools(docs, txs)

	require.Len(t, pairs, 1)
	assert.Equal(t, "first", pairs[0].DocumentID)
	assert.Equal(t, "only", pairs[0].TransactionID)
}

func TestMatchPools_FirstFitInPoolOrder(t *testing.T) {
	date := day(2025, 11, 18)
	docs := []models.Document{makeDoc("d1", 25.00, date, "")}
	// Both qualify; the first in pool order wins even though the second is
	// an exact amount match.
	txs := []models.Transaction{
		makeTx("older-close", 25.50, date.AddDate(0, 0, -1), ""),
		makeTx("exact", 25.00, date, ""),
	}

	pairs := MatchPools(docs, txs)

	require.Len(t, pairs, 1)
	assert.Equal(t, "older-close", pairs[0].TransactionID)
}

func TestMatchPools_MerchantNeverFilters(t *testing.T) {
	date := day(2025, 11, 18)
	docs := []models.Document{makeDoc("d1", 40.00, date, "Farmacia Guadalajara")}
	txs := []models.Transaction{makeTx("t1", 40.00, date, "OXXO CENTRO")}

	pairs := MatchPools(docs, txs)

	require.Len(t, pairs, 1)
	assert.Equal(t, ConfidenceAmountDate, pairs[0].Confidence)
}

func TestMatchPools_SecondPassFindsNothing(t *testing.T) {
	date := day(2025, 11, 18)
	docs := []models.Document{
		makeDoc("d1", 10.00, date, ""),
		makeDoc("d2", 20.00, date, ""),
	}
	txs := []models.Transaction{
		makeTx("t1", 10.00, date, ""),
		makeTx("t2", 20.00, date, ""),
	}

	first := MatchPools(docs, txs)
	require.Len(t, first, 2)

	// After the caller applies the pairs, both filters exclude the rows; the
	// second pass sees empty pools and must add nothing.
	second := MatchPools(nil, nil)
	assert.Empty(t, second)
}

func TestMatchPools_ConcreteScenario(t *testing.T) {
	// 504.00 vs 500.00: diff 4.00 fails the absolute gate but 4/504 ≈ 0.79%
	// passes the relative one; dates are one day apart.
	docs := []models.Document{makeDoc("d1", 500.00, day(2025, 11, 18), "Super del Mes")}
	txs := []models.Transaction{makeTx("t1", 504.00, day(2025, 11, 19), "SUPER DEL MES SA")}

	pairs := MatchPools(docs, txs)

	require.Len(t, pairs, 1)
	assert.Equal(t, "t1", pairs[0].TransactionID)
	// Normalized merchants differ ("superdelmes" vs "superdelmessa").
	assert.Equal(t, ConfidenceAmountDate, pairs[0].Confidence)
}

func TestMatchReceipt_NoCandidates(t *testing.T) {
	doc := makeDoc("d1", 100.00, day(2025, 11, 18), "Walmart")
	assert.Nil(t, MatchReceipt(doc, nil))
}

func TestMatchReceipt_PrefersMerchantPrefix(t *testing.T) {
	doc := makeDoc("d1", 100.00, day(2025, 11, 18), "Walmart #123!")
	candidates := []models.Transaction{
		makeTx("wrong", 100.00, day(2025, 11, 18), "Costco Wholesale"),
		makeTx("right", 100.50, day(2025, 11, 19), "WAL-MART SUPERCENTER"),
	}

	pair := MatchReceipt(doc, candidates)

	require.NotNil(t, pair)
	assert.Equal(t, "right", pair.TransactionID)
	assert.Equal(t, ConfidenceAmountDate, pair.Confidence)
}

func TestMatchReceipt_FallsBackToFirstCandidate(t *testing.T) {
	// No candidate contains the receipt merchant prefix; the first one from
	// the range query still wins.
	doc := makeDoc("d1", 100.00, day(2025, 11, 18), "Panadería Rosa")
	candidates := []models.Transaction{
		makeTx("first", 100.00, day(2025, 11, 18), "OXXO"),
		makeTx("second", 100.00, day(2025, 11, 18), "Soriana"),
	}

	pair := MatchReceipt(doc, candidates)

	require.NotNil(t, pair)
	assert.Equal(t, "first", pair.TransactionID)
	assert.Equal(t, ConfidenceAmountDate, pair.Confidence)
}

func TestMatchReceipt_ExactMerchantConfidence(t *testing.T) {
	doc := makeDoc("d1", 100.00, day(2025, 11, 18), "Walmart #123!")
	candidates := []models.Transaction{
		makeTx("t1", 100.00, day(2025, 11, 18), "walmart123"),
	}

	pair := MatchReceipt(doc, candidates)

	require.NotNil(t, pair)
	assert.Equal(t, ConfidenceExactMerchant, pair.Confidence)
}

func TestMatchReceipt_NilMerchantCandidates(t *testing.T) {
	doc := makeDoc("d1", 100.00, day(2025, 11, 18), "Walmart")
	candidates := []models.Transaction{
		makeTx("no-merchant", 100.00, day(2025, 11, 18), ""),
	}

	pair := MatchReceipt(doc, candidates)

	require.NotNil(t, pair)
	assert.Equal(t, "no-merchant", pair.TransactionID)
	assert.Equal(t, ConfidenceAmountDate, pair.Confidence)
}
