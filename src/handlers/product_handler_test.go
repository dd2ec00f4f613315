package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintracker-server/src/models"
)

func TestNormalizeProductName(t *testing.T) {
	assert.Equal(t, "leche entera", normalizeProductName("  Leche   Entera "))
	assert.Equal(t, "pan blanco", normalizeProductName("PAN BLANCO"))
	assert.Equal(t, "", normalizeProductName("   "))
}

func priceRecord(product, merchant string, unitPrice float64, day int) models.PriceRecord {
	return models.PriceRecord{
		ProductName: product,
		Merchant:    merchant,
		UnitPrice:   unitPrice,
		PurchasedAt: time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestComputePriceInsightsSplitsIncreasesAndDecreases(t *testing.T) {
	records := []models.PriceRecord{
		priceRecord("Leche Entera", "Walmart", 25.00, 1),
		priceRecord("Leche Entera", "Walmart", 28.00, 15),
		priceRecord("Pan Blanco", "Soriana", 40.00, 2),
		priceRecord("Pan Blanco", "Soriana", 36.00, 20),
	}

	insights := computePriceInsights(records)

	require.Len(t, insights.Increases, 1)
	assert.Equal(t, "Leche Entera", insights.Increases[0].Product)
	assert.Equal(t, "Walmart", insights.Increases[0].Merchant)
	assert.InDelta(t, 12.0, insights.Increases[0].ChangePercentage, 0.001)

	require.Len(t, insights.Decreases, 1)
	assert.Equal(t, "Pan Blanco", insights.Decreases[0].Product)
	assert.InDelta(t, -10.0, insights.Decreases[0].ChangePercentage, 0.001)
}

func TestComputePriceInsightsGroupsByMerchant(t *testing.T) {
	// Same product at two stores are independent trends.
	records := []models.PriceRecord{
		priceRecord("Leche Entera", "Walmart", 25.00, 1),
		priceRecord("Leche Entera", "Soriana", 24.00, 2),
		priceRecord("Leche Entera", "Walmart", 30.00, 10),
	}

	insights := computePriceInsights(records)

	require.Len(t, insights.Increases, 1)
	assert.Equal(t, "Walmart", insights.Increases[0].Merchant)
	assert.Empty(t, insights.Decreases)
}

func TestComputePriceInsightsSkipsSingleRecords(t *testing.T) {
	records := []models.PriceRecord{
		priceRecord("Cafe", "Costco", 150.00, 5),
	}

	insights := computePriceInsights(records)

	assert.Empty(t, insights.Increases)
	assert.Empty(t, insights.Decreases)
	require.Len(t, insights.Averages, 1)
	assert.Equal(t, 150.00, insights.Averages[0].AverageUnitPrice)
}

func TestComputePriceInsightsAverages(t *testing.T) {
	records := []models.PriceRecord{
		priceRecord("Leche Entera", "Walmart", 25.00, 1),
		priceRecord("Leche Entera", "Soriana", 27.00, 3),
		priceRecord("Leche Entera", "Walmart", 26.00, 9),
	}

	insights := computePriceInsights(records)

	require.Len(t, insights.Averages, 1)
	assert.Equal(t, 26.00, insights.Averages[0].AverageUnitPrice)
	assert.Equal(t, 3, insights.Averages[0].Records)
}

func TestComputePriceInsightsRecommendationsMentionTrend(t *testing.T) {
	records := []models.PriceRecord{
		priceRecord("Huevos", "Walmart", 50.00, 1),
		priceRecord("Huevos", "Walmart", 55.00, 10),
	}

	insights := computePriceInsights(records)

	require.Len(t, insights.Recommendations, 1)
	assert.Contains(t, insights.Recommendations[0], "Huevos")
	assert.Contains(t, insights.Recommendations[0], "subió")
}
