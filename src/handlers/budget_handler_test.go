package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodRangeMonthly(t *testing.T) {
	now := time.Date(2025, time.February, 14, 10, 30, 0, 0, time.UTC)

	start, end := periodRange("monthly", now)

	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriodRangeMonthlyDecemberRollsOver(t *testing.T) {
	now := time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)

	start, end := periodRange("monthly", now)

	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriodRangeYearly(t *testing.T) {
	now := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)

	start, end := periodRange("yearly", now)

	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestBudgetStatusThresholds(t *testing.T) {
	tests := []struct {
		name       string
		budget     float64
		spent      float64
		percentage int
		status     string
	}{
		{"under budget", 1000, 500, 50, "ok"},
		{"just below warning", 1000, 799, 80, "ok"},
		{"warning at eighty percent", 1000, 800, 80, "warning"},
		{"exceeded at one hundred", 1000, 1000, 100, "exceeded"},
		{"percentage capped over budget", 1000, 1500, 100, "exceeded"},
		{"zero budget", 0, 50, 0, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percentage, status := budgetStatusFor(tt.budget, tt.spent)

			assert.Equal(t, tt.percentage, percentage)
			assert.Equal(t, tt.status, status)
		})
	}
}
