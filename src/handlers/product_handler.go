package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	db "fintracker-server/src/db/sql"
	"fintracker-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// normalizeProductName lowercases, trims, and collapses runs of whitespace so
// "Leche  Entera " and "leche entera" land on the same product.
func normalizeProductName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

type classification struct {
	LineItemID  string  `json:"line_item_id"`
	ProductName string  `json:"product_name"`
	Category    *string `json:"category,omitempty"`
}

// ClassifyProducts maps unrecognized receipt line items onto products,
// creating the product when the user names a new one. Each mapped spelling is
// remembered so the next receipt classifies itself.
func ClassifyProducts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req struct {
			Classifications []classification `json:"classifications"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode classification body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if len(req.Classifications) == 0 {
			http.Error(w, "classifications are required", http.StatusBadRequest)
			return
		}

		classified := 0
		var failures []string
		for _, c := range req.Classifications {
			if c.LineItemID == "" || strings.TrimSpace(c.ProductName) == "" {
				failures = append(failures, c.LineItemID)
				continue
			}

			lineItem, err := db.GetLineItem(r.Context(), pool, c.LineItemID)
			if err != nil {
				log.Printf("ERROR: Failed to load line item %s: %v", c.LineItemID, err)
				failures = append(failures, c.LineItemID)
				continue
			}

			var categoryID *string
			if c.Category != nil && *c.Category != "" {
				category, err := db.GetOrCreateCategory(r.Context(), pool, userID, *c.Category, "expense")
				if err != nil {
					log.Printf("ERROR: Failed to resolve category %s: %v", *c.Category, err)
				} else {
					categoryID = &category.ID
				}
			}

			name := strings.TrimSpace(c.ProductName)
			normalizedItem := normalizeProductName(lineItem.Description)

			product, err := db.GetProductByName(r.Context(), pool, userID, name)
			if err != nil {
				log.Printf("ERROR: Failed to look up product %q: %v", name, err)
				failures = append(failures, c.LineItemID)
				continue
			}
			if product == nil {
				names := []string{normalizeProductName(name)}
				if normalizedItem != names[0] {
					names = append(names, normalizedItem)
				}
				product, err = db.CreateProduct(r.Context(), pool, userID, name, names, categoryID)
				if err != nil {
					log.Printf("ERROR: Failed to create product %q: %v", name, err)
					failures = append(failures, c.LineItemID)
					continue
				}
			} else if err := db.AppendNormalizedName(r.Context(), pool, product.ID, normalizedItem); err != nil {
				log.Printf("ERROR: Failed to append normalized name to product %s: %v", product.ID, err)
			}

			if err := db.ClassifyLineItem(r.Context(), pool, c.LineItemID, product.ID); err != nil {
				log.Printf("ERROR: Failed to classify line item %s: %v", c.LineItemID, err)
				failures = append(failures, c.LineItemID)
				continue
			}
			classified++
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":          true,
			"classified_count": classified,
			"failed_items":     failures,
		})
	}
}

type priceTrend struct {
	Product          string  `json:"product"`
	Merchant         string  `json:"merchant"`
	FirstUnitPrice   float64 `json:"first_unit_price"`
	LatestUnitPrice  float64 `json:"latest_unit_price"`
	ChangePercentage float64 `json:"change_percentage"`
	Records          int     `json:"records"`
}

type productAverage struct {
	Product          string  `json:"product"`
	AverageUnitPrice float64 `json:"average_unit_price"`
	Records          int     `json:"records"`
}

type priceInsights struct {
	Increases       []priceTrend     `json:"increases"`
	Decreases       []priceTrend     `json:"decreases"`
	Averages        []productAverage `json:"averages"`
	Recommendations []string         `json:"recommendations"`
}

// computePriceInsights compares the oldest and newest unit price per
// product+merchant pair. Records must arrive oldest first.
func computePriceInsights(records []models.PriceRecord) priceInsights {
	type group struct {
		first, latest float64
		count         int
	}
	groups := make(map[string]*group)
	var order []string
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var productOrder []string

	for _, r := range records {
		key := r.ProductName + "|" + r.Merchant
		g, ok := groups[key]
		if !ok {
			g = &group{first: r.UnitPrice}
			groups[key] = g
			order = append(order, key)
		}
		g.latest = r.UnitPrice
		g.count++

		if _, ok := counts[r.ProductName]; !ok {
			productOrder = append(productOrder, r.ProductName)
		}
		sums[r.ProductName] += r.UnitPrice
		counts[r.ProductName]++
	}

	insights := priceInsights{
		Increases:       []priceTrend{},
		Decreases:       []priceTrend{},
		Averages:        []productAverage{},
		Recommendations: []string{},
	}

	for _, key := range order {
		g := groups[key]
		if g.count < 2 || g.first == 0 {
			continue
		}
		change := (g.latest - g.first) / g.first * 100
		if change == 0 {
			continue
		}
		parts := strings.SplitN(key, "|", 2)
		trend := priceTrend{
			Product:          parts[0],
			Merchant:         parts[1],
			FirstUnitPrice:   g.first,
			LatestUnitPrice:  g.latest,
			ChangePercentage: math.Round(change*100) / 100,
			Records:          g.count,
		}
		if change > 0 {
			insights.Increases = append(insights.Increases, trend)
		} else {
			insights.Decreases = append(insights.Decreases, trend)
		}
	}

	sort.Slice(insights.Increases, func(i, j int) bool {
		return insights.Increases[i].ChangePercentage > insights.Increases[j].ChangePercentage
	})
	sort.Slice(insights.Decreases, func(i, j int) bool {
		return insights.Decreases[i].ChangePercentage < insights.Decreases[j].ChangePercentage
	})

	for _, name := range productOrder {
		insights.Averages = append(insights.Averages, productAverage{
			Product:          name,
			AverageUnitPrice: math.Round(sums[name]/float64(counts[name])*100) / 100,
			Records:          counts[name],
		})
	}

	for _, t := range insights.Increases {
		insights.Recommendations = append(insights.Recommendations,
			fmt.Sprintf("%s subió %.1f%% en %s", t.Product, t.ChangePercentage, t.Merchant))
	}
	for _, t := range insights.Decreases {
		insights.Recommendations = append(insights.Recommendations,
			fmt.Sprintf("%s bajó %.1f%% en %s", t.Product, -t.ChangePercentage, t.Merchant))
	}

	return insights
}

func GetPriceInsights(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		days := 90
		if raw := r.URL.Query().Get("days"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 365 {
				days = parsed
			}
		}

		var productFilter, merchantFilter *string
		if p := r.URL.Query().Get("product"); p != "" {
			productFilter = &p
		}
		if m := r.URL.Query().Get("merchant"); m != "" {
			merchantFilter = &m
		}

		since := time.Now().AddDate(0, 0, -days)
		records, err := db.GetPriceHistory(r.Context(), pool, userID, since, productFilter, merchantFilter)
		if err != nil {
			log.Printf("ERROR: Failed to fetch price history for user %s: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(computePriceInsights(records))
	}
}
