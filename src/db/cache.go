package db

import (
	"log"
	"strings"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Storing cache keys in concurrent data structures so that all cached reads
// for a user can be dropped when their transactions change.
var (
	Cache            *ristretto.Cache
	SummaryCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	BudgetStatusCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Summary Cache Functions
func SetSummaryCache(cacheKey string, value interface{}) {
	SummaryCacheKeys.Lock()
	SummaryCacheKeys.m[cacheKey] = struct{}{}
	SummaryCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

// Budget Status Cache Functions
func SetBudgetStatusCache(cacheKey string, value interface{}) {
	BudgetStatusCacheKeys.Lock()
	BudgetStatusCacheKeys.m[cacheKey] = struct{}{}
	BudgetStatusCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

// ClearUserCaches drops every cached summary and budget-status entry for one
// user. Called after any write that changes their transactions or budgets.
func ClearUserCaches(userID string) {
	prefix := userID + ":"

	SummaryCacheKeys.Lock()
	for key := range SummaryCacheKeys.m {
		if strings.HasPrefix(key, "summary:"+prefix) {
			Cache.Del(key)
			delete(SummaryCacheKeys.m, key)
		}
	}
	SummaryCacheKeys.Unlock()

	BudgetStatusCacheKeys.Lock()
	for key := range BudgetStatusCacheKeys.m {
		if strings.HasPrefix(key, "budget_status:"+prefix) {
			Cache.Del(key)
			delete(BudgetStatusCacheKeys.m, key)
		}
	}
	BudgetStatusCacheKeys.Unlock()
}

func SummaryCacheKey(userID, period string) string {
	return "summary:" + userID + ":" + period
}

func BudgetStatusCacheKey(userID string) string {
	return "budget_status:" + userID + ":monthly"
}
