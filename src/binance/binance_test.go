package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignKnownAnswer(t *testing.T) {
	// Worked example from the Binance REST API documentation.
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	query := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"

	sig := Sign(secret, query)

	assert.Equal(t, "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71", sig)
}

func TestAccountSendsSignedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/account", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-MBX-APIKEY"))

		sig := r.URL.Query().Get("signature")
		require.NotEmpty(t, sig)
		unsigned := strings.TrimSuffix(r.URL.RawQuery, "&signature="+sig)
		assert.Equal(t, Sign("test-secret", unsigned), sig)
		assert.NotEmpty(t, r.URL.Query().Get("timestamp"))

		w.Write([]byte(`{"balances":[{"asset":"BTC","free":"0.5","locked":"0.1"},{"asset":"DUST","free":"0","locked":"0"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	account, err := client.Account(context.Background(), "test-key", "test-secret")

	require.NoError(t, err)
	require.Len(t, account.Balances, 2)
	assert.Equal(t, "BTC", account.Balances[0].Asset)
	assert.Equal(t, "0.5", account.Balances[0].Free)
}

func TestMyTradesPassesWindowAndLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/myTrades", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "BTCUSDT", q.Get("symbol"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.NotEmpty(t, q.Get("startTime"))
		assert.NotEmpty(t, q.Get("endTime"))

		w.Write([]byte(`[{"id":12345,"symbol":"BTCUSDT","price":"40000.00","qty":"0.01","quoteQty":"400.00","commission":"0.0000001","commissionAsset":"BTC","time":1700000000000,"isBuyer":true}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	end := time.Now()
	trades, err := client.MyTrades(context.Background(), "k", "s", "BTCUSDT", end.Add(-7*24*time.Hour), end, 100)

	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(12345), trades[0].ID)
	assert.True(t, trades[0].IsBuyer)
}

func TestSignedRequestSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":-2014,"msg":"API-key format invalid."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Account(context.Background(), "bad", "bad")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
