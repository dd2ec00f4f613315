package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://api.binance.com"

// MajorPairs are the symbols polled for recent trade history.
var MajorPairs = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT"}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type Balance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

type AccountResponse struct {
	Balances []Balance `json:"balances"`
}

type Trade struct {
	ID              int64  `json:"id"`
	Symbol          string `json:"symbol"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	QuoteQty        string `json:"quoteQty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"`
	IsBuyer         bool   `json:"isBuyer"`
}

// Sign computes the HMAC-SHA256 hex signature over the raw query string.
func Sign(secret, query string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// signedRequest issues a GET against a SIGNED endpoint: a timestamp is added,
// the query is signed with the API secret, and the key goes in X-MBX-APIKEY.
func (c *Client) signedRequest(ctx context.Context, apiKey, apiSecret, path string, params url.Values) ([]byte, error) {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	query := params.Encode()
	query += "&signature=" + Sign(apiSecret, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+query, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-MBX-APIKEY", apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance API error (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (c *Client) Account(ctx context.Context, apiKey, apiSecret string) (*AccountResponse, error) {
	body, err := c.signedRequest(ctx, apiKey, apiSecret, "/api/v3/account", url.Values{})
	if err != nil {
		return nil, err
	}
	var account AccountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) MyTrades(ctx context.Context, apiKey, apiSecret, symbol string, start, end time.Time, limit int) ([]Trade, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.signedRequest(ctx, apiKey, apiSecret, "/api/v3/myTrades", params)
	if err != nil {
		return nil, err
	}
	var trades []Trade
	if err := json.Unmarshal(body, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}
