package util

import (
	"encoding/base64"
	"encoding/json"
)

// ExchangeCredentials holds one exchange API key pair.
type ExchangeCredentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// EncodeCredentials packs the key pair as base64 JSON before storage. This is
// obfuscation, not encryption: anyone with database access can decode it.
func EncodeCredentials(c ExchangeCredentials) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func DecodeCredentials(encoded string) (ExchangeCredentials, error) {
	var c ExchangeCredentials
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return c, err
	}
	err = json.Unmarshal(raw, &c)
	return c, err
}
