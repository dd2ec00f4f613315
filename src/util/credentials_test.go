package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCredentials(t *testing.T) {
	creds := ExchangeCredentials{APIKey: "key123", APISecret: "secret456"}

	encoded, err := EncodeCredentials(creds)
	require.NoError(t, err)

	decoded, err := DecodeCredentials(encoded)
	require.NoError(t, err)
	assert.Equal(t, creds, decoded)
}

func TestDecodeCredentialsRejectsGarbage(t *testing.T) {
	_, err := DecodeCredentials("not base64 at all!!!")
	assert.Error(t, err)
}
