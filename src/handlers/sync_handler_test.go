package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintracker-server/src/models"
)

func TestReceiptURLsByDocumentCarriesFilePaths(t *testing.T) {
	url := "https://files.example.com/receipts/a.jpg"
	docs := []models.Document{
		{ID: "doc-1", FilePath: &url},
		{ID: "doc-2"},
	}

	urls := receiptURLsByDocument(docs)

	require.Len(t, urls, 2)
	require.NotNil(t, urls["doc-1"])
	assert.Equal(t, url, *urls["doc-1"])
	assert.Nil(t, urls["doc-2"])
}
