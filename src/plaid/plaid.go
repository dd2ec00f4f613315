// Package plaid builds the configured aggregator API client.
package plaid

import (
	"log"

	"github.com/plaid/plaid-go/v41/plaid"
)

// NewPlaidClient returns a client for the environment named by PLAID_ENV.
// Anything other than sandbox or production is a configuration error.
func NewPlaidClient(clientID, secret, env string) *plaid.APIClient {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		log.Fatalf("unsupported PLAID_ENV value: %s", env)
	}

	return plaid.NewAPIClient(configuration)
}
