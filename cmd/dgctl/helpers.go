package main

import (
	"github.com/datagenesis-ai/dgctl/internal/auth"
	"github.com/datagenesis-ai/dgctl/internal/client"
	"github.com/datagenesis-ai/dgctl/internal/config"
)

// newAPIClient creates an API client using stored credentials (if any) and
// the configured API URL. The backend serves health and status endpoints to
// unauthenticated clients, so a missing token yields a guest client rather
// than an error.
//
// This consolidates the repeated pattern of:
//
//	source, token := auth.GetCredentials()
//	cfg := config.Load()
//	c := client.New(token).WithBaseURL(cfg.APIURL())
func newAPIClient() (auth.CredentialSource, *client.Client) {
	source, token := auth.GetCredentials()
	cfg := config.Load()
	c := client.New(token).WithBaseURL(cfg.APIURL())

	return source, c
}
