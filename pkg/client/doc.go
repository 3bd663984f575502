// Package client is the invoicehub Go SDK.
//
// It wraps the REST API: account login, invoice and person management, and
// the statistics endpoints.
//
// # Logging in
//
//	c, err := client.New("http://localhost:8080")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	session, err := c.Login(ctx, "alice@example.com", "secret")
//
// Login stores the returned bearer token on the client; every later call
// sends it. A token obtained elsewhere (for example from the Google redirect
// flow) can be supplied up front:
//
//	c, _ := client.New(baseURL, client.WithBearerToken(token))
//
// # Invoices
//
//	invoices, err := c.ListInvoices(ctx, client.InvoiceQuery{SellerID: 1, Limit: 20})
//	stats, err := c.InvoiceStatistics(ctx)
//
// # Errors
//
// Non-2xx responses are returned as *APIError. Use errors.Is with
// ErrNotFound or ErrUnauthorized to branch on the common cases.
package client
