// Package identity implements the invoicehub authentication layer.
//
// It provides:
//   - HashPassword / CheckPassword: bcrypt password hashing
//   - TokenIssuer: issues and verifies HS256 bearer tokens
//   - GoogleVerifier: verifies Google ID tokens against Google's JWKS
//   - Authenticate: Gin middleware resolving the bearer principal
//   - RequireAccount: Gin middleware rejecting anonymous requests
package identity
