// Package client contains the client-side building blocks of gophchat.
//
// # Overview
//
// The package provides:
//  1. The Client interface: every call of the remote chat API (sign in/up,
//     token validation, users, channels, messages).
//  2. HTTPClient, the net/http implementation. It attaches the credential
//     headers, tags every request with an X-Request-Id and maps HTTP
//     status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     file with embedded goose migrations.
//
// # Error Handling
//
// Transport failures and gateway errors match ErrUnavailable; 401/403 match
// ErrUnauthorized. Every non-2xx response is an *APIError carrying the
// messages from the response body.
package client
