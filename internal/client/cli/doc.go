// Package cli provides the interactive DNI Admin command-line client.
//
// It wires configuration, the session store, the HTTP gateway, and the
// list/editor coordinators into an interactive REPL. Typical flow: prompt
// for admin credentials, load the first page of records, and execute user
// commands against the lookup service.
//
// Key features:
//   - Login / Logout against the service's Basic-auth admin surface
//   - Debounced free-text search with pagination
//   - Record CRUD and direct DNI lookups
//   - API token management and integration-token configuration
//   - Database backup download
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
