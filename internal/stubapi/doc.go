// Package stubapi is a self-contained, sqlite-backed implementation of the
// DNI lookup service's admin API. It exists for local development and for
// end-to-end tests of the client: envelope responses, Basic-auth admin
// routes, paginated persona listing, API token management and the backup
// download all behave like the real service.
//
// The external apisperu.com lookup is the one thing the stub cannot do;
// /api/buscar answers from the local store only.
package stubapi
