// Package app is the application layer: it orchestrates repositories,
// token issuance, and audit recording into the use cases the HTTP handlers
// expose. Tenancy rules (client users see only their own organization) are
// enforced here, not in the handlers.
package app
