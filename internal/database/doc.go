// Package database implements the domain repository interfaces on
// PostgreSQL via pgx. Sensitive bank credential fields are encrypted at this
// boundary; the domain layer only sees plaintext.
package database
