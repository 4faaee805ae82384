// Package migrations ships the Postgres schema with the binaries.
package migrations

import "embed"

// FS holds every versioned up and down script
//
//go:embed *.sql
var FS embed.FS
