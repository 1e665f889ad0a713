// Package db embeds the SQL schema so binaries can run migrations without
// shipping separate files.
package db

import _ "embed"

// Schema holds the DDL for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string
