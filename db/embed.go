// Package db provides the embedded default seed catalog.
package db

import _ "embed"

// Catalog is the JSON seed loaded when no seed file is configured.
//
//go:embed seed/catalog.json
var Catalog []byte
