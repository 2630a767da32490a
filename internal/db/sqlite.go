package db

import (
	"database/sql/driver"
	"strings"

	sqlite "modernc.org/sqlite"
)

// SQLite's built-in LOWER only folds ASCII, so "ȘTEFAN" would never match
// "ștefan". UnicodeLower is the same operation backed by Go's case tables.
const UnicodeLower = "unicode_lower"

func init() {
	_ = sqlite.RegisterDeterministicScalarFunction(UnicodeLower, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// LowerFunc names the SQL function that lowercases text for driver.
// PostgreSQL's LOWER already follows the database's Unicode collation.
func LowerFunc(driver string) string {
	if driver == "sqlite" {
		return UnicodeLower
	}
	return "LOWER"
}
