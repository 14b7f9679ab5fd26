package database

import (
	"database/sql/driver"
	"fmt"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

// SQLiteFoldFunc is a scalar function available on every SQLite connection
// that applies Unicode case folding. SQLite's built-in LOWER only folds ASCII.
const SQLiteFoldFunc = "casefold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(SQLiteFoldFunc, 1, foldValue)
}

func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return cases.Fold().String(v), nil
	case []byte:
		return cases.Fold().String(string(v)), nil
	default:
		return fmt.Sprint(v), nil
	}
}
