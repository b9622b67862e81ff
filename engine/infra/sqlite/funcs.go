package sqlite

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	moderncsqlite "modernc.org/sqlite"
)

// foldFunc lowercases text the same way listing.Matches does. SQLite's
// built-in lower() only folds ASCII.
const foldFunc = "casefold"

func init() {
	if err := moderncsqlite.RegisterDeterministicScalarFunction(foldFunc, 1, casefold); err != nil {
		panic(fmt.Sprintf("sqlite: register %s: %v", foldFunc, err))
	}
}

func casefold(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return strings.ToLower(fmt.Sprint(v)), nil
	}
}

// searchClause matches q as a literal, case-folded substring of any column.
// Wildcard characters in q carry no meaning.
func searchClause(q string, columns ...string) squirrel.Sqlizer {
	needle := strings.ToLower(strings.TrimSpace(q))
	or := squirrel.Or{}
	for _, c := range columns {
		or = append(or, squirrel.Expr("instr("+foldFunc+"("+c+"), ?) > 0", needle))
	}
	return or
}
