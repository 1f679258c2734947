package sqlite

import (
	"math"
	"strings"

	"github.com/asaidimu/go-docstore/core"
	"github.com/asaidimu/go-docstore/core/query"
)

// buildScan returns the SELECT for one collection narrowed by whichever
// predicates translate to SQL. Predicates that do not translate are left to
// the processor, so the statement may match more rows than the query does
// but never fewer.
func buildScan(collection string, predicates []query.Predicate) (string, []any) {
	var sb strings.Builder
	params := []any{collection}

	sb.WriteString("SELECT id, data FROM documents WHERE collection = ?")
	for _, p := range predicates {
		clause, args, ok := predicateSQL(p)
		if !ok {
			continue
		}
		sb.WriteString(" AND ")
		sb.WriteString(clause)
		params = append(params, args...)
	}
	sb.WriteString(" ORDER BY seq")

	return sb.String(), params
}

func predicateSQL(p query.Predicate) (string, []any, bool) {
	switch p.Operator {
	case query.OperatorEqual:
		path, ok := jsonPath(p.Field)
		if !ok {
			return "", nil, false
		}
		value, ok := scalarParam(p.Value)
		if !ok {
			return "", nil, false
		}
		return "json_extract(data, ?) = ?", []any{path, value}, true
	default:
		return "", nil, false
	}
}

// jsonPath addresses a top-level field. Names that would need escaping are
// not pushed down.
func jsonPath(field string) (string, bool) {
	if field == "" || strings.ContainsAny(field, `"\`) {
		return "", false
	}
	return `$."` + field + `"`, true
}

// scalarParam converts a predicate value into a bind parameter whose SQL
// equality agrees with query.Equal. Only strings, bools and finite numbers
// qualify; json_extract yields 1 or 0 for JSON booleans, which is why a
// bool may over-match numeric fields and why the processor re-checks.
func scalarParam(v any) (any, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return val, true
	}

	if i, ok := core.ToInt64(v); ok {
		return i, true
	}
	if f, ok := core.ToFloat64(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, true
	}
	return nil, false
}
