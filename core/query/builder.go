package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-docstore/core"
)

// Query is an immutable description of a read against one collection.
// Builder methods return a new Query and never touch the receiver, so a
// partially built query can be shared as the base of several branches.
type Query struct {
	collection string
	predicates []Predicate
	sort       *SortSpec
	limit      *int
}

// New starts an empty query against the named collection.
func New(collection string) Query {
	return Query{collection: collection}
}

// Collection returns the name of the collection the query targets.
func (q Query) Collection() string {
	return q.collection
}

// Predicates returns a copy of the accumulated predicates.
func (q Query) Predicates() []Predicate {
	out := make([]Predicate, len(q.predicates))
	copy(out, q.predicates)
	return out
}

// Sort returns the sort spec, if one was set.
func (q Query) Sort() (SortSpec, bool) {
	if q.sort == nil {
		return SortSpec{}, false
	}
	return *q.sort, true
}

// LimitValue returns the result cap, if one was set.
func (q Query) LimitValue() (int, bool) {
	if q.limit == nil {
		return 0, false
	}
	return *q.limit, true
}

// Where returns a new query narrowed by the predicate. Predicates are AND-ed.
func (q Query) Where(field string, operator Operator, value any) (Query, error) {
	if field == "" {
		return q, &core.InvalidArgumentError{Field: "where.field", Message: "field cannot be empty"}
	}
	if !operator.IsSupported() {
		return q, &core.InvalidArgumentError{
			Field:   "where.operator",
			Message: fmt.Sprintf("unsupported operator %q", operator),
		}
	}

	next := q.clone()
	next.predicates = append(next.predicates, Predicate{
		Field:    field,
		Operator: operator,
		Value:    core.CloneValue(value),
	})
	return next, nil
}

// OrderBy returns a new query sorted by field. Only the most recent call
// wins; there is no multi-key sort.
func (q Query) OrderBy(field string, direction SortDirection) (Query, error) {
	if field == "" {
		return q, &core.InvalidArgumentError{Field: "orderBy.field", Message: "field cannot be empty"}
	}
	if !direction.IsValid() {
		return q, &core.InvalidArgumentError{
			Field:   "orderBy.direction",
			Message: fmt.Sprintf("unsupported direction %q", direction),
		}
	}

	next := q.clone()
	next.sort = &SortSpec{Field: field, Direction: direction}
	return next, nil
}

// Limit returns a new query capped at n records. n must be positive.
func (q Query) Limit(n int) (Query, error) {
	if n <= 0 {
		return q, &core.InvalidArgumentError{Field: "limit", Message: "limit must be greater than 0"}
	}

	next := q.clone()
	next.limit = &n
	return next, nil
}

// clone copies the query so that appends on the result never share a
// backing array with the receiver.
func (q Query) clone() Query {
	next := Query{collection: q.collection}
	if len(q.predicates) > 0 {
		next.predicates = make([]Predicate, len(q.predicates), len(q.predicates)+1)
		copy(next.predicates, q.predicates)
	}
	if q.sort != nil {
		s := *q.sort
		next.sort = &s
	}
	if q.limit != nil {
		l := *q.limit
		next.limit = &l
	}
	return next
}

// String returns a human-readable representation of the query.
func (q Query) String() string {
	parts := []string{fmt.Sprintf("FROM: %s", q.collection)}

	if len(q.predicates) > 0 {
		conds := make([]string, len(q.predicates))
		for i, p := range q.predicates {
			conds[i] = fmt.Sprintf("%s %s %v", p.Field, p.Operator, p.Value)
		}
		parts = append(parts, fmt.Sprintf("WHERE: %s", strings.Join(conds, " AND ")))
	}

	if q.sort != nil {
		parts = append(parts, fmt.Sprintf("ORDER BY: %s %s", q.sort.Field, q.sort.Direction))
	}

	if q.limit != nil {
		parts = append(parts, fmt.Sprintf("LIMIT: %d", *q.limit))
	}

	return strings.Join(parts, " | ")
}
