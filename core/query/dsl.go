// Package query defines the read requests understood by the document store:
// an immutable Query value made of equality predicates, an optional sort and
// an optional limit, plus the processor that evaluates it over records.
package query

import (
	"github.com/asaidimu/go-docstore/core"
)

// Operator identifies the comparison a predicate performs. The set is closed:
// adding an operator means a new constant here, an entry in
// supportedOperators and one arm in evaluatePredicate.
type Operator string

// Supported operators.
const (
	OperatorEqual Operator = "=="
)

// supportedOperators is the set Where accepts.
var supportedOperators = map[Operator]struct{}{
	OperatorEqual: {},
}

// IsSupported reports whether the operator can be used in a predicate.
func (o Operator) IsSupported() bool {
	_, ok := supportedOperators[o]
	return ok
}

// Predicate is a single (field, operator, value) filter condition.
type Predicate struct {
	Field    string
	Operator Operator
	Value    any
}

// SortDirection specifies the direction for sorting.
type SortDirection string

// Supported sort directions.
const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// IsValid reports whether the direction is ascending or descending.
func (d SortDirection) IsValid() bool {
	return d == SortDirectionAsc || d == SortDirectionDesc
}

// SortSpec orders results by a single field.
type SortSpec struct {
	Field     string
	Direction SortDirection
}

// Result is the ordered outcome of evaluating a Query.
type Result struct {
	Records []core.Record
}

// Count returns the number of records in the result.
func (r *Result) Count() int {
	return len(r.Records)
}

// IsEmpty reports whether no record matched.
func (r *Result) IsEmpty() bool {
	return len(r.Records) == 0
}
