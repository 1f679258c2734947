package query

import (
	"fmt"
	"iter"
	"slices"

	"github.com/asaidimu/go-docstore/core"
	"go.uber.org/zap"
)

// Processor evaluates queries over a sequence of records: filter, then
// stable sort, then limit. It holds no data and is safe for concurrent use.
type Processor struct {
	logger *zap.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{logger: logger}
}

// Execute evaluates q over records and returns the ordered result. Records
// are consumed once; the caller owns the returned slice.
func (p *Processor) Execute(q Query, records iter.Seq2[core.Record, error]) (*Result, error) {
	var matched []core.Record
	scanned := 0
	for record, err := range records {
		if err != nil {
			return nil, fmt.Errorf("failed to read records of '%s': %w", q.collection, err)
		}
		scanned++
		if p.Match(q.predicates, record.Data) {
			matched = append(matched, record)
		}
	}
	p.logger.Debug("Records remaining after filters",
		zap.String("collection", q.collection),
		zap.Int("scanned", scanned),
		zap.Int("count", len(matched)))

	if q.sort != nil {
		sortRecords(matched, *q.sort)
	}

	if q.limit != nil && len(matched) > *q.limit {
		matched = matched[:*q.limit]
	}

	if matched == nil {
		matched = []core.Record{}
	}
	return &Result{Records: matched}, nil
}

// Match reports whether doc satisfies every predicate. An empty predicate
// list matches everything.
func (p *Processor) Match(predicates []Predicate, doc core.Document) bool {
	for i := range predicates {
		if !evaluatePredicate(&predicates[i], doc) {
			return false
		}
	}
	return true
}

// evaluatePredicate has one arm per supported operator. A field that is not
// in the document never satisfies a predicate.
func evaluatePredicate(p *Predicate, doc core.Document) bool {
	value, ok := doc[p.Field]
	if !ok {
		return false
	}

	switch p.Operator {
	case OperatorEqual:
		return Equal(value, p.Value)
	default:
		return false
	}
}

// sortRecords stable-sorts records by spec. A record without the field sorts
// before every record that has it, in both directions.
func sortRecords(records []core.Record, spec SortSpec) {
	slices.SortStableFunc(records, func(a, b core.Record) int {
		av, aok := a.Data[spec.Field]
		bv, bok := b.Data[spec.Field]
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return -1
		case !bok:
			return 1
		}

		c := Compare(av, bv)
		if spec.Direction == SortDirectionDesc {
			return -c
		}
		return c
	})
}

// Records adapts a slice to the sequence shape Execute consumes.
func Records(records []core.Record) iter.Seq2[core.Record, error] {
	return func(yield func(core.Record, error) bool) {
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
	}
}
