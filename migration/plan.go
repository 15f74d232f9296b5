// Package migration implements the online schema-migration and
// aggregate-backfill engine: walking a station's date-bucketed play
// partitions, recomputing derived values from immutable source rows, and
// committing them in bounded, optionally conditional batches.
package migration

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"radiojournal/domain"
)

// Item is one raw table row as returned by the store.
type Item = map[string]types.AttributeValue

// CondKind discriminates the condition algebra.
type CondKind int

const (
	CondEquals CondKind = iota
	CondExists
	CondBeginsWith
	CondOr
	CondAnd
)

// Cond is a small algebraic condition used both as a query filter and as an
// optimistic-concurrency guard on updates. It is rendered to the store's
// native expression syntax at the store boundary, never here.
type Cond struct {
	Kind  CondKind
	Name  string
	Value any

	Left  *Cond
	Right *Cond
}

// Eq matches rows whose attribute equals value.
func Eq(name string, value any) *Cond {
	return &Cond{Kind: CondEquals, Name: name, Value: value}
}

// Exists matches rows that carry the attribute at all.
func Exists(name string) *Cond {
	return &Cond{Kind: CondExists, Name: name}
}

// BeginsWith matches rows whose string attribute starts with prefix.
func BeginsWith(name, prefix string) *Cond {
	return &Cond{Kind: CondBeginsWith, Name: name, Value: prefix}
}

// Or combines two conditions disjunctively.
func Or(left, right *Cond) *Cond {
	return &Cond{Kind: CondOr, Left: left, Right: right}
}

// And combines two conditions conjunctively.
func And(left, right *Cond) *Cond {
	return &Cond{Kind: CondAnd, Left: left, Right: right}
}

// Assign sets one attribute to a new value.
type Assign struct {
	Name  string
	Value any
}

// Update describes one per-entity update: the target key, the attributes to
// set and remove, and an optional condition carrying the expected prior state
// observed when the update was computed.
type Update struct {
	Key       domain.Key
	Set       []Assign
	Remove    []string
	Condition *Cond
}

// Query describes a prefix-range read of one partition, projected down to the
// attributes the caller needs.
type Query struct {
	PK         string
	SKPrefix   string
	Filter     *Cond
	Projection []string
}

// Pager pulls query result pages one at a time. Next returns a nil page once
// the sequence is exhausted; the next page is only fetched when the consumer
// asks for it.
type Pager interface {
	Next(ctx context.Context) ([]Item, error)
}

// Store is the item store surface the migration engine consumes.
type Store interface {
	// GetItem loads one item by key into out, or a not-found error.
	GetItem(ctx context.Context, key domain.Key, out any) error

	// Query starts a lazy prefix-range query.
	Query(ctx context.Context, q Query) Pager

	// BatchPut writes up to 25 items non-transactionally.
	BatchPut(ctx context.Context, items []Item) error

	// TransactUpdate commits up to 100 updates as one atomic group. If any
	// update's condition fails the whole group is rejected with a
	// concurrency-conflict error.
	TransactUpdate(ctx context.Context, updates []Update) error
}

// Plan is the output of one recomputation step: derived rows to put, updates
// to commit, and how many source rows were read to produce them.
type Plan struct {
	Puts     []Item
	Updates  []Update
	RowsRead int
}

// Empty reports whether the plan carries no writes.
func (p Plan) Empty() bool {
	return len(p.Puts) == 0 && len(p.Updates) == 0
}

// collect drains a pager into memory.
func collect(ctx context.Context, pager Pager) ([]Item, error) {
	var items []Item
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return items, nil
		}
		items = append(items, page...)
	}
}

// stringAttr extracts a string attribute from a raw row.
func stringAttr(item Item, name string) (string, bool) {
	av, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return av.Value, true
}
