package migration

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"radiojournal/domain"
	"radiojournal/pkg/apperrors"
)

// fakeStore is an in-memory Store with the same observable semantics as the
// real one: prefix-range queries with filters and projections, atomic
// transactional groups, and condition checks that reject the whole group.
type fakeStore struct {
	items map[domain.Key]Item

	// pageSize forces multi-page query results when > 0.
	pageSize int

	// beforeTransact runs before each transactional group, to simulate the
	// live write path racing the migration.
	beforeTransact func(s *fakeStore)

	transactErr error
	queryCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[domain.Key]Item)}
}

func itemKey(item Item) domain.Key {
	pk, _ := stringAttr(item, "pk")
	sk, _ := stringAttr(item, "sk")
	return domain.Key{PK: pk, SK: sk}
}

func (s *fakeStore) put(item Item) {
	s.items[itemKey(item)] = item
}

func (s *fakeStore) putValue(v any) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		panic(err)
	}
	s.put(item)
}

func (s *fakeStore) GetItem(ctx context.Context, key domain.Key, out any) error {
	item, ok := s.items[key]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("item %s/%s", key.PK, key.SK))
	}
	return attributevalue.UnmarshalMap(item, out)
}

type fakePager struct {
	pages [][]Item
}

func (p *fakePager) Next(ctx context.Context) ([]Item, error) {
	if len(p.pages) == 0 {
		return nil, nil
	}
	page := p.pages[0]
	p.pages = p.pages[1:]
	return page, nil
}

func (s *fakeStore) Query(ctx context.Context, q Query) Pager {
	s.queryCalls++

	var matched []Item
	for key, item := range s.items {
		if key.PK != q.PK {
			continue
		}
		if q.SKPrefix != "" && !strings.HasPrefix(key.SK, q.SKPrefix) {
			continue
		}
		if q.Filter != nil && !evalCond(q.Filter, item) {
			continue
		}
		matched = append(matched, project(item, q.Projection))
	}
	sort.Slice(matched, func(i, j int) bool {
		return itemKey(matched[i]).SK < itemKey(matched[j]).SK
	})

	pageSize := s.pageSize
	if pageSize <= 0 {
		pageSize = len(matched)
	}
	var pages [][]Item
	for start := 0; start < len(matched); start += pageSize {
		end := start + pageSize
		if end > len(matched) {
			end = len(matched)
		}
		pages = append(pages, matched[start:end])
	}
	return &fakePager{pages: pages}
}

func project(item Item, fields []string) Item {
	if len(fields) == 0 {
		return item
	}
	out := Item{}
	// pk and sk ride along like index key attributes do.
	for _, name := range append([]string{"pk", "sk"}, fields...) {
		if av, ok := item[name]; ok {
			out[name] = av
		}
	}
	return out
}

func (s *fakeStore) BatchPut(ctx context.Context, items []Item) error {
	if len(items) > MaxBatchPutItems {
		return fmt.Errorf("batch too large: %d", len(items))
	}
	for _, item := range items {
		s.put(item)
	}
	return nil
}

func (s *fakeStore) TransactUpdate(ctx context.Context, updates []Update) error {
	if len(updates) > MaxTransactItems {
		return fmt.Errorf("transaction too large: %d", len(updates))
	}
	if s.transactErr != nil {
		return s.transactErr
	}
	if s.beforeTransact != nil {
		s.beforeTransact(s)
	}

	// All condition checks first: a failed check rejects the whole group and
	// leaves every item untouched.
	for _, u := range updates {
		item, ok := s.items[u.Key]
		if !ok {
			return apperrors.NewConcurrencyConflictError("item vanished")
		}
		if u.Condition != nil && !evalCond(u.Condition, item) {
			return apperrors.NewConcurrencyConflictError("condition check failed")
		}
	}

	for _, u := range updates {
		item := s.items[u.Key]
		for _, assign := range u.Set {
			av, err := attributevalue.Marshal(assign.Value)
			if err != nil {
				return err
			}
			item[assign.Name] = av
		}
		for _, name := range u.Remove {
			delete(item, name)
		}
	}
	return nil
}

// evalCond interprets the condition algebra against a raw row.
func evalCond(c *Cond, item Item) bool {
	switch c.Kind {
	case CondEquals:
		av, err := attributevalue.Marshal(c.Value)
		if err != nil {
			return false
		}
		got, ok := item[c.Name]
		if !ok {
			return false
		}
		return attributeValuesEqual(got, av)
	case CondExists:
		_, ok := item[c.Name]
		return ok
	case CondBeginsWith:
		value, ok := stringAttr(item, c.Name)
		return ok && strings.HasPrefix(value, c.Value.(string))
	case CondOr:
		return evalCond(c.Left, item) || evalCond(c.Right, item)
	case CondAnd:
		return evalCond(c.Left, item) && evalCond(c.Right, item)
	default:
		return false
	}
}

func attributeValuesEqual(a, b types.AttributeValue) bool {
	as, aok := a.(*types.AttributeValueMemberS)
	bs, bok := b.(*types.AttributeValueMemberS)
	if aok && bok {
		return as.Value == bs.Value
	}
	an, aok := a.(*types.AttributeValueMemberN)
	bn, bok := b.(*types.AttributeValueMemberN)
	if aok && bok {
		return an.Value == bn.Value
	}
	return false
}
