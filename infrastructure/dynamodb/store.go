package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/infrastructure/config"
	"radiojournal/migration"
	"radiojournal/pkg/apperrors"
)

// Store implements the item store surface over one DynamoDB table. It
// satisfies migration.Store and carries the extra primitives the entity
// repositories need.
type Store struct {
	client    API
	tableName string
	gsi1Name  string
	logger    *zap.Logger
}

// NewStore creates a Store.
func NewStore(client API, cfg *config.Config, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		tableName: cfg.DynamoDBTable,
		gsi1Name:  cfg.GSI1IndexName,
		logger:    logger,
	}
}

// TableName returns the physical table name.
func (s *Store) TableName() string {
	return s.tableName
}

// GetItem loads one item by key into out.
func (s *Store) GetItem(ctx context.Context, key domain.Key, out any) error {
	return s.getItem(ctx, key, out, false)
}

// GetItemConsistent is GetItem with a strongly consistent read, for lookups
// the write path depends on.
func (s *Store) GetItemConsistent(ctx context.Context, key domain.Key, out any) error {
	return s.getItem(ctx, key, out, true)
}

func (s *Store) getItem(ctx context.Context, key domain.Key, out any, consistent bool) error {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            keyAttributes(key.PK, key.SK),
		ConsistentRead: aws.Bool(consistent),
	})
	if err != nil {
		return apperrors.NewStoreUnavailableError("get item").WithCause(err)
	}
	if result.Item == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("item %s/%s", key.PK, key.SK))
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("unmarshal item %s/%s: %w", key.PK, key.SK, err)
	}
	return nil
}

// PutItem marshals and writes one item.
func (s *Store) PutItem(ctx context.Context, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return apperrors.NewStoreUnavailableError("put item").WithCause(err)
	}
	return nil
}

// queryPager pulls one result page per Next call; the following page is not
// fetched until the consumer asks for it.
type queryPager struct {
	client API
	input  *dynamodb.QueryInput
	done   bool
	err    error
}

func (p *queryPager) Next(ctx context.Context) ([]migration.Item, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.done {
		return nil, nil
	}

	out, err := p.client.Query(ctx, p.input)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("query").WithCause(err)
	}

	if len(out.LastEvaluatedKey) == 0 {
		p.done = true
		if len(out.Items) == 0 {
			return nil, nil
		}
	} else {
		p.input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	items := make([]migration.Item, 0, len(out.Items))
	for _, item := range out.Items {
		items = append(items, item)
	}
	return items, nil
}

type errPager struct{ err error }

func (p errPager) Next(ctx context.Context) ([]migration.Item, error) {
	return nil, p.err
}

// Query starts a lazy prefix-range query on the primary key.
func (s *Store) Query(ctx context.Context, q migration.Query) migration.Pager {
	keyCond := expression.Key("pk").Equal(expression.Value(q.PK))
	if q.SKPrefix != "" {
		keyCond = keyCond.And(expression.Key("sk").BeginsWith(q.SKPrefix))
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if q.Filter != nil {
		filter, err := renderCond(q.Filter)
		if err != nil {
			return errPager{err: err}
		}
		builder = builder.WithFilter(filter)
	}
	if len(q.Projection) > 0 {
		names := make([]expression.NameBuilder, 0, len(q.Projection))
		for _, name := range q.Projection {
			names = append(names, expression.Name(name))
		}
		builder = builder.WithProjection(expression.ProjectionBuilder{}.AddNames(names...))
	}

	expr, err := builder.Build()
	if err != nil {
		return errPager{err: fmt.Errorf("build query expression: %w", err)}
	}

	return &queryPager{
		client: s.client,
		input: &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}
}

// QueryGSI1 starts a lazy query on the secondary index. Since the index
// reuses the table's sk as its range key, the prefix condition applies to sk.
func (s *Store) QueryGSI1(ctx context.Context, gsi1pk, skPrefix string, scanForward bool, limit int32) migration.Pager {
	keyCond := expression.Key("gsi1pk").Equal(expression.Value(gsi1pk))
	if skPrefix != "" {
		keyCond = keyCond.And(expression.Key("sk").BeginsWith(skPrefix))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return errPager{err: fmt.Errorf("build gsi1 query expression: %w", err)}
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(s.gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(scanForward),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	return &queryPager{client: s.client, input: input}
}

// BatchPut writes up to 25 items non-transactionally. Unprocessed items are
// an error; the migration engine re-derives its writes rather than retrying
// them piecemeal.
func (s *Store) BatchPut(ctx context.Context, items []migration.Item) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) > migration.MaxBatchPutItems {
		return fmt.Errorf("batch put of %d exceeds limit %d", len(items), migration.MaxBatchPutItems)
	}

	requests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.tableName: requests},
	})
	if err != nil {
		return apperrors.NewStoreUnavailableError("batch write").WithCause(err)
	}
	if unprocessed := len(out.UnprocessedItems[s.tableName]); unprocessed > 0 {
		return apperrors.NewStoreUnavailableError(
			fmt.Sprintf("%d items left unprocessed", unprocessed),
		)
	}
	return nil
}

// TransactUpdate commits up to 100 updates as one atomic group. A failed
// condition check inside the group surfaces as a concurrency conflict.
func (s *Store) TransactUpdate(ctx context.Context, updates []migration.Update) error {
	if len(updates) == 0 {
		return nil
	}
	if len(updates) > migration.MaxTransactItems {
		return fmt.Errorf("transaction of %d exceeds limit %d", len(updates), migration.MaxTransactItems)
	}

	items := make([]types.TransactWriteItem, 0, len(updates))
	for _, u := range updates {
		item, err := renderUpdate(s.tableName, u)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	return s.TransactWrite(ctx, items)
}

// TransactWrite commits pre-built transactional items.
func (s *Store) TransactWrite(ctx context.Context, items []types.TransactWriteItem) error {
	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		if isConditionalCancellation(err) {
			return apperrors.NewConcurrencyConflictError("transaction cancelled by condition check").WithCause(err)
		}
		return apperrors.NewStoreUnavailableError("transact write").WithCause(err)
	}
	return nil
}

// isConditionalCancellation reports whether a transaction was rejected by a
// condition check, as opposed to a transport or capacity failure.
func isConditionalCancellation(err error) bool {
	var cancelled *types.TransactionCanceledException
	if errors.As(err, &cancelled) {
		for _, reason := range cancelled.CancellationReasons {
			if reason.Code != nil && strings.EqualFold(*reason.Code, "ConditionalCheckFailed") {
				return true
			}
		}
	}
	var condFailed *types.ConditionalCheckFailedException
	return errors.As(err, &condFailed)
}

var _ migration.Store = (*Store)(nil)
