package dynamodb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"radiojournal/migration"
)

// The migration engine describes conditions and updates with a small
// algebraic type; the store's native expression syntax only exists past this
// point.

func renderCond(c *migration.Cond) (expression.ConditionBuilder, error) {
	switch c.Kind {
	case migration.CondEquals:
		return expression.Name(c.Name).Equal(expression.Value(c.Value)), nil
	case migration.CondExists:
		return expression.AttributeExists(expression.Name(c.Name)), nil
	case migration.CondBeginsWith:
		prefix, ok := c.Value.(string)
		if !ok {
			return expression.ConditionBuilder{}, fmt.Errorf("begins_with prefix must be a string, got %T", c.Value)
		}
		return expression.Name(c.Name).BeginsWith(prefix), nil
	case migration.CondOr:
		left, err := renderCond(c.Left)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		right, err := renderCond(c.Right)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		return left.Or(right), nil
	case migration.CondAnd:
		left, err := renderCond(c.Left)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		right, err := renderCond(c.Right)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		return left.And(right), nil
	default:
		return expression.ConditionBuilder{}, fmt.Errorf("unknown condition kind %d", c.Kind)
	}
}

// renderUpdate turns one update descriptor into a transactional update item.
func renderUpdate(tableName string, u migration.Update) (types.TransactWriteItem, error) {
	updateBuilder := expression.UpdateBuilder{}
	for _, assign := range u.Set {
		updateBuilder = updateBuilder.Set(expression.Name(assign.Name), expression.Value(assign.Value))
	}
	for _, name := range u.Remove {
		updateBuilder = updateBuilder.Remove(expression.Name(name))
	}

	builder := expression.NewBuilder().WithUpdate(updateBuilder)
	if u.Condition != nil {
		cond, err := renderCond(u.Condition)
		if err != nil {
			return types.TransactWriteItem{}, err
		}
		builder = builder.WithCondition(cond)
	}

	expr, err := builder.Build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("build update expression: %w", err)
	}

	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(tableName),
			Key:                       keyAttributes(u.Key.PK, u.Key.SK),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}, nil
}

func keyAttributes(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: sk},
	}
}
