package repository

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo keeps items per table and id. Transactions are all-or-nothing
// and honour attribute_not_exists conditions; failTransact forces a cancel.
type fakeDynamo struct {
	tables       map[string]map[string]map[string]types.AttributeValue
	transacts    []*dynamodb.TransactWriteItemsInput
	updates      []*dynamodb.UpdateItemInput
	queries      []*dynamodb.QueryInput
	failTransact bool
	updateOutput map[string]types.AttributeValue
	updateErr    error
	queryItems   []map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDynamo) put(table string, item map[string]types.AttributeValue) {
	if f.tables[table] == nil {
		f.tables[table] = map[string]map[string]types.AttributeValue{}
	}
	f.tables[table][item["id"].(*types.AttributeValueMemberS).Value] = item
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.tables[aws.ToString(in.TableName)][id]}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{Attributes: f.updateOutput}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	return &dynamodb.QueryOutput{Items: f.queryItems}, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transacts = append(f.transacts, in)
	if f.failTransact {
		return nil, &types.TransactionCanceledException{Message: aws.String("cancelled")}
	}
	for _, w := range in.TransactItems {
		id := w.Put.Item["id"].(*types.AttributeValueMemberS).Value
		if _, exists := f.tables[aws.ToString(w.Put.TableName)][id]; exists {
			return nil, &types.TransactionCanceledException{Message: aws.String("ConditionalCheckFailed")}
		}
	}
	for _, w := range in.TransactItems {
		f.put(aws.ToString(w.Put.TableName), w.Put.Item)
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}
