package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/payssd/payssd-api/internal/domain"
)

// PriceRepo provides typed DynamoDB operations for the prices table.
type PriceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPriceRepo(client *dynamodb.Client, tableName string) *PriceRepo {
	return &PriceRepo{client: client, tableName: tableName}
}

func (r *PriceRepo) Put(ctx context.Context, p *domain.Price) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal price: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PriceRepo) Get(ctx context.Context, priceID string) (*domain.Price, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("price_id", priceID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("price not found: %w", domain.ErrNotFound)
	}
	var p domain.Price
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PriceRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Price, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("product_id-index"),
		KeyConditionExpression: aws.String("product_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, err
	}
	var prices []domain.Price
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *PriceRepo) Update(ctx context.Context, priceID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("price_id", priceID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *PriceRepo) SoftDelete(ctx context.Context, priceID string) error {
	return r.Update(ctx, priceID, map[string]interface{}{fieldEnable: false})
}
