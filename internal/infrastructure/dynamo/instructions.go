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

// InstructionRepo provides typed DynamoDB operations for the
// payment_instructions table (merchant receiving accounts).
type InstructionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewInstructionRepo(client *dynamodb.Client, tableName string) *InstructionRepo {
	return &InstructionRepo{client: client, tableName: tableName}
}

func (r *InstructionRepo) Put(ctx context.Context, pi *domain.PaymentInstruction) error {
	item, err := attributevalue.MarshalMap(pi)
	if err != nil {
		return fmt.Errorf("marshal payment instruction: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *InstructionRepo) Get(ctx context.Context, instructionID string) (*domain.PaymentInstruction, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("instruction_id", instructionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("payment instruction not found: %w", domain.ErrNotFound)
	}
	var pi domain.PaymentInstruction
	if err := attributevalue.UnmarshalMap(out.Item, &pi); err != nil {
		return nil, err
	}
	return &pi, nil
}

func (r *InstructionRepo) ListByMerchant(ctx context.Context, merchantID string) ([]domain.PaymentInstruction, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("merchant_id-index"),
		KeyConditionExpression: aws.String("merchant_id = :mid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":mid": &types.AttributeValueMemberS{Value: merchantID},
		},
	})
	if err != nil {
		return nil, err
	}
	var instructions []domain.PaymentInstruction
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &instructions); err != nil {
		return nil, err
	}
	return instructions, nil
}

func (r *InstructionRepo) Update(ctx context.Context, instructionID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("instruction_id", instructionID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *InstructionRepo) SoftDelete(ctx context.Context, instructionID string) error {
	return r.Update(ctx, instructionID, map[string]interface{}{fieldEnable: false})
}
