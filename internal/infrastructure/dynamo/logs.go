package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/payssd/payssd-api/internal/domain"
)

// LogRepo provides append and query operations for the notification_logs
// table. Log rows are never updated or deleted.
type LogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewLogRepo(client *dynamodb.Client, tableName string) *LogRepo {
	return &LogRepo{client: client, tableName: tableName}
}

func (r *LogRepo) Put(ctx context.Context, l *domain.NotificationLog) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal notification log: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByChannel returns log rows for one channel, newest first.
func (r *LogRepo) ListByChannel(ctx context.Context, channel domain.Channel, limit int32) ([]domain.NotificationLog, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("channel-created_at-index"),
		KeyConditionExpression: aws.String("channel = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: string(channel)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var logs []domain.NotificationLog
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ScanPage returns a page of log rows across all channels. cursor is a
// base64-encoded log_id used as ExclusiveStartKey.
func (r *LogRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.NotificationLog, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}
	if cursor != "" {
		logID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("log_id", logID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var logs []domain.NotificationLog
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &logs); err != nil {
		return nil, "", err
	}
	next := ""
	if out.LastEvaluatedKey != nil {
		if idAttr, ok := out.LastEvaluatedKey["log_id"].(*types.AttributeValueMemberS); ok {
			next = encodeCursor(idAttr.Value)
		}
	}
	return logs, next, nil
}
