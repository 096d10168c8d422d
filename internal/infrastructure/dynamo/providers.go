package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/payssd/payssd-api/internal/domain"
)

// ProviderRepo provides typed DynamoDB operations for the
// notification_providers table.
type ProviderRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProviderRepo(client *dynamodb.Client, tableName string) *ProviderRepo {
	return &ProviderRepo{client: client, tableName: tableName}
}

func (r *ProviderRepo) Put(ctx context.Context, p *domain.ProviderConfig) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal provider config: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProviderRepo) Get(ctx context.Context, providerID string) (*domain.ProviderConfig, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("provider_id", providerID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("provider config not found: %w", domain.ErrNotFound)
	}
	var p domain.ProviderConfig
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByChannel returns every configuration for a channel, active or not.
func (r *ProviderRepo) ListByChannel(ctx context.Context, channel domain.Channel) ([]domain.ProviderConfig, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("channel-index"),
		KeyConditionExpression: aws.String("channel = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: string(channel)},
		},
	})
	if err != nil {
		return nil, err
	}
	var configs []domain.ProviderConfig
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// ActiveForChannel returns the active provider the dispatcher should use:
// active configurations sorted default-first, first one wins. Returns
// ErrNotFound when the channel has no active configuration.
func (r *ProviderRepo) ActiveForChannel(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error) {
	configs, err := r.ListByChannel(ctx, channel)
	if err != nil {
		return nil, err
	}
	cfg := selectActive(configs)
	if cfg == nil {
		return nil, fmt.Errorf("no active provider for channel %s: %w", channel, domain.ErrNotFound)
	}
	return cfg, nil
}

// selectActive filters to active configurations and picks the default one
// when present, otherwise the first active entry.
func selectActive(configs []domain.ProviderConfig) *domain.ProviderConfig {
	var active []domain.ProviderConfig
	for _, c := range configs {
		if c.IsActive {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return nil
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].IsDefault && !active[j].IsDefault
	})
	return &active[0]
}

// List scans the whole table. The admin console shows all channels at once.
func (r *ProviderRepo) List(ctx context.Context) ([]domain.ProviderConfig, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var configs []domain.ProviderConfig
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *ProviderRepo) Update(ctx context.Context, providerID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("provider_id", providerID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ProviderRepo) Delete(ctx context.Context, providerID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("provider_id", providerID),
	})
	return err
}

// SetDefault makes providerID the single default for its channel. The unset
// of the previous default and the set of the new one go through one
// TransactWriteItems call, so a crash can never leave the channel with two
// defaults or zero defaults.
func (r *ProviderRepo) SetDefault(ctx context.Context, channel domain.Channel, providerID string) error {
	configs, err := r.ListByChannel(ctx, channel)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var items []types.TransactWriteItem
	found := false
	for _, c := range configs {
		switch {
		case c.ProviderID == providerID:
			found = true
			items = append(items, transactSetDefault(r.tableName, c.ProviderID, true, now))
		case c.IsDefault:
			items = append(items, transactSetDefault(r.tableName, c.ProviderID, false, now))
		}
	}
	if !found {
		return fmt.Errorf("provider config not found for channel %s: %w", channel, domain.ErrNotFound)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return err
}

func transactSetDefault(table, providerID string, isDefault bool, updatedAt string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:        aws.String(table),
			Key:              strKey("provider_id", providerID),
			UpdateExpression: aws.String("SET is_default = :d, updated_at = :u"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":d": &types.AttributeValueMemberBOOL{Value: isDefault},
				":u": &types.AttributeValueMemberS{Value: updatedAt},
			},
		},
	}
}
