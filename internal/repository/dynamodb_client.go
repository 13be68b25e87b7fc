package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"chat-relay/internal/domain"
)

const (
	pkPrefixDay      = "DAY#"
	skPrefixExchange = "EXCHANGE#"
	ttlDuration      = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client journals chat exchanges into a DynamoDB table.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

// dayPK partitions exchanges by UTC day.
func dayPK(ts time.Time) string {
	return pkPrefixDay + ts.UTC().Format(time.DateOnly)
}

// exchangeSK sorts exchanges chronologically inside a day; the id breaks ties.
func exchangeSK(ts time.Time, id string) string {
	return skPrefixExchange + ts.UTC().Format(time.RFC3339Nano) + "#" + id
}

// RecordExchange writes ex as a new item. Missing ID and CreatedAt are filled in.
func (c *Client) RecordExchange(ctx context.Context, ex domain.Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = c.now()
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                exchangeItem(ex),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordExchange: %w", err)
	}
	return nil
}

func exchangeItem(ex domain.Exchange) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":            &types.AttributeValueMemberS{Value: dayPK(ex.CreatedAt)},
		"SK":            &types.AttributeValueMemberS{Value: exchangeSK(ex.CreatedAt, ex.ID)},
		"exchangeId":    &types.AttributeValueMemberS{Value: ex.ID},
		"correlationId": &types.AttributeValueMemberS{Value: ex.CorrelationID},
		"message":       &types.AttributeValueMemberS{Value: ex.Message},
		"response":      &types.AttributeValueMemberS{Value: ex.Response},
		"provider":      &types.AttributeValueMemberS{Value: ex.Provider},
		"fallback":      &types.AttributeValueMemberBOOL{Value: ex.Fallback},
		"createdAt":     &types.AttributeValueMemberS{Value: ex.CreatedAt.UTC().Format(time.RFC3339Nano)},
		"ttl":           &types.AttributeValueMemberN{Value: strconv.FormatInt(ex.CreatedAt.Add(ttlDuration).Unix(), 10)},
	}
}
