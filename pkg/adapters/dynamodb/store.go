package dynamodb

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

	"github.com/aretw0/pizzabot/pkg/domain"
)

const skState = "STATE"

// dynamodbAPI is the minimal DynamoDB interface required by Store.
// *dynamodb.Client satisfies it.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements ports.ConversationStore on a DynamoDB table with a
// composite key (PK, SK). One item per conversation.
type Store struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL writes a "ttl" attribute so DynamoDB expires idle conversations.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a Store over the given table.
func New(api dynamodbAPI, tableName string, opts ...Option) (*Store, error) {
	if api == nil {
		return nil, errors.New("dynamodb: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamodb: table name must not be empty")
	}
	s := &Store{api: api, tableName: tableName}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// convPK returns the partition key for a conversation.
func convPK(conversationID string) string {
	return "CONV#" + conversationID
}

func key(conversationID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: convPK(conversationID)},
		"SK": &types.AttributeValueMemberS{Value: skState},
	}
}

// Save writes or replaces the conversation item.
func (s *Store) Save(ctx context.Context, conv *domain.Conversation) error {
	if conv == nil || conv.ID == "" {
		return domain.ErrEmptyConversationID
	}
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      s.conversationItem(conv),
	})
	if err != nil {
		return fmt.Errorf("dynamodb: Save %s: %w", conv.ID, err)
	}
	return nil
}

// Load reads the conversation item with a consistent read.
func (s *Store) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            key(conversationID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb: Load %s: %w", conversationID, err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, domain.ErrConversationNotFound
	}
	if s.expired(out.Item) {
		return nil, domain.ErrConversationNotFound
	}

	conv, err := itemToConversation(out.Item)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: Load %s: %w", conversationID, err)
	}
	return conv, nil
}

// Delete removes the conversation item.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       key(conversationID),
	})
	if err != nil {
		return fmt.Errorf("dynamodb: Delete %s: %w", conversationID, err)
	}
	return nil
}

// List scans the table for conversation items.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var (
		ids   []string
		start map[string]types.AttributeValue
	)
	for {
		out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.tableName),
			FilterExpression: aws.String("SK = :sk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":sk": &types.AttributeValueMemberS{Value: skState},
			},
			ProjectionExpression: aws.String("conversationId, #ttl"),
			ExpressionAttributeNames: map[string]string{
				"#ttl": "ttl",
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("dynamodb: List scan: %w", err)
		}
		for _, item := range out.Items {
			if s.expired(item) {
				continue
			}
			id, err := strAttr(item, "conversationId")
			if err != nil {
				return nil, fmt.Errorf("dynamodb: List: %w", err)
			}
			ids = append(ids, id)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return ids, nil
		}
		start = out.LastEvaluatedKey
	}
}

// expired hides items DynamoDB has not swept yet.
func (s *Store) expired(item map[string]types.AttributeValue) bool {
	if _, ok := item["ttl"]; !ok {
		return false
	}
	ttl, err := intAttr(item, "ttl")
	if err != nil {
		return false
	}
	return time.Now().Unix() >= int64(ttl)
}

func (s *Store) conversationItem(conv *domain.Conversation) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: convPK(conv.ID)},
		"SK":             &types.AttributeValueMemberS{Value: skState},
		"conversationId": &types.AttributeValueMemberS{Value: conv.ID},
		"state":          &types.AttributeValueMemberS{Value: string(conv.State)},
		"size":           &types.AttributeValueMemberS{Value: string(conv.Order.Size)},
		"payment":        &types.AttributeValueMemberS{Value: string(conv.Order.Payment)},
		"cycles":         &types.AttributeValueMemberN{Value: strconv.Itoa(conv.Cycles)},
		"createdAt":      &types.AttributeValueMemberS{Value: conv.CreatedAt.UTC().Format(time.RFC3339Nano)},
		"updatedAt":      &types.AttributeValueMemberS{Value: conv.UpdatedAt.UTC().Format(time.RFC3339Nano)},
	}
	if s.ttl > 0 {
		item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Add(s.ttl).Unix(), 10)}
	}
	return item
}

// itemToConversation converts a DynamoDB attribute map to a Conversation.
func itemToConversation(item map[string]types.AttributeValue) (*domain.Conversation, error) {
	id, err := strAttr(item, "conversationId")
	if err != nil {
		return nil, err
	}
	state, err := strAttr(item, "state")
	if err != nil {
		return nil, err
	}
	cycles, err := intAttr(item, "cycles")
	if err != nil {
		return nil, err
	}
	size, _ := strAttr(item, "size")       // allow empty
	payment, _ := strAttr(item, "payment") // allow empty

	conv := &domain.Conversation{
		ID:     id,
		State:  domain.StateID(state),
		Order:  domain.Order{Size: domain.Size(size), Payment: domain.PaymentMethod(payment)},
		Cycles: cycles,
	}
	if conv.CreatedAt, err = timeAttr(item, "createdAt"); err != nil {
		return nil, err
	}
	if conv.UpdatedAt, err = timeAttr(item, "updatedAt"); err != nil {
		return nil, err
	}
	return conv, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func timeAttr(item map[string]types.AttributeValue, key string) (time.Time, error) {
	s, err := strAttr(item, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse attribute %q: %w", key, err)
	}
	return t, nil
}
