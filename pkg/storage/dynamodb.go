package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	appconfig "github.com/whrrk/eduplatform/pkg/config"
)

// DynamoDBStore implements Store against a DynamoDB table.
type DynamoDBStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *slog.Logger
}

// NewDynamoDBStore creates a DynamoDB-backed store. When a local
// endpoint is configured, static credentials are used; otherwise the
// default AWS credential chain applies.
func NewDynamoDBStore(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*DynamoDBStore, error) {
	var awsCfg aws.Config
	var err error

	if cfg.DynamoDBEndpoint != "" {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.AWSRegion),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKey,
				cfg.AWSSecretKey,
				"",
			)),
		)
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.AWSRegion),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})

	store := &DynamoDBStore{
		client:    client,
		tableName: cfg.TableName,
		logger:    logger,
	}

	logger.Info("DynamoDB store initialized",
		slog.String("table", cfg.TableName),
		slog.String("region", cfg.AWSRegion),
		slog.String("endpoint", cfg.DynamoDBEndpoint))

	return store, nil
}

// NewDynamoDBStoreFromClient wraps an already constructed client. Used
// by the Lambda entry point where the client is built once per cold
// start and shared across invocations.
func NewDynamoDBStoreFromClient(client *dynamodb.Client, tableName string, logger *slog.Logger) *DynamoDBStore {
	return &DynamoDBStore{client: client, tableName: tableName, logger: logger}
}

// Put writes an item, replacing any existing item with the same key.
func (s *DynamoDBStore) Put(ctx context.Context, item Item) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		s.logger.Error("failed to put item", slog.String("error", err.Error()))
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// Get retrieves a single item by (pk, sk); (nil, nil) when absent.
func (s *DynamoDBStore) Get(ctx context.Context, pk, sk string) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			AttrPK: &types.AttributeValueMemberS{Value: pk},
			AttrSK: &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		s.logger.Error("failed to get item",
			slog.String("error", err.Error()),
			slog.String("pk", pk),
			slog.String("sk", sk))
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

// Query returns the partition pk filtered by sort-key prefix, ascending.
func (s *DynamoDBStore) Query(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("#pk = :pk AND begins_with(#sk, :prefix)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": AttrPK,
			"#sk": AttrSK,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pk},
			":prefix": &types.AttributeValueMemberS{Value: skPrefix},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if skPrefix == "" {
		input.KeyConditionExpression = aws.String("#pk = :pk")
		delete(input.ExpressionAttributeNames, "#sk")
		delete(input.ExpressionAttributeValues, ":prefix")
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		s.logger.Error("failed to query partition",
			slog.String("error", err.Error()),
			slog.String("pk", pk))
		return nil, fmt.Errorf("failed to query partition: %w", err)
	}
	return out.Items, nil
}

// QueryIndex returns all index items whose partition key equals pk.
func (s *DynamoDBStore) QueryIndex(ctx context.Context, indexName, pk string) ([]Item, error) {
	pkAttr := AttrGSI1PK
	if indexName == IndexGSI2 {
		pkAttr = AttrGSI2PK
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": pkAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		s.logger.Error("failed to query index",
			slog.String("error", err.Error()),
			slog.String("index", indexName),
			slog.String("pk", pk))
		return nil, fmt.Errorf("failed to query index %s: %w", indexName, err)
	}
	return out.Items, nil
}

// Scan returns all items matching pk prefix and exact sk.
func (s *DynamoDBStore) Scan(ctx context.Context, pkPrefix, sk string) ([]Item, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("begins_with(#pk, :prefix) AND #sk = :sk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": AttrPK,
			"#sk": AttrSK,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: pkPrefix},
			":sk":     &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		s.logger.Error("failed to scan table",
			slog.String("error", err.Error()),
			slog.String("pkPrefix", pkPrefix))
		return nil, fmt.Errorf("failed to scan table: %w", err)
	}
	return out.Items, nil
}

// HealthCheck verifies the table is accessible.
func (s *DynamoDBStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return fmt.Errorf("DynamoDB health check failed: %w", err)
	}
	return nil
}

// Close releases resources (the DynamoDB client needs no explicit cleanup).
func (s *DynamoDBStore) Close() error {
	return nil
}
