package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	appconfig "github.com/whrrk/eduplatform/pkg/config"
	"github.com/whrrk/eduplatform/pkg/storage"
)

// Creates the course table with both secondary indexes against
// DynamoDB Local. An existing table is dropped and recreated.
func main() {
	ctx := context.Background()

	cfg := appconfig.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("initializing DynamoDB table",
		slog.String("table", cfg.TableName),
		slog.String("endpoint", cfg.DynamoDBEndpoint),
		slog.String("region", cfg.AWSRegion))

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
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})

	schema := storage.GetTableSchema(cfg.TableName)

	_, err = client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(schema.TableName),
	})
	if err == nil {
		logger.Info("table already exists, deleting and recreating",
			slog.String("table", schema.TableName))

		_, err = client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
			TableName: aws.String(schema.TableName),
		})
		if err != nil {
			log.Fatalf("Failed to delete existing table: %v", err)
		}

		waiter := dynamodb.NewTableNotExistsWaiter(client)
		err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(schema.TableName),
		}, 60*time.Second)
		if err != nil {
			log.Fatalf("Failed waiting for table deletion: %v", err)
		}
	}

	stringAttr := func(name string) types.AttributeDefinition {
		return types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		}
	}
	keySchema := func(hash, rng string) []types.KeySchemaElement {
		return []types.KeySchemaElement{
			{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(rng), KeyType: types.KeyTypeRange},
		}
	}
	throughput := &types.ProvisionedThroughput{
		ReadCapacityUnits:  aws.Int64(5),
		WriteCapacityUnits: aws.Int64(5),
	}

	logger.Info("creating table", slog.String("table", schema.TableName))

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(schema.TableName),
		AttributeDefinitions: []types.AttributeDefinition{
			stringAttr(schema.PartitionKey),
			stringAttr(schema.SortKey),
			stringAttr(schema.GSI1PartitionKey),
			stringAttr(schema.GSI1SortKey),
			stringAttr(schema.GSI2PartitionKey),
			stringAttr(schema.GSI2SortKey),
		},
		KeySchema: keySchema(schema.PartitionKey, schema.SortKey),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName:             aws.String(schema.GSI1Name),
				KeySchema:             keySchema(schema.GSI1PartitionKey, schema.GSI1SortKey),
				Projection:            &types.Projection{ProjectionType: types.ProjectionTypeAll},
				ProvisionedThroughput: throughput,
			},
			{
				IndexName:             aws.String(schema.GSI2Name),
				KeySchema:             keySchema(schema.GSI2PartitionKey, schema.GSI2SortKey),
				Projection:            &types.Projection{ProjectionType: types.ProjectionTypeAll},
				ProvisionedThroughput: throughput,
			},
		},
		BillingMode:           types.BillingModeProvisioned,
		ProvisionedThroughput: throughput,
	})
	if err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(schema.TableName),
	}, 60*time.Second)
	if err != nil {
		log.Fatalf("Failed waiting for table creation: %v", err)
	}

	out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(schema.TableName),
	})
	if err != nil {
		log.Fatalf("Failed to describe table: %v", err)
	}

	fmt.Printf("Table %s created (%s)\n", *out.Table.TableName, out.Table.TableStatus)
	fmt.Printf("  primary key: %s / %s\n", schema.PartitionKey, schema.SortKey)
	fmt.Printf("  %s: %s / %s\n", schema.GSI1Name, schema.GSI1PartitionKey, schema.GSI1SortKey)
	fmt.Printf("  %s: %s / %s\n", schema.GSI2Name, schema.GSI2PartitionKey, schema.GSI2SortKey)
}
