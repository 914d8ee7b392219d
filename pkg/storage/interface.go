package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is a raw record as stored in the table.
type Item = map[string]types.AttributeValue

// Store is a thin client over the single course table: put, get, query
// and scan, nothing more. Services own key construction and the mapping
// between items and typed records. Implementations should be safe for
// concurrent use.
type Store interface {
	// Put writes an item, replacing any existing item with the same
	// (pk, sk). The item must carry both key attributes.
	Put(ctx context.Context, item Item) error

	// Get retrieves the item with exactly (pk, sk).
	// Returns (nil, nil) when no such item exists.
	Get(ctx context.Context, pk, sk string) (Item, error)

	// Query returns all items in partition pk whose sort key begins
	// with skPrefix, in ascending sort-key order. An empty skPrefix
	// returns the whole partition.
	Query(ctx context.Context, pk, skPrefix string) ([]Item, error)

	// QueryIndex returns all items whose index partition key equals pk,
	// in ascending index sort-key order. indexName must be one of the
	// table's secondary indexes (IndexGSI1, IndexGSI2).
	QueryIndex(ctx context.Context, indexName, pk string) ([]Item, error)

	// Scan returns all items whose partition key begins with pkPrefix
	// and whose sort key equals sk. This is a full-table scan; it backs
	// only the unpaginated course listing.
	Scan(ctx context.Context, pkPrefix, sk string) ([]Item, error)

	// HealthCheck verifies the backing table is accessible.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
