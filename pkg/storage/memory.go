package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemoryStore is an in-memory Store used by tests and local development.
// It mirrors DynamoDB's observable behavior for the operations the
// services rely on: last-write-wins puts and ascending sort-key order
// on queries.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Item // keyed by pk + "\x00" + sk
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Item)}
}

func itemKey(pk, sk string) string {
	return pk + "\x00" + sk
}

func stringAttr(item Item, name string) string {
	if av, ok := item[name].(*types.AttributeValueMemberS); ok {
		return av.Value
	}
	return ""
}

// Put stores a copy of the item, replacing any existing item with the
// same (pk, sk).
func (s *MemoryStore) Put(ctx context.Context, item Item) error {
	pk := stringAttr(item, AttrPK)
	sk := stringAttr(item, AttrSK)
	if pk == "" || sk == "" {
		return fmt.Errorf("item missing %s or %s attribute", AttrPK, AttrSK)
	}

	cp := make(Item, len(item))
	for k, v := range item {
		cp[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[itemKey(pk, sk)] = cp
	return nil
}

// Get returns the item with exactly (pk, sk), or (nil, nil).
func (s *MemoryStore) Get(ctx context.Context, pk, sk string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemKey(pk, sk)]
	if !ok {
		return nil, nil
	}
	return item, nil
}

// Query returns partition pk filtered by sort-key prefix, ascending.
func (s *MemoryStore) Query(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Item
	for _, item := range s.items {
		if stringAttr(item, AttrPK) != pk {
			continue
		}
		if !strings.HasPrefix(stringAttr(item, AttrSK), skPrefix) {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool {
		return stringAttr(matched[i], AttrSK) < stringAttr(matched[j], AttrSK)
	})
	return matched, nil
}

// QueryIndex returns items whose index partition key equals pk, sorted
// ascending by the index sort key.
func (s *MemoryStore) QueryIndex(ctx context.Context, indexName, pk string) ([]Item, error) {
	pkAttr, skAttr := AttrGSI1PK, AttrGSI1SK
	if indexName == IndexGSI2 {
		pkAttr, skAttr = AttrGSI2PK, AttrGSI2SK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Item
	for _, item := range s.items {
		if stringAttr(item, pkAttr) == pk {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return stringAttr(matched[i], skAttr) < stringAttr(matched[j], skAttr)
	})
	return matched, nil
}

// Scan returns all items matching pk prefix and exact sk.
func (s *MemoryStore) Scan(ctx context.Context, pkPrefix, sk string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Item
	for _, item := range s.items {
		if !strings.HasPrefix(stringAttr(item, AttrPK), pkPrefix) {
			continue
		}
		if stringAttr(item, AttrSK) != sk {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool {
		return stringAttr(matched[i], AttrPK) < stringAttr(matched[j], AttrPK)
	})
	return matched, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}

// Close releases nothing; present to satisfy Store.
func (s *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored items. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
