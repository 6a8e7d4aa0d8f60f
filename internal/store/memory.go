package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/albapepper/soccerscore/internal/document"
)

type memoryCollection struct {
	order []string
	docs  map[string]document.Document
}

// Memory is an in-process Store. Documents are copied on the way in and on
// the way out, and Find returns them in first-insert order.
type Memory struct {
	mu          sync.RWMutex
	collections map[Collection]*memoryCollection
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[Collection]*memoryCollection)}
}

func (m *Memory) collection(c Collection) *memoryCollection {
	col, ok := m.collections[c]
	if !ok {
		col = &memoryCollection{docs: make(map[string]document.Document)}
		m.collections[c] = col
	}
	return col
}

func (m *Memory) Upsert(_ context.Context, c Collection, key Key, doc document.Document) error {
	if key.Field == "" {
		return &Error{Op: "upsert", Collection: c, Err: fmt.Errorf("empty key field")}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(c)
	id := key.Field + "=" + key.String()
	incoming := withKey(key, doc)

	existing, ok := col.docs[id]
	if !ok {
		col.docs[id] = incoming
		col.order = append(col.order, id)
		return nil
	}
	for field, v := range incoming {
		existing[field] = v
	}
	return nil
}

func (m *Memory) Find(_ context.Context, c Collection, filter Filter) ([]document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[c]
	if !ok {
		return []document.Document{}, nil
	}
	result := make([]document.Document, 0, len(col.order))
	for _, id := range col.order {
		doc := col.docs[id]
		if filter.Match(doc) {
			result = append(result, doc.Clone())
		}
	}
	return result, nil
}

// Count returns the number of documents in a collection.
func (m *Memory) Count(c Collection) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if col, ok := m.collections[c]; ok {
		return len(col.order)
	}
	return 0
}

func (m *Memory) EnsureSchema(context.Context) error { return nil }

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close(context.Context) error { return nil }
