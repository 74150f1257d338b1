package importers

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// mockDocumentStore records inserts in memory. failFirst makes the leading N
// Insert calls fail, which is how the retry path gets exercised.
type mockDocumentStore struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	byColl    map[string][]map[string]any
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{byColl: make(map[string][]map[string]any)}
}

func (m *mockDocumentStore) Insert(_ context.Context, collection string, doc map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failFirst {
		return errors.New("document store unavailable")
	}
	m.byColl[collection] = append(m.byColl[collection], doc)
	return nil
}

func (m *mockDocumentStore) count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byColl[collection])
}

func (m *mockDocumentStore) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, docs := range m.byColl {
		n += len(docs)
	}
	return n
}

// mockGraphStore stages statements per transaction and keeps them only when
// fn succeeds, mirroring the all-or-nothing contract. failOn makes any query
// containing the substring fail.
type mockGraphStore struct {
	failOn  string
	queries []string
}

func (m *mockGraphStore) WriteTx(_ context.Context, fn func(tx GraphTx) error) error {
	staged := &mockGraphTx{store: m}
	if err := fn(staged); err != nil {
		return err
	}
	m.queries = append(m.queries, staged.queries...)
	return nil
}

func (m *mockGraphStore) countContaining(substr string) int {
	n := 0
	for _, q := range m.queries {
		if strings.Contains(q, substr) {
			n++
		}
	}
	return n
}

type mockGraphTx struct {
	store   *mockGraphStore
	queries []string
}

func (t *mockGraphTx) Run(_ context.Context, query string, _ map[string]any) error {
	if t.store.failOn != "" && strings.Contains(query, t.store.failOn) {
		return errors.New("cypher statement failed")
	}
	t.queries = append(t.queries, query)
	return nil
}
