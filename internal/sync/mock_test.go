package sync

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ltanh/qrflow/internal/model"
	"github.com/ltanh/qrflow/internal/service"
)

// mockStorage is an in-memory service.Storage for tests.
type mockStorage struct {
	upsertErr error
	markErr   error
	records   map[string]model.QRRecord
	upserts   int
	mu        sync.Mutex
}

func newMockStorage() *mockStorage {
	return &mockStorage{records: make(map[string]model.QRRecord)}
}

func (m *mockStorage) UpsertRecords(_ context.Context, records []model.QRRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, rec := range records {
		m.records[rec.ID] = rec
	}
	return nil
}

func (m *mockStorage) GetRecordByID(_ context.Context, id string) (*model.QRRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &rec, nil
}

func (m *mockStorage) GetRecordsByUser(_ context.Context, userID string) ([]model.QRRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.QRRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockStorage) GetRecords(_ context.Context, _ service.RecordFilter) ([]model.QRRecord, error) {
	return nil, nil
}

func (m *mockStorage) GetUnsyncedRecords(_ context.Context) ([]model.QRRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.QRRecord
	for _, rec := range m.records {
		if !rec.Synced {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockStorage) MarkRecordsSynced(_ context.Context, ids []string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	for _, id := range ids {
		rec := m.records[id]
		rec.Synced = true
		m.records[id] = rec
	}
	return nil
}

func (m *mockStorage) DeleteRecord(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *mockStorage) GetRecordCount(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *mockStorage) Migrate(_ context.Context) error { return nil }

func (m *mockStorage) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, errors.New("not supported")
}

func (m *mockStorage) Close() error { return nil }

// mockBackend records pushes and can be told to fail.
type mockBackend struct {
	err    error
	pushes [][]model.QRRecord
	mu     sync.Mutex
}

func (b *mockBackend) PushRecords(_ context.Context, records []model.QRRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.pushes = append(b.pushes, append([]model.QRRecord(nil), records...))
	return nil
}

func (b *mockBackend) pushCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pushes)
}
