// Package sync keeps the in-memory record state, the local store, and the
// remote backend in agreement.
package sync

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/model"
	"github.com/ltanh/qrflow/internal/service"
)

// Editor applies user edits optimistically: the in-memory state is updated
// before the durable write is attempted. A failed write surfaces a
// field-level message but does not revert the in-memory record — the
// record stays dirty and the background syncer retries it instead of
// rolling the edit back under the user.
type Editor struct {
	store   service.Storage
	now     func() time.Time
	records map[string]model.QRRecord
	mu      sync.RWMutex
}

// NewEditor creates an editor over the local store.
func NewEditor(store service.Storage) *Editor {
	return &Editor{
		store:   store,
		now:     time.Now,
		records: make(map[string]model.QRRecord),
	}
}

// Load populates the in-memory state with a user's records and returns
// them most recently updated first.
func (e *Editor) Load(ctx context.Context, userID string) ([]model.QRRecord, error) {
	records, err := e.store.GetRecordsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	for _, rec := range records {
		e.records[rec.ID] = rec
	}
	e.mu.Unlock()

	return records, nil
}

// Records returns the in-memory records for a user, most recently updated
// first. This is what the UI renders, ahead of any persistence outcome.
func (e *Editor) Records(userID string) []model.QRRecord {
	e.mu.RLock()
	var out []model.QRRecord
	for _, rec := range e.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns the in-memory copy of a record.
func (e *Editor) Get(id string) (model.QRRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.records[id]
	return rec, ok
}

// Apply commits an edit. The record is marked dirty and written to the
// in-memory state first; only then is the durable write attempted.
// Concurrent edits to the same id are not coordinated — last write wins.
func (e *Editor) Apply(ctx context.Context, rec model.QRRecord) error {
	rec.Touch(e.now())

	e.mu.Lock()
	e.records[rec.ID] = rec
	e.mu.Unlock()

	if err := e.store.UpsertRecords(ctx, []model.QRRecord{rec}); err != nil {
		// The optimistic state stands; the record remains dirty and the
		// syncer will pick it up on its next pass.
		return common.NewFieldError("code", "could not save record", err)
	}

	return nil
}
