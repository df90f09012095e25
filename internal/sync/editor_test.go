package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/model"
)

func editorRecord(id, userID string) model.QRRecord {
	return model.QRRecord{
		ID:            id,
		UserID:        userID,
		Type:          model.RecordTypeBank,
		Code:          "970436",
		MetadataType:  model.MetadataQR,
		AccountName:   "NGUYEN VAN A",
		AccountNumber: "0071001234567",
	}
}

func TestEditor_ApplyWritesThrough(t *testing.T) {
	store := newMockStorage()
	editor := NewEditor(store)
	ctx := context.Background()

	rec := editorRecord("rec-1", "user-1")
	require.NoError(t, editor.Apply(ctx, rec))

	// In-memory and durable state agree, and the edit is dirty.
	inMem, ok := editor.Get("rec-1")
	require.True(t, ok)
	assert.False(t, inMem.Synced)

	stored, err := store.GetRecordByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.False(t, stored.Synced)
	assert.Equal(t, inMem.UpdatedAt, stored.UpdatedAt)
}

func TestEditor_OptimisticStateSurvivesWriteFailure(t *testing.T) {
	store := newMockStorage()
	store.upsertErr = errors.New("disk full")
	editor := NewEditor(store)
	ctx := context.Background()

	rec := editorRecord("rec-1", "user-1")
	err := editor.Apply(ctx, rec)

	// The failure surfaces as a field-level message...
	require.Error(t, err)
	var fieldErr *common.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "code", fieldErr.Field)

	// ...but the in-memory state already reflects the edit and is not
	// rolled back.
	inMem, ok := editor.Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, "NGUYEN VAN A", inMem.AccountName)
	assert.False(t, inMem.Synced)
	assert.Equal(t, 1, store.upserts)
}

func TestEditor_FailedWriteRetriedBySyncer(t *testing.T) {
	store := newMockStorage()
	editor := NewEditor(store)
	ctx := context.Background()

	require.NoError(t, editor.Apply(ctx, editorRecord("rec-1", "user-1")))

	// The record the editor left dirty is exactly what the syncer drains.
	backend := &mockBackend{}
	syncer := NewSyncer(store, backend, DefaultSyncerConfig())

	stats, err := syncer.SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pushed)

	stored, err := store.GetRecordByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.True(t, stored.Synced)
}

func TestEditor_LoadAndRecordsOrdering(t *testing.T) {
	store := newMockStorage()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	older := editorRecord("rec-old", "user-1")
	older.UpdatedAt = base
	newer := editorRecord("rec-new", "user-1")
	newer.UpdatedAt = base.Add(time.Hour)
	other := editorRecord("rec-other", "user-2")
	other.UpdatedAt = base.Add(2 * time.Hour)
	require.NoError(t, store.UpsertRecords(ctx, []model.QRRecord{older, newer, other}))

	editor := NewEditor(store)
	loaded, err := editor.Load(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "rec-new", loaded[0].ID)

	records := editor.Records("user-1")
	require.Len(t, records, 2)
	assert.Equal(t, "rec-new", records[0].ID)
	assert.Equal(t, "rec-old", records[1].ID)
}

func TestEditor_LastWriteWins(t *testing.T) {
	store := newMockStorage()
	editor := NewEditor(store)
	ctx := context.Background()

	first := editorRecord("rec-1", "user-1")
	first.AccountName = "FIRST"
	require.NoError(t, editor.Apply(ctx, first))

	second := editorRecord("rec-1", "user-1")
	second.AccountName = "SECOND"
	require.NoError(t, editor.Apply(ctx, second))

	inMem, ok := editor.Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, "SECOND", inMem.AccountName)

	stored, err := store.GetRecordByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "SECOND", stored.AccountName)
}
