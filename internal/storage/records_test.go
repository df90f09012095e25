package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/model"
	"github.com/ltanh/qrflow/internal/service"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(id, userID string, updatedAt time.Time) model.QRRecord {
	return model.QRRecord{
		ID:            id,
		UserID:        userID,
		Type:          model.RecordTypeBank,
		Code:          "970436",
		Metadata:      "00020101021138570010A000000727",
		MetadataType:  model.MetadataQR,
		AccountName:   "NGUYEN VAN A",
		AccountNumber: "0071001234567",
		CreatedAt:     updatedAt.Add(-time.Hour),
		UpdatedAt:     updatedAt,
	}
}

func TestUpsertRecords_InsertAndFetch(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rec := testRecord("rec-1", "user-1", now)

	require.NoError(t, store.UpsertRecords(ctx, []model.QRRecord{rec}))

	got, err := store.GetRecordByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, rec.UserID, got.UserID)
	assert.Equal(t, model.RecordTypeBank, got.Type)
	assert.Equal(t, "970436", got.Code)
	assert.Equal(t, model.MetadataQR, got.MetadataType)
	assert.False(t, got.Synced)
}

func TestUpsertRecords_LastWriteWins(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rec := testRecord("rec-1", "user-1", base)
	require.NoError(t, store.UpsertRecords(ctx, []model.QRRecord{rec}))

	rec.AccountName = "TRAN THI B"
	rec.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, store.UpsertRecords(ctx, []model.QRRecord{rec}))

	got, err := store.GetRecordByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "TRAN THI B", got.AccountName)

	count, err := store.GetRecordCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertRecords_RejectsInvalidEnums(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	rec := testRecord("rec-1", "user-1", time.Now().UTC())
	rec.Type = "crypto"

	err := store.UpsertRecords(ctx, []model.QRRecord{rec})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	rec = testRecord("rec-2", "user-1", time.Now().UTC())
	rec.MetadataType = "nfc"
	err = store.UpsertRecords(ctx, []model.QRRecord{rec})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestGetRecordsByUser_OrderedByRecency(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	records := []model.QRRecord{
		testRecord("rec-old", "user-1", base),
		testRecord("rec-new", "user-1", base.Add(2*time.Hour)),
		testRecord("rec-mid", "user-1", base.Add(time.Hour)),
		testRecord("rec-other", "user-2", base.Add(3*time.Hour)),
	}
	require.NoError(t, store.UpsertRecords(ctx, records))

	got, err := store.GetRecordsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "rec-new", got[0].ID)
	assert.Equal(t, "rec-mid", got[1].ID)
	assert.Equal(t, "rec-old", got[2].ID)
}

func TestGetRecords_FilterByType(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	bank := testRecord("rec-bank", "user-1", base)
	wallet := testRecord("rec-wallet", "user-1", base.Add(time.Minute))
	wallet.Type = model.RecordTypeEwallet
	require.NoError(t, store.UpsertRecords(ctx, []model.QRRecord{bank, wallet}))

	walletType := model.RecordTypeEwallet
	got, err := store.GetRecords(ctx, service.RecordFilter{
		UserID: "user-1",
		Type:   &walletType,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "rec-wallet", got[0].ID)
}

func TestSyncFlagLifecycle(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	first := testRecord("rec-1", "user-1", base)
	second := testRecord("rec-2", "user-1", base.Add(time.Minute))
	require.NoError(t, store.UpsertRecords(ctx, []model.QRRecord{first, second}))

	dirty, err := store.GetUnsyncedRecords(ctx)
	require.NoError(t, err)
	require.Len(t, dirty, 2)
	// Oldest mutation first.
	assert.Equal(t, "rec-1", dirty[0].ID)

	require.NoError(t, store.MarkRecordsSynced(ctx, []string{"rec-1"}, base.Add(time.Hour)))

	dirty, err = store.GetUnsyncedRecords(ctx)
	require.NoError(t, err)
	require.Len(t, dirty, 1)
	assert.Equal(t, "rec-2", dirty[0].ID)

	// A local mutation makes the record dirty again.
	synced, err := store.GetRecordByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.True(t, synced.Synced)

	synced.Touch(base.Add(2 * time.Hour))
	require.NoError(t, store.UpsertRecords(ctx, []model.QRRecord{*synced}))

	dirty, err = store.GetUnsyncedRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, dirty, 2)
}

func TestDeleteRecord(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	rec := testRecord("rec-1", "user-1", time.Now().UTC())
	require.NoError(t, store.UpsertRecords(ctx, []model.QRRecord{rec}))

	require.NoError(t, store.DeleteRecord(ctx, "rec-1"))

	_, err := store.GetRecordByID(ctx, "rec-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.DeleteRecord(ctx, "rec-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBeginTx_RollbackDiscardsWrites(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	rec := testRecord("rec-1", "user-1", time.Now().UTC())
	require.NoError(t, tx.UpsertRecords(ctx, []model.QRRecord{rec}))
	require.NoError(t, tx.Rollback())

	count, err := store.GetRecordCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
