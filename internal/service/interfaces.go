// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ltanh/qrflow/internal/model"
)

// RecordFilter defines filtering options for record queries.
type RecordFilter struct {
	UserID string
	Type   *model.RecordType
	Limit  int
	Offset int
}

// Storage defines the contract for the local record store.
type Storage interface {
	// Record operations
	UpsertRecords(ctx context.Context, records []model.QRRecord) error
	GetRecordByID(ctx context.Context, id string) (*model.QRRecord, error)
	GetRecordsByUser(ctx context.Context, userID string) ([]model.QRRecord, error)
	GetRecords(ctx context.Context, filter RecordFilter) ([]model.QRRecord, error)
	GetUnsyncedRecords(ctx context.Context) ([]model.QRRecord, error)
	MarkRecordsSynced(ctx context.Context, ids []string, syncedAt time.Time) error
	DeleteRecord(ctx context.Context, id string) error
	GetRecordCount(ctx context.Context) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// Backend is the remote collaborator that confirms record syncs.
type Backend interface {
	PushRecords(ctx context.Context, records []model.QRRecord) error
}

// Associator issues the platform Wi-Fi association call.
type Associator interface {
	Associate(ctx context.Context, ssid, password string, isWEP bool) error
}

// Connectivity answers the offline precondition check before network calls.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// SyncStats shows the results of a sync run.
type SyncStats struct {
	Pushed   int
	Failed   int
	Duration time.Duration
}
