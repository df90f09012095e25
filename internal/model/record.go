// Package model defines the core domain models used throughout the application.
package model

import "time"

// RecordType identifies what a stored QR record points at.
type RecordType string

// Record type constants.
const (
	RecordTypeBank    RecordType = "bank"
	RecordTypeStore   RecordType = "store"
	RecordTypeEwallet RecordType = "ewallet"
)

// MetadataType identifies the optical code format a record was captured from.
type MetadataType string

// Metadata type constants.
const (
	MetadataQR      MetadataType = "qr"
	MetadataBarcode MetadataType = "barcode"
)

// QRRecord represents a persisted payment code owned by a user.
// Synced is false from the moment of any local mutation until the
// backend confirms the record.
type QRRecord struct {
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	ID            string       `json:"id" validate:"required,uuid4"`
	UserID        string       `json:"user_id" validate:"required"`
	Type          RecordType   `json:"type" validate:"required,oneof=bank store ewallet"`
	Code          string       `json:"code" validate:"required"`
	Metadata      string       `json:"metadata"`
	MetadataType  MetadataType `json:"metadata_type" validate:"required,oneof=qr barcode"`
	AccountName   string       `json:"account_name"`
	AccountNumber string       `json:"account_number"`
	Synced        bool         `json:"synced"`
}

// ValidType reports whether the record type is one of the enumerated values.
func (t RecordType) ValidType() bool {
	switch t {
	case RecordTypeBank, RecordTypeStore, RecordTypeEwallet:
		return true
	}
	return false
}

// ValidType reports whether the metadata type is one of the enumerated values.
func (t MetadataType) ValidType() bool {
	switch t {
	case MetadataQR, MetadataBarcode:
		return true
	}
	return false
}

// Touch marks the record as locally mutated: the update timestamp moves
// forward and the record becomes dirty until the next successful sync.
func (r *QRRecord) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	r.Synced = false
}
