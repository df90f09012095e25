package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltanh/qrflow/internal/model"
)

func TestCollectPayloads_Args(t *testing.T) {
	payloads, err := collectPayloads([]string{"WIFI:S:Cafe;;", "https://example.com"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"WIFI:S:Cafe;;", "https://example.com"}, payloads)
}

func TestCollectPayloads_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payloads.txt")
	content := "https://example.com\n\n  \n00020101021138MOMO999\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	payloads, err := collectPayloads(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com", "00020101021138MOMO999"}, payloads)
}

func TestCollectPayloads_MissingFile(t *testing.T) {
	_, err := collectPayloads(nil, filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestRecordTypeFor(t *testing.T) {
	tests := []struct {
		name     string
		kind     model.CodeKind
		expected model.RecordType
		savable  bool
	}{
		{name: "bank codes become bank records", kind: model.KindBank, expected: model.RecordTypeBank, savable: true},
		{name: "card codes become bank records", kind: model.KindCard, expected: model.RecordTypeBank, savable: true},
		{name: "ewallet codes become ewallet records", kind: model.KindEwallet, expected: model.RecordTypeEwallet, savable: true},
		{name: "urls become store records", kind: model.KindURL, expected: model.RecordTypeStore, savable: true},
		{name: "wifi credentials are not persisted", kind: model.KindWifi, savable: false},
		{name: "unknown payloads are not persisted", kind: model.KindUnknown, savable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recordType, ok := recordTypeFor(tt.kind)
			assert.Equal(t, tt.savable, ok)
			if tt.savable {
				assert.Equal(t, tt.expected, recordType)
			}
		})
	}
}
