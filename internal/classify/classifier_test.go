package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ltanh/qrflow/internal/model"
)

func TestClassifier_Classify(t *testing.T) {
	c := New()

	tests := []struct {
		name      string
		payload   string
		wantKind  model.CodeKind
		wantLabel string
	}{
		{
			name:      "wifi credential block",
			payload:   "WIFI:T:WPA;S:CoffeeHouse;P:espresso123;;",
			wantKind:  model.KindWifi,
			wantLabel: "CoffeeHouse",
		},
		{
			name:      "wifi without ssid falls back to Unknown",
			payload:   "WIFI:T:WPA;P:espresso123;;",
			wantKind:  model.KindWifi,
			wantLabel: "Unknown",
		},
		{
			name:      "wifi open network",
			payload:   "WIFI:T:nopass;S:Airport Free;;",
			wantKind:  model.KindWifi,
			wantLabel: "Airport Free",
		},
		{
			name:      "https url strips scheme for display",
			payload:   "https://example.com/menu",
			wantKind:  model.KindURL,
			wantLabel: "example.com/menu",
		},
		{
			name:      "http url strips scheme for display",
			payload:   "http://example.com",
			wantKind:  model.KindURL,
			wantLabel: "example.com",
		},
		{
			name:      "vietqr momo wallet",
			payload:   "00020101021138570010A000000727MOMO0208QRIBFTTA",
			wantKind:  model.KindEwallet,
			wantLabel: "MoMo",
		},
		{
			name:      "vietqr zalopay wallet",
			payload:   "00020101021138570010A000000727zalopay0208QRIBFTTA",
			wantKind:  model.KindEwallet,
			wantLabel: "ZaloPay",
		},
		{
			name:      "vietqr bank bin",
			payload:   "00020101021138570010A00000072701270006970436011307008112345670208QRIBFTTA",
			wantKind:  model.KindBank,
			wantLabel: "Vietcombank",
		},
		{
			name:      "vietqr without markers is generic card",
			payload:   "00020101021138570010A0000007270127000612345601130700811234567",
			wantKind:  model.KindCard,
			wantLabel: "Payment card",
		},
		{
			name:      "wifi wins over embedded url",
			payload:   "WIFI:S:https://not-a-url;P:x;;",
			wantKind:  model.KindWifi,
			wantLabel: "https://not-a-url",
		},
		{
			name:     "arbitrary text is unknown",
			payload:  "hello world",
			wantKind: model.KindUnknown,
		},
		{
			name:     "emv header mid-string does not match",
			payload:  "xx000201yy",
			wantKind: model.KindUnknown,
		},
		{
			name:     "empty payload is unknown",
			payload:  "",
			wantKind: model.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.payload)
			assert.Equal(t, tt.wantKind, got.Kind)
			if tt.wantLabel != "" {
				assert.Equal(t, tt.wantLabel, got.DisplayLabel)
			}
		})
	}
}

func TestClassifier_Pure(t *testing.T) {
	c := New()
	payload := "WIFI:T:WEP;S:legacy;P:abc;;"

	first := c.Classify(payload)
	second := c.Classify(payload)

	assert.Equal(t, first, second)
}

func TestExtractWifi(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.WifiCredentials
	}{
		{
			name: "full credential block",
			in:   "WIFI:T:WPA;S:HomeNet;P:hunter2;;",
			want: model.WifiCredentials{SSID: "HomeNet", Password: "hunter2", Security: "WPA"},
		},
		{
			name: "missing password defaults to empty",
			in:   "WIFI:T:nopass;S:OpenNet;;",
			want: model.WifiCredentials{SSID: "OpenNet", Security: "nopass"},
		},
		{
			name: "wep security flagged",
			in:   "WIFI:T:WEP;S:old;P:k;;",
			want: model.WifiCredentials{SSID: "old", Password: "k", Security: "WEP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractWifi(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Security == "WEP", got.IsWEP())
		})
	}
}
