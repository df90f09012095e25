// Package classify assigns a semantic kind to raw scanned payloads.
package classify

import (
	"regexp"
	"strings"

	"github.com/ltanh/qrflow/internal/model"
)

// rule pairs a predicate with the handler that builds the result. Rules
// are evaluated in slice order and the first match wins; container
// iteration order never decides a classification.
type rule struct {
	match  func(payload string) bool
	handle func(payload string) model.ClassificationResult
}

// Classifier evaluates payloads against a fixed, ordered rule list.
// Classification is pure: the same payload always yields the same result.
type Classifier struct {
	rules []rule
}

var (
	wifiPrefix = regexp.MustCompile(`^WIFI:`)
	urlPrefix  = regexp.MustCompile(`^https?://`)
	emvPrefix  = regexp.MustCompile(`^000201`)

	wifiSSID     = regexp.MustCompile(`S:([^;]*)`)
	wifiPassword = regexp.MustCompile(`P:([^;]*)`)
	wifiSecurity = regexp.MustCompile(`T:([^;]*)`)
)

// Member bank BINs recognized inside a VietQR payload.
var bankNames = map[string]string{
	"970403": "Sacombank",
	"970407": "Techcombank",
	"970415": "VietinBank",
	"970416": "ACB",
	"970422": "MB Bank",
	"970432": "VPBank",
	"970436": "Vietcombank",
	"970437": "HDBank",
	"970441": "VIB",
	"970448": "OCB",
}

var bankBIN = regexp.MustCompile(`9704\d{2}`)

// New creates a classifier with the fixed rule priority: Wi-Fi credential
// block, HTTP(S) URL, VietQR EMV header.
func New() *Classifier {
	return &Classifier{
		rules: []rule{
			{match: wifiPrefix.MatchString, handle: classifyWifi},
			{match: urlPrefix.MatchString, handle: classifyURL},
			{match: emvPrefix.MatchString, handle: classifyVietQR},
		},
	}
}

// Classify determines the semantic kind of a scanned payload. Payloads
// matching no rule resolve to KindUnknown; that is the designed fallback,
// not an error.
func (c *Classifier) Classify(payload string) model.ClassificationResult {
	for _, r := range c.rules {
		if r.match(payload) {
			return r.handle(payload)
		}
	}

	return model.ClassificationResult{
		Kind:         model.KindUnknown,
		DisplayLabel: payload,
		IconKey:      "qr",
	}
}

// ExtractWifi pulls the credential fields out of a Wi-Fi payload.
// A missing password is an open network; the empty default is deliberate.
func ExtractWifi(payload string) model.WifiCredentials {
	creds := model.WifiCredentials{}
	if m := wifiSSID.FindStringSubmatch(payload); m != nil {
		creds.SSID = m[1]
	}
	if m := wifiPassword.FindStringSubmatch(payload); m != nil {
		creds.Password = m[1]
	}
	if m := wifiSecurity.FindStringSubmatch(payload); m != nil {
		creds.Security = m[1]
	}
	return creds
}

func classifyWifi(payload string) model.ClassificationResult {
	creds := ExtractWifi(payload)

	label := creds.SSID
	if label == "" {
		label = "Unknown"
	}

	return model.ClassificationResult{
		Kind:         model.KindWifi,
		DisplayLabel: label,
		IconKey:      "wifi",
	}
}

func classifyURL(payload string) model.ClassificationResult {
	display := strings.TrimPrefix(payload, "https://")
	display = strings.TrimPrefix(display, "http://")

	return model.ClassificationResult{
		Kind:         model.KindURL,
		DisplayLabel: display,
		IconKey:      "link",
	}
}

// classifyVietQR sub-classifies an EMV payload: known e-wallet provider
// markers first, then a member-bank BIN, then the generic card fallback.
func classifyVietQR(payload string) model.ClassificationResult {
	if strings.Contains(payload, "MOMO") {
		return model.ClassificationResult{
			Kind:         model.KindEwallet,
			DisplayLabel: "MoMo",
			IconKey:      "momo",
		}
	}

	if strings.Contains(payload, "zalopay") {
		return model.ClassificationResult{
			Kind:         model.KindEwallet,
			DisplayLabel: "ZaloPay",
			IconKey:      "zalopay",
		}
	}

	if bin := bankBIN.FindString(payload); bin != "" {
		if name, ok := bankNames[bin]; ok {
			return model.ClassificationResult{
				Kind:         model.KindBank,
				DisplayLabel: name,
				IconKey:      "bank",
			}
		}
	}

	return model.ClassificationResult{
		Kind:         model.KindCard,
		DisplayLabel: "Payment card",
		IconKey:      "card",
	}
}
