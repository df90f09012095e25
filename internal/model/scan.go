package model

// CodeKind is the semantic kind assigned to a scanned payload.
type CodeKind string

// Code kind constants.
const (
	KindWifi    CodeKind = "wifi"
	KindURL     CodeKind = "url"
	KindBank    CodeKind = "bank"
	KindEwallet CodeKind = "ewallet"
	KindCard    CodeKind = "card"
	KindUnknown CodeKind = "unknown"
)

// ClassificationResult is derived purely from a scanned payload and is
// recomputed on every scan; it carries no state of its own.
type ClassificationResult struct {
	Kind         CodeKind
	DisplayLabel string
	IconKey      string
}

// WifiCredentials are the fields extracted from a Wi-Fi credential payload.
type WifiCredentials struct {
	SSID     string
	Password string
	Security string
}

// IsWEP reports whether the credential block requests WEP association.
func (w WifiCredentials) IsWEP() bool {
	return w.Security == "WEP"
}

// Highlight is a transient bounding box for the UI overlay. Its lifetime is
// bounded by the session highlight timeout or the next processed frame.
type Highlight struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Frame is one camera callback: the decoded payload, if any code was in
// view, plus the bounding boxes of the detected codes.
type Frame struct {
	Payload    string
	Highlights []Highlight
}

// Empty reports whether no code was in view for this frame.
func (f Frame) Empty() bool {
	return f.Payload == "" && len(f.Highlights) == 0
}
