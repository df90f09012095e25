// Package scanner owns the per-frame scan session state machine.
package scanner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ltanh/qrflow/internal/classify"
	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/model"
)

// State identifies where the session is in its scan cycle.
type State string

// Session states.
const (
	StateIdle        State = "idle"
	StateDecoding    State = "decoding"
	StateHighlighted State = "highlighted"
)

// Joiner triggers Wi-Fi association for scanned credentials.
type Joiner interface {
	Connecting() bool
	TryAutoJoin(ctx context.Context, creds model.WifiCredentials, quickScan bool) bool
}

// FocusFunc asks the camera to refocus at a point in the frame.
type FocusFunc func(x, y float64) error

// Snapshot is an immutable view of session state pushed to the UI
// consumer whenever it changes.
type Snapshot struct {
	State      State
	Payload    string
	Result     model.ClassificationResult
	Highlights []model.Highlight
}

// Config holds session tuning knobs.
type Config struct {
	// FrameStride bounds classification cost: only every Nth frame is
	// processed, the rest are dropped without any state update.
	FrameStride int
	// HighlightTTL bounds how long stale highlight rectangles stay on
	// screen after the last detection.
	HighlightTTL time.Duration
	// FocusInterval is the minimum spacing between accepted focus requests.
	FocusInterval time.Duration
	// QuickScan enables Wi-Fi auto-join on credential payloads.
	QuickScan bool
	// ShowIndicator gates the highlight overlay, not the classification.
	ShowIndicator bool
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		FrameStride:   4,
		HighlightTTL:  2 * time.Second,
		FocusInterval: 500 * time.Millisecond,
		QuickScan:     true,
		ShowIndicator: true,
	}
}

// Session processes camera frames into classification and highlight state.
// All state is owned by the session and mutated only through its own entry
// points; consumers observe it through the change callback.
type Session struct {
	classifier *classify.Classifier
	joiner     Joiner
	focus      FocusFunc
	throttle   *common.Throttle
	onChange   func(Snapshot)
	hlTimer    *time.Timer

	cfg        Config
	state      State
	payload    string
	result     model.ClassificationResult
	highlights []model.Highlight
	frameCount int
	closed     bool

	mu sync.Mutex
}

// NewSession creates a scan session. The joiner and focus function may be
// nil when the corresponding device capability is absent.
func NewSession(classifier *classify.Classifier, joiner Joiner, cfg Config) *Session {
	if cfg.FrameStride <= 0 {
		cfg.FrameStride = 4
	}
	if cfg.HighlightTTL <= 0 {
		cfg.HighlightTTL = 2 * time.Second
	}
	if cfg.FocusInterval <= 0 {
		cfg.FocusInterval = 500 * time.Millisecond
	}

	return &Session{
		classifier: classifier,
		joiner:     joiner,
		cfg:        cfg,
		state:      StateIdle,
		throttle:   common.NewThrottle(cfg.FocusInterval),
	}
}

// OnChange registers the push-only consumer of session state. The callback
// runs synchronously on the frame-handling goroutine.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// SetFocusFunc installs the camera focus collaborator.
func (s *Session) SetFocusFunc(fn FocusFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = fn
}

// HandleFrame processes one camera frame callback. Returns whether the
// frame was processed; skipped frames (stride drops and frames arriving
// while a join is in flight) mutate nothing.
func (s *Session) HandleFrame(ctx context.Context, frame model.Frame) bool {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return false
	}

	// A join attempt in flight suspends all frame handling.
	if s.joiner != nil && s.joiner.Connecting() {
		s.mu.Unlock()
		return false
	}

	sampled := s.frameCount%s.cfg.FrameStride == 0
	s.frameCount++
	if !sampled {
		s.mu.Unlock()
		return false
	}

	if frame.Empty() {
		s.clearTransientLocked()
		snap := s.snapshotLocked()
		notify := s.onChange
		s.mu.Unlock()
		if notify != nil {
			notify(snap)
		}
		return true
	}

	s.state = StateDecoding
	s.payload = frame.Payload
	s.result = s.classifier.Classify(frame.Payload)

	if s.cfg.ShowIndicator {
		s.highlights = append([]model.Highlight(nil), frame.Highlights...)
	} else {
		s.highlights = nil
	}
	s.state = StateHighlighted
	s.armHighlightTimerLocked()

	result := s.result
	snap := s.snapshotLocked()
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(snap)
	}

	if result.Kind == model.KindWifi && s.joiner != nil {
		creds := classify.ExtractWifi(frame.Payload)
		s.joiner.TryAutoJoin(ctx, creds, s.cfg.QuickScan)
	}

	return true
}

// RequestFocus forwards a tap-to-focus request through the rate limiter.
// Requests inside the throttle window are dropped, not queued. A canceled
// focus is an expected outcome and is not logged.
func (s *Session) RequestFocus(x, y float64) bool {
	s.mu.Lock()
	focus := s.focus
	s.mu.Unlock()

	if focus == nil {
		return false
	}

	return s.throttle.Do(func() {
		if err := focus(x, y); err != nil && !errors.Is(err, common.ErrFocusCanceled) {
			slog.Warn("Focus request failed", "error", err)
		}
	})
}

// ResetCodeState clears classification and highlight state immediately,
// independent of the highlight timer. Used when the session is dismissed.
// Idempotent.
func (s *Session) ResetCodeState() {
	s.mu.Lock()
	s.stopHighlightTimerLocked()
	s.state = StateIdle
	s.payload = ""
	s.result = model.ClassificationResult{}
	s.highlights = nil
	snap := s.snapshotLocked()
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close tears the session down: the focus throttle is canceled explicitly
// rather than relying on dropped references.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopHighlightTimerLocked()
	s.throttle.Cancel()
}

// clearTransientLocked handles an empty frame: highlights and the pending
// payload go away, the classification text stays until the next code.
func (s *Session) clearTransientLocked() {
	s.stopHighlightTimerLocked()
	s.state = StateIdle
	s.payload = ""
	s.highlights = nil
}

// armHighlightTimerLocked starts the display timeout for the current
// highlights; a new detection replaces the prior timer.
func (s *Session) armHighlightTimerLocked() {
	s.stopHighlightTimerLocked()
	s.hlTimer = time.AfterFunc(s.cfg.HighlightTTL, s.expireHighlights)
}

func (s *Session) stopHighlightTimerLocked() {
	if s.hlTimer != nil {
		s.hlTimer.Stop()
		s.hlTimer = nil
	}
}

// expireHighlights clears highlight state when the display timeout fires.
// Classification text is left alone.
func (s *Session) expireHighlights() {
	s.mu.Lock()
	if s.closed || s.state != StateHighlighted {
		s.mu.Unlock()
		return
	}
	s.hlTimer = nil
	s.highlights = nil
	s.state = StateIdle
	snap := s.snapshotLocked()
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:      s.state,
		Payload:    s.payload,
		Result:     s.result,
		Highlights: append([]model.Highlight(nil), s.highlights...),
	}
}
