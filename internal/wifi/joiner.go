// Package wifi adapts scanned Wi-Fi credentials to the platform
// association call.
package wifi

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ltanh/qrflow/internal/model"
	"github.com/ltanh/qrflow/internal/service"
)

// AutoJoiner fires asynchronous join requests for scanned Wi-Fi
// credentials. Join failure is logged, never surfaced to the scan loop.
type AutoJoiner struct {
	associator service.Associator
	connecting atomic.Bool
	wg         sync.WaitGroup
}

// NewAutoJoiner creates an auto-joiner over the platform associator.
func NewAutoJoiner(associator service.Associator) *AutoJoiner {
	return &AutoJoiner{associator: associator}
}

// Connecting reports whether a join attempt is in flight.
func (j *AutoJoiner) Connecting() bool {
	return j.connecting.Load()
}

// TryAutoJoin issues an association request for the credentials when
// quick-scan is enabled. The connecting flag is set before the request and
// cleared on both outcomes, so callers never observe a stuck busy state.
// Returns whether a join was started.
func (j *AutoJoiner) TryAutoJoin(ctx context.Context, creds model.WifiCredentials, quickScan bool) bool {
	if !quickScan {
		return false
	}
	if creds.SSID == "" {
		slog.Debug("Skipping auto-join, payload carried no SSID")
		return false
	}
	if !j.connecting.CompareAndSwap(false, true) {
		return false
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer j.connecting.Store(false)

		if err := j.associator.Associate(ctx, creds.SSID, creds.Password, creds.IsWEP()); err != nil {
			slog.Warn("Wi-Fi join failed",
				"ssid", creds.SSID,
				"error", err)
			return
		}

		slog.Info("Wi-Fi join succeeded", "ssid", creds.SSID)
	}()

	return true
}

// Wait blocks until any in-flight join attempt has finished.
func (j *AutoJoiner) Wait() {
	j.wg.Wait()
}
