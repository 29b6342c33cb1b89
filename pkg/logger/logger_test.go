package logger

import (
	"context"
	"fmt"
	"testing"

	"maxwell/pkg/errors"
)

type recordingTracker struct {
	captured []error
}

func (r *recordingTracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	r.captured = append(r.captured, err)
	return nil
}

func (r *recordingTracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	return nil
}

func (r *recordingTracker) SetUser(ctx context.Context, userID, email, username string) {}

func (r *recordingTracker) AddBreadcrumb(ctx context.Context, message, category string, level errors.Level, data map[string]interface{}) {
}

func (r *recordingTracker) Flush(ctx context.Context) error { return nil }

func TestGet_FallbackWithoutInit(t *testing.T) {
	globalLogger = nil
	if Get() == nil {
		t.Fatal("Get must build a fallback logger")
	}
}

func TestErrorForwardsToTracker(t *testing.T) {
	globalLogger = nil
	tracker := &recordingTracker{}
	log := Get()
	SetErrorTracker(tracker)

	log.Errorf("turn %s failed", "sess-1")
	if len(tracker.captured) != 1 {
		t.Fatalf("tracker captured %d errors, want 1", len(tracker.captured))
	}
	if tracker.captured[0].Error() != "turn sess-1 failed" {
		t.Errorf("captured = %q", tracker.captured[0])
	}
}

func TestErrorWithContext(t *testing.T) {
	globalLogger = nil
	tracker := &recordingTracker{}
	log := Get()
	SetErrorTracker(tracker)

	wrapped := errors.Wrap(fmt.Errorf("boom"), "pipeline")
	log.ErrorWithContext(context.Background(), wrapped, map[string]string{"session_id": "sess-1"})
	if len(tracker.captured) != 1 || tracker.captured[0] != wrapped {
		t.Errorf("tracker should receive the wrapped error, got %v", tracker.captured)
	}
}

func TestWithCarriesTracker(t *testing.T) {
	globalLogger = nil
	tracker := &recordingTracker{}
	Get()
	SetErrorTracker(tracker)

	child := Get().With("component", "test")
	child.Error("child failure")
	if len(tracker.captured) != 1 {
		t.Errorf("child logger must keep the tracker, captured %d", len(tracker.captured))
	}
}
