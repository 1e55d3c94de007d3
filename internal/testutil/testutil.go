// Package testutil holds helpers shared by tasklane tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestTimeout is the default timeout for tests
const TestTimeout = 5 * time.Second

// WithTimeout creates a context with the default test timeout
func WithTimeout(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), TestTimeout)
}

// Eventually polls condition every interval until it returns true, failing
// the test if timeout elapses first.
func Eventually(t *testing.T, condition func() bool, timeout, interval time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if !poll(ctx, condition, interval) {
		t.Fatalf("condition not met within %v", timeout)
	}
}

// AssertEventually polls condition with the default timeout.
func AssertEventually(t *testing.T, condition func() bool) {
	t.Helper()
	Eventually(t, condition, TestTimeout, 10*time.Millisecond)
}

func poll(ctx context.Context, condition func() bool, interval time.Duration) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if condition() {
			return true
		}
		select {
		case <-ctx.Done():
			return condition()
		case <-ticker.C:
		}
	}
}

// WaitForCount waits until load returns at least want.
func WaitForCount(t *testing.T, load func() uint64, want uint64, timeout time.Duration) {
	t.Helper()
	Eventually(t, func() bool { return load() >= want }, timeout, 5*time.Millisecond)
}

// WaitClosed fails the test unless ch closes within timeout.
func WaitClosed(t *testing.T, ch <-chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("channel not closed within %v", timeout)
	}
}

// CallbackTracker records calls made from any goroutine.
type CallbackTracker struct {
	mu    sync.Mutex
	calls int
	value any
}

// NewCallbackTracker creates an empty tracker.
func NewCallbackTracker() *CallbackTracker {
	return &CallbackTracker{}
}

// Mark records a call, keeping the first of values if given.
func (c *CallbackTracker) Mark(values ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if len(values) > 0 {
		c.value = values[0]
	}
}

// Called reports whether Mark has been called.
func (c *CallbackTracker) Called() bool {
	return c.CallCount() > 0
}

// CallCount returns the number of calls.
func (c *CallbackTracker) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Value returns the most recently recorded value.
func (c *CallbackTracker) Value() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// AssertNotCalled fails the test if the tracker was called.
func (c *CallbackTracker) AssertNotCalled(t *testing.T) {
	t.Helper()
	if n := c.CallCount(); n != 0 {
		t.Fatalf("expected no calls, got %d", n)
	}
}

// AssertCallCount fails the test unless the tracker was called want times.
func (c *CallbackTracker) AssertCallCount(t *testing.T, want int) {
	t.Helper()
	if n := c.CallCount(); n != want {
		t.Fatalf("call count = %d, want %d", n, want)
	}
}
