// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about applied changes, persistence calls, and HTTP traffic.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetChangeHooks(&myChangeHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnPersistStart(ctx, "replace", "")
//	// ... call the remote store ...
//	observability.Store().OnPersistComplete(ctx, "replace", "", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Change Hooks
// =============================================================================

// ChangeHooks receives events from the navigation service.
type ChangeHooks interface {
	// OnChangeApplied records a change committed to (or rejected by) the
	// in-memory collection.
	OnChangeApplied(ctx context.Context, kind, link string, duration time.Duration, err error)

	// OnBroadcast records a collection update pushed to subscribers.
	OnBroadcast(ctx context.Context, subscribers, entries int)

	// OnRedirect records a navigation triggered by a deletion.
	OnRedirect(ctx context.Context, url string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from calls to the remote store.
type StoreHooks interface {
	// OnPersistStart records the start of a remote store operation
	// ("replace", "rename", "delete", "scaffold").
	OnPersistStart(ctx context.Context, op, link string)

	// OnPersistComplete records the outcome of a remote store operation.
	OnPersistComplete(ctx context.Context, op, link string, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopChangeHooks is a no-op implementation of ChangeHooks.
type NoopChangeHooks struct{}

func (NoopChangeHooks) OnChangeApplied(context.Context, string, string, time.Duration, error) {}
func (NoopChangeHooks) OnBroadcast(context.Context, int, int)                                 {}
func (NoopChangeHooks) OnRedirect(context.Context, string)                                    {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnPersistStart(context.Context, string, string) {}
func (NoopStoreHooks) OnPersistComplete(context.Context, string, string, time.Duration, error) {
}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	changeHooks ChangeHooks = NoopChangeHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetChangeHooks registers custom change hooks.
// This should be called once at application startup before any service is created.
func SetChangeHooks(h ChangeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		changeHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any persistence calls.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Change returns the registered change hooks.
func Change() ChangeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return changeHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	changeHooks = NoopChangeHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
