// Package httputil provides HTTP plumbing for clients of the remote store.
//
// # Overview
//
// This package provides infrastructure used by the remote store client:
//
//   - [Retry]: Automatic retry with exponential backoff
//   - [RetryableStatus]: Which store responses are worth repeating
//   - [CheckStatus]: Mapping of HTTP status codes to coded errors
//   - [Cache]: File-based snapshots of the last good responses
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError],
// and hands back the coded error underneath once it gives up.
// [TransportError] and [CheckStatus] decide what is transient:
//
//   - Network errors, unless the context ended
//   - Statuses accepted by [RetryableStatus]: 408, 429, and 5xx except 501
//
// Usage:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.TransportError(ctx, err, "GET /dashboards")
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
//
// # Snapshots
//
// [Cache] stores JSON values in the filesystem (~/.cache/navtree/) with a
// configurable TTL. The remote client keeps the last collection it fetched
// there, so read-only commands keep working while the store is unreachable.
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	snap := cache.Namespace("http://localhost:8080:")
//	snap.Set("dashboards", entries)
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/navtree/
//   - Max retries: 3
//   - Base backoff: 1 second
package httputil
