// Package remote is the HTTP client for a navtree remote store server.
//
// [Client] implements navigation.Remote over the server's JSON API:
//
//	GET    /dashboards         flat collection
//	PUT    /dashboards         replace the collection ({id, dashboards})
//	GET    /{link}             report document
//	PUT    /empty              scaffold an empty report ({link})
//	PUT    /{link}             rename a report ({link: newLink})
//	DELETE /{link}             move a report to the trash
//	GET    /dashboards/watch   websocket stream of collections
//
// Transient failures (network errors, 5xx and 429 responses) are retried
// with exponential backoff. Error responses are decoded into coded errors,
// so callers can test them with errors.Is(err, errors.ErrCodeNotFound).
//
// With [WithSnapshots], the last collection fetched is kept on disk and
// served by [Client.Dashboards] when the server cannot be reached.
package remote
