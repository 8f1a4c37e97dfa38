// Package server exposes a store.Backend as the navtree remote store API.
//
// Routes:
//
//	GET    /healthz            build info and backend name
//	GET    /dashboards         flat collection
//	PUT    /dashboards         replace the collection
//	GET    /dashboards/watch   websocket stream of collections
//	PUT    /empty              scaffold an empty report
//	GET    /{link}             report document
//	PUT    /{link}             rename a report
//	DELETE /{link}             move a report to the trash
//
// Static routes win over /{link}: reports whose link is "dashboards", "empty"
// or "healthz" cannot be read or renamed through this API.
//
// PUT /dashboards bodies are checked against a JSON Schema and then against
// the hierarchy rules: titles and links must be valid and unique, every entry
// must attach to the tree and exactly one entry must be the favorite.
// Structural failures answer 422.
//
// Errors are written as {"code": ..., "message": ...} using the codes of
// package errors, which the remote client maps back to coded errors.
//
// Every accepted collection is published to a [Hub], which fans it out to
// websocket subscribers. With the file backend, edits made to dashboards.json
// by other processes are published too.
package server
