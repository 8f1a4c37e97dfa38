// Package pkg provides the core libraries for navtree, a dashboard navigation
// hierarchy engine.
//
// # Overview
//
// navtree keeps a flat collection of dashboard entries, each at one of three
// fixed levels (Parent, Child, Grandchild), and presents it as a tree. Every
// user intent (rename, add, delete, favorite, drag and drop) is validated,
// applied to the local collection, broadcast to subscribers and persisted to a
// remote store in the background. The pkg directory is organized into four
// areas:
//
//  1. Domain: [dashboard], [validate], [hierarchy] and [hierarchy/move]
//  2. Service: [navigation] reconciles changes with the remote store
//  3. Storage: [store] and its backends, [remote] for the HTTP client
//  4. Support: [errors], [httputil], [observability], [io], [render], [buildinfo]
//
// # Architecture
//
// The typical data flow through navtree:
//
//	Store (file, sqlite, postgres, redis, mongo, HTTP)
//	         ↓
//	    [navigation] Load (orphans dropped)
//	         ↓
//	    [hierarchy] flat collection ⇄ tree
//	         ↓
//	    Change → [validate] / [hierarchy/move] → commit → subscribers
//	         ↓
//	    remote calls (rename report, scaffold, delete, replace)
//
// # Quick Start
//
// Load a collection and move one entry into another:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/navtree/pkg/dashboard"
//	    "github.com/matzehuels/navtree/pkg/navigation"
//	    "github.com/matzehuels/navtree/pkg/store"
//	)
//
//	backend, _ := store.Open(ctx, store.Config{Backend: "file", Dir: "./data"})
//	svc := navigation.New(backend)
//	defer svc.Close()
//
//	_ = svc.Load(ctx)
//	_ = svc.Drop(ctx, "ops", "sales", dashboard.Center)
//	_ = svc.Flush(ctx)
//
// # Main Packages
//
// ## Domain
//
//   - [dashboard]: Entry, Level, ChangeKind and Zone types
//   - [validate]: title and link rules, slug derivation
//   - [hierarchy]: flat/tree conversion, orphan detection, fuzzy search
//   - [hierarchy/move]: drop legality and tree relocation
//
// ## Service
//
//   - [navigation]: change reconciliation, settle delay, subscriptions
//
// ## Storage
//
//   - [store]: Backend interface, file and memory stores, [store.Open]
//   - [remote]: HTTP client for a navtree server, with snapshots and watch
//
// ## Support
//
//   - [errors]: coded errors shared by every layer and the HTTP API
//   - [httputil]: retry with backoff and the on-disk snapshot cache
//   - [observability]: change, store and HTTP hooks
//   - [io]: JSON and YAML import/export
//   - [render]: Graphviz DOT and SVG output
//   - [buildinfo]: version information
package pkg
