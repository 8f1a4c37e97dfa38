// Package io provides JSON and YAML import and export for flat dashboard
// collections.
//
// # Overview
//
// A collection is stored flat, in the same shape the remote store persists
// it. The nesting is implied by each entry's level and parent link:
//
//	[
//	  {"link": "ops", "title": "Ops", "isMain": true, "level": "Parent"},
//	  {"link": "costs", "title": "Costs", "isMain": false, "level": "Child", "parent": "ops"}
//	]
//
// The same collection in YAML:
//
//	- link: ops
//	  title: Ops
//	  isMain: true
//	  level: Parent
//	- link: costs
//	  title: Costs
//	  isMain: false
//	  level: Child
//	  parent: ops
//
// # Import
//
// [ReadJSON] and [ReadYAML] accept either a bare list or a document with a
// "dashboards" key (and an optional "id"), which is the body the remote store
// accepts on PUT /dashboards. [ImportFile] picks the decoder from the file
// extension (.json, .yaml, .yml).
//
// Decoding does not check the hierarchy. Call [Validate] to reject
// collections with orphaned entries, duplicate links, invalid titles or a
// wrong number of favorites.
//
// # Export
//
// [WriteJSON] and [WriteYAML] write a bare list; [ExportFile] picks the
// encoder from the file extension. The transient "moved" marker is never
// written.
package io
