// Package store provides the remote store backends that persist the
// dashboard collection and the per-dashboard reports.
//
// Every backend implements [Backend], which is the [navigation.Remote]
// collaborator plus report retrieval. Reports are opaque JSON documents keyed
// by link. Deleting a report moves it to a trash namespace instead of
// discarding it; renaming moves the document and rewrites its "link" field.
//
// # Backends
//
//   - [Memory]: in-process, for tests and throwaway servers
//   - [File]: JSON files under a directory, with [File.Watch] for external edits
//   - sqlitestore: a single SQLite database (pure Go driver)
//   - pgstore: PostgreSQL via lib/pq
//   - redisstore: Redis keys under a configurable prefix
//   - mongostore: MongoDB collections
//
// [Open] selects a backend from a [Config]:
//
//	b, err := store.Open(ctx, store.Config{Backend: "file", Dir: "./data"})
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
// Missing reports are reported with a NOT_FOUND coded error wrapping
// [ErrNotFound]; conflicting ones with ALREADY_EXISTS wrapping [ErrExists].
// The conformance suite in package storetest checks all of this for any
// backend.
package store
