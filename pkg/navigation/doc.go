// Package navigation owns the canonical dashboard collection and reconciles
// user changes with the remote store.
//
// # Overview
//
// A [Service] holds the flat collection behind a mutex. Every mutation goes
// through [Service.Apply] with a [Change] record; read access goes through
// snapshots ([Service.Collection], [Service.Tree]) or through a subscription
// channel ([Service.Subscribe]) that receives the flat collection after every
// committed change.
//
//	svc := navigation.New(client, navigation.WithLogger(logger))
//	defer svc.Close()
//	if err := svc.Load(ctx); err != nil {
//	    return err
//	}
//	err := svc.Apply(ctx, navigation.Change{
//	    Kind:    dashboard.Added,
//	    Current: dashboard.Entry{Title: "Sales Q1"},
//	})
//
// # Change kinds
//
//   - Renamed: the title changes and the link is re-derived from it; children
//     follow the new link and the remote report is renamed first
//   - FavoriteSelected: exactly the named entry becomes the favorite
//   - Added: a new Parent-level entry is appended and its report scaffolded;
//     broadcast and persistence wait for [DefaultSettleDelay]
//   - Deleted: the entry and its descendants are removed, the favorite is
//     promoted if needed and the active view is redirected
//   - Rearranged: a whole tree replaces the collection after a drag and drop
//
// # Persistence
//
// Remote calls are dispatched fire-and-forget through a [Dispatcher]. The
// default [SerialDispatcher] runs them one at a time in submission order, so a
// report deletion always completes before the collection replacement that
// follows it. Failures are logged and reported to the observability hooks;
// the service neither retries nor rolls back, so local and remote state may
// diverge until the next [Service.Load].
//
// # Time
//
// The settle delay for added entries is scheduled through a [Scheduler].
// Tests use [ManualScheduler] and advance time explicitly.
package navigation
