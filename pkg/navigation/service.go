package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/hierarchy"
	"github.com/matzehuels/navtree/pkg/observability"
	"github.com/matzehuels/navtree/pkg/validate"
)

// DefaultSettleDelay is how long the remote store needs to provision the
// report of a newly added entry before the entry can be opened.
const DefaultSettleDelay = 1250 * time.Millisecond

// DefaultRequestTimeout bounds each dispatched remote call.
const DefaultRequestTimeout = 30 * time.Second

// Remote is the remote store the service persists to.
type Remote interface {
	// Dashboards returns the persisted flat collection.
	Dashboards(ctx context.Context) ([]dashboard.Entry, error)
	// ReplaceDashboards replaces the whole persisted collection.
	ReplaceDashboards(ctx context.Context, entries []dashboard.Entry) error
	// RenameReport moves the report stored under oldLink to newLink.
	RenameReport(ctx context.Context, oldLink, newLink string) error
	// DeleteReport removes the report stored under link.
	DeleteReport(ctx context.Context, link string) error
	// ScaffoldReport creates an empty report for link.
	ScaffoldReport(ctx context.Context, link string) error
}

// Navigator opens a route, such as "/report/sales", in the host UI.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(url string)

// Navigate implements [Navigator].
func (f NavigatorFunc) Navigate(url string) { f(url) }

// Option configures a [Service].
type Option func(*Service)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScheduler sets the scheduler used for the settle delay.
func WithScheduler(sc Scheduler) Option {
	return func(s *Service) {
		if sc != nil {
			s.scheduler = sc
		}
	}
}

// WithSettleDelay overrides [DefaultSettleDelay]. Zero broadcasts added
// entries on the next scheduler tick.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Service) { s.settleDelay = max(d, 0) }
}

// WithNavigator sets the navigator that receives redirects.
func WithNavigator(n Navigator) Option {
	return func(s *Service) {
		if n != nil {
			s.navigator = n
		}
	}
}

// WithDispatcher replaces the default [SerialDispatcher]. The service closes
// the dispatcher in [Service.Close].
func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithRequestTimeout bounds each remote call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) { s.requestTimeout = max(d, 0) }
}

// Service owns the canonical dashboard collection. It is safe for concurrent
// use; mutations are serialized.
type Service struct {
	remote         Remote
	logger         *log.Logger
	scheduler      Scheduler
	dispatcher     Dispatcher
	navigator      Navigator
	settleDelay    time.Duration
	requestTimeout time.Duration

	// applyMu serializes mutations and deferred callbacks.
	applyMu sync.Mutex

	mu       sync.RWMutex
	entries  []dashboard.Entry
	active   string
	closed   bool
	deferred map[int]Cancel
	nextID   int

	subs    subscribers
	pending tracker
}

// New creates a service persisting to remote. The collection starts empty;
// call [Service.Load] to fetch it.
func New(remote Remote, opts ...Option) *Service {
	s := &Service{
		remote:         remote,
		logger:         log.Default(),
		scheduler:      RealScheduler{},
		navigator:      NavigatorFunc(func(string) {}),
		settleDelay:    DefaultSettleDelay,
		requestTimeout: DefaultRequestTimeout,
		deferred:       make(map[int]Cancel),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dispatcher == nil {
		s.dispatcher = NewSerialDispatcher()
	}
	return s
}

// Load replaces the collection with the remote one. Entries that do not
// attach to the hierarchy are dropped and logged, and the favorite is
// restored if none survived or more than one was stored. The repaired
// collection reaches the remote with the next replace. Subscribers are
// notified.
func (s *Service) Load(ctx context.Context) error {
	entries, err := s.remote.Dashboards(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "failed to load dashboards")
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	clean := s.dropOrphans(entries)
	s.restoreFavorite(clean)
	s.mu.Lock()
	s.entries = clean
	s.mu.Unlock()

	s.logger.Debug("dashboards loaded", "entries", len(clean))
	s.broadcast(ctx)
	return nil
}

// Collection returns a copy of the flat collection.
func (s *Service) Collection() []dashboard.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dashboard.Clone(s.entries)
}

// Tree returns the nested projection of the collection.
func (s *Service) Tree() []*hierarchy.Node {
	return hierarchy.ToTree(s.Collection())
}

// Favorite returns the current favorite entry.
func (s *Service) Favorite() (dashboard.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dashboard.Favorite(s.entries)
}

// SetActive records the link of the entry currently open in the UI.
func (s *Service) SetActive(link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = link
}

// Active returns the link of the entry currently open in the UI.
func (s *Service) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// IsActive reports whether link is the entry currently open in the UI.
func (s *Service) IsActive(link string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return link != "" && s.active == link
}

// CheckTitle validates a title against the current collection.
func (s *Service) CheckTitle(title string) validate.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return validate.CheckTitle(title, s.entries)
}

// CheckLink validates a link against the current collection.
func (s *Service) CheckLink(link string) validate.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return validate.CheckLink(link, s.entries)
}

// Subscribe returns a channel receiving the flat collection after every
// committed change, and a function that ends the subscription. When the
// subscriber falls behind by more than buf updates, the oldest pending update
// is discarded.
func (s *Service) Subscribe(buf int) (<-chan []dashboard.Entry, func()) {
	return s.subs.add(buf)
}

// Flush waits until every deferred broadcast has fired and every dispatched
// remote call has completed.
func (s *Service) Flush(ctx context.Context) error {
	if err := s.pending.wait(ctx); err != nil {
		return err
	}
	return s.dispatcher.Wait(ctx)
}

// Close cancels deferred broadcasts that have not fired, drains the
// dispatcher and closes every subscription. Call [Service.Flush] first to
// let deferred work complete.
func (s *Service) Close() error {
	s.applyMu.Lock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.applyMu.Unlock()
		return nil
	}
	s.closed = true
	deferred := s.deferred
	s.deferred = nil
	s.mu.Unlock()
	s.applyMu.Unlock()

	for _, cancel := range deferred {
		if cancel() {
			s.pending.done()
		}
	}
	err := s.dispatcher.Close()
	s.subs.closeAll()
	return err
}

func (s *Service) dropOrphans(entries []dashboard.Entry) []dashboard.Entry {
	f := hierarchy.NewForest(entries)
	for _, o := range f.Orphans() {
		s.logger.Warn("dropping orphaned entry", "link", o.Link, "parent", o.Parent, "reason", o.Reason)
	}
	return f.Entries()
}

// restoreFavorite leaves exactly one favorite in a non-empty collection. The
// first favorite wins; without one the first entry is promoted.
func (s *Service) restoreFavorite(entries []dashboard.Entry) {
	if link, promoted := normalizeFavorite(entries); promoted {
		s.logger.Info("favorite promoted", "link", link)
	}
}

func normalizeFavorite(entries []dashboard.Entry) (string, bool) {
	found := false
	for i := range entries {
		if entries[i].IsMain {
			entries[i].IsMain = !found
			found = true
		}
	}
	if found || len(entries) == 0 {
		return "", false
	}
	entries[0].IsMain = true
	return entries[0].Link, true
}

func (s *Service) broadcast(ctx context.Context) {
	snapshot := s.Collection()
	n := s.subs.send(snapshot)
	observability.Change().OnBroadcast(ctx, n, len(snapshot))
}

// persist dispatches a remote call. Failures are logged and reported but
// otherwise ignored.
func (s *Service) persist(op, link string, call func(ctx context.Context) error) {
	s.dispatcher.Dispatch(func(ctx context.Context) {
		_ = s.call(ctx, op, link, call)
	})
}

func (s *Service) call(ctx context.Context, op, link string, call func(ctx context.Context) error) error {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	hooks := observability.Store()
	hooks.OnPersistStart(ctx, op, link)
	start := time.Now()
	err := call(ctx)
	hooks.OnPersistComplete(ctx, op, link, time.Since(start), err)

	if err != nil {
		s.logger.Warn("remote store update failed; local and remote state may differ until the next load",
			"op", op, "link", link, "err", err)
	}
	return err
}

func (s *Service) replace(entries []dashboard.Entry) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return s.remote.ReplaceDashboards(ctx, entries)
	}
}
