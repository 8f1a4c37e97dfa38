package navigation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/hierarchy"
	"github.com/matzehuels/navtree/pkg/hierarchy/move"
	"github.com/matzehuels/navtree/pkg/observability"
	"github.com/matzehuels/navtree/pkg/validate"
)

// Change is a user intent applied through [Service.Apply].
//
// Which fields matter depends on Kind:
//
//	Renamed           Previous.Link identifies the entry, Current.Title is the new title
//	FavoriteSelected  Current.Link
//	Added             Current (Link defaults to the slug of Current.Title)
//	Deleted           Current.Link
//	Rearranged        Tree, or Entries when no tree is given
type Change struct {
	// ID correlates log lines and hook events. Apply assigns one when empty.
	ID       string
	Kind     dashboard.ChangeKind
	Previous *dashboard.Entry
	Current  dashboard.Entry
	Tree     []*hierarchy.Node
	Entries  []dashboard.Entry
}

func (c Change) link() string {
	if c.Current.Link == "" && c.Previous != nil {
		return c.Previous.Link
	}
	return c.Current.Link
}

// Apply validates and commits a change, notifies subscribers and dispatches
// the remote calls it implies. Rejected changes return a coded error and
// leave the collection untouched.
func (s *Service) Apply(ctx context.Context, c Change) error {
	return s.do(ctx, &c, func() error { return s.apply(ctx, &c) })
}

// Drop moves the entry dragged next to or into the entry target and commits
// the result as a Rearranged change. Illegal drops return an INVALID_DROP
// error and leave the collection untouched.
func (s *Service) Drop(ctx context.Context, dragged, target string, zone dashboard.Zone) error {
	c := Change{Kind: dashboard.Rearranged}
	return s.do(ctx, &c, func() error {
		tree := hierarchy.ToTree(s.entries)
		from, to := hierarchy.Find(tree, dragged), hierarchy.Find(tree, target)
		if from == nil {
			return errors.New(errors.ErrCodeNotFound, "no dashboard with link %q", dragged)
		}
		if to == nil {
			return errors.New(errors.ErrCodeNotFound, "no dashboard with link %q", target)
		}
		if err := move.Check(to, from, zone); err != nil {
			return err
		}

		next := move.Relocate(tree, from, to, zone)
		if len(next) > 0 && &next[0] == &tree[0] {
			return errors.New(errors.ErrCodeInvalidDrop, "cannot move %q %s %q", dragged, zone, target)
		}
		c.Previous = &from.Entry
		if moved := hierarchy.Find(next, dragged); moved != nil {
			c.Current = moved.Entry
		}
		c.Tree = next
		return s.rearrange(ctx, c)
	})
}

func (s *Service) do(ctx context.Context, c *Change, fn func() error) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	start := time.Now()

	s.applyMu.Lock()
	err := s.checkOpen()
	if err == nil {
		err = fn()
	}
	s.applyMu.Unlock()

	observability.Change().OnChangeApplied(ctx, c.Kind.String(), c.link(), time.Since(start), err)
	if err != nil {
		s.logger.Debug("change rejected", "id", c.ID, "kind", c.Kind, "link", c.link(), "err", err)
		return err
	}
	s.logger.Debug("change applied", "id", c.ID, "kind", c.Kind, "link", c.link())
	return nil
}

func (s *Service) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New(errors.ErrCodeInternal, "navigation service is closed")
	}
	return nil
}

func (s *Service) apply(ctx context.Context, c *Change) error {
	switch c.Kind {
	case dashboard.Renamed:
		return s.rename(ctx, *c)
	case dashboard.FavoriteSelected:
		return s.selectFavorite(ctx, *c)
	case dashboard.Added:
		return s.add(ctx, *c)
	case dashboard.Deleted:
		return s.delete(ctx, *c)
	case dashboard.Rearranged:
		return s.rearrange(ctx, *c)
	}
	return errors.New(errors.ErrCodeInvalidChange, "unknown change kind %s", c.Kind)
}

// commit publishes next as the canonical collection. Callers hold applyMu,
// which makes s.entries safe to read without s.mu.
func (s *Service) commit(next []dashboard.Entry) {
	s.mu.Lock()
	s.entries = next
	s.mu.Unlock()
}

func (s *Service) lookup(link string) (int, error) {
	i := dashboard.Index(s.entries, link)
	if i < 0 {
		return -1, errors.New(errors.ErrCodeNotFound, "no dashboard with link %q", link)
	}
	return i, nil
}

func (s *Service) rename(ctx context.Context, c Change) error {
	if c.Previous == nil {
		return errors.New(errors.ErrCodeInvalidChange, "rename requires the previous entry")
	}
	oldLink := c.Previous.Link
	i, err := s.lookup(oldLink)
	if err != nil {
		return err
	}

	title := c.Current.Title
	others := validate.Without(s.entries, oldLink)
	if err := validate.CheckTitle(title, others).Err(); err != nil {
		return err
	}
	newLink := validate.Slug(title)
	if newLink != oldLink {
		if err := validate.CheckLink(newLink, others).Err(); err != nil {
			return err
		}
	}

	next := dashboard.Clone(s.entries)
	next[i].Title = title
	next[i].Link = newLink
	for j := range next {
		if next[j].Parent == oldLink {
			next[j].Parent = newLink
		}
	}
	s.commit(next)

	s.mu.Lock()
	if s.active == oldLink {
		s.active = newLink
	}
	s.mu.Unlock()

	s.broadcast(ctx)
	if newLink != oldLink {
		s.persist("rename", oldLink, func(ctx context.Context) error {
			return s.remote.RenameReport(ctx, oldLink, newLink)
		})
	}
	s.persist("replace", "", s.replace(dashboard.Clone(next)))
	return nil
}

func (s *Service) selectFavorite(ctx context.Context, c Change) error {
	if _, err := s.lookup(c.Current.Link); err != nil {
		return err
	}
	next := dashboard.Clone(s.entries)
	for i := range next {
		next[i].IsMain = next[i].Link == c.Current.Link
	}
	s.commit(next)

	s.broadcast(ctx)
	s.persist("replace", "", s.replace(dashboard.Clone(next)))
	return nil
}

func (s *Service) add(ctx context.Context, c Change) error {
	e := c.Current.Flat()
	e.Level = dashboard.Parent
	e.Parent = ""
	if e.Link == "" {
		e.Link = validate.Slug(e.Title)
	}
	if err := validate.CheckTitle(e.Title, s.entries).Err(); err != nil {
		return err
	}
	if err := validate.CheckLink(e.Link, s.entries).Err(); err != nil {
		return err
	}

	next := dashboard.Clone(s.entries)
	if e.IsMain || len(next) == 0 {
		e.IsMain = true
		for i := range next {
			next[i].IsMain = false
		}
	}
	next = append(next, e)
	s.commit(next)

	link := e.Link
	s.persist("scaffold", link, func(ctx context.Context) error {
		return s.remote.ScaffoldReport(ctx, link)
	})
	s.settle()
	return nil
}

// settle schedules the deferred broadcast of an added entry. The callback
// publishes whatever the collection holds when it fires.
func (s *Service) settle() {
	s.pending.add()

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.deferred[id] = s.scheduler.AfterFunc(s.settleDelay, func() { s.settled(id) })
}

func (s *Service) settled(id int) {
	defer s.pending.done()

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	closed := s.closed
	delete(s.deferred, id)
	s.mu.Unlock()
	if closed {
		return
	}

	ctx := context.Background()
	s.broadcast(ctx)
	s.persist("replace", "", s.replace(s.Collection()))
}

func (s *Service) delete(ctx context.Context, c Change) error {
	link := c.Current.Link
	if _, err := s.lookup(link); err != nil {
		return err
	}

	removed := append([]string{link}, hierarchy.NewForest(s.entries).Descendants(link)...)
	gone := make(map[string]bool, len(removed))
	for _, l := range removed {
		gone[l] = true
	}

	next := make([]dashboard.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !gone[e.Link] {
			next = append(next, e.Flat())
		}
	}
	s.restoreFavorite(next)
	s.commit(next)

	s.mu.Lock()
	redirect := ""
	if gone[s.active] {
		s.active = ""
		if fav, ok := dashboard.Favorite(next); ok {
			s.active = fav.Link
			redirect = fav.ReportPath()
		}
	}
	s.mu.Unlock()

	if redirect != "" {
		s.logger.Info("active dashboard deleted; redirecting", "url", redirect)
		observability.Change().OnRedirect(ctx, redirect)
		s.navigator.Navigate(redirect)
	}
	s.broadcast(ctx)

	snapshot := dashboard.Clone(next)
	s.dispatcher.Dispatch(func(ctx context.Context) {
		for _, l := range removed {
			err := s.call(ctx, "delete", l, func(ctx context.Context) error {
				if err := s.remote.DeleteReport(ctx, l); err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
					return err
				}
				return nil
			})
			if err != nil {
				return
			}
		}
		_ = s.call(ctx, "replace", "", s.replace(snapshot))
	})
	return nil
}

func (s *Service) rearrange(ctx context.Context, c Change) error {
	var flat []dashboard.Entry
	switch {
	case c.Tree != nil:
		flat = hierarchy.ToFlat(c.Tree)
	case c.Entries != nil:
		flat = dashboard.Clone(c.Entries)
	default:
		return errors.New(errors.ErrCodeInvalidChange, "rearrange requires a tree or a flat collection")
	}

	next := s.dropOrphans(flat)
	s.restoreFavorite(next)
	s.commit(next)

	s.broadcast(ctx)
	s.persist("replace", "", s.replace(dashboard.Clone(next)))
	return nil
}
