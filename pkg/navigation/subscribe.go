package navigation

import (
	"sync"

	"github.com/matzehuels/navtree/pkg/dashboard"
)

type subscribers struct {
	mu     sync.Mutex
	next   int
	chans  map[int]chan []dashboard.Entry
	closed bool
}

func (s *subscribers) add(buf int) (<-chan []dashboard.Entry, func()) {
	ch := make(chan []dashboard.Entry, max(buf, 1))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	if s.chans == nil {
		s.chans = make(map[int]chan []dashboard.Entry)
	}
	id := s.next
	s.next++
	s.chans[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.chans[id]; ok {
				delete(s.chans, id)
				close(c)
			}
		})
	}
}

// send delivers entries to every subscriber without blocking. A full channel
// loses its oldest pending update. It returns the number of subscribers.
func (s *subscribers) send(entries []dashboard.Entry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.chans {
		for {
			select {
			case ch <- dashboard.Clone(entries):
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
	return len(s.chans)
}

func (s *subscribers) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.chans {
		delete(s.chans, id)
		close(ch)
	}
}
