package store

import (
	"slices"
	"sync"

	"github.com/adanyl0v/go-todo-sync/internal/models"
)

// Snapshot is an immutable view of the store state. Version grows by
// one on every state change.
type Snapshot struct {
	Tasks   []models.Task
	Loading bool
	Error   string
	Version uint64
}

// Subscribe returns a channel receiving the current snapshot right
// away and then a snapshot after every state change. A slow reader
// only misses intermediate snapshots: the channel always holds the
// latest one. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			close(ch)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Tasks:   slices.Clone(s.tasks),
		Loading: s.inFlight > 0,
		Error:   s.errMsg,
		Version: s.version,
	}
}

// notifyLocked must be called with s.mu held for writing, which makes
// it the only sender on every subscriber channel.
func (s *Store) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	for ch := range s.subs {
		snap := s.snapshotLocked()
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
