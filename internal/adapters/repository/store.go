package repository

import (
	"sync/atomic"
	"time"

	"github.com/okian/workpulse/pkg/metrics"
)

// Store provides read access to the current snapshot and atomic
// replacement on refresh.
type Store interface {
	// Current returns the snapshot in effect, or nil before the first swap.
	Current() *Snapshot

	// Swap installs a new snapshot atomically and returns the previous one.
	Swap(s *Snapshot) *Snapshot
}

// AtomicStore implements Store with an atomic pointer.
type AtomicStore struct {
	current atomic.Pointer[Snapshot]
}

// NewAtomicStore creates an empty store.
func NewAtomicStore() *AtomicStore {
	return &AtomicStore{}
}

// Current returns the snapshot in effect.
func (s *AtomicStore) Current() *Snapshot {
	return s.current.Load()
}

// Swap installs a new snapshot and records refresh metrics.
func (s *AtomicStore) Swap(next *Snapshot) *Snapshot {
	prev := s.current.Swap(next)
	if next != nil {
		metrics.IncrementSnapshotCount()
		metrics.UpdateSnapshotLastUnix(float64(time.Now().Unix()))
		metrics.UpdateSnapshotRecords(len(next.Records))
		metrics.UpdateSnapshotEmployees(len(next.Resolver.Identities()))
		metrics.UpdateUnresolvedRatio(next.Audit.UnresolvedRatio())
	}
	return prev
}
