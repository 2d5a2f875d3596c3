package ledger

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// RegisterLocks serializes mutations per bank account. Running-balance
// recomputation touches a contiguous range of the register, so two writers
// on the same account must never interleave; writers on different accounts
// proceed in parallel. Locks are acquired in sorted ID order so paths that
// touch several accounts (multi-line postings) cannot deadlock each other.
type RegisterLocks struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewRegisterLocks() *RegisterLocks {
	return &RegisterLocks{}
}

func (r *RegisterLocks) get(id uuid.UUID) *sync.Mutex {
	if mu, ok := r.locks.Load(id); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Lock acquires the mutex for one bank account and returns its release func
func (r *RegisterLocks) Lock(id uuid.UUID) func() {
	mu := r.get(id)
	mu.Lock()
	return mu.Unlock
}

// LockAll acquires mutexes for a set of bank accounts in sorted order and
// returns a func releasing them in reverse order. Duplicates are collapsed.
func (r *RegisterLocks) LockAll(ids []uuid.UUID) func() {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})

	mus := make([]*sync.Mutex, len(unique))
	for i, id := range unique {
		mus[i] = r.get(id)
		mus[i].Lock()
	}
	return func() {
		for i := len(mus) - 1; i >= 0; i-- {
			mus[i].Unlock()
		}
	}
}
