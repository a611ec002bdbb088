package ingestion_engine

import "sync"

// accountLocks serializes ingestion per account so a replace run cannot
// interleave with an incremental run and leave the collection half built.
type accountLocks struct {
	mu sync.Map // accountUniqueID -> *sync.Mutex
}

func (l *accountLocks) lock(accountUniqueID string) func() {
	v, _ := l.mu.LoadOrStore(accountUniqueID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
