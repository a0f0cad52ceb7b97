package sections

import "sync"

// sectionLocks serializes mutations per section so concurrent resolves and
// renders on the same section never interleave. Different sections proceed
// independently.
type sectionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSectionLocks() *sectionLocks {
	return &sectionLocks{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for a section ID and returns its unlock func.
func (l *sectionLocks) Lock(sectionID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[sectionID]
	if !ok {
		entry = &lockEntry{}
		l.locks[sectionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sectionID)
		}
		l.mu.Unlock()
	}
}
