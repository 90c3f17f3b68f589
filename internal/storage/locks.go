package storage

import (
	"slices"
	"sync"
)

// lockSet hands out mutexes by key, creating them on demand and dropping
// them once nobody holds or waits on them.
type lockSet struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newLockSet() *lockSet {
	return &lockSet{locks: make(map[string]*keyLock)}
}

// lock acquires every key in sorted order and returns the release func.
// All callers sort, so two multi-key holders cannot deadlock.
func (s *lockSet) lock(keys ...string) func() {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*keyLock, 0, len(keys))
	for _, k := range keys {
		s.mu.Lock()
		l, ok := s.locks[k]
		if !ok {
			l = &keyLock{}
			s.locks[k] = l
		}
		l.refs++
		s.mu.Unlock()

		l.mu.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			s.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(s.locks, keys[i])
			}
			s.mu.Unlock()
		}
	}
}

// workspaceKey guards the set of folders of a workspace.
func workspaceKey(workspace string) string {
	return workspace + "\x00"
}

// folderKey guards the set of notes of one folder. Folders that differ only
// by case share a key.
func folderKey(workspace, folder string) string {
	return workspace + "\x00" + NameKey(folder)
}
