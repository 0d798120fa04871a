package site

import "sync"

// accountLocks serializes mutating operations per account so the
// reserve-quota -> write-file -> commit-accounting sequence never races a
// concurrent mutation on the same account. Different accounts proceed
// independently; no global lock is held across accounts.
//
// Lock entries are never removed. The map grows by one mutex per account
// that has ever mutated in this process, which is small and bounded.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for username and returns its unlock func.
func (a *accountLocks) Lock(username string) func() {
	a.mu.Lock()
	l, ok := a.locks[username]
	if !ok {
		l = &sync.Mutex{}
		a.locks[username] = l
	}
	a.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Lock2 acquires the mutexes for two usernames in lexicographic order so
// concurrent renames cannot deadlock. Returns a func releasing both.
func (a *accountLocks) Lock2(u1, u2 string) func() {
	if u2 < u1 {
		u1, u2 = u2, u1
	}
	unlock1 := a.Lock(u1)
	if u1 == u2 {
		return unlock1
	}
	unlock2 := a.Lock(u2)
	return func() {
		unlock2()
		unlock1()
	}
}
