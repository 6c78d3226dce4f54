package shop

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// slugLocks queues writers of the same shop inside this process. The
// version check in the store still decides between processes.
type slugLocks struct {
	mu    sync.Mutex
	locks map[string]*slugLock
}

type slugLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newSlugLocks() *slugLocks {
	return &slugLocks{locks: make(map[string]*slugLock)}
}

// acquire blocks until slug is free or ctx ends. The returned func
// releases it.
func (l *slugLocks) acquire(ctx context.Context, slug string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[slug]
	if !ok {
		lk = &slugLock{sem: semaphore.NewWeighted(1)}
		l.locks[slug] = lk
	}
	lk.refs++
	l.mu.Unlock()

	if err := lk.sem.Acquire(ctx, 1); err != nil {
		l.drop(slug, lk)
		return nil, err
	}

	return func() {
		lk.sem.Release(1)
		l.drop(slug, lk)
	}, nil
}

func (l *slugLocks) drop(slug string, lk *slugLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, slug)
	}
}

func (l *slugLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
