// Package lock provides the short broadcast leases used to skip redundant work.
package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker holds leases in process memory. Expired leases can be taken over.
type LocalLocker struct {
	mu     sync.Mutex
	ttl    time.Duration
	seq    uint64
	leases map[string]localLease
	now    func() time.Time
}

type localLease struct {
	token   uint64
	expires time.Time
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker(ttl time.Duration) *LocalLocker {
	return &LocalLocker{
		ttl:    ttl,
		leases: make(map[string]localLease),
		now:    time.Now,
	}
}

// TryAcquire takes the lease on key unless another live holder has it.
func (l *LocalLocker) TryAcquire(_ context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.leases[key]; ok && now.Before(held.expires) {
		return nil, false, nil
	}

	l.seq++
	token := l.seq
	l.leases[key] = localLease{token: token, expires: now.Add(l.ttl)}

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		// A lease taken over after expiry belongs to the new holder.
		if held, ok := l.leases[key]; ok && held.token == token {
			delete(l.leases, key)
		}
	}

	return release, true, nil
}
