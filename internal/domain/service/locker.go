package service

import "context"

// Locker hands out short leases used to skip redundant concurrent work.
// Correctness never depends on a lease being held.
type Locker interface {
	// TryAcquire returns a release func when the lease was obtained, or ok=false
	// when another holder has it.
	TryAcquire(ctx context.Context, key string) (release func(), ok bool, err error)
}
