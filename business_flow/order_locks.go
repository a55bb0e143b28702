package businessflow

import "sync"

// Per-order locks serialize recalculation so two concurrent item mutations
// cannot interleave their read-price-write cycles on the same order.
var (
	orderLocksMutex sync.Mutex
	orderLocks      = make(map[string]*sync.Mutex)
)

func lockOrder(orderUUID string) {
	orderLocksMutex.Lock()
	mu, ok := orderLocks[orderUUID]
	if !ok {
		mu = &sync.Mutex{}
		orderLocks[orderUUID] = mu
	}
	orderLocksMutex.Unlock()
	mu.Lock()
}

func unlockOrder(orderUUID string) {
	orderLocksMutex.Lock()
	mu, ok := orderLocks[orderUUID]
	orderLocksMutex.Unlock()
	if ok {
		mu.Unlock()
	}
}
