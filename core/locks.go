package core

import "sync"

// personLocks serializes all token and presence mutation for one employee.
// Swipes for different employees touch disjoint rows and proceed in parallel.
type personLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newPersonLocks() *personLocks {
	return &personLocks{locks: make(map[uint]*sync.Mutex)}
}

// lock blocks until the employee's mutex is held and returns the unlock func.
func (pl *personLocks) lock(employeeID uint) func() {
	pl.mu.Lock()
	m, ok := pl.locks[employeeID]
	if !ok {
		m = &sync.Mutex{}
		pl.locks[employeeID] = m
	}
	pl.mu.Unlock()

	m.Lock()
	return m.Unlock
}
