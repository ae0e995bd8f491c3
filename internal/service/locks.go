package service

import (
	"strconv"
	"sync"
)

// AccountLocks serializes mutating operations per account without a
// global lock. Keys are never evicted; the set of accounts is small and
// grows only on first access.
type AccountLocks struct {
	locks sync.Map
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{}
}

// Lock acquires the mutex for key and returns its release func.
func (l *AccountLocks) Lock(key string) func() {
	v, _ := l.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func accountLockKey(accountID uint) string {
	return "account:" + strconv.FormatUint(uint64(accountID), 10)
}

func identityLockKey(identityKey string) string {
	return "identity:" + identityKey
}
