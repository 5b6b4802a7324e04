package locks

import "errors"

var (
	// ErrUnlockOfUnlocked 归还了未被持有的许可
	ErrUnlockOfUnlocked = errors.New("locks: release of unheld permits")

	// ErrNegativePermits 许可数为负
	ErrNegativePermits = errors.New("locks: negative permit count")
)
