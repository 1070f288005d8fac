//go:build !unix

package build

import (
	"context"
	"sync"
)

// Without flock the lock only serializes builds inside this process.
var processLock sync.Mutex

type fileLock struct {
	held bool
}

func acquireLock(_ context.Context, _ string) (*fileLock, error) {
	processLock.Lock()
	return &fileLock{held: true}, nil
}

// Release unlocks the in-process mutex. Subsequent calls are no-ops.
func (l *fileLock) Release() {
	if l == nil || !l.held {
		return
	}
	l.held = false
	processLock.Unlock()
}
