//go:build !windows

package watcher

import (
	"errors"
	"syscall"
)

// isFatalSourceError reports inotify resource exhaustion, after which no
// further events can be delivered:
//   - ENOSPC: fs.inotify.max_user_watches exceeded
//   - EMFILE: per-process descriptor limit
//   - ENFILE: system-wide descriptor limit
func isFatalSourceError(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}
