//go:build !linux && !darwin

package cleaner

import (
	"os"
	"time"
)

// accessTime falls back to the modification time where atime is not exposed
func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
