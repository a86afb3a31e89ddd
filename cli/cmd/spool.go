package cmd

import (
	"github.com/mhetreayush/xray-sdk/internal/spool"
)

const defaultMaxDiskSize int64 = 500 * 1024 * 1024

// openSpool opens dir as a read/write DiskSpool with a generous default
// quota. xray-inspect never writes, but DiskSpool's constructor doubles as
// its own recovery scan, which is exactly the listing xray-inspect wants.
func openSpool(dir string) (spool.StorageAdapter, error) {
	return spool.NewDiskSpool(dir, defaultMaxDiskSize, nil, nil)
}
