package xray

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// detectTempDir prefers the OS temp dir + "/xray", but steers away from a
// memory-backed temp mount (tmpfs) when system RAM is scarce, since
// spooling to tmpfs under memory pressure defeats the point of a disk
// spool. Detection is advisory — any failure falls back to the OS temp dir.
func detectTempDir() string {
	base := os.TempDir()
	candidate := filepath.Join(base, "xray")

	if isMemoryBackedTemp(base) && systemAvailableMemoryBytes() < 512*1024*1024 {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, ".xray", "spool")
		}
	}

	return candidate
}

// isMemoryBackedTemp reports whether path looks like a tmpfs mount. This is
// advisory heuristics only, not an authoritative mount-table check: a false
// answer just means the advisory steering above doesn't apply.
func isMemoryBackedTemp(path string) bool {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		return false
	}
	return path == "/tmp" || path == "/var/folders"
}

// systemAvailableMemoryBytes returns a best-effort estimate of available
// system RAM. When it cannot be determined, it returns a value large enough
// that the tmpfs steering above never triggers — failure to detect falls
// back to the OS temp directory.
func systemAvailableMemoryBytes() uint64 {
	kb, err := readMemAvailableKB("/proc/meminfo")
	if err != nil {
		return 1 << 40
	}
	return kb * 1024
}

// readMemAvailableKB parses the MemAvailable line out of /proc/meminfo.
// Returns an error on any platform without that file (non-Linux), which the
// caller treats as "can't tell, assume plenty of RAM".
func readMemAvailableKB(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < len("MemAvailable:") || line[:len("MemAvailable:")] != "MemAvailable:" {
			continue
		}
		var kb uint64
		if _, err := fmt.Sscanf(line, "MemAvailable: %d kB", &kb); err != nil {
			return 0, err
		}
		return kb, nil
	}
	return 0, os.ErrNotExist
}
