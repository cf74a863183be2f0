//go:build linux

package topology

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// sysfsCacheDir lists one index* directory per cache attached to cpu0.
var sysfsCacheDir = "/sys/devices/system/cpu/cpu0/cache"

// platformLineSize walks the cache indices of cpu0 and returns the
// coherency line size of the level 1 data (or unified) cache.
func platformLineSize() (int, bool) {
	dirs, err := filepath.Glob(filepath.Join(sysfsCacheDir, "index*"))
	if err != nil || len(dirs) == 0 {
		return 0, false
	}
	for _, dir := range dirs {
		if readSysfs(dir, "level") != "1" {
			continue
		}
		switch readSysfs(dir, "type") {
		case "Data", "Unified":
		default:
			continue
		}
		n, err := strconv.Atoi(readSysfs(dir, "coherency_line_size"))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func readSysfs(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
