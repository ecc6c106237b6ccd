package adapters

import (
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/shirou/gopsutil/v3/disk"

	"rewin/internal/ports"
)

type DriveAdapter struct{}

func NewDriveAdapter() DriveAdapter {
	return DriveAdapter{}
}

// MountedDrives lists mount points, e.g. "C:" on Windows. Duplicates are
// dropped and the result is sorted.
func (a DriveAdapter) MountedDrives() ([]string, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to enumerate drives").
			WithCause(err)
	}
	seen := map[string]struct{}{}
	var drives []string
	for _, partition := range partitions {
		mount := strings.TrimRight(partition.Mountpoint, `\`)
		if mount == "" {
			continue
		}
		key := strings.ToUpper(mount)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		drives = append(drives, mount)
	}
	sort.Strings(drives)
	return drives, nil
}

var _ ports.DrivePort = DriveAdapter{}
