package magicmount

import (
	"log"
	"strings"
)

const moduleRootPrefix = "/adb/modules/"

// SelectTornDownTargets is a pure function over an already-parsed
// mountinfo, so tests can exercise selection without touching /proc.
// A record is ours to tear down when its mount root came from a
// module bind (root starts with "/adb/modules/") or it is our own
// synthetic staging tmpfs (source equals magic and type is "tmpfs").
func SelectTornDownTargets(records []MountInfo, magic string) []string {
	var targets []string
	for _, r := range records {
		if strings.HasPrefix(r.Root, moduleRootPrefix) || (r.Source == magic && r.Type == "tmpfs") {
			targets = append(targets, r.Target)
		}
	}
	return targets
}

// UnmountModules reads /proc/self/mountinfo, selects every mount this
// composer could have installed, and detaches each with MNT_DETACH.
// Failures are reported but never propagated: running this twice in a
// row is expected to be a no-op the second time.
func UnmountModules(magic string) error {
	records, err := ParseMountInfo("self")
	if err != nil {
		return err
	}

	for _, target := range SelectTornDownTargets(records, magic) {
		if err := unmountDetach(target); err != nil {
			log.Printf("[E] umount %s: %v", target, err)
			continue
		}
		log.Printf("[D] umount %s", target)
	}
	return nil
}
