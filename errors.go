// Package magicmount composes an overlay view of a rooted Android-style
// filesystem: it walks a set of module directories under a well-known
// root, merges their contributions into a virtual node tree layered
// on top of read-only system partitions, and materializes that tree
// with an ordered sequence of bind, move, and remount operations. A
// companion teardown path detaches everything it installed.
//
// See the design notes in the repository root for the algorithm this
// package implements (collect, then prepare, then mount).
package magicmount

import (
	"github.com/pkg/errors"
)

var (
	// ErrArg is returned for a malformed or unrecognized CLI invocation.
	ErrArg = errors.New("argument error")

	// ErrMountPrimFailure wraps a failed mount/umount2 syscall.
	ErrMountPrimFailure = errors.New("mount primitive failed")

	// ErrAttrFailure wraps a failed stat/xattr lookup.
	ErrAttrFailure = errors.New("attribute lookup failed")

	// ErrUnsupportedChild is logged (never returned to a caller) when a
	// child cannot be represented under a parent that cannot upgrade to
	// tmpfs; the child is dropped from the tree instead.
	ErrUnsupportedChild = errors.New("child cannot be mounted under parent")
)

// Default filesystem locations, matching the CLI's --work-dir,
// --magic and --add-partitions defaults.
const (
	DefaultModuleRoot = "/data/adb/modules"
	DefaultWorkDir    = "/debug_ramdisk"
	DefaultMagic      = "magic"

	// coreModuleDir is excluded from module enumeration unconditionally.
	coreModuleDir = ".core"

	disableMarker    = "disable"
	skipMountMarker  = "skip_mount"
	replaceMarker    = ".replace"
	systemContribDir = "system"
)

// DefaultPartitions is the partition set extracted as their own roots
// before --add-partitions is applied.
func DefaultPartitions() []string {
	return []string{"/vendor", "/product", "/system_ext"}
}
