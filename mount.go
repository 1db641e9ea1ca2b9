package magicmount

import (
	"log"
	"os"

	"golang.org/x/sys/unix"
)

// bindMount performs the primitive that everything else in this
// package builds on: mount(from, to, nullfs, (MOVE|BIND)|REC). The
// reason string only labels the VLOGD-style log line the original
// emits on success and the error returned on failure.
func bindMount(reason, from, to string, move bool) error {
	flags := uintptr(unix.MS_BIND | unix.MS_REC)
	if move {
		flags = uintptr(unix.MS_MOVE | unix.MS_REC)
	}
	if err := unix.Mount(from, to, "", flags, ""); err != nil {
		return errMountf(err, "%s: %s <- %s", reason, to, from)
	}
	log.Printf("[D] %-8s: %s <- %s", reason, to, from)
	return nil
}

// remountReadOnly applies MS_REMOUNT|MS_RDONLY to an already-mounted
// target.
func remountReadOnly(target string) error {
	if err := unix.Mount("", target, "", unix.MS_REMOUNT|unix.MS_RDONLY, ""); err != nil {
		return errMountf(err, "remount ro %s", target)
	}
	return nil
}

// remountBindReadOnly applies MS_REMOUNT|MS_BIND|MS_RDONLY, used by
// create_and_mount's ro path.
func remountBindReadOnly(target string) error {
	if err := unix.Mount("", target, "", unix.MS_REMOUNT|unix.MS_BIND|unix.MS_RDONLY, ""); err != nil {
		return errMountf(err, "remount bind ro %s", target)
	}
	return nil
}

// remountPrivate detaches a mount from its peer group so later changes
// under it do not propagate to any shared parent namespace.
func remountPrivate(target string) error {
	if err := unix.Mount("", target, "", unix.MS_PRIVATE, ""); err != nil {
		return errMountf(err, "remount private %s", target)
	}
	return nil
}

// MountStaging mounts the top-level staging tmpfs at cfg.WorkDir,
// tagged with source=cfg.Magic, then remounts it private. This is the
// one mount failure the caller treats as fatal: everything the loader
// does afterward assumes this tmpfs exists.
func MountStaging(cfg *Config) error {
	if err := ensureDir(cfg.WorkDir, 0755); err != nil {
		return err
	}
	if err := unix.Mount(cfg.Magic, cfg.WorkDir, "tmpfs", 0, ""); err != nil {
		return errMountf(err, "mount tmpfs %s", cfg.WorkDir)
	}
	return remountPrivate(cfg.WorkDir)
}

// UnmountStaging detaches the top-level staging tmpfs at the end of a
// mount run.
func UnmountStaging(cfg *Config) error {
	return unmountDetach(cfg.WorkDir)
}

// unmountDetach performs umount2(target, MNT_DETACH); failures are
// logged and swallowed by the caller, matching the unmount driver's
// resilience policy.
func unmountDetach(target string) error {
	if err := unix.Unmount(target, unix.MNT_DETACH); err != nil {
		return errMountf(err, "umount %s", target)
	}
	return nil
}

// ensureDir is mkdirs: creates path and every missing ancestor via
// checkDir, tolerating an already-present directory but rejecting a
// path whose final component is an existing symlink. Symlinks among
// the ancestors are followed, not rejected.
func ensureDir(path string, mode os.FileMode) error {
	return checkDir(path, ErrMountPrimFailure, mode)
}

// touchFile creates an empty placeholder file (creat), the target of
// a regular-file bind mount when the real target does not yet exist.
func touchFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0)
	if err != nil {
		return errMountf(err, "creat %s", path)
	}
	return f.Close()
}

func logMountFailure(path string, err error) {
	log.Printf("[W] mount failed for %s: %v", path, err)
}

func logAttrFailure(path string, err error) {
	log.Printf("[W] attribute failure for %s: %v", path, err)
}
