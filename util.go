package magicmount

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// checkDir validates that path is not a symlink and is a directory,
// creating it with mode if it does not yet exist. Used by ensureDir,
// so every directory the mount path creates or reuses is refused when
// path itself is a symlink. CopyPath creates its directories with
// os.MkdirAll and does not go through this check.
func checkDir(path string, wrapErr error, mode os.FileMode) error {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, mode); err != nil {
				return errors.Wrapf(wrapErr, "unable to mkdir: %v", err)
			}
			return nil
		}
		return err
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		return errors.Wrap(wrapErr, "cannot operate on a symlink")
	}

	if !fi.IsDir() {
		return errors.Wrap(wrapErr, "not a directory")
	}

	return nil
}

// errAttrf wraps err as an ErrAttrFailure with a formatted message.
func errAttrf(err error, format string, args ...interface{}) error {
	return errors.Wrap(ErrAttrFailure, fmt.Sprintf(format, args...)+": "+err.Error())
}

// errMountf wraps err as an ErrMountPrimFailure with a formatted message.
func errMountf(err error, format string, args ...interface{}) error {
	return errors.Wrap(ErrMountPrimFailure, fmt.Sprintf(format, args...)+": "+err.Error())
}
