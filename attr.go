package magicmount

import (
	"io"
	"log"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// selinuxXattr is the extended attribute name carrying the SELinux
// security context.
const selinuxXattr = "security.selinux"

// Attr is the subset of file metadata this package preserves across a
// bind mount or a materialized copy: permission bits, ownership, and
// SELinux label.
type Attr struct {
	Mode    os.FileMode
	Uid     uint32
	Gid     uint32
	Context string
}

// GetAttr reads the attributes of path without following a trailing
// symlink. A failure to read the SELinux label is not fatal: it is
// logged and the context is left empty.
func GetAttr(path string) (Attr, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Attr{}, errAttrf(err, "lstat %s", path)
	}

	a := Attr{Mode: fi.Mode()}
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		a.Uid, a.Gid = st.Uid, st.Gid
	}

	buf := make([]byte, 1024)
	n, err := unix.Lgetxattr(path, selinuxXattr, buf)
	if err != nil {
		log.Printf("[W] getfilecon %s: %v", path, err)
		return a, nil
	}
	a.Context = string(buf[:n])
	return a, nil
}

// SetAttr reapplies a previously captured Attr to path. Failures are
// logged by the caller's context (loader/execute), not here, so that
// callers can decide whether the failure is fatal for the node being
// mounted.
func SetAttr(path string, a Attr) error {
	if err := os.Chmod(path, a.Mode&0777); err != nil {
		return errAttrf(err, "chmod %s", path)
	}
	if a.Uid != 0 || a.Gid != 0 {
		if err := os.Chown(path, int(a.Uid), int(a.Gid)); err != nil {
			return errAttrf(err, "chown %s", path)
		}
	}
	if a.Context != "" {
		if err := unix.Lsetxattr(path, selinuxXattr, []byte(a.Context), 0); err != nil {
			return errAttrf(err, "setfilecon %s", path)
		}
	}
	return nil
}

// CloneAttr copies the attributes of src onto dst (clone_attr).
func CloneAttr(src, dst string) error {
	a, err := GetAttr(src)
	if err != nil {
		return err
	}
	return SetAttr(dst, a)
}

// CopyPath recursively, attribute-preservingly copies src to dst
// (cp_afc). Symlinks are recreated as symlinks, directories are
// walked, and regular files are streamed; device/fifo/socket entries
// are skipped silently exactly as the original create_and_mount does
// for "otherwise" file types.
func CopyPath(src, dst string) error {
	fi, err := os.Lstat(src)
	if err != nil {
		return errAttrf(err, "lstat %s", src)
	}

	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return errAttrf(err, "readlink %s", src)
		}
		_ = os.Remove(dst)
		if err := os.Symlink(target, dst); err != nil {
			return errAttrf(err, "symlink %s", dst)
		}
	case fi.IsDir():
		if err := os.MkdirAll(dst, 0); err != nil {
			return errAttrf(err, "mkdir %s", dst)
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return errAttrf(err, "readdir %s", src)
		}
		for _, e := range entries {
			if err := CopyPath(src+"/"+e.Name(), dst+"/"+e.Name()); err != nil {
				return err
			}
		}
	case fi.Mode().IsRegular():
		if err := copyRegular(src, dst); err != nil {
			return err
		}
	default:
		return nil
	}

	return CloneAttr(src, dst)
}

func copyRegular(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errAttrf(err, "open %s", src)
	}
	defer in.Close()

	_ = os.Remove(dst)
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0)
	if err != nil {
		return errAttrf(err, "create %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errAttrf(err, "copy %s -> %s", src, dst)
	}
	return nil
}
