package magicmount

import (
	"os"
	"path/filepath"
)

// Module is an opaque name resolved against MODULE_ROOT: the tree
// itself never inspects it beyond the name, but the loader uses it to
// resolve MODULE_ROOT/name/... and to apply the disable/skip_mount
// markers.
type Module struct {
	Name string
	root string
}

// NewModule resolves a module's descriptor against moduleRoot; it
// does not touch the filesystem.
func NewModule(moduleRoot, name string) *Module {
	return &Module{Name: name, root: moduleRoot}
}

// Path is MODULE_ROOT/name.
func (m *Module) Path() string {
	return filepath.Join(m.root, m.Name)
}

// SystemPath is MODULE_ROOT/name/system, the contribution subtree
// CollectModuleFiles walks.
func (m *Module) SystemPath() string {
	return filepath.Join(m.Path(), systemContribDir)
}

// Disabled reports whether MODULE_ROOT/name/disable exists.
func (m *Module) Disabled() bool {
	return exists(filepath.Join(m.Path(), disableMarker))
}

// SkipMount reports whether MODULE_ROOT/name/skip_mount exists.
func (m *Module) SkipMount() bool {
	return exists(filepath.Join(m.Path(), skipMountMarker))
}

// HasSystemDir reports whether SystemPath() exists and is a
// directory. Lstat rejects a symlink for free here: fi.IsDir() is
// always false for a symlink itself, regardless of what it points at.
func (m *Module) HasSystemDir() bool {
	fi, err := os.Lstat(m.SystemPath())
	if err != nil {
		return false
	}
	return fi.IsDir()
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
