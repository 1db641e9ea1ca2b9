package magicmount

import (
	"os"
	"sort"
	"strings"
)

// EnumerateModules lists MODULE_ROOT, skipping the ".core" entry and
// any module whose disable marker is present. Modules are returned
// sorted by name. Collision resolution between modules is
// last-writer-wins with no declared priority, so this order decides
// the outcome of a conflict: the module whose name sorts last owns a
// contested leaf.
func EnumerateModules(moduleRoot string) ([]*Module, error) {
	entries, err := os.ReadDir(moduleRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errMountf(err, "read module root %s", moduleRoot)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || e.Name() == coreModuleDir {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var modules []*Module
	for _, name := range names {
		m := NewModule(moduleRoot, name)
		if m.Disabled() {
			continue
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// Tree is the result of loading every enabled module: an anonymous
// tree root with one initial "system" root child, plus one extracted
// root per configured partition that turned out to exist.
type Tree struct {
	Anon   *Node
	System *Node
}

// LoadModules builds the initial system root, folds every module's
// system/ subtree into it, extracts configured partitions into their
// own roots, then runs prepare. It stops short of Mount so callers
// (and tests) can inspect the prepared tree first.
func LoadModules(cfg *Config, modules []*Module) (*Tree, error) {
	anon := newNode(NodeIntermediate, "", nil)
	system := NewRootNode("system", anon)
	anon.Children["system"] = system

	for _, m := range modules {
		if m.SkipMount() {
			continue
		}
		if !m.HasSystemDir() {
			continue
		}
		system.CollectModuleFiles(m.Name, m.SystemPath())
	}

	if len(system.Children) == 0 {
		return &Tree{Anon: anon, System: system}, nil
	}

	for _, part := range cfg.Partitions {
		extractPartition(anon, system, part)
	}

	anon.Prepare()

	return &Tree{Anon: anon, System: system}, nil
}

// extractPartition re-parents system's child named after part (with
// its leading slash stripped) into its own NodeRoot, but only when
// part exists on the base filesystem as a real directory: the
// composer never invents a partition root the device doesn't have.
func extractPartition(anon, system *Node, part string) {
	if part == "" {
		return
	}
	name := strings.TrimPrefix(part, "/")

	child, ok := system.Children[name]
	if !ok {
		return
	}

	fi, err := os.Lstat(part)
	if err != nil || !fi.IsDir() {
		return
	}

	delete(system.Children, name)

	newRoot := NewRootNode(name, anon)
	newRoot.Prefix = "/" + systemContribDir
	newRoot.Exists = true
	newRoot.FileType = FileDir
	newRoot.Replace = child.Replace
	if child.Children != nil {
		newRoot.Children = child.Children
		for _, c := range newRoot.Children {
			reparent(c, newRoot)
		}
	}
	anon.Children[name] = newRoot
}

// reparent fixes up c's weak parent pointer after it moves to a new
// owner, without touching c's own children (they stay correct: only
// the chain above c changed).
func reparent(c *Node, newParent *Node) {
	c.parent = newParent
}

// Mount walks every root under the tree and mounts it, matching
// root->mount() for each configured partition root plus "system".
func (t *Tree) Mount(cfg *Config) error {
	if len(t.System.Children) == 0 && len(t.Anon.Children) == 1 {
		// Nothing was ever collected: no-op.
		return nil
	}
	for _, name := range t.Anon.sortedChildNames() {
		if err := t.Anon.Children[name].Mount(cfg); err != nil {
			logMountFailure(t.Anon.Children[name].NodePath(), err)
		}
	}
	return nil
}

// HandleModules is the top-level operation the CLI calls for the
// mount subcommand's per-module-root work: enumerate, load, mount.
func HandleModules(cfg *Config) error {
	modules, err := EnumerateModules(cfg.ModuleRoot)
	if err != nil {
		return err
	}

	tree, err := LoadModules(cfg, modules)
	if err != nil {
		return err
	}

	return tree.Mount(cfg)
}
