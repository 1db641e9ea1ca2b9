package magicmount

import (
	"log"
	"os"
)

// Prepare runs a post-order pass over the tree deciding which
// directories must be upgraded to a synthetic tmpfs. It is only
// meaningful on directory-capable nodes (Intermediate, Tmpfs, Root);
// calling it on a Module leaf is a no-op that returns false. It
// returns whether n itself must be upgraded to Tmpfs, which the
// caller applies via upgrade(name, NodeTmpfs) on n's own entry in its
// parent's Children map (the root has no parent, so root.Prepare
// simply discards the return value once).
func (n *Node) Prepare() bool {
	if !n.IsDir() || n.Children == nil {
		return false
	}

	upgradeToTmpfs := n.Replace || !n.Exists

	for _, name := range n.sortedChildNames() {
		child := n.Children[name]

		cannotMount := n.checkChildMountability(child)

		if cannotMount {
			if n.Type > NodeTmpfs {
				logDroppedChild(child.NodePath())
				delete(n.Children, name)
				continue
			}
			upgradeToTmpfs = true
		}

		if child.IsDir() {
			if n.Replace {
				child.Replace = true
			}
			needsTmpfs := child.Prepare()
			if needsTmpfs && child.Type == NodeRoot {
				// A partition root asking to become a synthetic tmpfs
				// (missing from the base filesystem, or directly
				// .replace'd at its own top level) has no tmpfs
				// implementation to fall back to: a root always mkdirs
				// and mounts its children as-is, so log and mount it
				// unchanged rather than fail the whole run.
				log.Printf("[W] partition root %s wants tmpfs upgrade, not supported: mounting as-is", child.NodePath())
			} else if needsTmpfs {
				child = n.upgrade(name, NodeTmpfs)
			}
		}
	}

	// A directory becoming a synthetic tmpfs must still show every
	// pre-existing base-filesystem entry no module touched, unless
	// .replace intentionally hides them. Root variants never take this
	// path: their real directory stays mounted as-is (see the child.Type
	// == NodeRoot case above), so nothing needs re-exposing under them.
	if upgradeToTmpfs && n.Type != NodeRoot && n.Exists && !n.Replace {
		n.synthesizeBaseChildren()
	}

	return upgradeToTmpfs
}

// checkChildMountability lstats child's node path against the base
// filesystem and reports whether it is impossible to bind-mount: the
// path is missing, or either side of the eventual bind is a symlink
// (the kernel refuses to bind-mount a symlink). It also records
// child.Exists as a side effect.
func (n *Node) checkChildMountability(child *Node) bool {
	fi, err := os.Lstat(child.NodePath())
	if err != nil {
		return true
	}

	child.Exists = true
	baseIsSymlink := fi.Mode()&os.ModeSymlink != 0
	return child.isSymlink() || baseIsSymlink
}
