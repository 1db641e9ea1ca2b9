package magicmount

// Mount dispatches to the per-variant mount implementation. cfg
// carries the work directory and module-mount root threaded
// explicitly rather than through global state.
func (n *Node) Mount(cfg *Config) error {
	switch n.Type {
	case NodeRoot:
		return n.mountRoot(cfg)
	case NodeTmpfs:
		return n.mountTmpfs(cfg)
	case NodeModule:
		return n.mountModule(cfg)
	case NodeIntermediate:
		// Prepare only upgrades a directory to NodeTmpfs when some
		// child under it actually needs staging; an intermediate whose
		// children all bind cleanly onto the base filesystem is left
		// as-is, with nothing left to do here but recurse into the
		// children themselves.
		return n.mountChildren(cfg)
	default:
		panic("mount: unhandled node type for " + n.NodePath())
	}
}

// mountRoot ensures the partition root directory exists, then mounts
// every child in turn. A partition root is never itself staged
// through a tmpfs: it is assumed to already exist as a real directory
// (the loader only extracts a partition into its own root after
// confirming it exists and is a directory).
func (n *Node) mountRoot(cfg *Config) error {
	if err := ensureDir(n.NodePath(), 0755); err != nil {
		return err
	}
	return n.mountChildren(cfg)
}

// mountChildren is the shared iteration used by both root and tmpfs
// directory nodes.
func (n *Node) mountChildren(cfg *Config) error {
	for _, name := range n.sortedChildNames() {
		if err := n.Children[name].Mount(cfg); err != nil {
			// Every mount failure below the top-level tmp mount is
			// logged and swallowed so the rest of the tree still gets
			// a chance to mount.
			logMountFailure(n.Children[name].NodePath(), err)
		}
	}
	return nil
}

// mountTmpfs handles two cases: the top of a staged subtree (parent
// is not itself tmpfs) does the full
// mkdir/self-bind/populate/move/remount dance; a nested tmpfs (parent
// already tmpfs) just recurses into the shared staging area.
func (n *Node) mountTmpfs(cfg *Config) error {
	if !n.IsDir() {
		return n.createAndMount(cfg, "mirror", n.NodePath(), false)
	}

	parent := n.Parent()
	if parent == nil || parent.Type != NodeTmpfs {
		workerDir := n.WorkerPath(cfg.WorkDir)
		reason := "move"
		if n.Replace {
			reason = "replace"
		}

		if err := ensureDir(workerDir, 0); err != nil {
			return err
		}
		if err := bindMount(reason, workerDir, workerDir, false); err != nil {
			return err
		}

		cloneSrc := parent.NodePath()
		if n.Exists {
			cloneSrc = n.NodePath()
		}
		if err := CloneAttr(cloneSrc, workerDir); err != nil {
			logAttrFailure(workerDir, err)
		}

		if err := n.mountChildren(cfg); err != nil {
			return err
		}

		if err := bindMount(reason, workerDir, n.NodePath(), true); err != nil {
			return err
		}
		if err := remountReadOnly(n.NodePath()); err != nil {
			logMountFailure(n.NodePath(), err)
		}
		if err := remountPrivate(n.NodePath()); err != nil {
			logMountFailure(n.NodePath(), err)
		}
		return nil
	}

	// Nested tmpfs: the enclosing tmpfs already covers us.
	dest := n.WorkerPath(cfg.WorkDir)
	if err := ensureDir(dest, 0); err != nil {
		return err
	}
	cloneSrc := parent.WorkerPath(cfg.WorkDir)
	if n.Exists {
		cloneSrc = n.NodePath()
	}
	if err := CloneAttr(cloneSrc, dest); err != nil {
		logAttrFailure(dest, err)
	}
	return n.mountChildren(cfg)
}

// mountModule locates the module's on-disk contribution (mntSrc),
// clones the existing target's attributes onto mntSrc when the target
// exists, then either stages a placeholder and binds under a tmpfs
// parent, or binds straight onto the node's own path.
func (n *Node) mountModule(cfg *Config) error {
	root := n.Root()
	mntSrc := cfg.moduleSourcePath(n.ModuleName, root.Prefix, n.NodePath())

	if n.Exists {
		if err := CloneAttr(n.NodePath(), mntSrc); err != nil {
			logAttrFailure(mntSrc, err)
		}
	}

	if parent := n.Parent(); parent != nil && parent.Type == NodeTmpfs {
		return n.createAndMount(cfg, "module", mntSrc, false)
	}
	return bindMount("module", mntSrc, n.NodePath(), false)
}

// createAndMount recreates n's kind of node at the destination
// dictated by whether n's parent is a tmpfs. A symlink is copied from
// src and not bind-mounted; an empty dir or empty file is created and
// src is bound on top of it. Device/fifo/socket nodes are skipped
// silently.
func (n *Node) createAndMount(cfg *Config, reason, src string, ro bool) error {
	dest := n.NodePath()
	if parent := n.Parent(); parent != nil && parent.Type == NodeTmpfs {
		dest = n.WorkerPath(cfg.WorkDir)
	}

	switch {
	case n.isSymlink():
		return CopyPath(src, dest)
	case n.IsDir():
		if err := ensureDir(dest, 0); err != nil {
			return err
		}
	case n.FileType == FileRegular:
		if err := touchFile(dest); err != nil {
			return err
		}
	default:
		return nil
	}

	if err := bindMount(reason, src, dest, false); err != nil {
		return err
	}
	if ro {
		return remountBindReadOnly(dest)
	}
	return nil
}
