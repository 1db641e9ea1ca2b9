package magicmount

import (
	"io/ioutil"
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"
)

type nodeSuite struct {
	dir string
}

var _ = Suite(&nodeSuite{})

func (s *nodeSuite) SetUpTest(c *C) {
	dir, err := ioutil.TempDir("", "magicmount-node")
	c.Assert(err, IsNil)
	s.dir = dir
}

func (s *nodeSuite) TearDownTest(c *C) {
	os.RemoveAll(s.dir)
}

func (s *nodeSuite) writeModuleFile(c *C, module, rel string) {
	full := filepath.Join(s.dir, module, rel)
	c.Assert(os.MkdirAll(filepath.Dir(full), 0755), IsNil)
	c.Assert(ioutil.WriteFile(full, []byte("x"), 0644), IsNil)
}

func (s *nodeSuite) TestNodePathAndWorkerPath(c *C) {
	anon := newNode(NodeIntermediate, "", nil)
	root := NewRootNode("system", anon)
	anon.Children["system"] = root
	lib := root.emplace(NodeIntermediate, "lib")
	leaf := newNode(NodeModule, "libfoo.so", lib)
	lib.Children["libfoo.so"] = leaf

	c.Assert(leaf.NodePath(), Equals, "/system/lib/libfoo.so")
	c.Assert(leaf.WorkerPath("/debug_ramdisk"), Equals, "/debug_ramdisk/system/lib/libfoo.so")
}

func (s *nodeSuite) TestCollectModuleFilesUnionLastWriterWins(c *C) {
	s.writeModuleFile(c, "moduleA", "lib/libfoo.so")
	s.writeModuleFile(c, "moduleB", "lib/libfoo.so")
	s.writeModuleFile(c, "moduleB", "bin/tool")

	root := NewRootNode("system", nil)
	root.CollectModuleFiles("moduleA", filepath.Join(s.dir, "moduleA"))
	root.CollectModuleFiles("moduleB", filepath.Join(s.dir, "moduleB"))

	lib, ok := root.Children["lib"]
	c.Assert(ok, Equals, true)
	c.Assert(lib.Type, Equals, NodeIntermediate)

	leaf, ok := lib.Children["libfoo.so"]
	c.Assert(ok, Equals, true)
	c.Assert(leaf.Type, Equals, NodeModule)
	c.Assert(leaf.ModuleName, Equals, "moduleB")

	bin, ok := root.Children["bin"]
	c.Assert(ok, Equals, true)
	c.Assert(bin.Children["tool"].ModuleName, Equals, "moduleB")
}

func (s *nodeSuite) TestCollectModuleFilesSetsReplace(c *C) {
	c.Assert(os.MkdirAll(filepath.Join(s.dir, "moduleA", "app"), 0755), IsNil)
	c.Assert(ioutil.WriteFile(filepath.Join(s.dir, "moduleA", "app", replaceMarker), nil, 0644), IsNil)

	root := NewRootNode("system", nil)
	root.CollectModuleFiles("moduleA", filepath.Join(s.dir, "moduleA"))

	app, ok := root.Children["app"]
	c.Assert(ok, Equals, true)
	c.Assert(app.Replace, Equals, true)
	c.Assert(len(app.Children), Equals, 0)
}

func (s *nodeSuite) TestUpgradePreservesChildrenAndPanicsOnDowngrade(c *C) {
	root := NewRootNode("system", nil)
	inter := root.emplace(NodeIntermediate, "vendor")
	inter.Children["leaf"] = newNode(NodeModule, "leaf", inter)
	inter.Exists = true

	upgraded := root.upgrade("vendor", NodeTmpfs)
	c.Assert(upgraded.Type, Equals, NodeTmpfs)
	c.Assert(upgraded.Exists, Equals, true)
	c.Assert(len(upgraded.Children), Equals, 1)
	c.Assert(root.Children["vendor"], Equals, upgraded)

	c.Assert(func() { root.upgrade("vendor", NodeModule) }, PanicMatches, "upgrade: refusing.*")
	c.Assert(func() { root.upgrade("vendor", NodeTmpfs) }, PanicMatches, "upgrade: refusing.*")
}

func (s *nodeSuite) TestRootWalksToNearestRootAncestor(c *C) {
	root := NewRootNode("vendor", nil)
	inter := root.emplace(NodeIntermediate, "lib")
	leaf := newNode(NodeModule, "libfoo.so", inter)
	inter.Children["libfoo.so"] = leaf

	c.Assert(leaf.Root(), Equals, root)
	c.Assert(root.Root(), Equals, root)
}
