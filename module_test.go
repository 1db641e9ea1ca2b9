package magicmount

import (
	"io/ioutil"
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"
)

type moduleSuite struct {
	root string
}

var _ = Suite(&moduleSuite{})

func (s *moduleSuite) SetUpTest(c *C) {
	dir, err := ioutil.TempDir("", "magicmount-module")
	c.Assert(err, IsNil)
	s.root = dir
}

func (s *moduleSuite) TearDownTest(c *C) {
	os.RemoveAll(s.root)
}

func (s *moduleSuite) TestDisabledAndSkipMountMarkers(c *C) {
	c.Assert(os.MkdirAll(filepath.Join(s.root, "busybox"), 0755), IsNil)
	m := NewModule(s.root, "busybox")
	c.Assert(m.Disabled(), Equals, false)
	c.Assert(m.SkipMount(), Equals, false)

	c.Assert(ioutil.WriteFile(filepath.Join(s.root, "busybox", disableMarker), nil, 0644), IsNil)
	c.Assert(m.Disabled(), Equals, true)

	c.Assert(ioutil.WriteFile(filepath.Join(s.root, "busybox", skipMountMarker), nil, 0644), IsNil)
	c.Assert(m.SkipMount(), Equals, true)
}

func (s *moduleSuite) TestHasSystemDir(c *C) {
	m := NewModule(s.root, "busybox")
	c.Assert(m.HasSystemDir(), Equals, false)

	c.Assert(os.MkdirAll(m.SystemPath(), 0755), IsNil)
	c.Assert(m.HasSystemDir(), Equals, true)
}

func (s *moduleSuite) TestPathAndSystemPath(c *C) {
	m := NewModule(s.root, "busybox")
	c.Assert(m.Path(), Equals, filepath.Join(s.root, "busybox"))
	c.Assert(m.SystemPath(), Equals, filepath.Join(s.root, "busybox", "system"))
}
