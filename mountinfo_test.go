package magicmount

import (
	. "gopkg.in/check.v1"
)

type mountInfoSuite struct{}

var _ = Suite(&mountInfoSuite{})

const sampleMountInfoLine = `36 35 98:0 /mnt1 /mnt2 rw,noatime shared:1 master:2 - ext3 /dev/root rw,errors=continue`

func (s *mountInfoSuite) TestParseMountInfoLine(c *C) {
	mi, ok := parseMountInfoLine(sampleMountInfoLine)
	c.Assert(ok, Equals, true)
	c.Assert(mi.ID, Equals, 36)
	c.Assert(mi.Parent, Equals, 35)
	c.Assert(mi.Major, Equals, 98)
	c.Assert(mi.Minor, Equals, 0)
	c.Assert(mi.Root, Equals, "/mnt1")
	c.Assert(mi.Target, Equals, "/mnt2")
	c.Assert(mi.VFSOption, Equals, "rw,noatime")
	c.Assert(mi.Shared, Equals, 1)
	c.Assert(mi.Master, Equals, 2)
	c.Assert(mi.Type, Equals, "ext3")
	c.Assert(mi.Source, Equals, "/dev/root")
	c.Assert(mi.FSOption, Equals, "rw,errors=continue")
}

func (s *mountInfoSuite) TestParseMountInfoLineRejectsMalformed(c *C) {
	_, ok := parseMountInfoLine("not a mountinfo line at all")
	c.Assert(ok, Equals, false)
}

func (s *mountInfoSuite) TestParseMountInfoLinesSkipsBadLines(c *C) {
	lines := []string{
		sampleMountInfoLine,
		"garbage",
		`40 36 8:1 / /adb/modules/foo/system/bin/tool rw - tmpfs magic rw`,
	}
	out := parseMountInfoLines(lines)
	c.Assert(out, HasLen, 2)
	c.Assert(out[1].Target, Equals, "/adb/modules/foo/system/bin/tool")
	c.Assert(out[1].Source, Equals, "magic")
	c.Assert(out[1].Type, Equals, "tmpfs")
}
