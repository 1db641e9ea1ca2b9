package magicmount

import (
	. "gopkg.in/check.v1"
)

type unmountSuite struct{}

var _ = Suite(&unmountSuite{})

func (s *unmountSuite) TestSelectTornDownTargets(c *C) {
	lines := []string{
		// a module bind mount: root is under the module prefix.
		`50 40 8:1 /adb/modules/foo/system/bin/tool /system/bin/tool rw - tmpfs magic rw`,
		// our own staging tmpfs: source matches magic, type is tmpfs.
		`51 1 8:2 / /debug_ramdisk rw - tmpfs magic rw`,
		// an unrelated real mount that must not be selected.
		`52 1 8:3 / /data rw - ext4 /dev/block/data rw`,
	}
	records := parseMountInfoLines(lines)
	c.Assert(records, HasLen, 3)

	targets := SelectTornDownTargets(records, "magic")
	c.Assert(targets, DeepEquals, []string{"/system/bin/tool", "/debug_ramdisk"})
}

func (s *unmountSuite) TestSelectTornDownTargetsEmptyWhenNothingMatches(c *C) {
	lines := []string{
		`52 1 8:3 / /data rw - ext4 /dev/block/data rw`,
	}
	records := parseMountInfoLines(lines)
	c.Assert(SelectTornDownTargets(records, "magic"), HasLen, 0)
}
