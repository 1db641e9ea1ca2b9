package magicmount

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MountInfo is one parsed line of /proc/<pid>/mountinfo.
type MountInfo struct {
	ID            int
	Parent        int
	Major, Minor  int
	Root          string
	Target        string
	VFSOption     string
	Shared        int
	Master        int
	PropagateFrom int
	Type          string
	Source        string
	FSOption      string
}

// ParseMountInfo reads /proc/<pid>/mountinfo and returns every parsed
// record. pid is usually "self". The file read is always under /proc,
// so tests do not go through this function: they call
// parseMountInfoLines directly against fixture text.
func ParseMountInfo(pid string) ([]MountInfo, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%s/mountinfo", pid))
	if err != nil {
		return nil, errMountf(err, "open mountinfo for %s", pid)
	}
	defer f.Close()

	return parseMountInfoReader(f)
}

func parseMountInfoReader(f *os.File) ([]MountInfo, error) {
	var out []MountInfo
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		mi, ok := parseMountInfoLine(scanner.Text())
		if ok {
			out = append(out, mi)
		}
	}
	if err := scanner.Err(); err != nil {
		return out, errMountf(err, "read mountinfo")
	}
	return out, nil
}

// parseMountInfoLines parses already-split lines of mountinfo text,
// used directly by tests against fixtures.
func parseMountInfoLines(lines []string) []MountInfo {
	var out []MountInfo
	for _, line := range lines {
		if mi, ok := parseMountInfoLine(line); ok {
			out = append(out, mi)
		}
	}
	return out
}

// parseMountInfoLine implements the field layout documented in
// Documentation/filesystems/proc.rst: fixed fields up front, an
// optional-fields blob, a literal " - " separator, then the
// superblock fields.
//
//	36 35 98:0 /mnt1 /mnt2 rw,noatime master:1 - ext3 /dev/root rw,errors=continue
func parseMountInfoLine(line string) (MountInfo, bool) {
	pre, post, ok := strings.Cut(line, " - ")
	if !ok {
		return MountInfo{}, false
	}

	preFields := strings.Fields(pre)
	postFields := strings.Fields(post)
	if len(preFields) < 6 || len(postFields) < 3 {
		return MountInfo{}, false
	}

	mi := MountInfo{}
	mi.ID, _ = strconv.Atoi(preFields[0])
	mi.Parent, _ = strconv.Atoi(preFields[1])
	if maj, min, ok := strings.Cut(preFields[2], ":"); ok {
		mi.Major, _ = strconv.Atoi(maj)
		mi.Minor, _ = strconv.Atoi(min)
	}
	mi.Root = preFields[3]
	mi.Target = preFields[4]
	mi.VFSOption = preFields[5]

	for _, opt := range preFields[6:] {
		if v, ok := strings.CutPrefix(opt, "shared:"); ok {
			mi.Shared, _ = strconv.Atoi(v)
		} else if v, ok := strings.CutPrefix(opt, "master:"); ok {
			mi.Master, _ = strconv.Atoi(v)
		} else if v, ok := strings.CutPrefix(opt, "propagate_from:"); ok {
			mi.PropagateFrom, _ = strconv.Atoi(v)
		}
	}

	mi.Type = postFields[0]
	mi.Source = postFields[1]
	mi.FSOption = postFields[2]

	return mi, true
}
