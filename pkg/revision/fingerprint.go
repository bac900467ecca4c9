package revision

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a 64-bit content hash of the revision's entries and
// their commits, which feed the change-based colors. Neither entry order nor
// commit order matters. The tag is not part of the hash.
func Fingerprint(rev Revision) uint64 {
	lines := make([]string, len(rev.Tree))
	for i, e := range rev.Tree {
		lines[i] = string(e.Type) + "\x00" + e.Path + "\x00" +
			strconv.FormatInt(e.Size, 10) + commitsLine(e.Commits)
	}
	slices.Sort(lines)

	d := xxhash.New()
	for _, l := range lines {
		_, _ = d.WriteString(l)
		_, _ = d.WriteString("\n")
	}
	return d.Sum64()
}

func commitsLine(commits []Commit) string {
	if len(commits) == 0 {
		return ""
	}
	cs := make([]string, len(commits))
	for i, c := range commits {
		cs[i] = c.SHA + "@" + strconv.FormatInt(c.Date.UnixNano(), 10)
	}
	slices.Sort(cs)
	return "\x00" + strings.Join(cs, ",")
}

// FingerprintHex is [Fingerprint] formatted as 16 hex digits.
func FingerprintHex(rev Revision) string {
	s := strconv.FormatUint(Fingerprint(rev), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}
