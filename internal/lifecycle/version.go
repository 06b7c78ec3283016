package lifecycle

import (
	"strconv"
	"strings"
)

// compareVersions orders plugin versions the way PHP's version_compare does,
// so dotted versions of any length compare part by part and "2.5" sorts
// before "2.5.0".
func compareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	switch {
	case len(pa) == 0 && len(pb) == 0:
		return 0
	case len(pa) == 0:
		return -1
	case len(pb) == 0:
		return 1
	}

	for i := 0; i < len(pa) && i < len(pb); i++ {
		if c := comparePart(pa[i], pb[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(pa) > len(pb):
		if isNumeric(pa[len(pb)]) {
			return 1
		}
		return compareSpecial(pa[len(pb)], "#")
	case len(pb) > len(pa):
		if isNumeric(pb[len(pa)]) {
			return -1
		}
		return compareSpecial("#", pb[len(pa)])
	}
	return 0
}

// validVersion reports whether v starts with a numeric part, which every
// released plugin version does.
func validVersion(v string) bool {
	parts := versionParts(v)
	return len(parts) > 0 && isNumeric(parts[0])
}

// versionParts splits a version at separators and at every switch between
// digits and letters: "1.0rc1" becomes [1 0 rc 1].
func versionParts(v string) []string {
	var (
		parts []string
		cur   strings.Builder
		digit bool
	)
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.TrimSpace(v) {
		switch {
		case r >= '0' && r <= '9':
			if cur.Len() > 0 && !digit {
				flush()
			}
			digit = true
			cur.WriteRune(r)
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			if cur.Len() > 0 && digit {
				flush()
			}
			digit = false
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return parts
}

func comparePart(a, b string) int {
	na, nb := isNumeric(a), isNumeric(b)
	switch {
	case na && nb:
		x, _ := strconv.ParseUint(a, 10, 64)
		y, _ := strconv.ParseUint(b, 10, 64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case na:
		return compareSpecial("#", b)
	case nb:
		return compareSpecial(a, "#")
	}
	return compareSpecial(a, b)
}

// specialForms ranks the pre- and post-release words PHP understands. A
// number ranks as "#"; unknown words rank below everything.
var specialForms = []struct {
	prefix string
	rank   int
}{
	{"dev", 0},
	{"alpha", 1},
	{"a", 1},
	{"beta", 2},
	{"b", 2},
	{"RC", 3},
	{"rc", 3},
	{"#", 4},
	{"pl", 5},
	{"p", 5},
}

func specialRank(s string) int {
	for _, f := range specialForms {
		if strings.HasPrefix(s, f.prefix) {
			return f.rank
		}
	}
	return -6
}

func compareSpecial(a, b string) int {
	ra, rb := specialRank(a), specialRank(b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return 0
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
