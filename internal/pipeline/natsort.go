package pipeline

import (
	"sort"
	"strings"
)

// naturalLess orders "p2" before "p10". Digit runs compare by value, other
// runs case-insensitively, and exact ties fall back to a byte comparison so
// the order is total.
func naturalLess(a, b string) bool {
	if c := naturalCompare(a, b); c != 0 {
		return c < 0
	}
	return a < b
}

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ra, restA := chunk(a)
		rb, restB := chunk(b)
		if c := compareChunk(ra, rb); c != 0 {
			return c
		}
		a, b = restA, restB
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func chunk(s string) (string, string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func compareChunk(a, b string) int {
	if isDigit(a[0]) && isDigit(b[0]) {
		ta := strings.TrimLeft(a, "0")
		tb := strings.TrimLeft(b, "0")
		if len(ta) != len(tb) {
			if len(ta) < len(tb) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
		// Equal values: fewer leading zeros first.
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// SortNatural sorts slash-separated relative paths into page order.
func SortNatural(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool { return naturalLess(paths[i], paths[j]) })
}
