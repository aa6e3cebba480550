package complete

import "strings"

// fuzzyScore scores candidate against fragment as a case-insensitive
// subsequence match, spec.md §4.F. ok is false if fragment's characters
// don't all appear in candidate in order. Higher scores rank first;
// ties break lexicographically by the caller.
func fuzzyScore(candidate, fragment string) (int, bool) {
	if fragment == "" {
		return 0, true
	}
	c := strings.ToLower(candidate)
	f := strings.ToLower(fragment)

	score := 0
	ci := 0
	prevMatched := false
	for fi := 0; fi < len(f); fi++ {
		idx := strings.IndexByte(c[ci:], f[fi])
		if idx < 0 {
			return 0, false
		}
		idx += ci

		switch {
		case idx == 0:
			score += 12 // fragment starts the candidate
		case c[idx-1] == '_':
			score += 6 // word-boundary bonus (snake_case fields)
		case prevMatched && idx == ci:
			score += 8 // contiguous run bonus
		default:
			score += 1
		}
		if candidate[idx] == fragment[fi] {
			score += 2 // exact-case bonus
		}

		prevMatched = true
		ci = idx + 1
	}
	if strings.HasPrefix(c, f) {
		score += 20
	}
	if c == f {
		score += 50
	}
	return score, true
}
