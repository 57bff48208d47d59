// Package textmatch scores free-text field similarity for record matching.
//
// Product names coming out of document extraction are noisy: reordered
// words, misspellings, stray punctuation. Similarity therefore works on
// token sets rather than whole strings, and pairs tokens by normalized
// edit distance so small typos still count as a match.
package textmatch

import (
	"sort"
	"strings"
	"unicode"
)

// minPairScore is the minimum normalized edit-distance score for two
// tokens to be considered the same word.
const minPairScore = 0.65

// Tokenize splits s on whitespace, strips non-alphanumeric characters
// from token edges, and lowercases. Empty tokens are dropped.
func Tokenize(s string) []string {
	var tokens []string
	for _, w := range strings.Fields(s) {
		t := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if t != "" {
			tokens = append(tokens, strings.ToLower(t))
		}
	}
	return tokens
}

// Similarity returns a score in [0,1] for how alike two strings are.
//
// Each token of one string is greedily paired with the best-scoring
// unmatched token of the other; a pairing counts only above
// minPairScore. The result is a Dice-style coefficient:
// 2*sum(pair scores) / (len(tokens a) + len(tokens b)).
//
// Two empty strings are vacuously identical (1.0); one empty side
// scores 0.0. The score does not depend on word order, and
// Similarity(a, b) == Similarity(b, a).
func Similarity(a, b string) float64 {
	ta := Tokenize(a)
	tb := Tokenize(b)

	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	// Canonical order so the greedy pass is symmetric and independent
	// of the callers' argument order.
	sort.Strings(ta)
	sort.Strings(tb)
	if strings.Join(ta, " ") > strings.Join(tb, " ") {
		ta, tb = tb, ta
	}

	used := make([]bool, len(tb))
	var sum float64
	for _, t1 := range ta {
		bestIdx := -1
		bestScore := 0.0
		for i, t2 := range tb {
			if used[i] {
				continue
			}
			score := tokenScore(t1, t2)
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx >= 0 && bestScore > minPairScore {
			used[bestIdx] = true
			sum += bestScore
		}
	}

	return 2 * sum / float64(len(ta)+len(tb))
}

// tokenScore is 1 - editDistance/maxLen, clamped at 0 for fully
// dissimilar tokens.
func tokenScore(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(editDistance(ra, rb))/float64(maxLen)
}

// editDistance is the Levenshtein distance between two rune slices,
// computed with a two-row DP.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
