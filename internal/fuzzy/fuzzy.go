package fuzzy

import (
	"math"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Ratio scores the similarity of two strings as an integer from 0 to 100,
// derived from edit distance over the length of the longer string. Equal
// strings score 100; two empty strings also score 100.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 100
	}
	distance := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptionsWithSub)
	return int(math.Round(100 * (1 - float64(distance)/float64(maxLen))))
}

// TokenSortRatio tokenizes both strings on whitespace, sorts the tokens
// and scores the rejoined forms. Word order stops mattering, so
// "Johnson Sarah" scores 100 against "Sarah Johnson".
func TokenSortRatio(a, b string) int {
	return Ratio(sortTokens(a), sortTokens(b))
}

// PartialRatio scores the shorter string against every equal-length
// window of the longer one and returns the best score. A short fragment
// embedded in a longer string scores 100.
func PartialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 100
		}
		return 0
	}
	best := 0
	for i := 0; i+len(ra) <= len(rb); i++ {
		score := Ratio(string(ra), string(rb[i:i+len(ra)]))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// BestScore runs all three measures over normalized inputs and returns
// the highest. This is the score matching thresholds are compared to.
func BestScore(a, b string) int {
	a, b = Normalize(a), Normalize(b)
	best := Ratio(a, b)
	if s := TokenSortRatio(a, b); s > best {
		best = s
	}
	if s := PartialRatio(a, b); s > best {
		best = s
	}
	return best
}

// Normalize lowercases the input, strips everything except letters,
// digits and spaces, and collapses runs of whitespace. Matching always
// happens on normalized strings so punctuation and casing differences in
// OCR output do not move scores.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
