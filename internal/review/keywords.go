package review

import (
	"regexp"
	"sort"
	"strings"
)

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"were": {}, "their": {}, "which": {}, "these": {}, "those": {}, "they": {},
	"what": {}, "when": {}, "where": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "about": {}, "into": {}, "through": {}, "during": {},
	"between": {}, "under": {}, "over": {}, "such": {}, "than": {}, "then": {},
	"there": {}, "here": {}, "each": {}, "other": {}, "some": {}, "more": {},
	"most": {}, "also": {}, "only": {}, "both": {}, "using": {}, "used": {},
	"based": {}, "study": {}, "paper": {}, "research": {}, "results": {},
	"found": {}, "does": {}, "while": {}, "within": {},
}

var wordRe = regexp.MustCompile(`[a-z][a-z0-9_-]*`)

const keywordLimit = 20

// ExtractKeywords lower-cases the text, keeps alphabetic tokens of length
// at least 4 that are not stop words, and returns the top 20 by frequency.
// Ties are broken by first occurrence so the output is deterministic.
func ExtractKeywords(text string) []string {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if len(w) < 4 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > keywordLimit {
		order = order[:keywordLimit]
	}
	return order
}

// commonKeywords returns the keywords that appear in at least threshold
// (a fraction of len(sets)) of the per-document keyword sets, ordered by how
// many documents share them. The ratio is the only filter: with two sets and
// a 0.4 threshold, one occurrence already qualifies.
func commonKeywords(sets [][]string, threshold float64) []string {
	if len(sets) == 0 {
		return nil
	}
	docCount := make(map[string]int)
	var order []string
	for _, set := range sets {
		seen := make(map[string]struct{}, len(set))
		for _, kw := range set {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			if docCount[kw] == 0 {
				order = append(order, kw)
			}
			docCount[kw]++
		}
	}
	need := threshold * float64(len(sets))
	var common []string
	for _, kw := range order {
		if float64(docCount[kw]) >= need {
			common = append(common, kw)
		}
	}
	sort.SliceStable(common, func(i, j int) bool {
		return docCount[common[i]] > docCount[common[j]]
	})
	return common
}

// anyOverlap reports whether any keyword appears in more than one set.
func anyOverlap(sets [][]string) bool {
	seen := make(map[string]int)
	for _, set := range sets {
		dedup := make(map[string]struct{}, len(set))
		for _, kw := range set {
			dedup[kw] = struct{}{}
		}
		for kw := range dedup {
			seen[kw]++
			if seen[kw] > 1 {
				return true
			}
		}
	}
	return false
}
