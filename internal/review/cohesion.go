package review

import (
	"fmt"
	"sort"
	"strings"
)

const (
	commonThemeThreshold  = 0.4
	commonMethodThreshold = 0.3
	coherenceCutoff       = 0.6
	temporalSpreadMax     = 5
	temporalGapMax        = 10
)

// AnalyzeCohesion scores how thematically related a set of document analyses
// is. Pure and deterministic: identical input always yields identical output.
// The score feeds a single binary choice (thematic vs portfolio synthesis),
// so the weights use coarse buckets to keep the recommendation stable near
// the cutoff.
func AnalyzeCohesion(analyses []DocumentAnalysis) CohesionAnalysis {
	usable := make([]*StructuredExtract, 0, len(analyses))
	for i := range analyses {
		if analyses[i].Parsed != nil {
			usable = append(usable, analyses[i].Parsed)
		}
	}

	domains := uniqueDomains(usable)
	out := CohesionAnalysis{
		UniqueDomains: domains,
		DomainCount:   len(domains),
		CommonThemes:  []string{},
		CommonMethods: []string{},
		Divergences:   []Divergence{},
	}

	if len(usable) == 0 {
		out.Recommendation = RecommendPortfolio
		return out
	}
	// A single document is trivially coherent.
	if len(usable) == 1 {
		out.Score = 1.0
		out.IsCoherent = true
		out.Recommendation = RecommendThematic
		return out
	}

	questionSets := make([][]string, len(usable))
	methodSets := make([][]string, len(usable))
	for i, e := range usable {
		questionSets[i] = ExtractKeywords(e.ResearchQuestion)
		methodSets[i] = ExtractKeywords(strings.Join(e.Methodology, " "))
	}
	out.CommonThemes = commonKeywords(questionSets, commonThemeThreshold)
	out.CommonMethods = commonKeywords(methodSets, commonMethodThreshold)

	years := validYears(usable)
	spread := yearSpread(years)
	temporallyCoherent := len(years) < 2 || spread <= temporalSpreadMax

	score := 0.0
	switch {
	case out.DomainCount <= 2:
		score += 0.4
	case out.DomainCount <= 3:
		score += 0.2
	}
	switch n := len(out.CommonThemes); {
	case n >= 5:
		score += 0.3
	case n >= 3:
		score += 0.15
	case n >= 1:
		score += 0.05
	}
	if len(out.CommonMethods) > 0 {
		score += 0.2
	} else if anyOverlap(methodSets) {
		score += 0.1
	}
	if temporallyCoherent {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}

	out.Score = score
	out.IsCoherent = score > coherenceCutoff
	if out.IsCoherent {
		out.Recommendation = RecommendThematic
	} else {
		out.Recommendation = RecommendPortfolio
	}

	if out.DomainCount > 2 {
		out.Divergences = append(out.Divergences, Divergence{
			Type:    "domain_diversity",
			Message: fmt.Sprintf("documents span %d distinct domains", out.DomainCount),
			Domains: domains,
		})
	}
	if len(years) >= 2 && spread > temporalGapMax {
		mn, mx := years[0], years[len(years)-1]
		out.Divergences = append(out.Divergences, Divergence{
			Type:    "temporal_gap",
			Message: fmt.Sprintf("publication years span %d years (%d-%d)", spread, mn, mx),
			Range:   []int{mn, mx},
		})
	}
	return out
}

func uniqueDomains(extracts []*StructuredExtract) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range extracts {
		d := strings.ToLower(strings.TrimSpace(e.Domain))
		if d == "" || d == NotFound {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// validYears returns the parseable publication years in ascending order.
func validYears(extracts []*StructuredExtract) []int {
	var years []int
	for _, e := range extracts {
		if y, ok := e.YearValue(); ok {
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

func yearSpread(years []int) int {
	if len(years) < 2 {
		return 0
	}
	return years[len(years)-1] - years[0]
}
