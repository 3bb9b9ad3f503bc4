package review

import (
	"fmt"
	"strings"
	"testing"
)

func analysisFor(domain, question, year string, methods ...string) DocumentAnalysis {
	return DocumentAnalysis{
		Parsed: &StructuredExtract{
			Domain:           domain,
			ResearchQuestion: question,
			Year:             year,
			Methodology:      methods,
		},
	}
}

func TestCohesionSharedDomainAndKeywords(t *testing.T) {
	q := "vaccine antigen response in immune memory cells after repeated booster exposure"
	analyses := []DocumentAnalysis{
		analysisFor("immunology", q, "2019", "cohort analysis"),
		analysisFor("immunology", q, "2020", "cohort analysis"),
		analysisFor("immunology", q, "2021", "cohort analysis"),
	}
	c := AnalyzeCohesion(analyses)

	if c.Score <= 0.6 {
		t.Fatalf("score = %v, want > 0.6", c.Score)
	}
	if c.Recommendation != RecommendThematic || !c.IsCoherent {
		t.Errorf("recommendation = %q, coherent = %v", c.Recommendation, c.IsCoherent)
	}
	if c.DomainCount != 1 {
		t.Errorf("domainCount = %d, want 1", c.DomainCount)
	}
	if len(c.CommonThemes) < 5 {
		t.Errorf("common themes = %v, want at least 5", c.CommonThemes)
	}
	if len(c.Divergences) != 0 {
		t.Errorf("divergences = %+v, want none", c.Divergences)
	}
}

func TestCohesionUnrelatedDocuments(t *testing.T) {
	analyses := []DocumentAnalysis{
		analysisFor("astrophysics", "black hole accretion disk spectra", "1995", "spectroscopy"),
		analysisFor("linguistics", "verb morphology acquisition toddlers", "2015", "longitudinal interviews"),
		analysisFor("economics", "inflation expectations survey panel", "2022", "regression"),
	}
	c := AnalyzeCohesion(analyses)

	if c.Score > 0.6 {
		t.Fatalf("score = %v, want <= 0.6", c.Score)
	}
	if c.Recommendation != RecommendPortfolio {
		t.Errorf("recommendation = %q, want portfolio", c.Recommendation)
	}
	if c.DomainCount != 3 {
		t.Errorf("domainCount = %d", c.DomainCount)
	}

	var sawDomain, sawTemporal bool
	for _, d := range c.Divergences {
		switch d.Type {
		case "domain_diversity":
			sawDomain = true
		case "temporal_gap":
			sawTemporal = true
			if len(d.Range) != 2 || d.Range[0] != 1995 || d.Range[1] != 2022 {
				t.Errorf("temporal range = %v", d.Range)
			}
		}
	}
	if !sawDomain || !sawTemporal {
		t.Errorf("divergences = %+v, want domain_diversity and temporal_gap", c.Divergences)
	}
}

// Adding shared keywords while holding domains fixed must never lower the
// score.
func TestCohesionKeywordMonotonicity(t *testing.T) {
	vocab := []string{"plasma", "turbulence", "magnetic", "reconnection", "solar", "corona", "heating"}
	build := func(shared int) []DocumentAnalysis {
		var analyses []DocumentAnalysis
		for d := 0; d < 3; d++ {
			words := append([]string{}, vocab[:shared]...)
			words = append(words, fmt.Sprintf("unique%dalpha unique%dbeta", d, d))
			analyses = append(analyses, analysisFor("physics", strings.Join(words, " "), "2020", "simulation"))
		}
		return analyses
	}
	prev := -1.0
	for shared := 0; shared <= len(vocab); shared++ {
		score := AnalyzeCohesion(build(shared)).Score
		if score < prev {
			t.Fatalf("score dropped from %v to %v at %d shared keywords", prev, score, shared)
		}
		prev = score
	}
}

// With two documents the 40% theme threshold means a keyword held by either
// document counts as common; the ratio is the only filter.
func TestCohesionTwoDocumentThemeRatio(t *testing.T) {
	analyses := []DocumentAnalysis{
		analysisFor("physics", "plasma turbulence magnetic reconnection dynamics", "2020", "simulation"),
		analysisFor("physics", "solar corona heating waves dissipation", "2020", "simulation"),
	}
	c := AnalyzeCohesion(analyses)

	if len(c.CommonThemes) < 5 {
		t.Fatalf("common themes = %v, want every keyword to qualify at 1/2 >= 0.4", c.CommonThemes)
	}
	if c.Score <= 0.6 || c.Recommendation != RecommendThematic {
		t.Errorf("score = %v, recommendation = %q, want thematic", c.Score, c.Recommendation)
	}
}

func TestCommonKeywordsRatioOnly(t *testing.T) {
	sets := [][]string{{"spectroscopy"}, {"interviews"}, {"regression"}}
	// 1 of 3 sets is 33%, above the 30% method threshold.
	got := commonKeywords(sets, commonMethodThreshold)
	if len(got) != 3 {
		t.Errorf("commonKeywords = %v, want all three at 1/3 >= 0.3", got)
	}
	// 1 of 3 sets is below the 40% theme threshold.
	if got := commonKeywords(sets, commonThemeThreshold); len(got) != 0 {
		t.Errorf("commonKeywords = %v, want none at 1/3 < 0.4", got)
	}
}

func TestCohesionEmptyInput(t *testing.T) {
	for _, analyses := range [][]DocumentAnalysis{
		nil,
		{},
		{{Parsed: nil, Error: "completion failed"}},
	} {
		c := AnalyzeCohesion(analyses)
		if c.Score != 0 || c.Recommendation != RecommendPortfolio || c.IsCoherent {
			t.Errorf("AnalyzeCohesion(%v) = score %v, rec %q, coherent %v; want 0/portfolio/false",
				analyses, c.Score, c.Recommendation, c.IsCoherent)
		}
	}
}

func TestCohesionScoreBounds(t *testing.T) {
	sets := [][]DocumentAnalysis{
		{},
		{analysisFor(NotFound, NotFound, NotFound)},
		{
			analysisFor("biology", "gene expression profile analysis", "2018", "sequencing"),
			analysisFor("biology", "gene expression profile analysis", "2019", "sequencing"),
		},
	}
	for i, analyses := range sets {
		c := AnalyzeCohesion(analyses)
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("case %d: score %v outside [0,1]", i, c.Score)
		}
	}
}

func TestCohesionSingleDocument(t *testing.T) {
	c := AnalyzeCohesion([]DocumentAnalysis{analysisFor("chemistry", "catalyst surface kinetics", "2021", "dft")})
	if !c.IsCoherent || c.Recommendation != RecommendThematic {
		t.Errorf("single document should be trivially coherent: %+v", c)
	}
}

func TestCohesionIgnoresUnparsedAndMissingDomains(t *testing.T) {
	analyses := []DocumentAnalysis{
		{Parsed: nil, Error: "boom"},
		analysisFor(NotFound, "some question here", "2020", "survey"),
		analysisFor("Ecology", "habitat fragmentation impact", "2021", "field study"),
		analysisFor("ecology", "habitat fragmentation impact", "2022", "field study"),
	}
	c := AnalyzeCohesion(analyses)
	if c.DomainCount != 1 {
		t.Errorf("domainCount = %d, want 1 (case-insensitive, not-found skipped)", c.DomainCount)
	}
}

func TestExtractKeywords(t *testing.T) {
	kws := ExtractKeywords("The INFLATION inflation model predicts that the inflation rate and cost dynamics rate")
	if len(kws) == 0 || kws[0] != "inflation" {
		t.Fatalf("keywords = %v, want inflation ranked first", kws)
	}
	for _, kw := range kws {
		if len(kw) < 4 {
			t.Errorf("short keyword leaked: %q", kw)
		}
		if _, stop := stopWords[kw]; stop {
			t.Errorf("stop word leaked: %q", kw)
		}
	}
}
