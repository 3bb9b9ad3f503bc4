package review

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minParagraphLen  = 100
	numberWindow     = 200
	coverageValidMin = 0.7
	coverageHighBand = 0.8
	coverageMedBand  = 0.6
	qualityHigh      = "high"
	qualityMedium    = "medium"
	qualityLow       = "low"
)

var (
	paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)
	// numberRe matches numeric claims that should carry a nearby citation:
	// percentages, physical units, significance levels, ± and ×10 notation.
	numberRe = regexp.MustCompile(`\d+[.,]?\d*\s*(σ|%|km|kg|Hz|eV|GeV|±|×10|×|m\b|s\b)`)
)

// Validate scores the citation quality of the final synthesis text against
// the analyses and the ledger. Warnings are advisory; validation never blocks
// the pipeline from completing.
func Validate(finalText string, analyses []DocumentAnalysis, ledger *Ledger) ValidationResult {
	tokens := ExtractCitations(finalText)

	coverage := citationCoverage(finalText)

	invalid := 0
	for _, t := range tokens {
		if t.DocIndex < 1 || t.DocIndex > len(analyses) || !ledger.IsValid(t) {
			invalid++
		}
	}

	uncited := ledger.UncitedDocuments(tokens)
	orphanNumbers := uncitedNumbers(finalText)

	var warnings []string
	if coverage < coverageValidMin {
		warnings = append(warnings, fmt.Sprintf("low citation coverage: %.0f%% of paragraphs cite sources", coverage*100))
	}
	if invalid > 0 {
		warnings = append(warnings, fmt.Sprintf("%d citation(s) reference sources missing from the ledger", invalid))
	}
	if len(uncited) > 0 {
		names := make([]string, 0, len(uncited))
		for _, u := range uncited {
			names = append(names, fmt.Sprintf("Doc%d (%s)", u.DocIndex, u.Filename))
		}
		warnings = append(warnings, fmt.Sprintf("%d document(s) never cited: %s", len(uncited), strings.Join(names, ", ")))
	}
	if orphanNumbers > 0 {
		warnings = append(warnings, fmt.Sprintf("%d numeric claim(s) lack a nearby citation", orphanNumbers))
	}

	quality := qualityLow
	switch {
	case coverage > coverageHighBand:
		quality = qualityHigh
	case coverage > coverageMedBand:
		quality = qualityMedium
	}

	if warnings == nil {
		warnings = []string{}
	}
	return ValidationResult{
		IsValid: coverage > coverageValidMin && invalid == 0,
		Quality: quality,
		Metrics: ValidationMetrics{
			CitationCoverage: coverage,
			TotalCitations:   len(tokens),
			InvalidCitations: invalid,
			UncitedDocs:      len(uncited),
			UncitedNumbers:   orphanNumbers,
		},
		Warnings: warnings,
	}
}

// citationCoverage is the fraction of substantial paragraphs (blank-line
// separated, longer than 100 chars) that contain at least one citation token.
// Zero when no paragraph qualifies.
func citationCoverage(text string) float64 {
	var qualifying, cited int
	for _, p := range paragraphSplitRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if len(p) <= minParagraphLen {
			continue
		}
		qualifying++
		if citationRe.MatchString(p) {
			cited++
		}
	}
	if qualifying == 0 {
		return 0
	}
	return float64(cited) / float64(qualifying)
}

// uncitedNumbers counts numeric-with-unit tokens whose surrounding ±200-char
// window contains no citation token.
func uncitedNumbers(text string) int {
	count := 0
	for _, m := range numberRe.FindAllStringIndex(text, -1) {
		start := m[0] - numberWindow
		if start < 0 {
			start = 0
		}
		end := m[1] + numberWindow
		if end > len(text) {
			end = len(text)
		}
		if !citationRe.MatchString(text[start:end]) {
			count++
		}
	}
	return count
}
