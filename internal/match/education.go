package match

import (
	"strings"
	"unicode"

	"github.com/sohv/scorj/internal/profile"
)

// degreeTier maps a recognizable degree token to its score. Short tokens like
// "ms" and "ba" are matched on word boundaries to avoid hits inside ordinary
// words ("systems", "database").
type degreeTier struct {
	token string
	score float64
	word  bool
}

var degreeTiers = []degreeTier{
	{token: "phd", score: 100},
	{token: "doctorate", score: 100},
	{token: "doctoral", score: 100},
	{token: "master", score: 80},
	{token: "mba", score: 80, word: true},
	{token: "ms", score: 80, word: true},
	{token: "ma", score: 80, word: true},
	{token: "bachelor", score: 60},
	{token: "bs", score: 60, word: true},
	{token: "ba", score: 60, word: true},
	{token: "be", score: 60, word: true},
	{token: "associate", score: 40},
	{token: "diploma", score: 20},
	{token: "certificate", score: 20},
}

// EducationResult reports the best education signal on a resume.
type EducationResult struct {
	Score         float64 `json:"score"`
	HighestDegree string  `json:"highest_degree,omitempty"`
}

// EducationAnalyzer scores education entries on a fixed degree hierarchy.
type EducationAnalyzer struct{}

// NewEducationAnalyzer builds an analyzer.
func NewEducationAnalyzer() *EducationAnalyzer {
	return &EducationAnalyzer{}
}

// Analyze returns the highest degree score across all entries. Unrecognized
// degrees score zero.
func (a *EducationAnalyzer) Analyze(entries []profile.EducationEntry) EducationResult {
	var result EducationResult
	for _, entry := range entries {
		score := DegreeScore(entry.Degree)
		if score > result.Score {
			result.Score = score
			result.HighestDegree = strings.TrimSpace(entry.Degree)
		}
	}
	return result
}

// DegreeScore scores a single degree string on the fixed hierarchy.
func DegreeScore(degree string) float64 {
	normalized := normalizeDegree(degree)
	if normalized == "" {
		return 0
	}

	words := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		words[w] = struct{}{}
	}

	for _, tier := range degreeTiers {
		if tier.word {
			if _, ok := words[tier.token]; ok {
				return tier.score
			}
			continue
		}
		if strings.Contains(normalized, tier.token) {
			return tier.score
		}
	}

	return 0
}

func normalizeDegree(degree string) string {
	lower := strings.ToLower(strings.TrimSpace(degree))

	var b strings.Builder
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
