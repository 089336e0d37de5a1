// Package match computes the deterministic side of a scoring run: skill
// overlap, experience depth and relevance, education level, and the weighted
// composite built from them.
package match

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/embedding"
)

const (
	// stringMatchThreshold is the minimum string similarity to pair skills.
	stringMatchThreshold = 0.75
	// embeddingMatchThreshold is the minimum cosine similarity to pair skills.
	embeddingMatchThreshold = 0.5
	// substringFloor is the similarity assigned when one normalized skill
	// contains the other, e.g. "react" inside "reactjs".
	substringFloor = 0.8
)

// skillAliases folds common spelling variants into one canonical form.
var skillAliases = map[string]string{
	"reactjs":       "react",
	"react.js":      "react",
	"nodejs":        "node",
	"node.js":       "node",
	"js":            "javascript",
	"ts":            "typescript",
	"k8s":           "kubernetes",
	"postgres":      "postgresql",
	"golang":        "go",
	"py":            "python",
	"ml":            "machine learning",
	"ai":            "artificial intelligence",
	"aws":           "amazon web services",
	"gcp":           "google cloud platform",
	"ci/cd":         "cicd",
	"restful":       "rest",
	"rest api":      "rest",
	"rest apis":     "rest",
	"mongo":         "mongodb",
	"elasticsearch": "elastic search",
}

// SkillsResult reports how a candidate's skills cover a job's requirements.
type SkillsResult struct {
	MatchPercentage float64  `json:"match_percentage"`
	Matched         []string `json:"matched"`
	Missing         []string `json:"missing"`
}

// SkillMatcher pairs candidate skills with required skills. A nil embedding
// provider limits matching to the string path.
type SkillMatcher struct {
	provider embedding.Provider
	logger   *zap.Logger
}

// NewSkillMatcher builds a matcher. Both arguments may be nil.
func NewSkillMatcher(provider embedding.Provider, logger *zap.Logger) *SkillMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SkillMatcher{provider: provider, logger: logger}
}

// NormalizeSkill lowercases, strips punctuation except '+' and '#', collapses
// whitespace and folds known aliases.
func NormalizeSkill(skill string) string {
	lower := strings.ToLower(strings.TrimSpace(skill))

	var b strings.Builder
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == '/':
			b.WriteRune(' ')
		}
	}

	normalized := strings.Join(strings.Fields(b.String()), " ")
	if canonical, ok := skillAliases[normalized]; ok {
		return canonical
	}
	if canonical, ok := skillAliases[lower]; ok {
		return canonical
	}
	return normalized
}

// similarity scores two normalized skills on [0,1] using exact match,
// substring containment and levenshtein distance.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	score := levenshteinRatio(a, b)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		if score < substringFloor {
			score = substringFloor
		}
	}
	return score
}

func levenshteinRatio(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// Match scores candidate skills against required skills. Each candidate skill
// is consumed by at most one requirement. Empty requirement lists yield a zero
// result, never an error.
func (m *SkillMatcher) Match(ctx context.Context, candidate, required []string) SkillsResult {
	result := SkillsResult{Matched: []string{}, Missing: []string{}}
	if len(required) == 0 {
		return result
	}

	normCandidate := make([]string, len(candidate))
	for i, s := range candidate {
		normCandidate[i] = NormalizeSkill(s)
	}

	vectors := m.embedAll(ctx, normCandidate, required)

	consumed := make([]bool, len(candidate))
	for ri, req := range required {
		normReq := NormalizeSkill(req)

		best := -1
		bestScore := 0.0
		for ci := range candidate {
			if consumed[ci] {
				continue
			}

			score := similarity(normCandidate[ci], normReq)
			accepted := score >= stringMatchThreshold
			if !accepted && vectors != nil {
				if sem := embedding.Cosine(vectors.candidate[ci], vectors.required[ri]); sem >= embeddingMatchThreshold {
					accepted = true
					if sem > score {
						score = sem
					}
				}
			}
			if accepted && score > bestScore {
				bestScore = score
				best = ci
			}
		}

		if best >= 0 {
			consumed[best] = true
			result.Matched = append(result.Matched, req)
		} else {
			result.Missing = append(result.Missing, req)
		}
	}

	result.MatchPercentage = math.Round(float64(len(result.Matched)) / float64(len(required)) * 100)
	return result
}

type skillVectors struct {
	candidate [][]float32
	required  [][]float32
}

// embedAll fetches embeddings for both skill lists in one request. Any failure
// falls back to string matching only.
func (m *SkillMatcher) embedAll(ctx context.Context, candidate, required []string) *skillVectors {
	if m.provider == nil || len(candidate) == 0 {
		return nil
	}

	normReq := make([]string, len(required))
	for i, s := range required {
		normReq[i] = NormalizeSkill(s)
	}

	texts := make([]string, 0, len(candidate)+len(normReq))
	texts = append(texts, candidate...)
	texts = append(texts, normReq...)

	vectors, err := m.provider.Embed(ctx, texts)
	if err != nil {
		m.logger.Warn("skill embedding failed, using string matching only", zap.Error(err))
		return nil
	}
	if len(vectors) != len(texts) {
		return nil
	}

	return &skillVectors{
		candidate: vectors[:len(candidate)],
		required:  vectors[len(candidate):],
	}
}
