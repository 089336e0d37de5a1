package intent

import (
	"regexp"
	"strings"

	"github.com/sohv/scorj/internal/match"
	"github.com/sohv/scorj/internal/profile"
)

// Dimension names used in alignment and bonus maps.
const (
	DimTechnical       = "technical"
	DimWorkArrangement = "work_arrangement"
	DimAvailability    = "availability"
	DimRoleFocus       = "role_focus"
	DimExperienceLevel = "experience_level"
)

// techVocabulary is the fixed set of technologies scanned out of job
// descriptions when the posting has no explicit skill list.
var techVocabulary = []string{
	"python", "java", "javascript", "typescript", "go", "rust", "c++", "c#",
	"react", "angular", "vue", "node", "django", "flask", "spring",
	"sql", "postgresql", "mysql", "mongodb", "redis",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform",
	"kafka", "spark", "airflow", "tensorflow", "pytorch",
	"graphql", "rest", "grpc", "linux", "git",
}

// roleFocusKeywords maps a focus area to words signalling it in a posting.
var roleFocusKeywords = map[string][]string{
	"frontend":  {"frontend", "front-end", "ui", "react", "angular", "vue", "css"},
	"backend":   {"backend", "back-end", "api", "server", "microservice", "database"},
	"fullstack": {"fullstack", "full-stack", "full stack"},
	"data":      {"data", "analytics", "pipeline", "etl", "warehouse", "machine learning"},
	"devops":    {"devops", "infrastructure", "kubernetes", "terraform", "ci/cd", "sre"},
	"mobile":    {"mobile", "ios", "android", "flutter", "react native"},
	"web":       {"web", "website", "webapp"},
}

var requiredPhrasePattern = regexp.MustCompile(`(?i)(?:required|must have|must-have|essential)[:\s]+([^.\n]+)`)

// jobSignals is everything alignment validation needs from the posting,
// derived once per analysis.
type jobSignals struct {
	arrangement     string
	urgent          bool
	requiredSkills  []string
	preferredSkills []string
	focusAreas      map[string]struct{}
	level           profile.ExperienceLevel
}

func deriveJobSignals(job *profile.JobProfile) jobSignals {
	text := strings.ToLower(job.Title + " " + job.Description)

	signals := jobSignals{
		arrangement: deriveArrangement(text),
		urgent:      containsAny(text, "urgent", "immediately", "immediate start", "asap"),
		focusAreas:  deriveFocusAreas(text),
		level:       job.Level(),
	}

	required := make(map[string]struct{})
	for _, skill := range job.RequiredSkills {
		required[match.NormalizeSkill(skill)] = struct{}{}
	}

	// Technologies named right after "required"/"must have" phrasing count as
	// required even without an explicit skill list.
	requiredText := ""
	for _, m := range requiredPhrasePattern.FindAllStringSubmatch(text, -1) {
		requiredText += " " + m[1]
	}

	for _, tech := range techVocabulary {
		if !containsWord(text, tech) {
			continue
		}
		normalized := match.NormalizeSkill(tech)
		if _, ok := required[normalized]; ok {
			continue
		}
		if containsWord(requiredText, tech) {
			required[normalized] = struct{}{}
		} else {
			signals.preferredSkills = append(signals.preferredSkills, normalized)
		}
	}

	for skill := range required {
		if skill != "" {
			signals.requiredSkills = append(signals.requiredSkills, skill)
		}
	}

	return signals
}

func deriveArrangement(text string) string {
	switch {
	case containsAny(text, "hybrid"):
		return "hybrid"
	case containsAny(text, "remote", "work from home", "distributed team"):
		return "remote"
	case containsAny(text, "onsite", "on-site", "in-person", "in office", "office-based"):
		return "onsite"
	default:
		return "flexible"
	}
}

func deriveFocusAreas(text string) map[string]struct{} {
	areas := make(map[string]struct{})
	for area, keywords := range roleFocusKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				areas[area] = struct{}{}
				break
			}
		}
	}
	return areas
}

// alignTechnical validates claimed skills against the job's required and
// preferred skill sets. Learn-intentions never count as claimed, and a zero
// skill base means no signal to validate against.
func alignTechnical(claims []SkillClaim, signals jobSignals) float64 {
	if len(claims) == 0 {
		return 0
	}
	if len(signals.requiredSkills) == 0 && len(signals.preferredSkills) == 0 {
		return 0
	}

	claimed := make(map[string]float64)
	for _, claim := range claims {
		if claim.WantsToLearn || claim.Confidence < minClaimStrength {
			continue
		}
		normalized := match.NormalizeSkill(claim.Skill)
		if normalized == "" {
			continue
		}
		if claim.Confidence > claimed[normalized] {
			claimed[normalized] = claim.Confidence
		}
	}
	if len(claimed) == 0 {
		return 0
	}

	var avgConfidence float64
	for _, conf := range claimed {
		avgConfidence += conf
	}
	avgConfidence /= float64(len(claimed))

	requiredScore := bucketScore(signals.requiredSkills, claimed)
	preferredScore := bucketScore(signals.preferredSkills, claimed)

	var alignment float64
	switch {
	case len(signals.requiredSkills) > 0 && len(signals.preferredSkills) > 0:
		alignment = 0.7*requiredScore + 0.3*preferredScore
	case len(signals.requiredSkills) > 0:
		alignment = requiredScore
	default:
		alignment = preferredScore
	}

	multiplier := avgConfidence
	if multiplier < 0.5 {
		multiplier = 0.5
	}

	return clampAlignment(alignment * multiplier)
}

// bucketScore scores coverage of one skill bucket: exact matches count fully,
// partial (substring) matches count half.
func bucketScore(bucket []string, claimed map[string]float64) float64 {
	if len(bucket) == 0 {
		return 0
	}

	var score float64
	for _, skill := range bucket {
		if _, ok := claimed[skill]; ok {
			score++
			continue
		}
		for c := range claimed {
			if strings.Contains(c, skill) || strings.Contains(skill, c) {
				score += 0.5
				break
			}
		}
	}

	return score / float64(len(bucket))
}

// alignArrangement scores a claimed preference against the derived job
// arrangement, scaled by how strongly the preference was stated.
func alignArrangement(claim *ArrangementClaim, signals jobSignals) float64 {
	if claim == nil || claim.Strength < minClaimStrength {
		return 0
	}

	pref := strings.ToLower(strings.TrimSpace(claim.Preference))
	jobArr := signals.arrangement

	if pref == "" {
		return 0
	}

	var compat float64
	switch {
	case pref == jobArr:
		compat = 1.0
	case pref == "flexible" || jobArr == "flexible":
		compat = 0.8
	case pref == "remote" && jobArr == "hybrid":
		compat = 0.7
	case pref == "hybrid" && (jobArr == "remote" || jobArr == "onsite"):
		compat = 0.6
	case pref == "onsite" && jobArr == "hybrid":
		compat = 0.5
	default:
		// remote vs onsite in either direction is a hard conflict.
		return 0
	}

	return clampAlignment(compat * claim.Strength)
}

func alignAvailability(claim *AvailabilityClaim, signals jobSignals) float64 {
	if claim == nil || claim.Strength < minClaimStrength {
		return 0
	}

	var fit float64
	switch strings.ToLower(strings.TrimSpace(claim.Timeline)) {
	case "immediate":
		fit = 1.0
	case "weeks", "flexible":
		if signals.urgent {
			fit = 0.7
		} else {
			fit = 0.8
		}
	case "months":
		if signals.urgent {
			return 0
		}
		fit = 0.4
	case "unknown":
		fit = 0.5
	default:
		return 0
	}

	return clampAlignment(fit * claim.Strength)
}

func alignRoleFocus(claim *FocusClaim, signals jobSignals) float64 {
	if claim == nil || claim.Strength < minClaimStrength || len(claim.Areas) == 0 {
		return 0
	}
	if len(signals.focusAreas) == 0 {
		return 0
	}

	matched := 0
	total := 0
	for _, area := range claim.Areas {
		area = strings.ToLower(strings.TrimSpace(area))
		if area == "" {
			continue
		}
		total++
		if _, ok := signals.focusAreas[area]; ok {
			matched++
		}
	}
	if total == 0 {
		return 0
	}

	return float64(matched) / float64(total)
}

// levelMatrix scores a claimed seniority against the posting's target level.
// Overqualification earns nothing, same as underqualification for senior
// roles.
var levelMatrix = map[string]map[profile.ExperienceLevel]float64{
	"junior": {profile.LevelEntry: 1.0, profile.LevelMid: 0.6, profile.LevelSenior: 0.0},
	"mid":    {profile.LevelEntry: 0.7, profile.LevelMid: 1.0, profile.LevelSenior: 0.5},
	"senior": {profile.LevelEntry: 0.0, profile.LevelMid: 0.6, profile.LevelSenior: 1.0},
	"expert": {profile.LevelEntry: 0.0, profile.LevelMid: 0.3, profile.LevelSenior: 1.0},
}

func alignExperienceLevel(claim *LevelClaim, signals jobSignals) float64 {
	if claim == nil || claim.Strength < minClaimStrength {
		return 0
	}
	if signals.level == profile.LevelUnspecified {
		return 0
	}

	row, ok := levelMatrix[strings.ToLower(strings.TrimSpace(claim.Level))]
	if !ok {
		return 0
	}

	return clampAlignment(row[signals.level] * claim.Strength)
}

func clampAlignment(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func containsAny(text string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}

// containsWord matches short tokens on rough word boundaries so "go" does not
// hit "google" and "c#" still matches literally.
func containsWord(text, word string) bool {
	if len(word) > 3 {
		return strings.Contains(text, word)
	}

	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos == -1 {
			return false
		}
		start := idx + pos
		end := start + len(word)

		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
