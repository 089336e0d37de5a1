package judge

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseResponse turns a raw model reply into a Result for the given provider.
// Markdown fences are stripped and loosely typed fields are coerced; anything
// that still fails to parse is an error, handled upstream like a transport
// failure.
func ParseResponse(provider, model, raw string) (*Result, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", provider, err)
	}

	score := coerceFloat(data["overall_score"])
	if math.IsNaN(score) {
		score = coerceFloat(data["score"])
	}
	if math.IsNaN(score) {
		score = 0
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	result := &Result{
		Provider:        provider,
		Model:           model,
		OverallScore:    int(math.Round(score)),
		Confidence:      coerceConfidence(data["confidence"]),
		Strengths:       coerceStrings(data["strengths"]),
		Concerns:        coerceStrings(data["concerns"]),
		MatchingSkills:  coerceStrings(data["matching_skills"]),
		MissingSkills:   coerceStrings(data["missing_skills"]),
		Summary:         coerceString(data["summary"]),
		Recommendations: coerceStrings(data["recommendations"]),
		RiskFactors:     coerceStrings(data["risk_factors"]),
		MatchCategory:   strings.ToLower(coerceString(data["match_category"])),
		Raw:             raw,
	}

	return result, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	// Models occasionally wrap the object in prose. Cut to the outermost braces.
	if !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}

	return strings.TrimSpace(raw)
}

func coerceConfidence(v any) Confidence {
	switch strings.ToLower(coerceString(v)) {
	case "high":
		return ConfidenceHigh
	case "low":
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	default:
		return nil
	}
}
