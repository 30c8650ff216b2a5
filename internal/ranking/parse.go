package ranking

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseResponse reads a model answer into a Response. Markdown fences and
// surrounding prose are stripped and broken JSON is repaired. Scores are
// rounded and clamped to 0-100; entries without an id or a numeric score are
// dropped, as are repeated ids after the first.
func ParseResponse(raw string) (Response, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return Response{}, ErrEmptyResponse
	}

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(cleaned)
		if rerr != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	items, ok := rankingItems(data)
	if !ok {
		return Response{}, fmt.Errorf("%w: no rankings list", ErrMalformedResponse)
	}

	out := Response{Rankings: make([]Ranking, 0, len(items))}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := coerceString(firstOf(m, "candidateId", "candidate_id", "id"))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		score := coerceFloat(firstOf(m, "matchScore", "match_score", "score"))
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		seen[id] = struct{}{}
		out.Rankings = append(out.Rankings, Ranking{
			CandidateID:      id,
			MatchScore:       clampScore(score),
			MatchExplanation: coerceString(firstOf(m, "matchExplanation", "match_explanation", "explanation", "reason")),
		})
	}
	return out, nil
}

func rankingItems(data any) ([]any, bool) {
	switch v := data.(type) {
	case []any:
		return v, true
	case map[string]any:
		list, ok := v["rankings"].([]any)
		return list, ok
	default:
		return nil, false
	}
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func clampScore(v float64) int {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
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

	if start := strings.IndexAny(raw, "{["); start > 0 {
		raw = raw[start:]
	}
	if end := strings.LastIndexAny(raw, "}]"); end != -1 && end < len(raw)-1 {
		raw = raw[:end+1]
	}
	return raw
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
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
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
