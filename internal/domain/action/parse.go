package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hire/internal/domain/trait"

	"github.com/kaptinlin/jsonrepair"
)

var ErrUnreadablePayload = errors.New("unreadable action payload")

type rawAction struct {
	Type    string      `json:"type"`
	ID      string      `json:"id"`
	Data    *traitInput `json:"data"`
	Updates *traitInput `json:"updates"`
}

type traitInput struct {
	ID          *string          `json:"id"`
	Label       *string          `json:"label"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Importance  *flexFloat       `json:"importance"`
	Relations   *[]relationInput `json:"relations"`
}

type relationInput struct {
	TargetID     string `json:"targetId"`
	Type         string `json:"type"`
	RelationType string `json:"relationType"`
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("importance %q is not a number", s)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// Parse reads an action batch from model or client output. The payload may
// be a JSON array, an object with an "actions" array, or model text wrapping
// either in markdown fences. Elements that do not decode into a create,
// update or delete become Invalid actions at their position.
func Parse(raw []byte) ([]Action, error) {
	elems, err := decodeList(raw)
	if err != nil {
		return nil, err
	}

	out := make([]Action, 0, len(elems))
	for _, el := range elems {
		out = append(out, parseOne(el))
	}
	return out, nil
}

func decodeList(raw []byte) ([]json.RawMessage, error) {
	text := extractJSON(string(raw))
	if text == "" {
		return nil, fmt.Errorf("%w: empty", ErrUnreadablePayload)
	}

	if elems, ok := tryList(text); ok {
		return elems, nil
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePayload, err)
	}
	if elems, ok := tryList(repaired); ok {
		return elems, nil
	}
	return nil, ErrUnreadablePayload
}

func tryList(text string) ([]json.RawMessage, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err == nil {
		return elems, true
	}

	var wrapped struct {
		Actions []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && wrapped.Actions != nil {
		return wrapped.Actions, true
	}
	return nil, false
}

func parseOne(raw json.RawMessage) Action {
	var ra rawAction
	if err := json.Unmarshal(raw, &ra); err != nil {
		return Invalid(err.Error())
	}

	switch Type(strings.ToLower(strings.TrimSpace(ra.Type))) {
	case TypeCreate:
		if ra.Data == nil {
			return Invalid("create without data")
		}
		t := ra.Data.toTrait()
		if t.ID == "" {
			t.ID = strings.TrimSpace(ra.ID)
		}
		if t.ID == "" {
			return Invalid("create without id")
		}
		if t.Label == "" {
			return Invalid("create without label")
		}
		return Create(t)

	case TypeUpdate:
		id := strings.TrimSpace(ra.ID)
		if id == "" && ra.Updates != nil && ra.Updates.ID != nil {
			id = strings.TrimSpace(*ra.Updates.ID)
		}
		if id == "" {
			return Invalid("update without id")
		}
		if ra.Updates == nil {
			return Invalid("update without updates")
		}
		return Update(id, ra.Updates.toPatch())

	case TypeDelete:
		id := strings.TrimSpace(ra.ID)
		if id == "" {
			return Invalid("delete without id")
		}
		return Delete(id)

	default:
		return Invalid(fmt.Sprintf("unknown action type %q", ra.Type))
	}
}

func (in *traitInput) toTrait() trait.Trait {
	t := trait.Trait{
		ID:          deref(in.ID),
		Label:       strings.TrimSpace(deref(in.Label)),
		Description: deref(in.Description),
		Category:    trait.Category(deref(in.Category)),
		Importance:  trait.DefaultImportance,
	}
	t.ID = strings.TrimSpace(t.ID)
	if in.Importance != nil {
		t.Importance = float64(*in.Importance)
	}
	if in.Relations != nil {
		t.Relations = toRelations(*in.Relations)
	}
	return t
}

func (in *traitInput) toPatch() trait.Patch {
	p := trait.Patch{
		Label:       in.Label,
		Description: in.Description,
		Category:    in.Category,
	}
	if in.Importance != nil {
		v := float64(*in.Importance)
		p.Importance = &v
	}
	if in.Relations != nil {
		rels := toRelations(*in.Relations)
		p.Relations = &rels
	}
	return p
}

func toRelations(in []relationInput) []trait.Relation {
	out := make([]trait.Relation, 0, len(in))
	for _, r := range in {
		rt := r.Type
		if strings.TrimSpace(rt) == "" {
			rt = r.RelationType
		}
		out = append(out, trait.Relation{TargetID: r.TargetID, Type: trait.RelationType(rt)})
	}
	return out
}

// extractJSON pulls the JSON body out of model text: the first fenced block
// if there is one, trimmed to the outermost brackets.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "```"); start != -1 {
		body := strings.TrimPrefix(raw[start+3:], "json")
		if end := strings.Index(body, "```"); end != -1 {
			body = body[:end]
		}
		raw = body
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	if start := strings.IndexAny(raw, "{["); start > 0 {
		raw = raw[start:]
	}
	if end := strings.LastIndexAny(raw, "}]"); end != -1 && end < len(raw)-1 {
		raw = raw[:end+1]
	}
	return raw
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
