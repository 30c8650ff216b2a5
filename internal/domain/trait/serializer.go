package trait

import (
	"sort"
	"strings"
)

// ToText renders the graph as grouped, importance-ordered plain text. Output
// is deterministic for a given graph and header values.
func ToText(g *Graph, professionName, grade string) string {
	sections := make([]string, 0, len(Groups)+1)

	if header := headerLine(professionName, grade); header != "" {
		sections = append(sections, header)
	}

	byGroup := make(map[Group][]Trait, len(Groups))
	for _, t := range g.Traits() {
		grp := GroupOf(t.Category)
		byGroup[grp] = append(byGroup[grp], t)
	}

	for _, grp := range Groups {
		items := byGroup[grp]
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Importance > items[j].Importance
		})

		parts := make([]string, 0, len(items))
		for _, t := range items {
			parts = append(parts, renderTrait(t))
		}
		sections = append(sections, GroupLabel(grp)+": "+strings.Join(parts, "; "))
	}

	return strings.Join(sections, "\n\n")
}

func headerLine(professionName, grade string) string {
	professionName = strings.TrimSpace(professionName)
	grade = strings.TrimSpace(grade)

	parts := make([]string, 0, 2)
	if professionName != "" {
		parts = append(parts, "Profession: "+professionName)
	}
	if grade != "" {
		parts = append(parts, "Grade: "+grade)
	}
	return strings.Join(parts, ", ")
}

func renderTrait(t Trait) string {
	label := t.Label
	if label == "" {
		label = t.ID
	}
	if t.Description == "" {
		return label
	}
	return label + ": " + t.Description
}
