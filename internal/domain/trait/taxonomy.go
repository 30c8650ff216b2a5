package trait

import "strings"

type Group string

const (
	GroupSkills     Group = "skills"
	GroupRoles      Group = "roles"
	GroupDomains    Group = "domains"
	GroupChallenges Group = "challenges"
	GroupActions    Group = "actions"
	GroupMetrics    Group = "metrics"
	GroupArtifacts  Group = "artifacts"
	GroupAttributes Group = "attributes"
	GroupOther      Group = "other"
)

// Groups lists the semantic groups in rendering order.
var Groups = []Group{
	GroupSkills,
	GroupRoles,
	GroupDomains,
	GroupChallenges,
	GroupActions,
	GroupMetrics,
	GroupArtifacts,
	GroupAttributes,
	GroupOther,
}

var groupLabels = map[Group]string{
	GroupSkills:     "Skills",
	GroupRoles:      "Roles",
	GroupDomains:    "Domains",
	GroupChallenges: "Challenges",
	GroupActions:    "Actions",
	GroupMetrics:    "Metrics",
	GroupArtifacts:  "Artifacts",
	GroupAttributes: "Attributes",
	GroupOther:      "Other",
}

var categoryGroups = map[Category]Group{
	CategorySkill:      GroupSkills,
	CategoryTool:       GroupSkills,
	CategoryRole:       GroupRoles,
	CategoryDomain:     GroupDomains,
	CategoryIndustry:   GroupDomains,
	CategoryChallenge:  GroupChallenges,
	CategoryAction:     GroupActions,
	CategoryMetric:     GroupMetrics,
	CategoryResult:     GroupMetrics,
	CategoryArtifact:   GroupArtifacts,
	CategoryProject:    GroupArtifacts,
	CategoryAttribute:  GroupAttributes,
	CategoryMotivation: GroupAttributes,
	CategoryOther:      GroupOther,
}

// Legacy four-bucket labels and common model spellings.
var categoryAliases = map[string]Category{
	"skills":         CategorySkill,
	"context":        CategoryDomain,
	"artifacts":      CategoryArtifact,
	"attributes":     CategoryAttribute,
	"hard_skill":     CategorySkill,
	"technology":     CategorySkill,
	"competency":     CategorySkill,
	"tools":          CategoryTool,
	"position":       CategoryRole,
	"title":          CategoryRole,
	"sector":         CategoryIndustry,
	"problem":        CategoryChallenge,
	"task":           CategoryAction,
	"responsibility": CategoryAction,
	"achievement":    CategoryResult,
	"outcome":        CategoryResult,
	"impact":         CategoryResult,
	"kpi":            CategoryMetric,
	"product":        CategoryArtifact,
	"portfolio":      CategoryArtifact,
	"soft_skill":     CategoryAttribute,
	"personality":    CategoryAttribute,
	"value":          CategoryAttribute,
	"goal":           CategoryMotivation,
	"motivation":     CategoryMotivation,
}

var relationAliases = map[string]RelationType{
	"use":             RelationUses,
	"uses":            RelationUses,
	"requires":        RelationUses,
	"depends_on":      RelationUses,
	"built_with":      RelationUses,
	"enables":         RelationEnables,
	"enable":          RelationEnables,
	"leads_to":        RelationEnables,
	"results_in":      RelationEnables,
	"causes":          RelationEnables,
	"produces":        RelationEnables,
	"part_of":         RelationPartOf,
	"partof":          RelationPartOf,
	"belongs_to":      RelationPartOf,
	"component_of":    RelationPartOf,
	"child_of":        RelationPartOf,
	"related":         RelationRelated,
	"related_to":      RelationRelated,
	"relates_to":      RelationRelated,
	"associated_with": RelationRelated,
}

// MigrateCategory maps any stored or model-proposed category label onto the
// current taxonomy. Unknown labels land in CategoryOther.
func MigrateCategory(raw string) Category {
	key := normalizeLabel(raw)
	if key == "" {
		return CategoryOther
	}
	if _, ok := categoryGroups[Category(key)]; ok {
		return Category(key)
	}
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	if singular := strings.TrimSuffix(key, "s"); singular != key {
		if _, ok := categoryGroups[Category(singular)]; ok {
			return Category(singular)
		}
		if c, ok := categoryAliases[singular]; ok {
			return c
		}
	}
	return CategoryOther
}

// MigrateRelationType maps a relation label onto the current relation
// vocabulary. Unknown labels become RelationRelated.
func MigrateRelationType(raw string) RelationType {
	key := normalizeLabel(raw)
	if rt, ok := relationAliases[key]; ok {
		return rt
	}
	return RelationRelated
}

func GroupOf(c Category) Group {
	if g, ok := categoryGroups[MigrateCategory(string(c))]; ok {
		return g
	}
	return GroupOther
}

func GroupLabel(g Group) string {
	if l, ok := groupLabels[g]; ok {
		return l
	}
	return groupLabels[GroupOther]
}

func normalizeLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("-", " ", "/", " ", ".", " ").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}
