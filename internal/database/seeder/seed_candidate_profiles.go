package seeder

import (
	"context"
	"encoding/json"
	"fmt"

	"hire/internal/database"
	"hire/internal/domain/trait"

	"github.com/google/uuid"
)

// CandidateProfilesSeeder inserts a handful of searchable demo candidates.
// Existing rows are left untouched.
type CandidateProfilesSeeder struct{}

func (CandidateProfilesSeeder) Name() string { return "candidate_profiles" }

type demoProfile struct {
	ID             string
	Name           string
	ProfessionName string
	Grade          string
	Traits         []trait.Trait
}

var demoProfiles = []demoProfile{
	{
		ID:             "0b6f2c1e-3c55-4c36-9d51-6f0a1d0c0001",
		Name:           "Alex Morgan",
		ProfessionName: "Backend developer",
		Grade:          "Senior",
		Traits: []trait.Trait{
			{ID: "go", Label: "Go", Description: "Seven years of production services", Category: trait.CategorySkill, Importance: 5},
			{ID: "postgres", Label: "PostgreSQL", Description: "Schema design and query tuning", Category: trait.CategoryTool, Importance: 4,
				Relations: []trait.Relation{{TargetID: "payments", Type: trait.RelationPartOf}}},
			{ID: "payments", Label: "Payments platform", Description: "Card processing for a fintech", Category: trait.CategoryProject, Importance: 4,
				Relations: []trait.Relation{{TargetID: "go", Type: trait.RelationUses}}},
			{ID: "fintech", Label: "Fintech", Category: trait.CategoryIndustry, Importance: 3},
			{ID: "latency", Label: "p99 latency down 40%", Category: trait.CategoryResult, Importance: 4},
		},
	},
	{
		ID:             "0b6f2c1e-3c55-4c36-9d51-6f0a1d0c0002",
		Name:           "Dana Lee",
		ProfessionName: "Data analyst",
		Grade:          "Middle",
		Traits: []trait.Trait{
			{ID: "sql", Label: "SQL", Description: "Daily reporting on large warehouses", Category: trait.CategorySkill, Importance: 5},
			{ID: "python", Label: "Python", Description: "Pandas and notebooks", Category: trait.CategorySkill, Importance: 4},
			{ID: "retail", Label: "Retail", Category: trait.CategoryIndustry, Importance: 3},
			{ID: "churn", Label: "Churn model", Description: "Cut churn by 8% in a year", Category: trait.CategoryArtifact, Importance: 4,
				Relations: []trait.Relation{{TargetID: "python", Type: trait.RelationUses}}},
		},
	},
	{
		ID:             "0b6f2c1e-3c55-4c36-9d51-6f0a1d0c0003",
		Name:           "Sam Rivera",
		ProfessionName: "Product designer",
		Grade:          "Lead",
		Traits: []trait.Trait{
			{ID: "figma", Label: "Figma", Category: trait.CategoryTool, Importance: 5},
			{ID: "research", Label: "User research", Description: "Interview programs for B2B tools", Category: trait.CategorySkill, Importance: 4},
			{ID: "mentor", Label: "Mentoring", Description: "Grew a team of four designers", Category: trait.CategoryAttribute, Importance: 3},
		},
	},
}

func (CandidateProfilesSeeder) Run(ctx context.Context, db database.DB) (int, error) {
	if err := requireColumns(ctx, db, "candidate_profiles", "id", "name", "profession_name", "grade", "is_searchable", "graph"); err != nil {
		return 0, err
	}

	inserted := 0
	err := database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, dp := range demoProfiles {
			doc, err := demoGraph(dp)
			if err != nil {
				return fmt.Errorf("demo profile %s: %w", dp.Name, err)
			}

			n, err := tx.Exec(
				ctx,
				`INSERT INTO candidate_profiles (id, name, profession_name, grade, is_searchable, graph)
				 VALUES ($1, $2, $3, $4, TRUE, $5::jsonb)
				 ON CONFLICT (id) DO NOTHING`,
				uuid.MustParse(dp.ID), dp.Name, dp.ProfessionName, dp.Grade, doc,
			)
			if err != nil {
				return err
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func demoGraph(dp demoProfile) ([]byte, error) {
	g := trait.NewGraph()
	for _, t := range dp.Traits {
		if err := g.Upsert(t); err != nil {
			return nil, err
		}
	}
	g.ReconcileDanglingRelations()
	return json.Marshal(g)
}
