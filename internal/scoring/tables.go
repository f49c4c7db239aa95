package scoring

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SkillWeight pairs a skill name with its importance weight
type SkillWeight struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Weight int    `yaml:"weight" json:"weight" validate:"gt=0"`
}

// Tables is the skill vocabulary used by the scorer. Order matters: matched
// skills are always reported in the order of Skills.
type Tables struct {
	Skills   []SkillWeight `yaml:"skills" json:"skills" validate:"required,min=1,dive"`
	Required []string      `yaml:"required" json:"required" validate:"required,min=1,dive,required"`
}

// DefaultTables returns the built-in campus hiring skill matrix
func DefaultTables() Tables {
	return Tables{
		Skills: []SkillWeight{
			{Name: "Excel", Weight: 10},
			{Name: "SQL", Weight: 15},
			{Name: "HR Analytics", Weight: 20},
			{Name: "Power BI", Weight: 10},
			{Name: "Python", Weight: 10},
			{Name: "Communication", Weight: 10},
			{Name: "Problem Solving", Weight: 15},
		},
		Required: []string{
			"Excel",
			"SQL",
			"HR Analytics",
			"Power BI",
			"Communication",
			"Problem Solving",
		},
	}
}

// MaxScore is the sum of all weights
func (t Tables) MaxScore() int {
	total := 0
	for _, s := range t.Skills {
		total += s.Weight
	}
	return total
}

// Validate checks that the tables can be scored against
func (t Tables) Validate() error {
	validate := validator.New()
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid skill tables: %w", err)
	}

	seen := make(map[string]bool, len(t.Skills))
	for _, s := range t.Skills {
		if seen[s.Name] {
			return fmt.Errorf("invalid skill tables: duplicate skill %q", s.Name)
		}
		seen[s.Name] = true
	}

	return nil
}

// UnknownRequired lists required skills that no weight table entry can ever match
func (t Tables) UnknownRequired() []string {
	known := make(map[string]bool, len(t.Skills))
	for _, s := range t.Skills {
		known[s.Name] = true
	}

	var unknown []string
	for _, r := range t.Required {
		if !known[r] {
			unknown = append(unknown, r)
		}
	}
	return unknown
}

// LoadTables reads skill tables from a YAML file
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read skills file: %w", err)
	}

	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("failed to parse skills file: %w", err)
	}

	if err := t.Validate(); err != nil {
		return Tables{}, err
	}

	// Allowed, but such entries always show up as missing.
	if unknown := t.UnknownRequired(); len(unknown) > 0 {
		log.Printf("Warning: required skills not present in weight table: %v", unknown)
	}

	return t, nil
}
