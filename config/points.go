package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Dosada05/padel-circuit/models"
)

//go:embed points.yaml
var defaultPoints []byte

// PointsTable is the file form of the points configuration.
type PointsTable struct {
	Default    map[models.Instance]int            `yaml:"default"`
	Categories map[string]map[models.Instance]int `yaml:"categories"`
}

// LoadPoints reads the points table from path, or the embedded default when path is empty.
func LoadPoints(path string) (*PointsTable, error) {
	data := defaultPoints
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read points file: %w", err)
		}
		data = b
	}
	return ParsePoints(data)
}

func ParsePoints(data []byte) (*PointsTable, error) {
	var t PointsTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal points table: %w", err)
	}
	if err := validateInstances("default", t.Default); err != nil {
		return nil, err
	}
	for name, rules := range t.Categories {
		if err := validateInstances(name, rules); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func validateInstances(table string, rules map[models.Instance]int) error {
	for inst, pts := range rules {
		if !inst.Valid() {
			return fmt.Errorf("points table %s: unknown instance %q", table, inst)
		}
		if pts < 0 {
			return fmt.Errorf("points table %s: negative points for %s", table, inst)
		}
	}
	return nil
}

// Rules flattens one table into points rules for the given category (nil for the default).
func Rules(categoryID *int, table map[models.Instance]int) []models.PointsRule {
	rules := make([]models.PointsRule, 0, len(table))
	for _, inst := range models.AllInstances() {
		if pts, ok := table[inst]; ok {
			rules = append(rules, models.PointsRule{CategoryID: categoryID, Instance: inst, Points: pts})
		}
	}
	return rules
}
