package assistant

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"finance-sync/internal/errors"
)

// DefaultGoals are used when no goals file is configured.
var DefaultGoals = []string{
	"Spend less than $50/day on average",
	"Reduce dining out expenses",
	"Track all subscriptions",
}

type goalsFile struct {
	Goals []string `yaml:"goals"`
}

// LoadGoals reads a YAML file of the form
//
//	goals:
//	  - Spend less than $50/day on average
//
// An empty path yields DefaultGoals.
func LoadGoals(path string) ([]string, error) {
	if path == "" {
		return DefaultGoals, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ConfigError, "failed to read goals file", err)
	}

	var f goalsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(errors.ConfigError, "malformed goals file", err)
	}

	goals := make([]string, 0, len(f.Goals))
	for _, g := range f.Goals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	if len(goals) == 0 {
		return nil, errors.NewAppErrorf(errors.ConfigError, "goals file %s lists no goals", path)
	}
	return goals, nil
}
