package escalation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the rule inputs of the evaluator.
type Policy struct {
	MaxTurns       int      `yaml:"max_turns"`
	RefusalMarkers []string `yaml:"refusal_markers"`
	UrgencyMarkers []string `yaml:"urgency_markers"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxTurns: 8,
		RefusalMarkers: []string{
			"i'm unable to",
			"i am unable to",
			"i cannot help",
			"i can't help",
			"i don't have enough information",
			"i do not have enough information",
			"i'm not able to",
			"i am not able to",
			"please contact our support team",
			"a member of our support team",
			"i'm not sure",
		},
		UrgencyMarkers: []string{
			"urgent",
			"asap",
			"immediately",
			"emergency",
			"unacceptable",
			"angry",
			"furious",
			"frustrated",
			"terrible",
			"worst",
			"speak to a human",
			"talk to a human",
			"real person",
			"manager",
			"lawyer",
			"complaint",
		},
	}
}

// LoadPolicy reads a YAML policy file. Keys missing from the file keep the
// values of base.
func LoadPolicy(path string, base Policy) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read escalation policy: %w", err)
	}

	var file struct {
		MaxTurns       *int     `yaml:"max_turns"`
		RefusalMarkers []string `yaml:"refusal_markers"`
		UrgencyMarkers []string `yaml:"urgency_markers"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parse escalation policy %s: %w", path, err)
	}

	policy := base
	if file.MaxTurns != nil {
		if *file.MaxTurns < 0 {
			return base, fmt.Errorf("escalation policy %s: max_turns must not be negative", path)
		}
		policy.MaxTurns = *file.MaxTurns
	}
	if file.RefusalMarkers != nil {
		policy.RefusalMarkers = file.RefusalMarkers
	}
	if file.UrgencyMarkers != nil {
		policy.UrgencyMarkers = file.UrgencyMarkers
	}
	return policy, nil
}
