package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a rule set from YAML and validates it. The file layout
// mirrors the Set structure:
//
//	categories:
//	  engine:
//	    weight: 40
//	    deductions:
//	      oil_leaks:
//	        kind: enum
//	        levels: {none: 0, minor: 0.5, major: 1.5}
//	      abnormal_noise:
//	        kind: flag
//	        points: 1.0
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadRules, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads and validates a rule set from a YAML file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadRules, err)
	}
	return Parse(data)
}
