// Package weights loads the declarative subject -> module -> exercise weight tree.
package weights

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultWeight applies to any node whose weight is omitted.
const DefaultWeight = 1.0

// Node is a named, weighted item at any level of the tree.
type Node struct {
	Name   string   `yaml:"name"`
	Weight *float64 `yaml:"weight,omitempty"`
}

// Value returns the configured weight or DefaultWeight when omitted.
func (n Node) Value() float64 {
	if n.Weight == nil {
		return DefaultWeight
	}
	return *n.Weight
}

// Exercise is a leaf of the tree; its weight scales an assignment grade within a module.
type Exercise struct {
	Node `yaml:",inline"`
}

// Module weighs its exercises and is itself weighted within a subject.
type Module struct {
	Node      `yaml:",inline"`
	Exercises map[int64]Exercise `yaml:"exercises"`
}

// Subject is a top-level node; its weight counts towards the overall grade.
type Subject struct {
	Node    `yaml:",inline"`
	Modules map[int64]Module `yaml:"modules"`
}

// Configuration is the root of the weights tree. Sibling weights are expected to sum to 1.0
// but that is left to whoever authors the file.
type Configuration struct {
	Subjects map[int64]Subject `yaml:"subjects"`
}

// Load reads the tree from path. A missing file yields an empty configuration.
func Load(path string) (*Configuration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Configuration{}, nil
		}
		return nil, fmt.Errorf("read weights config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a YAML document into a Configuration.
func Parse(raw []byte) (*Configuration, error) {
	cfg := &Configuration{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse weights config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Configuration) validate() error {
	for subjectID, subject := range c.Subjects {
		if err := checkWeight("subject", subjectID, subject.Value()); err != nil {
			return err
		}
		for moduleID, module := range subject.Modules {
			if err := checkWeight("module", moduleID, module.Value()); err != nil {
				return err
			}
			for exerciseID, exercise := range module.Exercises {
				if err := checkWeight("exercise", exerciseID, exercise.Value()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkWeight rejects negative and non-finite weights.
func checkWeight(level string, id int64, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s %d: weight must be a finite number >= 0, got %v", level, id, v)
	}
	return nil
}
