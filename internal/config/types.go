package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure parsed from .detektlint.yaml.
type Config struct {
	Linter   Linter `yaml:"linter"`
	Database string `yaml:"database"`
}

// Linter describes how detekt is invoked and how its output is read.
type Linter struct {
	Binary       string     `yaml:"binary"`
	Jar          StringList `yaml:"jar"`
	DetektConfig StringList `yaml:"detektConfig"`
	Format       string     `yaml:"format"`
	ReportName   string     `yaml:"report_name"`
	OutputDir    string     `yaml:"output_dir"`
	Timeout      string     `yaml:"timeout"`
	Extensions   []string   `yaml:"extensions"`
}

// StringList holds candidate values that may be written either as a single
// YAML string or as a list of strings.
type StringList []string

func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		if v == "" {
			*s = nil
			return nil
		}
		*s = StringList{v}
		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = v
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
}
