// Package config loads pipeline.Pipeline and pipeline.BatchDriver options
// from a YAML document, the way this codebase's sibling projects load
// declarative configuration with github.com/goccy/go-yaml.
package config

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/NickCrews/feco3/lineparse"
)

// Policy selects which lineparse.Parser a pipeline uses.
type Policy string

const (
	PolicyCoercing Policy = "coercing"
	PolicyLiteral  Policy = "literal"
)

// Parser resolves the Policy to a concrete lineparse.Parser. An empty
// Policy defaults to PolicyCoercing; an unrecognized one is an error.
func (p Policy) Parser() (lineparse.Parser, error) {
	switch p {
	case "", PolicyCoercing:
		return lineparse.CoercingParser{}, nil
	case PolicyLiteral:
		return lineparse.LiteralParser{}, nil
	default:
		return nil, fmt.Errorf("config: unknown policy %q", p)
	}
}

// PipelineOptions is the shape of the pipeline configuration document.
//
//	output_dir: out/
//	policy: coercing   # or "literal"
//	batch_size: 1024
//	separator: ""      # override; empty means auto-detect from header
type PipelineOptions struct {
	OutputDir string `yaml:"output_dir"`
	Policy    Policy `yaml:"policy"`
	BatchSize int    `yaml:"batch_size"`
	Separator string `yaml:"separator"`
}

// DefaultBatchSize is used when BatchSize is zero or negative after Load.
const DefaultBatchSize = 1024

// Load decodes a YAML document into PipelineOptions, filling BatchSize with
// DefaultBatchSize when the document omits or zeroes it.
func Load(data []byte) (PipelineOptions, error) {
	var opts PipelineOptions
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return PipelineOptions{}, fmt.Errorf("config: decode: %w", err)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return opts, nil
}
