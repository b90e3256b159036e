package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sources file validation errors.
var (
	ErrSourceMissingName   = errors.New("source name is required")
	ErrSourceDuplicateName = errors.New("source listed twice")
	ErrInvalidThreshold    = errors.New("recrawl_threshold must be non-negative")
	ErrInvalidMaxPages     = errors.New("max_pages must be non-negative")
)

// SourcesFile is the optional YAML file that tunes individual sources.
//
//	sources:
//	  - name: Berlin/news
//	    enabled: false
//	  - name: Brandenburg/wanted
//	    recrawl_threshold: 20
//	    max_pages: 10
type SourcesFile struct {
	Sources []SourceOverride `yaml:"sources"`
}

// SourceOverride adjusts one source, addressed by its "Jurisdiction/type" name.
// Unset fields keep the built-in defaults.
type SourceOverride struct {
	Name             string `yaml:"name"`
	Enabled          *bool  `yaml:"enabled,omitempty"`
	RecrawlThreshold *int   `yaml:"recrawl_threshold,omitempty"`
	MaxPages         *int   `yaml:"max_pages,omitempty"`
}

// LoadSources reads and validates a sources file.
func LoadSources(path string) (*SourcesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var sf SourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := sf.Validate(); err != nil {
		return nil, fmt.Errorf("sources file validation failed: %w", err)
	}
	return &sf, nil
}

// Validate checks every override.
func (sf *SourcesFile) Validate() error {
	seen := make(map[string]bool, len(sf.Sources))
	for i, s := range sf.Sources {
		if s.Name == "" {
			return fmt.Errorf("%w: sources[%d]", ErrSourceMissingName, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: %s", ErrSourceDuplicateName, s.Name)
		}
		seen[s.Name] = true
		if s.RecrawlThreshold != nil && *s.RecrawlThreshold < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidThreshold, s.Name)
		}
		if s.MaxPages != nil && *s.MaxPages < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidMaxPages, s.Name)
		}
	}
	return nil
}

// Lookup returns the override for name, if any.
func (sf *SourcesFile) Lookup(name string) (SourceOverride, bool) {
	if sf == nil {
		return SourceOverride{}, false
	}
	for _, s := range sf.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceOverride{}, false
}
