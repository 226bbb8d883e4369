// Package yaml loads lexicon configuration and seed vocabularies from YAML
// documents.
package yaml

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/lexicon"
	yamlv3 "gopkg.in/yaml.v3"
)

//go:embed seeds.yaml
var defaultSeeds []byte

// LoadConfig reads thresholds from the YAML file at path over
// lexicon.DefaultConfig and validates the result. An empty path returns
// the defaults.
func LoadConfig(path string) (*lexicon.Config, error) {
	cfg := lexicon.DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := DecodeConfig(bytes.NewReader(data), cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DecodeConfig decodes YAML from r into cfg. Fields absent from the
// document keep their current values.
func DecodeConfig(r io.Reader, cfg *lexicon.Config) error {
	dec := yamlv3.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return lexicon.Errorf(lexicon.EINVALID, "parse config: %v", err)
	}
	return nil
}

// seedGroup is one canonical term and the user terms that map to it.
type seedGroup struct {
	Category  string   `yaml:"category"`
	Canonical string   `yaml:"canonical"`
	Terms     []string `yaml:"terms"`
}

// LoadSeeds decodes a seed document into mappings. Each group lists a
// category, a canonical term and the user terms that resolve to it.
func LoadSeeds(r io.Reader) ([]lexicon.Mapping, error) {
	var groups []seedGroup
	if err := yamlv3.NewDecoder(r).Decode(&groups); err != nil && err != io.EOF {
		return nil, lexicon.Errorf(lexicon.EINVALID, "parse seeds: %v", err)
	}

	var mappings []lexicon.Mapping
	for i, g := range groups {
		category, err := lexicon.ParseCategory(g.Category)
		if err != nil {
			return nil, lexicon.Errorf(lexicon.EINVALID, "seed group %d: %s", i+1, lexicon.ErrorMessage(err))
		}
		canonical := strings.TrimSpace(g.Canonical)
		if canonical == "" {
			return nil, lexicon.Errorf(lexicon.EINVALID, "seed group %d: canonical term required", i+1)
		}
		for _, term := range g.Terms {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			mappings = append(mappings, lexicon.Mapping{
				Category:      category,
				UserTerm:      term,
				CanonicalTerm: canonical,
				Confidence:    1,
				Provenance:    lexicon.ProvenanceSeed,
			})
		}
	}

	return mappings, nil
}

// DefaultSeeds returns the embedded seed vocabulary.
func DefaultSeeds() ([]lexicon.Mapping, error) {
	return LoadSeeds(bytes.NewReader(defaultSeeds))
}
