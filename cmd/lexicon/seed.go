package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/yaml"
)

// Run executes the seed command. Seeding is idempotent; existing mappings
// are left untouched.
func (c *SeedCmd) Run(deps *Dependencies) error {
	seeds, err := c.load()
	if err != nil {
		return fail(deps, err)
	}

	inserted := 0
	for i := range seeds {
		ok, err := deps.Mappings.UpsertSeed(deps.Ctx, &seeds[i])
		if err != nil {
			return fail(deps, err)
		}
		if ok {
			inserted++
		}
	}

	fmt.Fprintf(deps.Stdout, "Seeded %d mappings (%d already present)\n", inserted, len(seeds)-inserted)
	return nil
}

func (c *SeedCmd) load() ([]lexicon.Mapping, error) {
	if c.File == "" {
		return yaml.DefaultSeeds()
	}
	f, err := os.Open(c.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return yaml.LoadSeeds(f)
}

// fail prints err to stderr and returns it.
func fail(deps *Dependencies, err error) error {
	fmt.Fprintf(deps.Stderr, "error: %s\n", lexicon.ErrorMessage(err))
	return err
}

// save writes v as JSON when path is set.
func save(deps *Dependencies, path string, v any) error {
	if path == "" {
		return nil
	}
	written, err := deps.Writer.WriteJSON(path, v)
	if err != nil {
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Report saved to %s\n", written)
	return nil
}
