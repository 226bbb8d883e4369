package main

import (
	"fmt"

	"github.com/fwojciec/lexicon"
)

// Run executes the mappings command.
func (c *MappingsCmd) Run(deps *Dependencies) error {
	active := !c.Inactive
	filter := lexicon.MappingFilter{Active: &active}
	if c.Category != "" {
		category, err := lexicon.ParseCategory(c.Category)
		if err != nil {
			return fail(deps, err)
		}
		filter.Category = &category
	}

	mappings, err := deps.Mappings.FindMappings(deps.Ctx, filter)
	if err != nil {
		return fail(deps, err)
	}

	if len(mappings) == 0 {
		fmt.Fprintln(deps.Stdout, "No mappings found. Use 'lexicon seed' to load the vocabulary.")
		return nil
	}

	for _, m := range mappings {
		fmt.Fprintf(deps.Stdout, "%s  %-13s %s -> %s  (%s, %.2f, used %d)\n",
			m.ID, m.Category, m.UserTerm, m.CanonicalTerm, m.Provenance, m.Confidence, m.UsageCount)
	}
	return nil
}

// Run executes the promote command.
func (c *PromoteCmd) Run(deps *Dependencies) error {
	m, err := deps.Promoter.PromoteMapping(deps.Ctx, c.ID)
	if err != nil {
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Promoted %q -> %q (%s)\n", m.UserTerm, m.CanonicalTerm, m.Category)
	return nil
}

// Run executes the deactivate command.
func (c *DeactivateCmd) Run(deps *Dependencies) error {
	if err := deps.Mappings.DeactivateMapping(deps.Ctx, c.ID); err != nil {
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Deactivated mapping %s\n", c.ID)
	return nil
}
