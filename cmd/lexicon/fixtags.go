package main

import "fmt"

// Run executes the fix-tags command.
func (c *FixTagsCmd) Run(deps *Dependencies) error {
	res, err := deps.TagFixer.FixTags(deps.Ctx, c.DryRun)
	if err != nil {
		return fail(deps, err)
	}

	for _, ch := range res.Changes {
		fmt.Fprintf(deps.Stdout, "  %s %s: %q -> %q\n", ch.ContentID, ch.Field, ch.Before, ch.After)
	}
	if res.DryRun {
		fmt.Fprintf(deps.Stdout, "[dry run] %d of %d items need tag fixes\n", res.Changed, res.Scanned)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Fixed tags on %d of %d items\n", res.Updated, res.Scanned)
	return nil
}
