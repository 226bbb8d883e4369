package hygiene_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/hygiene"
	"github.com/fwojciec/lexicon/mock"
	"github.com/fwojciec/lexicon/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"array literal", `{counselors, "career exploration", eBook}`, "counselors, career exploration, eBook"},
		{"quoted comma", `{"FAFSA, state aid",counselors}`, "FAFSA, state aid, counselors"},
		{"empty array", "{}", ""},
		{"blank", "  ", ""},
		{"plain string", " FAFSA ,counselors,, ", "FAFSA, counselors"},
		{"case-insensitive duplicates", "FAFSA, fafsa, Counselors", "FAFSA, Counselors"},
		{"already clean", "FAFSA, counselors", "FAFSA, counselors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, hygiene.NormalizeTags(tt.in))
		})
	}
}

func TestTagFixer_FixTags(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*sqlite.ContentService, map[string]string) {
		t.Helper()
		db := sqlite.NewDB(":memory:")
		require.NoError(t, db.Open())
		t.Cleanup(func() { db.Close() })
		svc := sqlite.NewContentService(db)

		ids := make(map[string]string)
		for _, item := range []*lexicon.ContentItem{
			{Title: "Array", Tags: `{counselors,"career exploration"}`, AutoTags: "{}"},
			{Title: "Clean", Tags: "FAFSA, counselors"},
			{Title: "Dupes", AutoTags: "demo, Demo"},
		} {
			require.NoError(t, svc.CreateContent(context.Background(), item))
			ids[item.Title] = item.ID
		}
		return svc, ids
	}

	t.Run("rewrites unnormalized fields", func(t *testing.T) {
		t.Parallel()

		svc, ids := setup(t)
		ctx := context.Background()

		res, err := (&hygiene.TagFixer{Content: svc}).FixTags(ctx, false)
		require.NoError(t, err)

		assert.Equal(t, 3, res.Scanned)
		assert.Equal(t, 2, res.Changed)
		assert.Equal(t, 2, res.Updated)
		assert.Len(t, res.Changes, 3)

		got, err := svc.FindContentByID(ctx, ids["Array"])
		require.NoError(t, err)
		assert.Equal(t, "counselors, career exploration", got.Tags)
		assert.Equal(t, "", got.AutoTags)

		got, err = svc.FindContentByID(ctx, ids["Dupes"])
		require.NoError(t, err)
		assert.Equal(t, "demo", got.AutoTags)
	})

	t.Run("dry run reports without writing", func(t *testing.T) {
		t.Parallel()

		svc, ids := setup(t)
		ctx := context.Background()

		res, err := (&hygiene.TagFixer{Content: svc}).FixTags(ctx, true)
		require.NoError(t, err)

		assert.True(t, res.DryRun)
		assert.Equal(t, 2, res.Changed)
		assert.Zero(t, res.Updated)

		got, err := svc.FindContentByID(ctx, ids["Array"])
		require.NoError(t, err)
		assert.Equal(t, `{counselors,"career exploration"}`, got.Tags)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		t.Parallel()

		f := &hygiene.TagFixer{Content: &mock.ContentService{
			FindContentFn: func(context.Context, lexicon.ContentFilter) ([]*lexicon.ContentItem, error) {
				return nil, errors.New("locked")
			},
		}}

		_, err := f.FixTags(context.Background(), false)
		require.ErrorContains(t, err, "locked")
	})
}
