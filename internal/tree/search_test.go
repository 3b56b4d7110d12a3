package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/qerr"
)

func TestSearchMode_Values(t *testing.T) {
	assert.Equal(t, SearchMode(1), SearchSelf)
	assert.Equal(t, SearchMode(2), SearchAncestors)
	assert.Equal(t, SearchMode(4), SearchDescendants)
	assert.Equal(t, SearchMode(15), SearchEverywhere)

	m := SearchSelf | SearchDescendants
	assert.True(t, m.Has(SearchSelf))
	assert.False(t, m.Has(SearchAncestors))
	assert.True(t, m.Has(SearchDescendants))
	assert.True(t, SearchEverywhere.Has(SearchAncestors|SearchDescendants))
}

func TestSearchMode_String(t *testing.T) {
	assert.Equal(t, "everywhere", SearchEverywhere.String())
	assert.Equal(t, "self,descendants", (SearchSelf | SearchDescendants).String())
	assert.Equal(t, "self,ancestors,descendants", (SearchSelf | SearchAncestors | SearchDescendants).String())
	assert.Equal(t, "none", SearchMode(0).String())
}

func TestParseSearchMode(t *testing.T) {
	tests := []struct {
		in   string
		want SearchMode
	}{
		{"", SearchEverywhere},
		{"self", SearchSelf},
		{"parents", SearchAncestors},
		{"Children", SearchDescendants},
		{"self, descendants", SearchSelf | SearchDescendants},
		{"self|ancestors", SearchSelf | SearchAncestors},
		{"all", SearchEverywhere},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSearchMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSearchMode("siblings")
	assert.True(t, qerr.IsInvalidArgument(err))
}

func TestCombine(t *testing.T) {
	c, err := ParseCombine("")
	require.NoError(t, err)
	assert.Equal(t, CombineOr, c)

	c, err = ParseCombine(" AND ")
	require.NoError(t, err)
	assert.Equal(t, CombineAnd, c)

	_, err = ParseCombine("xor")
	assert.True(t, qerr.IsInvalidArgument(err))

	assert.NoError(t, CombineOr.Validate())
	assert.Error(t, Combine("").Validate())
}
