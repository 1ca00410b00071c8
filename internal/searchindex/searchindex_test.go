package searchindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

func sampleCatalog() []model.ExternalData {
	return []model.ExternalData{
		{ID: "A", Title: "Melanoma RNA-seq", Description: "treated vs untreated", Group: "oncology"},
		{ID: "B", Title: "Immune proteomics panel", Description: "t cell b cell", Group: "immunology"},
		{ID: "C", Title: "Melanoma proteomics panel", Description: "melanoma samples", Group: "oncology"},
	}
}

func TestSearch_RanksByMatchedTokenCount(t *testing.T) {
	idx := New(sampleCatalog(), nil, nil)

	got := idx.Search("melanoma proteomics")
	require.Equal(t, []string{"C", "A", "B"}, got)
}

func TestSearch_IsCaseInsensitive(t *testing.T) {
	idx := New(sampleCatalog(), nil, nil)
	require.Equal(t, idx.Search("MELANOMA"), idx.Search("melanoma"))
}

func TestSearch_ExcludesBlacklistedIDs(t *testing.T) {
	idx := New(sampleCatalog(), nil, []string{"A"})
	got := idx.Search("melanoma")
	require.NotContains(t, got, "A")
	require.Contains(t, got, "C")
}

func TestSearch_EmptyWhitelistMeansNoRestriction(t *testing.T) {
	idx := New(sampleCatalog(), nil, nil)
	got := idx.Search("panel")
	require.ElementsMatch(t, []string{"B", "C"}, got)
}

func TestSearch_WhitelistRestrictsIndexedSet(t *testing.T) {
	idx := New(sampleCatalog(), []string{"A", "B"}, nil)
	got := idx.Search("melanoma")
	require.Equal(t, []string{"A"}, got, "C was excluded by the whitelist at index-build time")
}

func TestSearch_NoMatchesReturnsEmpty(t *testing.T) {
	idx := New(sampleCatalog(), nil, nil)
	require.Empty(t, idx.Search("nonexistent_token_zzz"))
}

func TestSearch_TiesBrokenByIDOrder(t *testing.T) {
	idx := New(sampleCatalog(), nil, nil)
	got := idx.Search("panel")
	require.Equal(t, []string{"B", "C"}, got)
}
