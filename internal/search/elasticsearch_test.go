package search

import (
	"encoding/json"
	"testing"

	"venuehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchQueryAlwaysFiltersVerified(t *testing.T) {
	q := buildSearchQuery(models.VenueFilter{})

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool":{"filter":[{"term":{"status":"verified"}}]}}`, string(raw))
}

func TestBuildSearchQueryWithFilters(t *testing.T) {
	q := buildSearchQuery(models.VenueFilter{Query: "garden hall", City: "Lagos", Type: models.VenueTypeOutdoor})

	boolQuery := q["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["filter"], 3)
	assert.Len(t, boolQuery["must"], 1)
}

func TestBuildSortQueryPutsFeaturedFirst(t *testing.T) {
	sort := buildSortQuery("")
	require.Len(t, sort, 2)
	assert.Contains(t, sort[0], "featured")

	sort = buildSortQuery("hall")
	require.Len(t, sort, 3)
	assert.Contains(t, sort[1], "_score")
}
