package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type openAPIDoc struct {
	Info struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	} `json:"info"`
	Paths map[string]map[string]struct {
		Parameters []struct {
			Name     string `json:"name"`
			In       string `json:"in"`
			Required bool   `json:"required"`
		} `json:"parameters"`
	} `json:"paths"`
}

func readDoc(t *testing.T) openAPIDoc {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc openAPIDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), raw)
	return doc
}

func TestReadDoc_Paths(t *testing.T) {
	doc := readDoc(t)
	assert.Equal(t, "SoccerScore API", doc.Info.Title)
	assert.Equal(t, "1.0.0", doc.Info.Version)

	paths := make([]string, 0, len(doc.Paths))
	for p, ops := range doc.Paths {
		paths = append(paths, p)
		assert.Contains(t, ops, "get", p)
	}
	assert.ElementsMatch(t, []string{
		"/", "/health", "/health/cache", "/health/store",
		"/matches/{seasonId}", "/standings/{seasonId}",
	}, paths)
}

func TestReadDoc_MatchesParameters(t *testing.T) {
	params := map[string]string{}
	required := map[string]bool{}
	for _, p := range readDoc(t).Paths["/matches/{seasonId}"]["get"].Parameters {
		params[p.Name] = p.In
		required[p.Name] = p.Required
	}
	assert.Equal(t, map[string]string{"seasonId": "path", "date_from": "query", "date_to": "query"}, params)
	assert.True(t, required["seasonId"])
	assert.False(t, required["date_from"])
	assert.False(t, required["date_to"])
}
