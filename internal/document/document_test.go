package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KeepsIntegersAndPassthroughFields(t *testing.T) {
	doc, err := Decode([]byte(`{"team_id": 5, "name": "FC X", "rating": 7.5, "country": {"country_id": 42}}`))
	require.NoError(t, err)

	assert.Equal(t, int64(5), doc["team_id"])
	assert.Equal(t, 7.5, doc["rating"])
	assert.Equal(t, "FC X", doc["name"])

	country, ok := doc["country"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(42), country["country_id"])
}

func TestDecode_RejectsNonObject(t *testing.T) {
	_, err := Decode([]byte(`null`))
	assert.Error(t, err)

	_, err = Decode([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestDecodeList(t *testing.T) {
	docs, err := DecodeList([]byte(`[{"match_id": 1}, null, {"match_id": 2}]`))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	id, ok := docs[1].Int("match_id")
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)

	empty, err := DecodeList([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestList_ReturnsEmbeddedObjects(t *testing.T) {
	doc, err := Decode([]byte(`{"season_data": [{"season_id": 1}, "junk", {"season_id": 2}]}`))
	require.NoError(t, err)

	seasons := doc.List("season_data")
	require.Len(t, seasons, 2)

	seasons[0]["touched"] = true
	first := doc["season_data"].([]any)[0].(map[string]any)
	assert.Equal(t, true, first["touched"], "List shares storage with the parent document")

	assert.Nil(t, doc.List("missing"))
}

func TestClone_IsDeep(t *testing.T) {
	doc := Document{"standings": []any{map[string]any{"team_id": int64(5)}}}
	clone := doc.Clone()

	clone.List("standings")[0]["team_name"] = "FC X"

	_, leaked := doc.List("standings")[0]["team_name"]
	assert.False(t, leaked)
}

func TestToInt(t *testing.T) {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int(3), 3, true},
		{int32(3), 3, true},
		{int64(3), 3, true},
		{float64(3), 3, true},
		{float64(3.5), 0, false},
		{"17", 17, true},
		{"x", 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := ToInt(c.in)
		assert.Equal(t, c.ok, ok, "input %#v", c.in)
		assert.Equal(t, c.want, got, "input %#v", c.in)
	}
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(int64(1)))
	assert.True(t, Truthy(float64(1)))
	assert.True(t, Truthy(true))
	assert.True(t, Truthy("1"))
	assert.False(t, Truthy(int64(0)))
	assert.False(t, Truthy(int64(2)))
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy("no"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(int64(5), 5))
	assert.True(t, Equal(float64(5), int32(5)))
	assert.True(t, Equal("a", "a"))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal("5", int64(5)))
	assert.False(t, Equal(int64(5), "5"))
	assert.False(t, Equal(int64(5), int64(6)))
	assert.True(t, Equal(1.5, 1.5))
}
