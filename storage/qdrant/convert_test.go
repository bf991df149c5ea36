package qdrant

import (
	"testing"

	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQdrantFilter(t *testing.T) {
	t.Run("empty is nil", func(t *testing.T) {
		assert.Nil(t, toQdrantFilter(nil))
		assert.Nil(t, toQdrantFilter(&storage.Filter{}))
	})

	t.Run("all condition kinds", func(t *testing.T) {
		f := toQdrantFilter(&storage.Filter{Must: []storage.Condition{
			storage.NewMatch("industry", "Construction"),
			storage.NewRange("salary", 2500, 4000),
			storage.NewGeoRadius("location.coordinates", 60.9634, 25.6712, 50_000),
		}})
		require.NotNil(t, f)
		require.Len(t, f.GetMust(), 3)

		match := f.GetMust()[0].GetField()
		assert.Equal(t, "industry", match.GetKey())
		assert.Equal(t, "Construction", match.GetMatch().GetKeyword())

		rng := f.GetMust()[1].GetField()
		assert.Equal(t, "salary", rng.GetKey())
		assert.Equal(t, 2500.0, rng.GetRange().GetGte())
		assert.Equal(t, 4000.0, rng.GetRange().GetLte())

		geo := f.GetMust()[2].GetField()
		assert.Equal(t, "location.coordinates", geo.GetKey())
		assert.Equal(t, float32(50_000), geo.GetGeoRadius().GetRadius())
		assert.Equal(t, 60.9634, geo.GetGeoRadius().GetCenter().GetLat())
	})
}

func TestFromValueMap(t *testing.T) {
	in := map[string]any{
		"id":     "cand-1",
		"salary": 3200,
		"rating": 4.5,
		"active": true,
		"skills": []any{"welding", "scaffolding"},
		"location": map[string]any{
			"city": "Lahti",
		},
	}
	values, err := qdrant.TryValueMap(in)
	require.NoError(t, err)

	out := fromValueMap(values)
	assert.Equal(t, "cand-1", out["id"])
	assert.Equal(t, float64(3200), out["salary"])
	assert.Equal(t, 4.5, out["rating"])
	assert.Equal(t, true, out["active"])
	assert.Equal(t, []any{"welding", "scaffolding"}, out["skills"])
	assert.Equal(t, map[string]any{"city": "Lahti"}, out["location"])
}

func TestPointID(t *testing.T) {
	assert.Equal(t, core.ID(42), pointID(qdrant.NewIDNum(42)))
	assert.Equal(t, core.ID(0), pointID(nil))

	uuid := "5c56c793-69f3-4fbf-87e6-c4bf54c28c26"
	assert.Equal(t, core.IDFromContent(uuid), pointID(qdrant.NewIDUUID(uuid)))
}
