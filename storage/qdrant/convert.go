package qdrant

import (
	"github.com/poiesic/scout/storage"
	"github.com/qdrant/go-client/qdrant"
)

// toQdrantFilter translates a backend-neutral filter. Nil means unfiltered.
func toQdrantFilter(f *storage.Filter) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}
	must := make([]*qdrant.Condition, 0, len(f.Must))
	for _, c := range f.Must {
		switch {
		case c.Match != nil:
			must = append(must, qdrant.NewMatch(c.Key, *c.Match))
		case c.Range != nil:
			must = append(must, qdrant.NewRange(c.Key, &qdrant.Range{
				Gte: c.Range.Gte,
				Lte: c.Range.Lte,
			}))
		case c.GeoRadius != nil:
			must = append(must, qdrant.NewGeoRadius(c.Key, c.GeoRadius.Lat, c.GeoRadius.Lon, float32(c.GeoRadius.Meters)))
		}
	}
	return &qdrant.Filter{Must: must}
}

// fromValueMap converts a Qdrant payload into plain Go values
// (map[string]any, []any, string, float64, bool, nil).
func fromValueMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = fromValue(v)
	}
	return out
}

func fromValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_IntegerValue:
		return float64(kind.IntegerValue)
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_StructValue:
		return fromValueMap(kind.StructValue.GetFields())
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		list := make([]any, 0, len(values))
		for _, item := range values {
			list = append(list, fromValue(item))
		}
		return list
	}
	return nil
}
