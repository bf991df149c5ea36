// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"math"
	"strings"
)

// earthRadiusMeters is the mean Earth radius used for haversine distances.
const earthRadiusMeters = 6371008.8

// Filter is a conjunction of payload conditions.
// A nil or empty filter matches every point.
type Filter struct {
	Must []Condition
}

// Condition constrains one payload key. Key may be a dotted path ("location.coordinates").
// Exactly one of Match, Range or GeoRadius is set.
type Condition struct {
	Key       string
	Match     *string
	Range     *Range
	GeoRadius *GeoRadius
}

// Range is a numeric interval. Nil bounds are open.
type Range struct {
	Gte *float64
	Lte *float64
}

// GeoRadius matches points within Meters of (Lat, Lon).
type GeoRadius struct {
	Lat    float64
	Lon    float64
	Meters float64
}

// NewMatch returns an exact-match condition on key.
func NewMatch(key, value string) Condition {
	return Condition{Key: key, Match: &value}
}

// NewRange returns an inclusive range condition on key.
func NewRange(key string, gte, lte float64) Condition {
	return Condition{Key: key, Range: &Range{Gte: &gte, Lte: &lte}}
}

// NewGeoRadius returns a geo-radius condition on key.
func NewGeoRadius(key string, lat, lon, meters float64) Condition {
	return Condition{Key: key, GeoRadius: &GeoRadius{Lat: lat, Lon: lon, Meters: meters}}
}

// IsEmpty reports whether the filter has no conditions.
func (f *Filter) IsEmpty() bool {
	return f == nil || len(f.Must) == 0
}

// Matches evaluates the filter against a payload document.
// Backends without native filtering use it to post-filter candidates.
func (f *Filter) Matches(payload map[string]any) bool {
	if f.IsEmpty() {
		return true
	}
	for _, cond := range f.Must {
		if !cond.matches(payload) {
			return false
		}
	}
	return true
}

func (c Condition) matches(payload map[string]any) bool {
	value, ok := lookupPath(payload, c.Key)
	if !ok {
		return false
	}
	switch {
	case c.Match != nil:
		return matchValue(value, *c.Match)
	case c.Range != nil:
		n, ok := toFloat(value)
		if !ok {
			return false
		}
		if c.Range.Gte != nil && n < *c.Range.Gte {
			return false
		}
		if c.Range.Lte != nil && n > *c.Range.Lte {
			return false
		}
		return true
	case c.GeoRadius != nil:
		lat, lon, ok := toGeoPoint(value)
		if !ok {
			return false
		}
		return Haversine(c.GeoRadius.Lat, c.GeoRadius.Lon, lat, lon) <= c.GeoRadius.Meters
	}
	return false
}

// matchValue compares a keyword against a scalar or any element of a list.
func matchValue(value any, keyword string) bool {
	switch v := value.(type) {
	case string:
		return v == keyword
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == keyword {
				return true
			}
		}
	}
	return false
}

// lookupPath resolves a dotted key path inside nested maps.
func lookupPath(payload map[string]any, path string) (any, bool) {
	var current any = payload
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toGeoPoint(v any) (float64, float64, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return 0, 0, false
	}
	lat, okLat := toFloat(m["lat"])
	lon, okLon := toFloat(m["lon"])
	return lat, lon, okLat && okLon
}

// Haversine returns the great-circle distance in meters between two coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
