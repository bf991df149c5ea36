package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/poiesic/scout/core"
)

// MarshalID encodes an ID as 8 big-endian bytes so keys sort numerically.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// UnmarshalID decodes an ID written by MarshalID.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: id needs 8 bytes, got %d", ErrSerializationFailed, len(data))
	}
	return core.ID(binary.BigEndian.Uint64(data)), nil
}

// storedPoint is the on-disk layout of a Point.
type storedPoint struct {
	ID      core.ID        `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// MarshalPoint encodes a point. Payloads are open documents, so JSON is used.
func MarshalPoint(point *Point) ([]byte, error) {
	data, err := json.Marshal(storedPoint{ID: point.ID, Vector: point.Vector, Payload: point.Payload})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalPoint decodes a point written by MarshalPoint.
// Numbers inside the payload decode as float64.
func UnmarshalPoint(data []byte) (*Point, error) {
	var sp storedPoint
	if err := json.Unmarshal(data, &sp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &Point{ID: sp.ID, Vector: sp.Vector, Payload: sp.Payload}, nil
}

// MarshalFeedback serializes a feedback event to bytes.
func MarshalFeedback(event *core.FeedbackEvent) []byte {
	buf := make([]byte, core.FeedbackEventMUS.Size(*event))
	core.FeedbackEventMUS.Marshal(*event, buf)
	return buf
}

// UnmarshalFeedback deserializes a feedback event from bytes.
func UnmarshalFeedback(data []byte) (*core.FeedbackEvent, error) {
	event, _, err := core.FeedbackEventMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &event, nil
}

// MarshalFeedbackCounts serializes per-candidate vote totals to bytes.
func MarshalFeedbackCounts(counts core.FeedbackCounts) []byte {
	buf := make([]byte, core.FeedbackCountsMUS.Size(counts))
	core.FeedbackCountsMUS.Marshal(counts, buf)
	return buf
}

// UnmarshalFeedbackCounts deserializes vote totals from bytes.
func UnmarshalFeedbackCounts(data []byte) (core.FeedbackCounts, error) {
	counts, _, err := core.FeedbackCountsMUS.Unmarshal(data)
	if err != nil {
		return core.FeedbackCounts{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return counts, nil
}

// MarshalCollectionMeta serializes a collection description to bytes.
func MarshalCollectionMeta(meta *core.CollectionMeta) []byte {
	buf := make([]byte, core.CollectionMetaMUS.Size(*meta))
	core.CollectionMetaMUS.Marshal(*meta, buf)
	return buf
}

// UnmarshalCollectionMeta deserializes a collection description from bytes.
func UnmarshalCollectionMeta(data []byte) (*core.CollectionMeta, error) {
	meta, _, err := core.CollectionMetaMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &meta, nil
}

// ToPayload converts a typed record into an open payload document by
// round-tripping it through its JSON representation.
func ToPayload(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return payload, nil
}
