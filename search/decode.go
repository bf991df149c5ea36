package search

import (
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

// decodePayload decodes an open payload document into a typed record.
// Input is weakly typed so numeric ids and string numbers still decode.
func decodePayload(payload map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}

// decodeCandidate turns a scored point into a candidate. The payload id
// wins; points without one fall back to the numeric point id.
func decodeCandidate(point *storage.ScoredPoint) (core.Candidate, error) {
	var c core.Candidate
	if err := decodePayload(point.Payload, &c); err != nil {
		return core.Candidate{}, err
	}
	if c.ID == "" {
		c.ID = strconv.FormatUint(uint64(point.ID), 10)
	}
	return c, nil
}
