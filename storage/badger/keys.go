package badger

import (
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

// Key prefixes for different data types
const (
	collectionPrefix = "coll:"
	pointPrefix      = "pt:"
	feedbackPrefix   = "fb:"
	feedbackIDSeq    = "fbseq"
)

// makeCollectionKey generates the metadata key for a collection.
func makeCollectionKey(collection string) []byte {
	return []byte(collectionPrefix + collection)
}

// makePartialPointKey generates the prefix shared by every point in a collection.
// Format: pt:collection:
func makePartialPointKey(collection string) []byte {
	return []byte(pointPrefix + collection + ":")
}

// makePointKey generates a composite key for a point.
// Format: pt:collection:id (id is 8 bytes big-endian so iteration follows id order)
func makePointKey(collection string, id core.ID) []byte {
	prefix := makePartialPointKey(collection)
	buf := make([]byte, 0, len(prefix)+8)
	buf = append(buf, prefix...)
	return append(buf, storage.MarshalID(id)...)
}

// makeFeedbackKey generates a key for a feedback event by sequence ID.
func makeFeedbackKey(id uint64) []byte {
	buf := make([]byte, 0, len(feedbackPrefix)+8)
	buf = append(buf, feedbackPrefix...)
	return append(buf, storage.MarshalID(core.ID(id))...)
}

const feedbackCountPrefix = "fbcnt:"

// makeFeedbackCountKey generates the key of a candidate's running vote counts.
func makeFeedbackCountKey(candidateID string) []byte {
	return []byte(feedbackCountPrefix + candidateID)
}
