package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

// VectorIndex implements storage.VectorIndex on BadgerDB with exhaustive
// cosine search. It suits development datasets and tests; large corpora
// belong in qdrant.
type VectorIndex struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a VectorIndex over an open backend.
// The backend is not closed by the index.
func NewVectorIndex(backend *Backend) *VectorIndex {
	return &VectorIndex{
		backend: backend,
		logger:  backend.logger.With("store", "vector_index"),
	}
}

func validateCollectionName(collection string) error {
	if collection == "" || strings.Contains(collection, ":") {
		return fmt.Errorf("invalid collection name %q", collection)
	}
	return nil
}

// EnsureCollection creates the collection if it does not exist.
// An existing collection with a different vector size is an error.
func (idx *VectorIndex) EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	if idx.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return idx.backend.WithTx(func(tx *badger.Txn) error {
		meta, err := readCollectionMeta(tx, collection)
		if err == nil {
			if meta.VectorSize != vectorSize {
				return fmt.Errorf("%w: collection %s has size %d, requested %d",
					storage.ErrVectorSizeMismatch, collection, meta.VectorSize, vectorSize)
			}
			return nil
		}
		if !errors.Is(err, storage.ErrCollectionNotFound) {
			return err
		}

		value := storage.MarshalCollectionMeta(&core.CollectionMeta{
			Name:       collection,
			VectorSize: vectorSize,
			CreatedAt:  time.Now().UTC(),
		})
		if err := tx.Set(makeCollectionKey(collection), value); err != nil {
			return err
		}
		idx.logger.Info("created collection", "collection", collection, "vector_size", vectorSize)
		return tx.Commit()
	}, true)
}

// Upsert inserts or replaces points in a collection.
// Every vector must match the collection's vector size.
func (idx *VectorIndex) Upsert(ctx context.Context, collection string, points ...*storage.Point) error {
	if idx.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return idx.backend.WithTx(func(tx *badger.Txn) error {
		meta, err := readCollectionMeta(tx, collection)
		if err != nil {
			return err
		}
		for _, point := range points {
			if uint64(len(point.Vector)) != meta.VectorSize {
				return fmt.Errorf("%w: point %d has %d dimensions, collection %s expects %d",
					storage.ErrVectorSizeMismatch, point.ID, len(point.Vector), collection, meta.VectorSize)
			}
			value, err := storage.MarshalPoint(point)
			if err != nil {
				return err
			}
			if err := tx.Set(makePointKey(collection, point.ID), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Query scans the collection, keeps points matching the filter and returns
// the most similar ones. Without a query vector points keep key order and
// score zero.
func (idx *VectorIndex) Query(ctx context.Context, collection string, req *storage.QueryRequest) ([]*storage.ScoredPoint, error) {
	if idx.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if req == nil {
		req = &storage.QueryRequest{}
	}

	var results []*storage.ScoredPoint
	err := idx.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := readCollectionMeta(tx, collection); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialPointKey(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var point *storage.Point
			err := iter.Item().Value(func(val []byte) error {
				var err error
				point, err = storage.UnmarshalPoint(val)
				return err
			})
			if err != nil {
				return err
			}
			if !req.Filter.Matches(point.Payload) {
				continue
			}

			scored := &storage.ScoredPoint{ID: point.ID, Payload: point.Payload}
			if len(req.Vector) > 0 {
				scored.Score = cosineSimilarity(req.Vector, point.Vector)
			} else if req.Limit > 0 && len(results) >= req.Limit {
				// Key order is final, nothing left to rank.
				break
			}
			results = append(results, scored)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if len(req.Vector) > 0 {
		// Stable so equal scores keep key order.
		slices.SortStableFunc(results, func(a, b *storage.ScoredPoint) int {
			if a.Score > b.Score {
				return -1
			}
			if a.Score < b.Score {
				return 1
			}
			return 0
		})
	}

	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

// CollectionInfo reports the point count and vector size of a collection.
func (idx *VectorIndex) CollectionInfo(ctx context.Context, collection string) (*storage.CollectionInfo, error) {
	if idx.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var info *storage.CollectionInfo
	err := idx.backend.WithTx(func(tx *badger.Txn) error {
		meta, err := readCollectionMeta(tx, collection)
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialPointKey(collection)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var count uint64
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}

		info = &storage.CollectionInfo{
			Name:        collection,
			Status:      "green",
			PointsCount: count,
			VectorSize:  meta.VectorSize,
		}
		return nil
	}, false)
	return info, err
}

// Close is a no-op; the backend owner closes the database.
func (idx *VectorIndex) Close() error {
	return nil
}

func readCollectionMeta(tx *badger.Txn, collection string) (*core.CollectionMeta, error) {
	item, err := tx.Get(makeCollectionKey(collection))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, collection)
		}
		return nil, err
	}
	var meta *core.CollectionMeta
	err = item.Value(func(val []byte) error {
		var err error
		meta, err = storage.UnmarshalCollectionMeta(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}
