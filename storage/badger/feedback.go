package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

// maxConflictRetries bounds retries of a feedback write that lost a
// counter update race to a concurrent transaction.
const maxConflictRetries = 5

// FeedbackRepository implements storage.FeedbackRepository for BadgerDB.
// Events are stored under sequence IDs; per-candidate vote counts are kept
// current in the same transaction so lookups never scan the event log.
type FeedbackRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.FeedbackRepository = (*FeedbackRepository)(nil)

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(backend *Backend) (*FeedbackRepository, error) {
	idSeq, err := backend.GetSequence(feedbackIDSeq)
	if err != nil {
		return nil, err
	}

	return &FeedbackRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *FeedbackRepository) Close() error {
	return r.idSeq.Release()
}

// AddFeedback appends a feedback event and bumps the candidate's counts.
func (r *FeedbackRepository) AddFeedback(ctx context.Context, event *core.FeedbackEvent) (*core.FeedbackEvent, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if event.ID == 0 {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return nil, err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			if nextID, err = r.idSeq.Next(); err != nil {
				return nil, err
			}
		}
		event.ID = nextID
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}

	value := storage.MarshalFeedback(event)

	var err error
	for attempt := 0; ; attempt++ {
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set(makeFeedbackKey(event.ID), value); err != nil {
				return err
			}

			counts, err := readCounts(tx, event.CandidateID)
			if err != nil {
				return err
			}
			switch event.Type {
			case core.FeedbackUp:
				counts.Up++
			case core.FeedbackDown:
				counts.Down++
			}
			if err := tx.Set(makeFeedbackCountKey(event.CandidateID), storage.MarshalFeedbackCounts(counts)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// CountsByCandidate returns vote counts for each requested candidate.
func (r *FeedbackRepository) CountsByCandidate(ctx context.Context, candidateIDs ...string) (map[string]core.FeedbackCounts, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	result := make(map[string]core.FeedbackCounts, len(candidateIDs))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range candidateIDs {
			counts, err := readCounts(tx, id)
			if err != nil {
				return err
			}
			result[id] = counts
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TagStats groups events by their tag set and counts them.
func (r *FeedbackRepository) TagStats(ctx context.Context, feedbackType core.FeedbackType) ([]core.TagCount, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	groups := make(map[string]*core.TagCount)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(feedbackPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var event *core.FeedbackEvent
			err := iter.Item().Value(func(val []byte) error {
				var err error
				event, err = storage.UnmarshalFeedback(val)
				return err
			})
			if err != nil {
				return err
			}
			if feedbackType != "" && event.Type != feedbackType {
				continue
			}
			key := storage.TagKey(event.Tags)
			if g, ok := groups[key]; ok {
				g.Count++
				continue
			}
			tags := event.Tags
			if tags == nil {
				tags = []string{}
			}
			groups[key] = &core.TagCount{Tags: tags, Count: 1}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return storage.SortTagCounts(groups), nil
}

func readCounts(tx *badger.Txn, candidateID string) (core.FeedbackCounts, error) {
	var counts core.FeedbackCounts
	item, err := tx.Get(makeFeedbackCountKey(candidateID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return counts, nil
		}
		return counts, err
	}
	err = item.Value(func(val []byte) error {
		var err error
		counts, err = storage.UnmarshalFeedbackCounts(val)
		return err
	})
	return counts, err
}
