// Package indexer loads candidate profiles and professional standards,
// embeds them as passages and writes them into a vector index.
//
// Batches are embedded concurrently on a bounded worker pool. Failed
// embedding calls are retried with exponential backoff and every vector
// is normalized to unit length before it is stored.
//
// Example:
//
//	idx, err := indexer.NewIndexer(index, embedder, indexer.DefaultConfig(), os.Stderr)
//	if err != nil {
//		return err
//	}
//	defer idx.Release()
//
//	candidates, _ := indexer.LoadCandidates(f)
//	docs, _ := indexer.CandidateDocuments(candidates)
//	err = idx.Run(ctx, "candidates", docs)
package indexer
