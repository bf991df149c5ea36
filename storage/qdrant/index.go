// Package qdrant implements storage.VectorIndex on a Qdrant server.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
	"github.com/qdrant/go-client/qdrant"
)

// Config holds connection settings for a Qdrant server.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// VectorIndex implements storage.VectorIndex over the Qdrant gRPC API.
type VectorIndex struct {
	client *qdrant.Client
	logger *slog.Logger
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// Option configures a VectorIndex.
type Option func(*VectorIndex) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *VectorIndex) error {
		v.logger = logger
		return nil
	}
}

// NewVectorIndex connects to Qdrant.
func NewVectorIndex(cfg Config, opts ...Option) (*VectorIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	v := &VectorIndex{
		client: client,
		logger: slog.Default().With("component", "qdrant"),
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			client.Close()
			return nil, err
		}
	}
	return v, nil
}

// EnsureCollection creates a cosine collection if it does not exist.
func (v *VectorIndex) EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error {
	exists, err := v.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	if exists {
		return nil
	}

	err = v.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collection, err)
	}
	v.logger.Info("created collection", "collection", collection, "vector_size", vectorSize)
	return nil
}

// Upsert inserts or replaces points and waits for the write to apply.
func (v *VectorIndex) Upsert(ctx context.Context, collection string, points ...*storage.Point) error {
	if len(points) == 0 {
		return nil
	}
	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		payload, err := qdrant.TryValueMap(p.Payload)
		if err != nil {
			return fmt.Errorf("%w: point %d payload: %w", storage.ErrSerializationFailed, p.ID, err)
		}
		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(p.ID)),
			Vectors: qdrant.NewVectorsDense(p.Vector),
			Payload: payload,
		})
	}

	_, err := v.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", collection, err)
	}
	return nil
}

// Query runs a filtered nearest-neighbor query. Without a vector the
// server returns matching points in id order.
func (v *VectorIndex) Query(ctx context.Context, collection string, req *storage.QueryRequest) ([]*storage.ScoredPoint, error) {
	if req == nil {
		req = &storage.QueryRequest{}
	}
	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Filter:         toQdrantFilter(req.Filter),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(req.Vector) > 0 {
		query.Query = qdrant.NewQueryDense(req.Vector)
	}
	if req.Limit > 0 {
		query.Limit = qdrant.PtrOf(uint64(req.Limit))
	}

	points, err := v.client.Query(ctx, query)
	if err != nil {
		if exists, existsErr := v.client.CollectionExists(ctx, collection); existsErr == nil && !exists {
			return nil, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, collection)
		}
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	results := make([]*storage.ScoredPoint, 0, len(points))
	for _, p := range points {
		results = append(results, &storage.ScoredPoint{
			ID:      pointID(p.GetId()),
			Score:   p.GetScore(),
			Payload: fromValueMap(p.GetPayload()),
		})
	}
	return results, nil
}

// CollectionInfo reports status, point count and vector size.
func (v *VectorIndex) CollectionInfo(ctx context.Context, collection string) (*storage.CollectionInfo, error) {
	exists, err := v.client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, collection)
	}

	info, err := v.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	return &storage.CollectionInfo{
		Name:        collection,
		Status:      collectionStatus(info.GetStatus()),
		PointsCount: info.GetPointsCount(),
		VectorSize:  info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize(),
	}, nil
}

// Ping checks that the server answers.
func (v *VectorIndex) Ping(ctx context.Context) error {
	if _, err := v.client.HealthCheck(ctx); err != nil {
		return errors.Join(core.ErrUpstreamUnavailable, err)
	}
	return nil
}

// Close closes the gRPC connection.
func (v *VectorIndex) Close() error {
	return v.client.Close()
}

func collectionStatus(status qdrant.CollectionStatus) string {
	switch status {
	case qdrant.CollectionStatus_Green:
		return "green"
	case qdrant.CollectionStatus_Yellow:
		return "yellow"
	case qdrant.CollectionStatus_Red:
		return "red"
	case qdrant.CollectionStatus_Grey:
		return "grey"
	}
	return "unknown"
}

// pointID maps a Qdrant point id back to a core.ID. UUID ids, which this
// package never writes, are hashed.
func pointID(id *qdrant.PointId) core.ID {
	if id == nil {
		return 0
	}
	if uuid := id.GetUuid(); uuid != "" {
		return core.IDFromContent(uuid)
	}
	return core.ID(id.GetNum())
}
