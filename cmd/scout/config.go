package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/scout"
	"github.com/poiesic/scout/ai"
	"github.com/poiesic/scout/storage/cache"
	"github.com/poiesic/scout/storage/postgres"
	"github.com/poiesic/scout/storage/qdrant"
	"github.com/urfave/cli/v2"
)

// globalFlags configure the backends shared by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Set logging level (debug, info, warn, error)",
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    "index-backend",
			Usage:   "Vector index backend (qdrant, badger)",
			Value:   "qdrant",
			EnvVars: []string{"SCOUT_INDEX_BACKEND"},
		},
		&cli.StringFlag{
			Name:    "data-path",
			Aliases: []string{"d"},
			Usage:   "BadgerDB directory for embedded backends",
			Value:   "scout.db",
			EnvVars: []string{"SCOUT_DATA_PATH"},
		},
		&cli.StringFlag{
			Name:    "qdrant-host",
			Usage:   "Qdrant host",
			Value:   "localhost",
			EnvVars: []string{"QDRANT_HOST"},
		},
		&cli.IntFlag{
			Name:    "qdrant-port",
			Usage:   "Qdrant gRPC port",
			Value:   6334,
			EnvVars: []string{"QDRANT_PORT"},
		},
		&cli.StringFlag{
			Name:    "qdrant-api-key",
			Usage:   "Qdrant API key",
			EnvVars: []string{"QDRANT_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "candidates-collection",
			Usage:   "Candidate collection name",
			Value:   "candidates",
			EnvVars: []string{"QDRANT_COLLECTION_NAME"},
		},
		&cli.StringFlag{
			Name:    "standards-collection",
			Usage:   "Professional standard collection name",
			Value:   "professional_standards",
			EnvVars: []string{"QDRANT_COLLECTION_PROFESSIONALSTANDARD"},
		},
		&cli.Uint64Flag{
			Name:  "vector-size",
			Usage: "Embedding dimension of both collections",
			Value: 1024,
		},
		&cli.StringFlag{
			Name:    "db-host",
			Usage:   "PostgreSQL host for feedback; empty stores feedback in BadgerDB",
			EnvVars: []string{"DB_HOST"},
		},
		&cli.StringFlag{
			Name:    "db-port",
			Usage:   "PostgreSQL port",
			Value:   "5432",
			EnvVars: []string{"DB_PORT"},
		},
		&cli.StringFlag{
			Name:    "db-user",
			Usage:   "PostgreSQL user",
			EnvVars: []string{"DB_USER"},
		},
		&cli.StringFlag{
			Name:    "db-password",
			Usage:   "PostgreSQL password",
			EnvVars: []string{"DB_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "db-name",
			Usage:   "PostgreSQL database",
			EnvVars: []string{"DB_NAME"},
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Redis address for the feedback cache; empty disables it",
			EnvVars: []string{"REDIS_ADDR"},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			EnvVars: []string{"REDIS_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "bge-m3",
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "embedding-token",
			Usage:   "Embedding API token",
			EnvVars: []string{"EMBEDDING_TOKEN"},
		},
		&cli.StringFlag{
			Name:  "query-prefix",
			Usage: "Prefix added to search queries before embedding",
		},
		&cli.StringFlag{
			Name:  "passage-prefix",
			Usage: "Prefix added to indexed documents before embedding",
		},
		&cli.StringFlag{
			Name:    "generator",
			Usage:   "Explanation generator backend (gemini, openai)",
			Value:   string(ai.BackendGemini),
			EnvVars: []string{"GENERATOR_BACKEND"},
		},
		&cli.StringFlag{
			Name:    "generator-host",
			Usage:   "OpenAI-compatible generator host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"GENERATOR_HOST"},
		},
		&cli.StringFlag{
			Name:    "generator-model",
			Usage:   "Generator model name",
			Value:   "gemini-1.5-flash",
			EnvVars: []string{"GEMINI_MODEL"},
		},
		&cli.StringFlag{
			Name:    "generator-api-key",
			Usage:   "Generator API key",
			EnvVars: []string{"GEMINI_API_KEY"},
		},
		&cli.Float64Flag{
			Name:  "min-weight",
			Usage: "Floor for feedback weights in the narrow pass; negative disables it",
			Value: 0.1,
		},
	}
}

// configFromContext builds the application config from global flags.
func configFromContext(c *cli.Context) (*scout.Config, error) {
	cfg := scout.DefaultConfig()
	cfg.DataPath = c.String("data-path")
	cfg.CandidatesCollection = c.String("candidates-collection")
	cfg.StandardsCollection = c.String("standards-collection")
	cfg.VectorSize = c.Uint64("vector-size")
	cfg.MinWeight = c.Float64("min-weight")

	switch backend := strings.ToLower(c.String("index-backend")); backend {
	case "qdrant":
		cfg.Qdrant = &qdrant.Config{
			Host:   c.String("qdrant-host"),
			Port:   c.Int("qdrant-port"),
			APIKey: c.String("qdrant-api-key"),
		}
	case "badger":
		cfg.Qdrant = nil
	default:
		return nil, fmt.Errorf("invalid index backend %q: must be one of qdrant, badger", backend)
	}

	if host := strings.TrimSpace(c.String("db-host")); host != "" {
		cfg.Postgres = &postgres.Config{
			Host:     host,
			Port:     c.String("db-port"),
			User:     c.String("db-user"),
			Password: c.String("db-password"),
			Name:     c.String("db-name"),
		}
	}

	if addr := strings.TrimSpace(c.String("redis-addr")); addr != "" {
		cfg.Redis = &cache.Config{
			Addr:     addr,
			Password: c.String("redis-password"),
		}
	}

	cfg.AI = ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithEmbeddingToken(c.String("embedding-token")),
		ai.WithPrefixes(c.String("query-prefix"), c.String("passage-prefix")),
		ai.WithGeneratorBackend(ai.GeneratorBackend(c.String("generator"))),
		ai.WithGeneratorHost(c.String("generator-host")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithGeneratorAPIKey(c.String("generator-api-key")),
	)
	return cfg, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
