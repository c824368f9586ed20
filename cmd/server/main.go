package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/agenthands/pyrite/internal/config"
	"github.com/agenthands/pyrite/internal/core"
	"github.com/agenthands/pyrite/internal/driver"
	"github.com/agenthands/pyrite/internal/llm"
	"github.com/agenthands/pyrite/internal/metrics"
	"github.com/agenthands/pyrite/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment as-is")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx := context.Background()
	m := metrics.New()

	store, err := driver.NewNeo4jStore(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database)
	if err != nil {
		slog.Error("failed to connect to neo4j", "uri", cfg.Graph.URI, "error", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	provider, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		slog.Error("failed to initialize llm client", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}

	limited := llm.NewLimitedClient(provider, cfg.LLM.MaxConcurrent, cfg.LLM.RequestTimeout(), m)
	client := llm.NewCachedClient(limited, buildCache(ctx, cfg.Cache), cfg.LLM.Model, m)

	engine := core.NewEngine(store, client, embedder, cfg.Retrieval, m)
	srv := server.NewServer(engine, m, cfg.LLM.Provider)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	slog.Info("starting server",
		"addr", addr, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model,
		"graph", cfg.Graph.URI, "cache", cfg.Cache.Backend)
	if err := srv.Router().Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// buildCache picks the response cache backend. Redis failures fall back to
// the in-memory cache rather than blocking startup.
func buildCache(ctx context.Context, cfg config.CacheConfig) llm.Cache {
	if !cfg.Enabled {
		return llm.NopCache{}
	}
	if cfg.Backend == "redis" && cfg.RedisURL != "" {
		cache, err := llm.NewRedisCache(ctx, cfg.RedisURL, cfg.TTL())
		if err == nil {
			return cache
		}
		slog.Warn("redis cache unavailable, falling back to memory", "error", err)
	}
	return llm.NewMemoryCache(cfg.TTL(), cfg.MaxEntries)
}
