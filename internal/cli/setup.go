package cli

import (
	"fmt"
	"path/filepath"

	"github.com/thebraudalf/fnb-docbot/config"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/chunker"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/embedding"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/extractor"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/llm"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/store"
	"github.com/thebraudalf/fnb-docbot/internal/port"
	"github.com/thebraudalf/fnb-docbot/internal/usecase"
)

// components holds the wired pipeline shared by the CLI commands.
type components struct {
	cfg       *config.Config
	store     *store.FlatStore
	registry  *store.Registry
	ingest    *usecase.IngestUseCase
	query     *usecase.QueryUseCase
	uploadDir string
}

// buildComponents wires the adapters and use cases from the loaded
// config. Paths in the config are resolved against the root directory.
func buildComponents(cfg *config.Config) (*components, error) {
	dataDir := resolvePath(cfg.Storage.DataDir)
	uploadDir := resolvePath(cfg.Storage.UploadDir)
	cfg.Storage.DataDir = dataDir
	cfg.Storage.UploadDir = uploadDir

	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dataDir, embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	registry, err := store.OpenRegistry(config.RegistryDBPath(dataDir))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to open upload registry: %w", err)
	}

	chk, err := chunker.NewWindowChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		registry.Close()
		st.Close()
		return nil, err
	}

	generator, err := llm.NewGroqClient(cfg.Generation.Model, cfg.Generation.BaseURL, cfg.Generation.APIKeyEnv)
	if err != nil {
		registry.Close()
		st.Close()
		return nil, err
	}

	return &components{
		cfg:       cfg,
		store:     st,
		registry:  registry,
		ingest:    usecase.NewIngestUseCase(extractor.NewFileExtractor(), chk, st, registry, uploadDir),
		query:     usecase.NewQueryUseCase(st, generator, config.ArtifactPath(uploadDir), cfg.Retrieve.TopK, cfg.Generation.Timeout()),
		uploadDir: uploadDir,
	}, nil
}

func (c *components) close() {
	c.registry.Close()
	c.store.Close()
}

func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai-compatible":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.Model, embedding.Options{
			APIKeyEnv: cfg.Embedding.APIKeyEnv,
			BaseURL:   cfg.Embedding.BaseURL,
			Dimension: cfg.Embedding.Dimension,
			BatchSize: cfg.Embedding.BatchSize,
			Timeout:   cfg.Embedding.Timeout(),
		})
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// resolvePath anchors relative config paths at the root directory.
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(GetRootDir(), path)
}
