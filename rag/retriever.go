package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/agentswarm/llm"
	"github.com/BaSui01/agentswarm/types"
)

// Config configures the retriever.
type Config struct {
	// IndexPath is where the built index is persisted.
	IndexPath string `yaml:"index_path"`
	// DocsDir holds the fixed document corpus (.txt and .md files).
	DocsDir string `yaml:"docs_dir"`
	// TopK is the number of chunks retrieved per query.
	TopK int `yaml:"top_k"`
	// Chunking controls corpus splitting at build time.
	Chunking ChunkConfig `yaml:"chunking"`
}

// DefaultConfig returns the default retriever configuration.
func DefaultConfig() Config {
	return Config{
		IndexPath: "vectorstore/index.json",
		DocsDir:   "docs",
		TopK:      4,
		Chunking:  DefaultChunkConfig(),
	}
}

const answerInstructions = `You are a helpful assistant that provides accurate information based on the given context. Use the context to answer the question. If the context doesn't contain enough information, say so, but try to provide relevant information from what is available.`

// Retriever answers queries from the persisted vector index. When a
// completion provider is attached, retrieved context is synthesized into
// an answer; otherwise the raw context is returned.
type Retriever struct {
	cfg      Config
	embedder Embedder
	provider llm.Provider // optional
	model    string
	logger   *zap.Logger

	mu    sync.Mutex
	index *Index
}

// NewRetriever creates a retriever. provider may be nil.
func NewRetriever(cfg Config, embedder Embedder, provider llm.Provider, model string, logger *zap.Logger) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	return &Retriever{
		cfg:      cfg,
		embedder: embedder,
		provider: provider,
		model:    model,
		logger:   logger.With(zap.String("component", "retriever")),
	}
}

// LoadOrBuild loads the persisted index, building and caching it from the
// document corpus when absent or when force is set.
func (r *Retriever) LoadOrBuild(ctx context.Context, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadOrBuildLocked(ctx, force)
}

func (r *Retriever) loadOrBuildLocked(ctx context.Context, force bool) error {
	if r.index != nil && !force {
		return nil
	}

	if !force {
		if ix, err := LoadIndex(r.cfg.IndexPath); err == nil {
			r.logger.Info("loaded existing vector index",
				zap.String("path", r.cfg.IndexPath),
				zap.Int("items", ix.Size()),
			)
			r.index = ix
			return nil
		} else if !os.IsNotExist(err) {
			r.logger.Warn("failed to load vector index, rebuilding", zap.Error(err))
		}
	}

	ix, err := r.build(ctx)
	if err != nil {
		return err
	}
	if err := ix.Save(r.cfg.IndexPath); err != nil {
		return fmt.Errorf("persist vector index: %w", err)
	}
	r.logger.Info("built vector index",
		zap.String("path", r.cfg.IndexPath),
		zap.Int("items", ix.Size()),
	)
	r.index = ix
	return nil
}

// build reads the corpus, chunks it, embeds the chunks and assembles the
// index.
func (r *Retriever) build(ctx context.Context) (*Index, error) {
	entries, err := os.ReadDir(r.cfg.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("read document corpus: %w", err)
	}

	var ids []string
	var chunks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(r.cfg.DocsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", entry.Name(), err)
		}
		for i, chunk := range ChunkText(string(raw), r.cfg.Chunking) {
			ids = append(ids, fmt.Sprintf("%s#%d", entry.Name(), i))
			chunks = append(chunks, chunk)
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document corpus is empty: %s", r.cfg.DocsDir)
	}

	vectors, err := r.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}

	ix := NewIndex(r.embedder.Dimension())
	for i := range chunks {
		if err := ix.Add(ids[i], chunks[i], vectors[i]); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// Retrieve answers a query from the index, building it lazily on first
// use.
func (r *Retriever) Retrieve(ctx context.Context, query string) (string, error) {
	r.mu.Lock()
	if err := r.loadOrBuildLocked(ctx, false); err != nil {
		r.mu.Unlock()
		return "", err
	}
	ix := r.index
	r.mu.Unlock()

	qvec, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	hits, err := ix.Search(qvec[0], r.cfg.TopK)
	if err != nil {
		return "", err
	}

	contexts := make([]string, 0, len(hits))
	for _, hit := range hits {
		contexts = append(contexts, hit.Text)
	}
	contextText := strings.Join(contexts, "\n\n")

	if r.provider == nil {
		return contextText, nil
	}

	resp, err := r.provider.Completion(ctx, &llm.ChatRequest{
		Model: r.model,
		Messages: []types.Message{
			types.NewSystemMessage(answerInstructions),
			types.NewUserMessage(fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, query)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}
	answer := llm.FirstText(resp)
	if answer == "" {
		return contextText, nil
	}
	return answer, nil
}
