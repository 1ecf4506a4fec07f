package rag

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// Item is one indexed chunk: its identifier, source text and vector.
type Item struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

// SearchResult is one nearest-neighbor hit.
type SearchResult struct {
	ID    string
	Text  string
	Score float64 // cosine similarity, higher is closer
}

// Index is a flat cosine-similarity vector index with JSON disk
// persistence. Flat search is exact and fast enough for a fixed corpus of
// documentation chunks.
type Index struct {
	Dim   int    `json:"dim"`
	Items []Item `json:"items"`
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dim int) *Index {
	return &Index{Dim: dim}
}

// Add appends an item to the index.
func (ix *Index) Add(id, text string, vector []float32) error {
	if len(vector) != ix.Dim {
		return fmt.Errorf("vector dimension mismatch: want %d got %d", ix.Dim, len(vector))
	}
	ix.Items = append(ix.Items, Item{ID: id, Text: text, Vector: vector})
	return nil
}

// Size returns the number of indexed items.
func (ix *Index) Size() int {
	return len(ix.Items)
}

// Search returns the k most similar items to the query vector, best
// first.
func (ix *Index) Search(query []float32, k int) ([]SearchResult, error) {
	if len(query) != ix.Dim {
		return nil, fmt.Errorf("query dimension mismatch: want %d got %d", ix.Dim, len(query))
	}
	if k <= 0 {
		k = 4
	}

	results := make([]SearchResult, 0, len(ix.Items))
	for _, item := range ix.Items {
		results = append(results, SearchResult{
			ID:    item.ID,
			Text:  item.Text,
			Score: cosine(query, item.Vector),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Save writes the index to path, creating parent directories as needed.
func (ix *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	raw, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// LoadIndex reads a persisted index from path.
func LoadIndex(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ix Index
	if err := json.Unmarshal(raw, &ix); err != nil {
		return nil, fmt.Errorf("unmarshal index: %w", err)
	}
	return &ix, nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
