package rag

import "strings"

// ChunkConfig controls document splitting.
type ChunkConfig struct {
	// Size is the target chunk length in characters.
	Size int `yaml:"size"`
	// Overlap is the number of characters repeated between adjacent
	// chunks so sentences split at a boundary stay retrievable.
	Overlap int `yaml:"overlap"`
}

// DefaultChunkConfig returns the default chunking parameters.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{Size: 1000, Overlap: 200}
}

// ChunkText splits text into overlapping chunks, preferring paragraph
// boundaries, then falling back to a hard character split.
func ChunkText(text string, cfg ChunkConfig) []string {
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size / 4
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= cfg.Size {
		return []string{text}
	}

	// Group paragraphs into chunks up to the target size.
	paragraphs := strings.Split(text, "\n\n")
	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p)+2 > cfg.Size {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if len(p) > cfg.Size {
			// Oversized paragraph: hard split with overlap.
			for len(p) > cfg.Size {
				chunks = append(chunks, p[:cfg.Size])
				p = p[cfg.Size-cfg.Overlap:]
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
