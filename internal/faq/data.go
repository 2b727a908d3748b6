// Package faq loads the scraped SMSA knowledge chunks and selects
// context for the FAQ agent's prompt. Retrieval is keyword scoring over
// a JSONL file; a vector store can replace it behind the same Loader
// surface later.
package faq

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// Chunk is one retrievable piece of SMSA documentation.
type Chunk struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"chunk_text"`
}

// Loader lazily reads chunks from a JSONL file. Safe for concurrent use.
type Loader struct {
	path   string
	logger *logging.Logger

	once   sync.Once
	chunks []Chunk
}

// NewLoader creates a loader for the given JSONL path. The file is not
// touched until the first query; a missing file degrades to no context.
func NewLoader(path string, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{path: path, logger: logger}
}

// Chunks returns all loaded chunks.
func (l *Loader) Chunks() []Chunk {
	l.once.Do(l.load)
	return l.chunks
}

func (l *Loader) load() {
	f, err := os.Open(l.path)
	if err != nil {
		l.logger.Warn("faq data file not found", "path", l.path, "error", err)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var chunks []Chunk
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c Chunk
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			l.logger.Warn("faq chunk parse error", "error", err)
			continue
		}
		chunks = append(chunks, c)
	}
	if err := scanner.Err(); err != nil {
		l.logger.Error("faq data load error", "error", err)
	}

	l.chunks = chunks
	l.logger.Info("faq data loaded", "chunks", len(chunks))
}

type scoredChunk struct {
	score int
	index int
}

// Search returns the topK chunks most relevant to query, by keyword
// hits. Title matches count double. Ties keep file order.
func (l *Loader) Search(query string, topK int) []Chunk {
	chunks := l.Chunks()
	if len(chunks) == 0 || topK <= 0 {
		return nil
	}

	words := strings.Fields(strings.ToLower(query))
	var scored []scoredChunk
	for i, c := range chunks {
		text := strings.ToLower(c.Text)
		title := strings.ToLower(c.Title)
		score := 0
		for _, w := range words {
			score += strings.Count(text, w)
			score += strings.Count(title, w) * 2
		}
		if score > 0 {
			scored = append(scored, scoredChunk{score: score, index: i})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}

	out := make([]Chunk, 0, len(scored))
	for _, s := range scored {
		out = append(out, chunks[s.index])
	}
	return out
}

const maxChunkChars = 500

// ContextForPrompt formats the most relevant chunks as a reference
// block for the FAQ system prompt. Returns "" when nothing matched.
func (l *Loader) ContextForPrompt(query string, maxChunks int) string {
	relevant := l.Search(query, maxChunks)
	if len(relevant) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, c := range relevant {
		fmt.Fprintf(&sb, "[Reference %d]\n", i+1)
		if c.Title != "" {
			fmt.Fprintf(&sb, "Title: %s\n", c.Title)
		}
		if c.URL != "" {
			fmt.Fprintf(&sb, "Source: %s\n", c.URL)
		}
		text := strings.TrimSpace(c.Text)
		if len(text) > maxChunkChars {
			text = text[:maxChunkChars] + "..."
		}
		fmt.Fprintf(&sb, "Content: %s\n\n", text)
	}
	return strings.TrimRight(sb.String(), "\n")
}
