package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sagealpha/backend/vectorstore"
)

const (
	metadataFile   = "metadata.json"
	embeddingsFile = "embeddings.json"
)

type metaRecord struct {
	DocID string         `json:"doc_id"`
	Text  string         `json:"text"`
	Meta  map[string]any `json:"meta"`
}

type memoryStore struct {
	options vectorstore.Options
	docs    []vectorstore.Document
	mtx     sync.RWMutex
}

func (s *memoryStore) Add(ctx context.Context, docs ...vectorstore.Document) error {
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.DocID)
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.docs = append(s.docs, docs...)

	return nil
}

func (s *memoryStore) Search(ctx context.Context, query []float32, k int) ([]vectorstore.Match, error) {
	if len(query) == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = vectorstore.DefaultTopK
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if len(s.docs) == 0 {
		return nil, nil
	}

	matches := make([]vectorstore.Match, 0, len(s.docs))
	for _, doc := range s.docs {
		matches = append(matches, vectorstore.Match{
			Document: doc,
			Score:    vectorstore.CosineSimilarity(query, doc.Embedding),
		})
	}

	// doc_id ascending breaks exact score ties deterministically
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].DocID < matches[j].DocID
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	return matches, nil
}

func (s *memoryStore) Save(ctx context.Context) error {
	s.mtx.RLock()
	meta := make([]metaRecord, len(s.docs))
	embs := make([][]float32, len(s.docs))
	for i, doc := range s.docs {
		meta[i] = metaRecord{DocID: doc.DocID, Text: doc.Text, Meta: doc.Meta}
		embs[i] = doc.Embedding
	}
	s.mtx.RUnlock()

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	embBytes, err := json.Marshal(embs)
	if err != nil {
		return fmt.Errorf("marshal embeddings: %w", err)
	}

	// temp-then-rename so a crash never leaves the file pair half written
	if err := writeAtomic(s.metaPath(), metaBytes); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := writeAtomic(s.embPath(), embBytes); err != nil {
		return fmt.Errorf("write embeddings: %w", err)
	}

	return nil
}

func (s *memoryStore) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.docs)
}

// load reconstructs the corpus from the two files by positional
// correspondence. Any failure resets to an empty corpus; a store that
// cannot read its snapshot still has to serve chat and report requests.
func (s *memoryStore) load() {
	metaBytes, err := os.ReadFile(s.metaPath())
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("vector store metadata unreadable", "path", s.metaPath(), "error", err)
		}
		return
	}

	embBytes, err := os.ReadFile(s.embPath())
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("vector store embeddings unreadable", "path", s.embPath(), "error", err)
		}
		return
	}

	var meta []metaRecord
	var embs [][]float32
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		slog.Error("vector store metadata corrupt, starting empty", "error", err)
		return
	}
	if err := json.Unmarshal(embBytes, &embs); err != nil {
		slog.Error("vector store embeddings corrupt, starting empty", "error", err)
		return
	}
	if len(meta) != len(embs) {
		slog.Error("vector store files out of step, starting empty", "metadata", len(meta), "embeddings", len(embs))
		return
	}

	docs := make([]vectorstore.Document, len(meta))
	for i, m := range meta {
		docs[i] = vectorstore.Document{
			DocID:     m.DocID,
			Text:      m.Text,
			Meta:      m.Meta,
			Embedding: embs[i],
		}
	}

	s.docs = docs

	slog.Info("vector store loaded", "documents", len(docs))
}

func (s *memoryStore) metaPath() string {
	return filepath.Join(s.options.Location, metadataFile)
}

func (s *memoryStore) embPath() string {
	return filepath.Join(s.options.Location, embeddingsFile)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func NewStore(opts ...vectorstore.Option) vectorstore.Store {
	options := vectorstore.NewOptions(opts...)

	s := &memoryStore{
		options: options,
		docs:    []vectorstore.Document{},
		mtx:     sync.RWMutex{},
	}

	if err := os.MkdirAll(options.Location, 0o755); err != nil {
		slog.Warn("vector store directory not writable", "dir", options.Location, "error", err)
	}

	s.load()

	return s
}
