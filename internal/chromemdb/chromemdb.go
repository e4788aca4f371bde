// Package chromemdb backs the source store with a local persistent vector
// database. Unlike the postgres backend it can also answer similarity
// queries natively, so ranking may be pushed down instead of scanning.
package chromemdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"

	"search-rag/internal/models"
)

const compress = false

// session pairs a collection with its insertion sequence. The mutex is held
// across ID allocation and the add so concurrent writers never compute the
// same ID; the sequence only advances after a successful add, keeping the ID
// range dense for Scan.
type session struct {
	mu  sync.Mutex
	col *chromem.Collection
	seq int
}

// Store keeps one chromem collection per session. Document IDs are dense
// insertion sequence numbers, which preserves scan order.
type Store struct {
	db *chromem.DB

	mu       sync.Mutex
	sessions map[string]*session
}

func NewStore(dbPath string, inMemory bool) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}
	return &Store{db: db, sessions: make(map[string]*session)}, nil
}

func collectionName(sessionID string) string {
	return "sources_" + sessionID
}

func docID(seq int) string {
	return fmt.Sprintf("%08d", seq)
}

func (s *Store) session(sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}
	col, err := s.db.GetOrCreateCollection(collectionName(sessionID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	sess := &session{col: col, seq: col.Count()}
	s.sessions[sessionID] = sess
	return sess, nil
}

func (s *Store) Insert(ctx context.Context, src models.Source) error {
	sess, err := s.session(src.SessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	doc := chromem.Document{
		ID:      docID(sess.seq + 1),
		Content: src.Text,
		Metadata: map[string]string{
			"title": src.Title,
			"link":  src.Link,
		},
		Embedding: src.Embedding,
	}
	if err := sess.col.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("failed to add document: %v", err)
	}
	sess.seq++
	return nil
}

// Scan walks the dense ID sequence. A positive window starts at the newest
// window of records.
func (s *Store) Scan(ctx context.Context, sessionID string, window int) ([]models.Source, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	n := sess.col.Count()
	start := 1
	if window > 0 && n > window {
		start = n - window + 1
	}

	var out []models.Source
	for i := start; i <= n; i++ {
		doc, err := sess.col.GetByID(ctx, docID(i))
		if err != nil {
			return nil, fmt.Errorf("failed to read document %d: %v", i, err)
		}
		out = append(out, models.Source{
			ID:        int64(i),
			SessionID: sessionID,
			Title:     doc.Metadata["title"],
			Link:      doc.Metadata["link"],
			Text:      doc.Content,
			Embedding: doc.Embedding,
		})
	}
	return out, nil
}

// Search answers the ranking query natively through the vector database.
// The whole session is the candidate set; recency-windowed retrieval goes
// through Scan instead.
func (s *Store) Search(ctx context.Context, sessionID string, queryEmbedding []float32, topN int, threshold float64) ([]models.RankedSource, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	n := sess.col.Count()
	if n == 0 {
		return nil, nil
	}
	if topN > n {
		topN = n
	}

	results, err := sess.col.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       topN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	var ranked []models.RankedSource
	for _, res := range results {
		sim := float64(res.Similarity)
		if sim <= threshold {
			continue
		}
		ranked = append(ranked, models.RankedSource{
			Title:      res.Metadata["title"],
			Link:       res.Metadata["link"],
			Text:       res.Content,
			Similarity: sim,
		})
	}
	return ranked, nil
}

func (s *Store) DropSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	if err := s.db.DeleteCollection(collectionName(sessionID)); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	return nil
}
