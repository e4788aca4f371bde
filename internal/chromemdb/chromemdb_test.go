package chromemdb

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-rag/internal/models"
)

func newMemStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("", true)
	require.NoError(t, err)
	return s
}

func insert(t *testing.T, s *Store, session, link, text string, embedding []float32) {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(), models.Source{
		SessionID: session,
		Title:     "t " + link,
		Link:      link,
		Text:      text,
		Embedding: embedding,
	}))
}

func TestScanPreservesInsertionOrder(t *testing.T) {
	s := newMemStore(t)
	insert(t, s, "s1", "https://1", "one", []float32{1, 0, 0})
	insert(t, s, "s1", "https://2", "two", []float32{0, 1, 0})
	insert(t, s, "s1", "https://3", "three", []float32{0, 0, 1})

	records, err := s.Scan(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "https://1", records[0].Link)
	assert.Equal(t, "https://3", records[2].Link)
}

func TestScanWindow(t *testing.T) {
	s := newMemStore(t)
	insert(t, s, "s1", "https://1", "one", []float32{1, 0, 0})
	insert(t, s, "s1", "https://2", "two", []float32{0, 1, 0})
	insert(t, s, "s1", "https://3", "three", []float32{0, 0, 1})

	records, err := s.Scan(context.Background(), "s1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://2", records[0].Link)
	assert.Equal(t, "https://3", records[1].Link)
}

func TestConcurrentInsertsKeepEveryRecord(t *testing.T) {
	s := newMemStore(t)

	const writers = 20
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Insert(context.Background(), models.Source{
				SessionID: "s1",
				Title:     fmt.Sprintf("t %d", i),
				Link:      fmt.Sprintf("https://%d", i),
				Text:      fmt.Sprintf("text %d", i),
				Embedding: []float32{1, 0, 0},
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	records, err := s.Scan(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, records, writers)

	links := make(map[string]bool, writers)
	for _, r := range records {
		links[r.Link] = true
	}
	assert.Len(t, links, writers)
}

func TestSearchRanksBySimilarity(t *testing.T) {
	s := newMemStore(t)
	insert(t, s, "s1", "https://close", "close", []float32{1, 0, 0})
	insert(t, s, "s1", "https://far", "far", []float32{0, 1, 0})

	ranked, err := s.Search(context.Background(), "s1", []float32{1, 0, 0}, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "https://close", ranked[0].Link)
	assert.Greater(t, ranked[0].Similarity, 0.5)
}

func TestSearchEmptySession(t *testing.T) {
	s := newMemStore(t)
	ranked, err := s.Search(context.Background(), "empty", []float32{1, 0, 0}, 5, 0.2)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestDropSession(t *testing.T) {
	s := newMemStore(t)
	insert(t, s, "s1", "https://1", "one", []float32{1, 0, 0})
	require.NoError(t, s.DropSession(context.Background(), "s1"))

	records, err := s.Scan(context.Background(), "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
