package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"userhub/internal/domain/entity"
	"userhub/internal/domain/service"
)

type SearchIndex struct {
	mu   sync.RWMutex
	docs map[string]entity.UserSearchDocument
}

func NewSearchIndex() *SearchIndex {
	return &SearchIndex{docs: make(map[string]entity.UserSearchDocument)}
}

var _ service.SearchIndex = (*SearchIndex)(nil)

func (s *SearchIndex) Put(ctx context.Context, doc entity.UserSearchDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[doc.ID] = doc
	return nil
}

func (s *SearchIndex) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, id)
	return nil
}

func (s *SearchIndex) Search(ctx context.Context, term string, limit, offset int) ([]entity.UserSearchDocument, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []entity.UserSearchDocument
	for _, doc := range s.docs {
		if slices.Contains(doc.Tokens(), term) {
			matches = append(matches, doc)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	total := int64(len(matches))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matches) {
		return nil, total, nil
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, total, nil
}

// Get returns the indexed document for id.
func (s *SearchIndex) Get(id string) (entity.UserSearchDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	return doc, ok
}
