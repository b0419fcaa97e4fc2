package service

import (
	"context"

	"userhub/internal/domain/entity"
)

type SearchIndex interface {
	// Put inserts or replaces the document with doc.ID.
	Put(ctx context.Context, doc entity.UserSearchDocument) error
	Delete(ctx context.Context, id string) error
	// Search returns documents having term among their tokens plus the total match count.
	Search(ctx context.Context, term string, limit, offset int) ([]entity.UserSearchDocument, int64, error)
}
