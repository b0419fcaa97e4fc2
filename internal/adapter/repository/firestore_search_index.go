package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"

	"userhub/internal/domain/entity"
	"userhub/internal/domain/service"
)

const countAlias = "total"

type searchRecord struct {
	Name        string    `firestore:"name"`
	PhoneNumber string    `firestore:"phoneNumber"`
	Email       string    `firestore:"email"`
	Tokens      []string  `firestore:"tokens"`
	IndexedAt   time.Time `firestore:"indexedAt"`
}

// firestoreSearchIndex keeps one document per user, keyed by user ID, with a
// token array matched through array-contains queries.
type firestoreSearchIndex struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreSearchIndex(client *firestore.Client, collection string) service.SearchIndex {
	return &firestoreSearchIndex{
		client:     client,
		collection: collection,
	}
}

func (s *firestoreSearchIndex) Put(ctx context.Context, doc entity.UserSearchDocument) error {
	rec := searchRecord{
		Name:        doc.Name,
		PhoneNumber: doc.PhoneNumber,
		Email:       doc.Email,
		Tokens:      doc.Tokens(),
		IndexedAt:   time.Now(),
	}

	if _, err := s.client.Collection(s.collection).Doc(doc.ID).Set(ctx, rec); err != nil {
		return fmt.Errorf("failed to index user %s: %w", doc.ID, err)
	}
	return nil
}

func (s *firestoreSearchIndex) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := s.client.Collection(s.collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to remove user %s from index: %w", id, err)
	}
	return nil
}

func (s *firestoreSearchIndex) Search(ctx context.Context, term string, limit, offset int) ([]entity.UserSearchDocument, int64, error) {
	query := s.client.Collection(s.collection).Where("tokens", "array-contains", term)

	total, err := s.count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []entity.UserSearchDocument
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to search users: %w", err)
		}

		var rec searchRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, 0, fmt.Errorf("failed to parse search document %s: %w", snap.Ref.ID, err)
		}
		docs = append(docs, entity.UserSearchDocument{
			ID:          snap.Ref.ID,
			Name:        rec.Name,
			PhoneNumber: rec.PhoneNumber,
			Email:       rec.Email,
		})
	}

	return docs, total, nil
}

func (s *firestoreSearchIndex) count(ctx context.Context, query firestore.Query) (int64, error) {
	result, err := query.NewAggregationQuery().WithCount(countAlias).Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count search results: %w", err)
	}

	value, ok := result[countAlias].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result type %T", result[countAlias])
	}
	return value.GetIntegerValue(), nil
}
