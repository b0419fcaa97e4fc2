package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"userhub/internal/domain/service"
)

type firestoreHealthChecker struct {
	client *firestore.Client
}

func NewFirestoreHealthChecker(client *firestore.Client) service.HealthChecker {
	return &firestoreHealthChecker{client: client}
}

// Ping reads at most one user document.
func (h *firestoreHealthChecker) Ping(ctx context.Context) error {
	iter := h.client.Collection(usersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return err
	}
	return nil
}
