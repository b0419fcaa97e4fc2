package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"userhub/pkg/config"
	"userhub/pkg/logger"
)

// App bundles the Google Cloud clients the service talks to.
type App struct {
	Firestore *firestore.Client
	Bucket    *gcs.BucketHandle
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{
		ProjectID:     cfg.FirebaseProject,
		StorageBucket: cfg.UserImageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}

	firestoreClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		firestoreClient.Close()
		return nil, fmt.Errorf("failed to create Cloud Storage client: %w", err)
	}

	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		firestoreClient.Close()
		return nil, fmt.Errorf("failed to open bucket %s: %w", cfg.UserImageBucket, err)
	}

	return &App{
		Firestore: firestoreClient,
		Bucket:    bucket,
	}, nil
}

func (a *App) Close() error {
	return a.Firestore.Close()
}

// clientOptions prefers inline credentials (production), then a key file
// (local development), then application default credentials.
func clientOptions(cfg *config.Config) ([]option.ClientOption, error) {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))}, nil
	}

	if path := cfg.FirebaseServiceAccountPath; path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("service account file %s: %w", path, err)
		}
		logger.Info("Using Firebase service account from file: %s", path)
		return []option.ClientOption{option.WithCredentialsFile(path)}, nil
	}

	logger.Info("Using application default credentials")
	return nil, nil
}
