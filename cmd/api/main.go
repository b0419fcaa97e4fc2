package main

import (
	"context"
	"log"

	"userhub/internal/adapter/api"
	"userhub/internal/adapter/api/handler"
	"userhub/internal/adapter/repository"
	"userhub/internal/domain/entity"
	domainrepo "userhub/internal/domain/repository"
	"userhub/internal/domain/service"
	"userhub/internal/infrastructure/cache"
	"userhub/internal/infrastructure/firebase"
	"userhub/internal/infrastructure/memory"
	"userhub/internal/infrastructure/storage"
	"userhub/internal/usecase"
	"userhub/pkg/config"
	"userhub/pkg/logger"
)

type stores struct {
	users      domainrepo.UserRepository
	categories domainrepo.CategoryRepository
	search     service.SearchIndex
	blobs      service.BlobStore
	health     service.HealthChecker
	close      func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetDebug(cfg.IsDevelopment())

	ctx := context.Background()

	s, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize stores: %v", err)
	}
	defer s.close()

	userUseCase := usecase.NewUserUseCase(s.users, s.categories, s.search, s.blobs)

	profileCache, closeCache := openProfileCache(ctx, cfg)
	defer closeCache()
	userUseCase.SetProfileCache(profileCache)

	e := api.NewServer(&handler.Handlers{
		User:   handler.NewUserHandler(userUseCase, cfg.MaxImageSize),
		Health: handler.NewHealthHandler(s.health),
	})

	logger.Info("Starting server on port %s with %s backend...", cfg.ServerPort, cfg.StorageBackend)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StorageBackend == config.BackendMemory {
		logger.Warn("Using in-memory stores; data is lost on restart")
		return &stores{
			users: memory.NewUserRepository(),
			categories: memory.NewCategoryRepository(
				&entity.Category{ID: "default", Name: "Default"},
			),
			search: memory.NewSearchIndex(),
			blobs:  memory.NewBlobStore("memory://user-images"),
			health: memory.HealthChecker{},
			close:  func() error { return nil },
		}, nil
	}

	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &stores{
		users:      repository.NewFirestoreUserRepository(app.Firestore),
		categories: repository.NewFirestoreCategoryRepository(app.Firestore),
		search:     repository.NewFirestoreSearchIndex(app.Firestore, cfg.SearchIndexCollection),
		blobs:      storage.NewCloudStorageClient(ctx, app.Bucket, cfg.UserImageBucket),
		health:     repository.NewFirestoreHealthChecker(app.Firestore),
		close:      app.Close,
	}, nil
}

// openProfileCache connects to Redis when configured. The cache is optional:
// an unreachable server is logged and the service runs uncached.
func openProfileCache(ctx context.Context, cfg *config.Config) (usecase.ProfileCache, func() error) {
	noop := func() error { return nil }
	if cfg.RedisAddr == "" {
		return nil, noop
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("Profile cache disabled: %v", err)
		return nil, noop
	}

	logger.Info("Profile cache enabled at %s", cfg.RedisAddr)
	return cache.NewViewCache[usecase.UserProfile](rdb, "user:profile:", cfg.ProfileCacheTTL), rdb.Close
}
