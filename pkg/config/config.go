package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

type Config struct {
	ServerPort  string
	Environment string

	// StorageBackend selects the store implementations: Firestore/GCS or in-memory.
	StorageBackend string

	FirebaseProject            string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string

	UserImageBucket       string
	SearchIndexCollection string
	MaxImageSize          int64

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProfileCacheTTL time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:                 getEnv("SERVER_PORT", "8080"),
		Environment:                getEnv("ENVIRONMENT", "development"),
		StorageBackend:             getEnv("STORAGE_BACKEND", BackendFirestore),
		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		UserImageBucket:            getEnv("USER_IMAGE_BUCKET", ""),
		SearchIndexCollection:      getEnv("SEARCH_INDEX_COLLECTION", "user_search_index"),
		MaxImageSize:               getEnvAsInt64("MAX_IMAGE_SIZE", 10*1024*1024), // 10 MiB
		RedisAddr:                  getEnv("REDIS_ADDR", ""),
		RedisPassword:              getEnv("REDIS_PASSWORD", ""),
		RedisDB:                    int(getEnvAsInt64("REDIS_DB", 0)),
		ProfileCacheTTL:            time.Duration(getEnvAsInt64("PROFILE_CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	if config.StorageBackend != BackendFirestore && config.StorageBackend != BackendMemory {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", config.StorageBackend)
	}
	if config.StorageBackend == BackendFirestore {
		if config.FirebaseProject == "" {
			return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required for the %s backend", BackendFirestore)
		}
		if config.UserImageBucket == "" {
			return nil, fmt.Errorf("USER_IMAGE_BUCKET is required for the %s backend", BackendFirestore)
		}
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
