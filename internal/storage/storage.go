package storage

import (
	"context"
	"os"

	"discordllm/internal/core"
	"discordllm/internal/util"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const (
	modelCacheRedisKey = "discordllm:models"
)

// FileStorage persists the model cache as a JSON file
type FileStorage struct {
	filePath string
}

func NewFileStorage(filePath string) *FileStorage {
	if filePath == "" {
		filePath = core.ModelCacheFilePath
	}
	return &FileStorage{filePath: filePath}
}

func (fs *FileStorage) SaveModelCache(cache *core.ModelCache) error {
	data, err := sonic.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fs.filePath, data, core.FilePermissionDefault)
}

// LoadModelCache returns (nil, nil) when the file does not exist; callers
// treat both nil and error results as cache misses.
func (fs *FileStorage) LoadModelCache() (*core.ModelCache, error) {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cache core.ModelCache
	if err := util.UnmarshalJSON(data, &cache); err != nil {
		return nil, err
	}

	return &cache, nil
}

func (fs *FileStorage) Close() error {
	return nil
}

// RedisStorage persists the model cache in Redis
type RedisStorage struct {
	client *redis.Client
	ctx    context.Context
	key    string
}

// RedisStorageConfig Redis storage config
type RedisStorageConfig struct {
	URL string
	Key string
}

func NewRedisStorage(config RedisStorageConfig) (*RedisStorage, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx := context.Background()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	key := config.Key
	if key == "" {
		key = modelCacheRedisKey
	}

	return &RedisStorage{client: client, ctx: ctx, key: key}, nil
}

func (rs *RedisStorage) SaveModelCache(cache *core.ModelCache) error {
	data, err := util.MarshalJSON(cache)
	if err != nil {
		return err
	}
	return rs.client.Set(rs.ctx, rs.key, data, 0).Err()
}

func (rs *RedisStorage) LoadModelCache() (*core.ModelCache, error) {
	val, err := rs.client.Get(rs.ctx, rs.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cache core.ModelCache
	if err := util.UnmarshalJSON([]byte(val), &cache); err != nil {
		return nil, err
	}

	return &cache, nil
}

func (rs *RedisStorage) Close() error {
	return rs.client.Close()
}

// InitStorage selects the model cache backend: Redis when REDIS_URL is set
// and reachable, otherwise a local JSON file.
func InitStorage(filePath string, logger core.Logger) (core.StorageInterface, error) {
	redisURL := os.Getenv("REDIS_URL")

	if redisURL != "" {
		redisStorage, err := NewRedisStorage(RedisStorageConfig{
			URL: redisURL,
			Key: modelCacheRedisKey,
		})
		if err != nil {
			logger.Warn("Failed to initialize Redis storage: %v, falling back to file storage", err)
			return NewFileStorage(filePath), nil
		}
		logger.Info("Using Redis model cache storage")
		return redisStorage, nil
	}

	logger.Info("Using file model cache storage at %s", NewFileStorage(filePath).filePath)
	return NewFileStorage(filePath), nil
}
