package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/nvquang/formatforge/internal/config"
	"github.com/nvquang/formatforge/internal/models"
)

// StorageService fronts the two external stores: Supabase object
// storage for file bytes and Redis for staged inputs, job state and
// upload metadata rows.
type StorageService struct {
	sbClient      *storage_go.Client
	redisClient   *redis.Client
	bucket        string
	cacheDuration time.Duration
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	sbClient := storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return &StorageService{
		sbClient:      sbClient,
		redisClient:   redisClient,
		bucket:        cfg.Supabase.BUCKET,
		cacheDuration: cfg.Upload.CacheDuration,
	}, nil
}

// Upload stores file bytes under key and returns the public URL.
func (s *StorageService) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data),
		storage_go.FileOptions{ContentType: &contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}

// Download fetches file bytes from object storage.
func (s *StorageService) Download(ctx context.Context, key string) ([]byte, error) {
	data, err := s.sbClient.DownloadFile(s.bucket, key)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// StageInput parks uploaded bytes in Redis for the async worker.
func (s *StorageService) StageInput(ctx context.Context, key string, data []byte) error {
	return s.redisClient.Set(ctx, "staged:"+key, data, s.cacheDuration).Err()
}

// TakeInput fetches and deletes staged bytes.
func (s *StorageService) TakeInput(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, "staged:"+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("staged input %s not found", key)
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	s.redisClient.Del(ctx, "staged:"+key)
	return data, nil
}

// SaveJobState writes the async job state row.
func (s *StorageService) SaveJobState(ctx context.Context, state *models.JobState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal job state: %w", err)
	}
	return s.redisClient.Set(ctx, "job:"+state.ID, payload, s.cacheDuration).Err()
}

// GetJobState reads the async job state row; nil when unknown.
func (s *StorageService) GetJobState(ctx context.Context, id string) (*models.JobState, error) {
	payload, err := s.redisClient.Get(ctx, "job:"+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	var state models.JobState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job state: %w", err)
	}
	return &state, nil
}

// SaveFileMeta writes the metadata row for an uploaded original and
// indexes it for listing.
func (s *StorageService) SaveFileMeta(ctx context.Context, file *models.UploadedFile) error {
	payload, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal file metadata: %w", err)
	}
	if err := s.redisClient.Set(ctx, "file:"+file.Key, payload, 0).Err(); err != nil {
		return err
	}
	return s.redisClient.LPush(ctx, "files", file.Key).Err()
}

// ListFileMeta returns the most recent upload metadata rows.
func (s *StorageService) ListFileMeta(ctx context.Context, limit int64) ([]models.UploadedFile, error) {
	keys, err := s.redisClient.LRange(ctx, "files", 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	files := make([]models.UploadedFile, 0, len(keys))
	for _, key := range keys {
		payload, err := s.redisClient.Get(ctx, "file:"+key).Bytes()
		if err != nil {
			continue
		}
		var file models.UploadedFile
		if err := json.Unmarshal(payload, &file); err != nil {
			continue
		}
		files = append(files, file)
	}
	return files, nil
}

// HealthCheck reports the status of the external stores.
func (s *StorageService) HealthCheck(ctx context.Context) map[string]string {
	status := map[string]string{}

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy"
	} else {
		status["redis"] = "healthy"
	}

	if s.bucket == "" {
		status["object_storage"] = "not configured"
	} else {
		status["object_storage"] = "healthy"
	}

	return status
}
