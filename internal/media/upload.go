package media

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"reverie/internal/observability"
)

const (
	imageAttemptTimeout = 10 * time.Second
	imageMaxAttempts    = 3
	imageRetryBase      = time.Second
)

// Uploader writes processed media to the store. Image uploads are the one
// path with an explicit retry budget: 10 seconds per attempt, up to 3
// attempts with exponential backoff. Audio uploads get a single attempt
// like every other gateway call.
type Uploader struct {
	store  Store
	logger *slog.Logger

	attemptTimeout time.Duration
	retryBase      time.Duration
}

// NewUploader creates an uploader over the given store.
func NewUploader(store Store, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		store:          store,
		logger:         logger,
		attemptTimeout: imageAttemptTimeout,
		retryBase:      imageRetryBase,
	}
}

// ImageURLs holds the public URLs of one processed image.
type ImageURLs struct {
	Master string `json:"master"`
	Thumb  string `json:"thumb"`
	JPEG   string `json:"jpeg"`
}

// UploadImage processes the upload into variants and writes each with the
// retry budget. The master webp URL is what gets embedded in the dream.
func (u *Uploader) UploadImage(ctx context.Context, userID uint, content []byte, contentType string) (*ImageURLs, error) {
	variants, err := ProcessImage(content, contentType)
	if err != nil {
		return nil, err
	}

	hash := ContentHash(userID, content)
	urls := &ImageURLs{}
	for _, variant := range variants {
		key := path.Join("i", hash, variant.Name+"."+variant.Ext)
		url, err := u.uploadWithRetry(ctx, key, variant.Data)
		if err != nil {
			return nil, err
		}
		switch {
		case variant.Name == "master" && variant.Ext == "webp":
			urls.Master = url
		case variant.Name == "thumb":
			urls.Thumb = url
		default:
			urls.JPEG = url
		}
	}
	return urls, nil
}

// UploadAudio stores an audio clip. No retry: a failure surfaces directly.
func (u *Uploader) UploadAudio(ctx context.Context, userID uint, content []byte, ext string) (string, error) {
	key := path.Join("a", ContentHash(userID, content)+ext)
	return u.store.Upload(ctx, key, content)
}

func (u *Uploader) uploadWithRetry(ctx context.Context, key string, data []byte) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= imageMaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, u.attemptTimeout)
		url, err := u.store.Upload(attemptCtx, key, data)
		cancel()
		if err == nil {
			return url, nil
		}
		lastErr = err

		if attempt == imageMaxAttempts {
			break
		}
		observability.MediaUploadRetries.Inc()
		u.logger.WarnContext(ctx, "image upload attempt failed",
			slog.String("key", key),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)

		backoff := u.retryBase << (attempt - 1)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("image upload failed after %d attempts: %w", imageMaxAttempts, lastErr)
}
