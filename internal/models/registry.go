package models

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrOperationImmutable = errors.New("operations cannot be modified")
	ErrNegativePrice      = errors.New("price must not be negative")
)

// FileURLGenerator interface for generating signed URLs
type FileURLGenerator interface {
	GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error)
}

var (
	urlGenerator FileURLGenerator
	signedURLTTL = time.Hour
	registryMu   sync.RWMutex
)

// RegisterFileURLGenerator sets the URL generator used for product images.
func RegisterFileURLGenerator(generator FileURLGenerator, ttl time.Duration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	urlGenerator = generator
	if ttl > 0 {
		signedURLTTL = ttl
	}
}
