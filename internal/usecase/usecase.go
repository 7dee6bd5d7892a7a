// Package usecase contains the business logic of the URL shortener: short
// code selection with collision retries, redirect resolution with access
// tracking, and the management operations exposed over HTTP.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/shortly/internal/entity"
	"github.com/vadimbarashkov/shortly/internal/shortcode"
)

// maxAttempts bounds the collision retry loop. The original behavior was to
// loop until a free code turned up; a bound with an explicit error replaces
// that latent liveness risk.
const maxAttempts = 10

type urlStore interface {
	Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error)
	Get(ctx context.Context, shortCode string) (string, bool)
	GetWithDetails(ctx context.Context, shortCode string) (*entity.URL, bool)
	IncrementAccess(ctx context.Context, shortCode string)
	Update(ctx context.Context, shortCode, newURL string) bool
	Exists(ctx context.Context, shortCode string) bool
	Delete(ctx context.Context, shortCode string) bool
	BulkDelete(ctx context.Context, shortCodes []string) (int, []string)
	Count(ctx context.Context) int
	ListAllWithStats(ctx context.Context) []*entity.URL
	Search(ctx context.Context, query string) []*entity.URL
	Stats(ctx context.Context) *entity.URLStats
}

// URLUseCase implements URL shortening operations on top of a urlStore.
type URLUseCase struct {
	shortCodeLength int
	store           urlStore
}

// New creates a URLUseCase. Generated codes are shortCodeLength hex
// characters long.
func New(shortCodeLength int, store urlStore) *URLUseCase {
	if shortCodeLength <= 0 {
		shortCodeLength = shortcode.DefaultLength
	}

	return &URLUseCase{
		shortCodeLength: shortCodeLength,
		store:           store,
	}
}

// ShortenURL creates a new shortened URL. When customCode is non-empty it is
// used as-is and entity.ErrShortCodeExists is returned if it is taken. When
// empty, codes are generated from a fingerprint of the URL, retrying with an
// incremented attempt counter until a free code is found or the attempt
// budget runs out.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL, customCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if customCode != "" {
		url, err := uc.store.Save(ctx, customCode, originalURL)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}
		return url, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := shortcode.Generate(originalURL, attempt, uc.shortCodeLength)

		url, err := uc.store.Save(ctx, code, originalURL)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, entity.ErrMaxAttemptsExceeded)
}

// ResolveShortCode returns the entry for a short code and records the access.
// The lookup itself never mutates; the access count is bumped in a separate
// store call once resolution succeeds.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, ok := uc.store.GetWithDetails(ctx, shortCode)
	if !ok {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, entity.ErrURLNotFound)
	}

	uc.store.IncrementAccess(ctx, shortCode)
	url.AccessCount++

	return url, nil
}

// GetURLDetails returns the entry for a short code without touching its
// access count.
func (uc *URLUseCase) GetURLDetails(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.GetURLDetails"

	url, ok := uc.store.GetWithDetails(ctx, shortCode)
	if !ok {
		return nil, fmt.Errorf("%s: failed to get url details: %w", op, entity.ErrURLNotFound)
	}

	return url, nil
}

// ModifyURL points an existing short code at a new URL. The access count and
// creation timestamp are preserved.
func (uc *URLUseCase) ModifyURL(ctx context.Context, shortCode, originalURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ModifyURL"

	if !uc.store.Update(ctx, shortCode, originalURL) {
		return nil, fmt.Errorf("%s: failed to modify url: %w", op, entity.ErrURLNotFound)
	}

	url, _ := uc.store.GetWithDetails(ctx, shortCode)
	return url, nil
}

// DeactivateURL removes a shortened URL.
func (uc *URLUseCase) DeactivateURL(ctx context.Context, shortCode string) error {
	const op = "usecase.URLUseCase.DeactivateURL"

	if !uc.store.Delete(ctx, shortCode) {
		return fmt.Errorf("%s: failed to deactivate url: %w", op, entity.ErrURLNotFound)
	}

	return nil
}

// BulkDeactivate removes a batch of shortened URLs. Codes that were not found
// are reported back rather than treated as an error; partial success is a
// normal outcome.
func (uc *URLUseCase) BulkDeactivate(ctx context.Context, shortCodes []string) (*entity.BulkDeleteResult, error) {
	deleted, failed := uc.store.BulkDelete(ctx, shortCodes)

	return &entity.BulkDeleteResult{
		DeletedCount: deleted,
		FailedCodes:  failed,
	}, nil
}

// ListURLs returns every entry with its access statistics.
func (uc *URLUseCase) ListURLs(ctx context.Context) ([]*entity.URL, error) {
	return uc.store.ListAllWithStats(ctx), nil
}

// SearchURLs returns the entries whose short code or original URL contains
// the query, case-insensitively.
func (uc *URLUseCase) SearchURLs(ctx context.Context, query string) ([]*entity.URL, error) {
	return uc.store.Search(ctx, query), nil
}

// GetStats returns aggregate statistics over the whole store.
func (uc *URLUseCase) GetStats(ctx context.Context) (*entity.URLStats, error) {
	return uc.store.Stats(ctx), nil
}

// CountURLs returns the number of stored entries. Used by the health endpoint.
func (uc *URLUseCase) CountURLs(ctx context.Context) int {
	return uc.store.Count(ctx)
}
