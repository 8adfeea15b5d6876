package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"linkly-be/internal/cache"
	"linkly-be/internal/entities"
	"linkly-be/internal/repository"
	"linkly-be/internal/shortcode"
)

// maxCodeRetries bounds how many fresh codes Shorten will try after a
// short-code collision before giving up.
const maxCodeRetries = 3

// LinkService defines the interface for link business logic
type LinkService interface {
	// Shorten returns the link for a destination, creating it if needed.
	// The second result reports whether a new link was created.
	Shorten(ctx context.Context, longURL string, userID *string) (*entities.Link, bool, error)
	// Resolve returns the destination for a short code and records the click.
	Resolve(ctx context.Context, shortCode string) (string, error)
	// GetByShortCode returns a link without recording a click.
	GetByShortCode(ctx context.Context, shortCode string) (*entities.Link, error)
	ListByOwner(ctx context.Context, userID string) ([]*entities.Link, error)
	Update(ctx context.Context, id, originalURL, requesterID string) (*entities.Link, error)
	Delete(ctx context.Context, id, requesterID string) error
}

type linkService struct {
	repo    repository.LinkRepository
	cache   cache.LinkCache // nil when Redis is unavailable
	codes   shortcode.Generator
	baseURL string
	log     *zap.SugaredLogger
}

// NewLinkService creates a new link service. cacheClient may be nil, in
// which case every resolve goes straight to the database.
func NewLinkService(repo repository.LinkRepository, cacheClient cache.LinkCache, codes shortcode.Generator, baseURL string, log *zap.SugaredLogger) LinkService {
	return &linkService{
		repo:    repo,
		cache:   cacheClient,
		codes:   codes,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// validateDestination distinguishes a missing URL from a malformed one.
// A destination must be an absolute URI: bare hostnames are rejected.
func validateDestination(longURL string) (string, error) {
	longURL = strings.TrimSpace(longURL)
	if longURL == "" {
		return "", ErrInvalidInput
	}

	u, err := url.Parse(longURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", ErrInvalidURL
	}

	return longURL, nil
}

func (s *linkService) shortURL(shortCode string) string {
	return fmt.Sprintf("%s/s/%s", s.baseURL, shortCode)
}

// Shorten validates the destination, reuses an existing link for it when one
// exists, and otherwise mints a code and creates the record. A short-code
// collision is retried with a fresh code a bounded number of times; a
// destination collision (two callers racing on the same URL) is resolved by
// returning the link the other caller created.
func (s *linkService) Shorten(ctx context.Context, longURL string, userID *string) (*entities.Link, bool, error) {
	longURL, err := validateDestination(longURL)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.FindByOriginalURL(ctx, longURL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to check for existing link: %w", err)
	}

	var link *entities.Link
	backoff := retry.WithMaxRetries(maxCodeRetries, retry.NewConstant(10*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		code, genErr := s.codes.Generate()
		if genErr != nil {
			return genErr
		}

		created, createErr := s.repo.Create(ctx, code, longURL, s.shortURL(code), userID)
		if createErr != nil {
			if errors.Is(createErr, repository.ErrDuplicateCode) {
				s.log.Warnw("short code collision, regenerating", "shortCode", code)
				return retry.RetryableError(createErr)
			}
			return createErr
		}

		link = created
		return nil
	})

	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, false, ErrStorageExhausted
		}
		if errors.Is(err, repository.ErrDuplicateDestination) {
			// Lost the creation race for this destination; the winner's
			// link is the canonical one.
			existing, refetchErr := s.repo.FindByOriginalURL(ctx, longURL)
			if refetchErr != nil {
				return nil, false, fmt.Errorf("failed to fetch racing link: %w", refetchErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create link: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetDestination(ctx, link.ShortCode, link.OriginalURL); cacheErr != nil {
			s.log.Debugw("failed to cache new link", "shortCode", link.ShortCode, "error", cacheErr)
		}
	}

	return link, true, nil
}

// Resolve looks up the destination for a short code and increments its click
// counter. A failed increment is logged and otherwise ignored: losing one
// click is acceptable, failing the redirect is not.
func (s *linkService) Resolve(ctx context.Context, shortCode string) (string, error) {
	if s.cache != nil {
		dest, err := s.cache.GetDestination(ctx, shortCode)
		if err == nil {
			if incErr := s.repo.IncrementClicks(ctx, shortCode); incErr != nil {
				if errors.Is(incErr, repository.ErrNotFound) {
					// Stale cache entry for a deleted link.
					if cacheErr := s.cache.Invalidate(ctx, shortCode); cacheErr != nil {
						s.log.Debugw("failed to invalidate stale cache entry", "shortCode", shortCode, "error", cacheErr)
					}
					return "", ErrNotFound
				}
				s.log.Warnw("failed to increment clicks", "shortCode", shortCode, "error", incErr)
			}
			return dest, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Debugw("cache lookup failed", "shortCode", shortCode, "error", err)
		}
	}

	link, err := s.repo.FindByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve short code: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetDestination(ctx, link.ShortCode, link.OriginalURL); cacheErr != nil {
			s.log.Debugw("failed to cache resolved link", "shortCode", shortCode, "error", cacheErr)
		}
	}

	if err := s.repo.IncrementClicks(ctx, shortCode); err != nil {
		s.log.Warnw("failed to increment clicks", "shortCode", shortCode, "error", err)
	}

	return link.OriginalURL, nil
}

// GetByShortCode returns a link without touching its click counter
func (s *linkService) GetByShortCode(ctx context.Context, shortCode string) (*entities.Link, error) {
	link, err := s.repo.FindByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return link, nil
}

// ListByOwner retrieves all links created by a user, newest first
func (s *linkService) ListByOwner(ctx context.Context, userID string) ([]*entities.Link, error) {
	links, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// Update changes a link's destination. Only the owner may edit, and the
// ownership check runs on every call. The short code never changes.
func (s *linkService) Update(ctx context.Context, id, originalURL, requesterID string) (*entities.Link, error) {
	originalURL, err := validateDestination(originalURL)
	if err != nil {
		return nil, err
	}

	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find link: %w", err)
	}

	if !link.MutableBy(requesterID) {
		return nil, ErrForbidden
	}

	updated, err := s.repo.UpdateOriginalURL(ctx, id, originalURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, repository.ErrDuplicateDestination) {
			return nil, ErrDestinationTaken
		}
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.Invalidate(ctx, link.ShortCode); cacheErr != nil {
			s.log.Warnw("failed to invalidate cache after update", "shortCode", link.ShortCode, "error", cacheErr)
		}
	}

	return updated, nil
}

// Delete removes a link. Only the owner may delete, checked per call.
func (s *linkService) Delete(ctx context.Context, id, requesterID string) error {
	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to find link: %w", err)
	}

	if !link.MutableBy(requesterID) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.Invalidate(ctx, link.ShortCode); cacheErr != nil {
			s.log.Warnw("failed to invalidate cache after delete", "shortCode", link.ShortCode, "error", cacheErr)
		}
	}

	return nil
}
