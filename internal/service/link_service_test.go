package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkly-be/internal/cache"
	"linkly-be/internal/entities"
	"linkly-be/internal/repository"
	"linkly-be/internal/shortcode"
)

const testBaseURL = "http://sho.rt"

// mockLinkRepo implements repository.LinkRepository for testing.
type mockLinkRepo struct {
	mu sync.Mutex

	createFunc            func(shortCode, originalURL, shortURL string, userID *string) (*entities.Link, error)
	findByIDFunc          func(id string) (*entities.Link, error)
	findByShortCodeFunc   func(shortCode string) (*entities.Link, error)
	findByOriginalURLFunc func(originalURL string) (*entities.Link, error)
	incrementFunc         func(shortCode string) error
	updateFunc            func(id, originalURL string) (*entities.Link, error)
	deleteFunc            func(id string) error
	listFunc              func(userID string) ([]*entities.Link, error)

	createCalls    int
	incrementCalls int
	updateCalls    int
	deleteCalls    int
}

func (m *mockLinkRepo) Create(_ context.Context, shortCode, originalURL, shortURL string, userID *string) (*entities.Link, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(shortCode, originalURL, shortURL, userID)
	}
	return &entities.Link{
		ID:          "link-id",
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		ShortURL:    shortURL,
		UserID:      userID,
	}, nil
}

func (m *mockLinkRepo) FindByID(_ context.Context, id string) (*entities.Link, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockLinkRepo) FindByShortCode(_ context.Context, shortCode string) (*entities.Link, error) {
	if m.findByShortCodeFunc != nil {
		return m.findByShortCodeFunc(shortCode)
	}
	return nil, repository.ErrNotFound
}

func (m *mockLinkRepo) FindByOriginalURL(_ context.Context, originalURL string) (*entities.Link, error) {
	if m.findByOriginalURLFunc != nil {
		return m.findByOriginalURLFunc(originalURL)
	}
	return nil, repository.ErrNotFound
}

func (m *mockLinkRepo) IncrementClicks(_ context.Context, shortCode string) error {
	m.mu.Lock()
	m.incrementCalls++
	m.mu.Unlock()
	if m.incrementFunc != nil {
		return m.incrementFunc(shortCode)
	}
	return nil
}

func (m *mockLinkRepo) UpdateOriginalURL(_ context.Context, id, originalURL string) (*entities.Link, error) {
	m.mu.Lock()
	m.updateCalls++
	m.mu.Unlock()
	if m.updateFunc != nil {
		return m.updateFunc(id, originalURL)
	}
	return &entities.Link{ID: id, OriginalURL: originalURL}, nil
}

func (m *mockLinkRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	m.deleteCalls++
	m.mu.Unlock()
	if m.deleteFunc != nil {
		return m.deleteFunc(id)
	}
	return nil
}

func (m *mockLinkRepo) ListByUserID(_ context.Context, userID string) ([]*entities.Link, error) {
	if m.listFunc != nil {
		return m.listFunc(userID)
	}
	return nil, nil
}

// mockCache implements cache.LinkCache for testing.
type mockCache struct {
	mu          sync.Mutex
	entries     map[string]string
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]string)}
}

func (m *mockCache) GetDestination(_ context.Context, shortCode string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dest, ok := m.entries[shortCode]; ok {
		return dest, nil
	}
	return "", cache.ErrCacheMiss
}

func (m *mockCache) SetDestination(_ context.Context, shortCode, originalURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[shortCode] = originalURL
	return nil
}

func (m *mockCache) Invalidate(_ context.Context, shortCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, shortCode)
	m.invalidated = append(m.invalidated, shortCode)
	return nil
}

// fixedGenerator hands out a preset sequence of codes.
type fixedGenerator struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (g *fixedGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.codes) == 0 {
		return "fallback00", nil
	}
	code := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return code, nil
}

func newTestService(repo repository.LinkRepository, c cache.LinkCache) LinkService {
	return NewLinkService(repo, c, shortcode.NewGenerator(), testBaseURL, zap.NewNop().Sugar())
}

func TestShortenCreatesLink(t *testing.T) {
	var gotShortURL string
	repo := &mockLinkRepo{}
	repo.createFunc = func(shortCode, originalURL, shortURL string, userID *string) (*entities.Link, error) {
		gotShortURL = shortURL
		return &entities.Link{
			ID:          "link-id",
			ShortCode:   shortCode,
			OriginalURL: originalURL,
			ShortURL:    shortURL,
			UserID:      userID,
		}, nil
	}

	svc := newTestService(repo, nil)
	link, created, err := svc.Shorten(context.Background(), "https://example.com/a/very/long/path", nil)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "https://example.com/a/very/long/path", link.OriginalURL)
	assert.Len(t, link.ShortCode, shortcode.CodeLength)
	assert.Equal(t, testBaseURL+"/s/"+link.ShortCode, gotShortURL)
	assert.Nil(t, link.UserID)
	assert.Zero(t, link.Clicks)
}

func TestShortenAttributesOwner(t *testing.T) {
	userID := "owner-uuid"
	repo := &mockLinkRepo{}

	svc := newTestService(repo, nil)
	link, created, err := svc.Shorten(context.Background(), "https://example.com", &userID)

	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, link.UserID)
	assert.Equal(t, userID, *link.UserID)
}

func TestShortenEmptyInput(t *testing.T) {
	svc := newTestService(&mockLinkRepo{}, nil)

	for _, input := range []string{"", "   "} {
		_, _, err := svc.Shorten(context.Background(), input, nil)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", input)
	}
}

func TestShortenInvalidURL(t *testing.T) {
	repo := &mockLinkRepo{}
	svc := newTestService(repo, nil)

	for _, input := range []string{"not-a-url", "www.example.com", "example.com/path", "://missing-scheme"} {
		_, _, err := svc.Shorten(context.Background(), input, nil)
		assert.ErrorIs(t, err, ErrInvalidURL, "input %q", input)
	}
	assert.Zero(t, repo.createCalls)
}

func TestShortenDeduplicatesByDestination(t *testing.T) {
	existing := &entities.Link{ID: "existing-id", ShortCode: "abcdefghij", OriginalURL: "https://example.com", Clicks: 7}
	repo := &mockLinkRepo{}
	repo.findByOriginalURLFunc = func(originalURL string) (*entities.Link, error) {
		return existing, nil
	}

	svc := newTestService(repo, nil)
	link, created, err := svc.Shorten(context.Background(), "https://example.com", nil)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, existing, link)
	assert.Zero(t, repo.createCalls, "dedup hit must not create a new record")
	assert.EqualValues(t, 7, link.Clicks, "dedup hit must not touch clicks")
}

func TestShortenRetriesOnCodeCollision(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.createFunc = func(shortCode, originalURL, shortURL string, userID *string) (*entities.Link, error) {
		if repo.createCalls <= 2 {
			return nil, repository.ErrDuplicateCode
		}
		return &entities.Link{ShortCode: shortCode, OriginalURL: originalURL, ShortURL: shortURL}, nil
	}
	gen := &fixedGenerator{codes: []string{"collide001", "collide002", "winner0003"}}

	svc := NewLinkService(repo, nil, gen, testBaseURL, zap.NewNop().Sugar())
	link, created, err := svc.Shorten(context.Background(), "https://example.com", nil)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "winner0003", link.ShortCode)
	assert.Equal(t, 3, repo.createCalls)
	assert.Equal(t, 3, gen.calls, "each attempt must use a fresh code")
}

func TestShortenStorageExhausted(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.createFunc = func(string, string, string, *string) (*entities.Link, error) {
		return nil, repository.ErrDuplicateCode
	}

	svc := newTestService(repo, nil)
	_, _, err := svc.Shorten(context.Background(), "https://example.com", nil)

	assert.ErrorIs(t, err, ErrStorageExhausted)
	assert.Equal(t, 1+maxCodeRetries, repo.createCalls)
}

func TestShortenDestinationRaceReturnsWinner(t *testing.T) {
	winner := &entities.Link{ID: "winner-id", ShortCode: "winner0001", OriginalURL: "https://example.com"}
	lookups := 0
	repo := &mockLinkRepo{}
	repo.findByOriginalURLFunc = func(originalURL string) (*entities.Link, error) {
		lookups++
		if lookups == 1 {
			// Both racing callers saw "not found" before either committed.
			return nil, repository.ErrNotFound
		}
		return winner, nil
	}
	repo.createFunc = func(string, string, string, *string) (*entities.Link, error) {
		return nil, repository.ErrDuplicateDestination
	}

	svc := newTestService(repo, nil)
	link, created, err := svc.Shorten(context.Background(), "https://example.com", nil)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, winner, link)
}

func TestResolveUnknownCode(t *testing.T) {
	svc := newTestService(&mockLinkRepo{}, nil)

	_, err := svc.Resolve(context.Background(), "nosuchcode")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveIncrementsClicks(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.findByShortCodeFunc = func(shortCode string) (*entities.Link, error) {
		return &entities.Link{ShortCode: shortCode, OriginalURL: "https://example.com"}, nil
	}

	svc := newTestService(repo, nil)
	dest, err := svc.Resolve(context.Background(), "abcdefghij")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com", dest)
	assert.Equal(t, 1, repo.incrementCalls)
}

func TestResolveIncrementFailureStillRedirects(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.findByShortCodeFunc = func(shortCode string) (*entities.Link, error) {
		return &entities.Link{ShortCode: shortCode, OriginalURL: "https://example.com"}, nil
	}
	repo.incrementFunc = func(string) error {
		return errors.New("connection reset")
	}

	svc := newTestService(repo, nil)
	dest, err := svc.Resolve(context.Background(), "abcdefghij")

	require.NoError(t, err, "analytics loss must not fail the redirect")
	assert.Equal(t, "https://example.com", dest)
}

func TestResolveConcurrentClicks(t *testing.T) {
	var (
		mu     sync.Mutex
		clicks int64
	)
	repo := &mockLinkRepo{}
	repo.findByShortCodeFunc = func(shortCode string) (*entities.Link, error) {
		return &entities.Link{ShortCode: shortCode, OriginalURL: "https://example.com"}, nil
	}
	repo.incrementFunc = func(string) error {
		mu.Lock()
		clicks++
		mu.Unlock()
		return nil
	}

	svc := newTestService(repo, nil)

	const resolutions = 100
	var wg sync.WaitGroup
	for i := 0; i < resolutions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dest, err := svc.Resolve(context.Background(), "abcdefghij")
			assert.NoError(t, err)
			assert.Equal(t, "https://example.com", dest)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, resolutions, clicks, "no increments may be lost under concurrency")
}

func TestResolveCacheHitSkipsLookupButCounts(t *testing.T) {
	repo := &mockLinkRepo{}
	c := newMockCache()
	require.NoError(t, c.SetDestination(context.Background(), "abcdefghij", "https://example.com"))

	svc := newTestService(repo, c)
	dest, err := svc.Resolve(context.Background(), "abcdefghij")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com", dest)
	assert.Equal(t, 1, repo.incrementCalls, "cached redirects still count clicks")
}

func TestResolveStaleCacheEntry(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.incrementFunc = func(string) error {
		return repository.ErrNotFound
	}
	c := newMockCache()
	require.NoError(t, c.SetDestination(context.Background(), "abcdefghij", "https://example.com"))

	svc := newTestService(repo, c)
	_, err := svc.Resolve(context.Background(), "abcdefghij")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, c.invalidated, "abcdefghij", "stale entry must be dropped")
}

func ownedLink(owner string) *entities.Link {
	return &entities.Link{
		ID:          "link-id",
		ShortCode:   "abcdefghij",
		OriginalURL: "https://example.com",
		UserID:      &owner,
	}
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.findByIDFunc = func(id string) (*entities.Link, error) {
		return ownedLink("user-a"), nil
	}

	svc := newTestService(repo, nil)
	_, err := svc.Update(context.Background(), "link-id", "https://other.example.com", "user-b")

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, repo.updateCalls, "forbidden update must leave the link unchanged")
}

func TestUpdateAnonymousLinkForbidden(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.findByIDFunc = func(id string) (*entities.Link, error) {
		return &entities.Link{ID: id, ShortCode: "abcdefghij", OriginalURL: "https://example.com"}, nil
	}

	svc := newTestService(repo, nil)
	_, err := svc.Update(context.Background(), "link-id", "https://other.example.com", "user-a")

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(&mockLinkRepo{}, nil)

	_, err := svc.Update(context.Background(), "missing-id", "https://example.com", "user-a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateInvalidURL(t *testing.T) {
	svc := newTestService(&mockLinkRepo{}, nil)

	_, err := svc.Update(context.Background(), "link-id", "not-a-url", "user-a")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = svc.Update(context.Background(), "link-id", "", "user-a")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateByOwner(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.findByIDFunc = func(id string) (*entities.Link, error) {
		return ownedLink("user-a"), nil
	}
	c := newMockCache()
	require.NoError(t, c.SetDestination(context.Background(), "abcdefghij", "https://example.com"))

	svc := newTestService(repo, c)
	link, err := svc.Update(context.Background(), "link-id", "https://other.example.com", "user-a")

	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com", link.OriginalURL)
	assert.Equal(t, 1, repo.updateCalls)
	assert.Contains(t, c.invalidated, "abcdefghij", "old destination must leave the cache")
}

func TestUpdateDestinationTaken(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.findByIDFunc = func(id string) (*entities.Link, error) {
		return ownedLink("user-a"), nil
	}
	repo.updateFunc = func(string, string) (*entities.Link, error) {
		return nil, repository.ErrDuplicateDestination
	}

	svc := newTestService(repo, nil)
	_, err := svc.Update(context.Background(), "link-id", "https://taken.example.com", "user-a")

	assert.ErrorIs(t, err, ErrDestinationTaken)
}

func TestDeleteByNonOwnerForbidden(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.findByIDFunc = func(id string) (*entities.Link, error) {
		return ownedLink("user-a"), nil
	}

	svc := newTestService(repo, nil)
	err := svc.Delete(context.Background(), "link-id", "user-b")

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, repo.deleteCalls)
}

func TestDeleteByOwner(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.findByIDFunc = func(id string) (*entities.Link, error) {
		return ownedLink("user-a"), nil
	}
	c := newMockCache()

	svc := newTestService(repo, c)
	err := svc.Delete(context.Background(), "link-id", "user-a")

	require.NoError(t, err)
	assert.Equal(t, 1, repo.deleteCalls)
	assert.Contains(t, c.invalidated, "abcdefghij")
}

func TestDeleteNotFound(t *testing.T) {
	svc := newTestService(&mockLinkRepo{}, nil)

	err := svc.Delete(context.Background(), "missing-id", "user-a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByOwner(t *testing.T) {
	repo := &mockLinkRepo{}
	repo.listFunc = func(userID string) ([]*entities.Link, error) {
		assert.Equal(t, "user-a", userID)
		return []*entities.Link{
			{ID: "newer"},
			{ID: "older"},
		}, nil
	}

	svc := newTestService(repo, nil)
	links, err := svc.ListByOwner(context.Background(), "user-a")

	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "newer", links[0].ID)
}
