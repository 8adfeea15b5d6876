package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkly-be/internal/entities"
	"linkly-be/internal/service"
)

// TestShortenThenRedirectFlow drives the public surface end to end against a
// stateful fake service: submit a URL, follow the short link, and observe the
// click land on the stored record.
func TestShortenThenRedirectFlow(t *testing.T) {
	var stored *entities.Link

	links := &mockLinkService{}
	links.shortenFunc = func(longURL string, userID *string) (*entities.Link, bool, error) {
		if stored != nil && stored.OriginalURL == longURL {
			return stored, false, nil
		}
		stored = &entities.Link{
			ID:          "link-id",
			ShortCode:   "Xy12aB34Cd",
			OriginalURL: longURL,
			ShortURL:    "http://sho.rt/s/Xy12aB34Cd",
			UserID:      userID,
		}
		return stored, true, nil
	}
	links.resolveFunc = func(shortCode string) (string, error) {
		if stored == nil || stored.ShortCode != shortCode {
			return "", service.ErrNotFound
		}
		stored.Clicks++
		return stored.OriginalURL, nil
	}
	router := newTestRouter(links, nil)

	// Shorten
	w := doJSON(t, router, http.MethodPost, "/api/shorten", `{"longUrl":"https://example.com/a/very/long/path"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Success bool          `json:"success"`
		Data    entities.Link `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Len(t, created.Data.ShortCode, 10)
	assert.Zero(t, created.Data.Clicks)

	// Submitting the same URL again returns the same link, not a new one
	w = doJSON(t, router, http.MethodPost, "/api/shorten", `{"longUrl":"https://example.com/a/very/long/path"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Follow the short link
	w = doJSON(t, router, http.MethodGet, "/s/"+created.Data.ShortCode, "", "")
	require.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "https://example.com/a/very/long/path", w.Header().Get("Location"))

	// The click was recorded
	assert.EqualValues(t, 1, stored.Clicks)
}
