package models

// ShortenRequest represents the request body for creating a short link.
// Validation of the URL itself happens in the service so that a missing
// value and a malformed value produce distinct errors.
type ShortenRequest struct {
	LongURL string `json:"longUrl"`
}

// UpdateLinkRequest represents the request body for editing a link's
// destination. The short code never changes on edit.
type UpdateLinkRequest struct {
	OriginalURL string `json:"originalUrl"`
}
