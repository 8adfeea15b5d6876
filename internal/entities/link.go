package entities

import "time"

// Link represents a shortened link entity in the database
type Link struct {
	ID          string    `json:"id"` // UUID
	ShortCode   string    `json:"shortCode"`
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl"` // Full redirect URL (base URL + short code)
	Clicks      int64     `json:"clicks"`
	UserID      *string   `json:"userId,omitempty"` // Pointer allows nil (for anonymous links), UUID
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MutableBy reports whether the given user may edit or delete this link.
// Anonymous links (no owner) are never mutable through the owner-scoped
// paths, and the check is exact: only the creator qualifies.
func (l *Link) MutableBy(userID string) bool {
	if l.UserID == nil || userID == "" {
		return false
	}
	return *l.UserID == userID
}
