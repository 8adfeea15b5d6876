package models

// RegisteredUser is the public view of a freshly created account.
// The password hash never leaves the repository layer.
type RegisteredUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
