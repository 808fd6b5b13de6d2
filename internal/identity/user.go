package identity

// User is the principal issued by the identity provider for the current
// session. It is a read-only mirror: the provider owns the record, the
// application only observes it.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

// SameIdentity reports whether two users represent the same principal for
// role-resolution purposes (email, which keys the backend profile).
func SameIdentity(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Email == b.Email
}
