package auth

// Store implements identity.TokenStore using the OS keyring. A distinct type
// (rather than package-level functions) so tests can swap in an in-memory
// store.
type Store struct{}

func (Store) SaveRefreshToken(host, token string) error {
	return SaveRefreshToken(host, token)
}

func (Store) LoadRefreshToken(host string) (string, error) {
	return LoadRefreshToken(host)
}

func (Store) DeleteRefreshToken(host string) error {
	return DeleteRefreshToken(host)
}
