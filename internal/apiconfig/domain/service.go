package domain

import "context"

type Service interface {
	// Save encrypts the password and installs req as the single active
	// profile, deactivating all others.
	Save(ctx context.Context, req SaveRequest) (*Summary, error)
	// GetActive returns the active profile without the credential.
	GetActive(ctx context.Context) (*Summary, error)
	// Resolve returns the active profile with the credential decrypted.
	Resolve(ctx context.Context) (*Credentials, error)
}
