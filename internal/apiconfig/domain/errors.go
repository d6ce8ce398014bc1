package domain

import "errors"

var (
	// ErrConfigurationMissing is returned when no active profile exists.
	ErrConfigurationMissing = errors.New("api configuration not found")
	// ErrConfigurationIncomplete is returned when the active profile is
	// missing fields the upstream service requires.
	ErrConfigurationIncomplete = errors.New("api configuration incomplete")
	// ErrCredentialDecrypt is returned when the stored credential cannot be
	// decrypted; the operator must re-save the configuration.
	ErrCredentialDecrypt = errors.New("stored credential cannot be decrypted, re-save configuration")
	// ErrEncryptionKeyMissing is returned when no codec secret is configured.
	ErrEncryptionKeyMissing = errors.New("credential encryption secret is not configured")
	// ErrInvalidRequest is returned when a save request misses required fields.
	ErrInvalidRequest = errors.New("all configuration fields are required")
)
