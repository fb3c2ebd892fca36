package domain

import "context"

type CredentialRepository interface {
	Save(ctx context.Context, creds *StoredCredentials) error
	// Load returns ErrNoStoredCredentials when the provider has never been
	// authorized.
	Load(ctx context.Context, provider string) (*StoredCredentials, error)
}
