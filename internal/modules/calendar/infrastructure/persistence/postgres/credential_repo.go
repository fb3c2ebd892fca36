package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tanmay0711/leaveflow/internal/modules/calendar/domain"
)

type PgCredentialRepository struct {
	db *sqlx.DB
}

func NewPgCredentialRepository(db *sqlx.DB) *PgCredentialRepository {
	return &PgCredentialRepository{db: db}
}

func (r *PgCredentialRepository) Save(ctx context.Context, creds *domain.StoredCredentials) error {
	if creds.UpdatedAt.IsZero() {
		creds.UpdatedAt = time.Now()
	}
	query := `
		INSERT INTO oauth_credentials (provider, access_token, refresh_token, expiry, updated_at)
		VALUES (:provider, :access_token, :refresh_token, :expiry, :updated_at)
		ON CONFLICT (provider) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = EXCLUDED.refresh_token,
		    expiry = EXCLUDED.expiry,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.NamedExecContext(ctx, query, creds)
	return err
}

func (r *PgCredentialRepository) Load(ctx context.Context, provider string) (*domain.StoredCredentials, error) {
	query := `
		SELECT provider, access_token, refresh_token, expiry, updated_at
		FROM oauth_credentials
		WHERE provider = $1
	`
	var creds domain.StoredCredentials
	err := r.db.GetContext(ctx, &creds, query, provider)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoStoredCredentials
	}
	if err != nil {
		return nil, err
	}
	return &creds, nil
}
