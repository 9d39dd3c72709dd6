package db

import (
	"context"
	"database/sql"

	"github.com/pagespace/gateway/pkg/types"
)

// UserStore implements auth.UserStore.
type UserStore struct{ db *sql.DB }

func NewUserStore(db *sql.DB) *UserStore { return &UserStore{db: db} }

// Get resolves a user id to its current row, used to validate
// tokenVersion/adminRoleVersion on every request (spec §3).
func (s *UserStore) Get(ctx context.Context, userID string) (*types.User, error) {
	var u types.User
	var currentProvider, currentModel sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, role, token_version, admin_role_version, timezone,
		       current_ai_provider, current_ai_model, used_bytes, quota_bytes, tier
		FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Email, &u.Role, &u.TokenVersion, &u.AdminRoleVersion, &u.Timezone,
		&currentProvider, &currentModel, &u.UsedBytes, &u.QuotaBytes, &u.Tier)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CurrentAIProvider = currentProvider.String
	u.CurrentAIModel = currentModel.String
	return &u, nil
}

// CheckQuota implements upload.QuotaService: it loads the user's current
// usage/quota and reports whether fileSize more bytes would fit.
func (s *UserStore) CheckQuota(ctx context.Context, userID string, fileSize int64) (*types.User, bool, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if u == nil {
		return nil, false, sql.ErrNoRows
	}
	return u, u.UsedBytes+fileSize <= u.QuotaBytes, nil
}

// IncrementUsage implements upload.QuotaService, adding delta (which may be
// negative, e.g. on delete) to the user's used_bytes counter.
func (s *UserStore) IncrementUsage(ctx context.Context, userID string, delta int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET used_bytes = used_bytes + $1 WHERE id = $2`, delta, userID)
	return err
}

// KeyStore implements provider.KeyStore.
type KeyStore struct{ db *sql.DB }

func NewKeyStore(db *sql.DB) *KeyStore { return &KeyStore{db: db} }

func (s *KeyStore) Get(ctx context.Context, userID, providerID string) (*types.ProviderKey, error) {
	var k types.ProviderKey
	var apiKey, baseURL sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, provider, api_key, base_url
		FROM provider_keys WHERE user_id = $1 AND provider = $2`, userID, providerID,
	).Scan(&k.UserID, &k.Provider, &apiKey, &baseURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	k.APIKey = apiKey.String
	k.BaseURL = baseURL.String
	return &k, nil
}

func (s *KeyStore) Put(ctx context.Context, key *types.ProviderKey) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provider_keys (user_id, provider, api_key, base_url, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, provider) DO UPDATE
		SET api_key = EXCLUDED.api_key, base_url = EXCLUDED.base_url, updated_at = now()`,
		key.UserID, key.Provider, nullIfEmpty(key.APIKey), nullIfEmpty(key.BaseURL))
	return err
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
