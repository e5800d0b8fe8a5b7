package apikey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists keys so they survive process restarts. It implements
// the same Store interface as MemoryStore; the gateway does not know which it
// is running against.
type PostgresStore struct {
	db             *pgxpool.Pool
	clock          clock.Clock
	defaultCeiling int
	maxCeiling     int
}

// NewPostgresStore creates a Postgres-backed key store.
func NewPostgresStore(db *pgxpool.Pool, clk clock.Clock, defaultCeiling, maxCeiling int) *PostgresStore {
	return &PostgresStore{
		db:             db,
		clock:          clk,
		defaultCeiling: defaultCeiling,
		maxCeiling:     maxCeiling,
	}
}

// Issue creates and stores a new key with a freshly generated token.
func (s *PostgresStore) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if err := validatePermissions(req.Permissions); err != nil {
		return nil, err
	}

	ceiling := req.RateCeiling
	if ceiling == 0 {
		ceiling = s.defaultCeiling
	}
	if ceiling < 0 {
		return nil, fmt.Errorf("rate ceiling must be positive, got %d", req.RateCeiling)
	}
	if ceiling > s.maxCeiling {
		return nil, ErrCeilingTooHigh
	}

	raw, hash, prefix, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	permsJSON, err := json.Marshal(clonePermissions(req.Permissions))
	if err != nil {
		return nil, fmt.Errorf("failed to encode permissions: %w", err)
	}

	key := &models.APIKey{
		ID:          uuid.New(),
		Name:        req.Name,
		KeyHash:     hash,
		KeyPrefix:   prefix,
		Permissions: clonePermissions(req.Permissions),
		RateCeiling: ceiling,
		Active:      true,
		CreatedAt:   s.clock.Now(),
		ExpiresAt:   req.ExpiresAt,
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO api_keys (id, name, key_hash, key_prefix, permissions, rate_ceiling, active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, key.ID, key.Name, key.KeyHash, key.KeyPrefix, permsJSON, key.RateCeiling, key.Active, key.CreatedAt, key.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	return &IssueResult{Key: key, Token: raw}, nil
}

// Validate looks up a key by raw token without side effects.
func (s *PostgresStore) Validate(ctx context.Context, token string) (*models.APIKey, error) {
	if !wellFormed(token) {
		return nil, ErrInvalidKey
	}
	hash := HashToken(token)

	key, err := s.scanKey(s.db.QueryRow(ctx, selectKey+` WHERE key_hash = $1`, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to validate API key: %w", err)
	}

	if !key.Active {
		return nil, ErrKeyRevoked
	}
	now := s.clock.Now()
	if key.ExpiresAt != nil && !key.ExpiresAt.After(now) {
		return nil, ErrKeyExpired
	}

	return key, nil
}

// Revoke deactivates a key; the row is never deleted.
func (s *PostgresStore) Revoke(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `UPDATE api_keys SET active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// Get returns a key by id regardless of its active state.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	key, err := s.scanKey(s.db.QueryRow(ctx, selectKey+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}
	return key, nil
}

// List returns all issued keys ordered by creation time.
func (s *PostgresStore) List(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.db.Query(ctx, selectKey+` ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := s.scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API keys: %w", err)
	}
	return keys, nil
}

// RecordUse increments the usage counter and stamps last-used.
func (s *PostgresStore) RecordUse(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE api_keys SET usage_count = usage_count + 1, last_used_at = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to record API key use: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}

const selectKey = `
	SELECT id, name, key_hash, key_prefix, permissions, rate_ceiling, active, created_at, expires_at, last_used_at, usage_count
	FROM api_keys`

func (s *PostgresStore) scanKey(row pgx.Row) (*models.APIKey, error) {
	var key models.APIKey
	var permsJSON []byte
	err := row.Scan(
		&key.ID, &key.Name, &key.KeyHash, &key.KeyPrefix, &permsJSON,
		&key.RateCeiling, &key.Active, &key.CreatedAt, &key.ExpiresAt,
		&key.LastUsedAt, &key.UsageCount,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(permsJSON, &key.Permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}
	return &key, nil
}
